package optionsx

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.eggybyte.com/settingsx/configx"
	coreerrors "go.eggybyte.com/settingsx/core/errors"
)

type sampleConfiguration struct {
	SampleKey    string `validate:"required,max=20"`
	SampleNumber int    `validate:"gte=0,lte=10"`
	SampleString string
}

type otherConfiguration struct {
	Name string `default:"other"`
}

func noVowels(s sampleConfiguration) bool {
	return !strings.ContainsAny(strings.ToLower(s.SampleString), "aeiou")
}

func oneMeansOne(s sampleConfiguration) bool {
	return s.SampleKey != "one" || s.SampleNumber == 1
}

func sampleSection(key, number, str string) configx.Section {
	return configx.FromMap(map[string]string{
		"Sample:SampleKey":    key,
		"Sample:SampleNumber": number,
		"Sample:SampleString": str,
	}).Section("Sample")
}

func newSampleBuilder(t *testing.T, section configx.Section) (*Collection, *Builder[sampleConfiguration]) {
	t.Helper()
	c := NewCollection()
	b := AddOptions[sampleConfiguration](c)
	require.NoError(t, Bind(b, section))
	ValidateWithMessage(b, noVowels, "SampleString can't contain vowels.")
	ValidateWithMessage(b, oneMeansOne, "SampleNumber must be 1 when SampleKey is 'one'")
	ValidateSchema(b, c.SchemaValidator())
	return c, b
}

func TestSlot_ValidValue(t *testing.T) {
	c, _ := newSampleBuilder(t, sampleSection("two", "5", "xyz"))

	v, err := MustGet[sampleConfiguration](c).Value()
	require.NoError(t, err)
	assert.Equal(t, sampleConfiguration{SampleKey: "two", SampleNumber: 5, SampleString: "xyz"}, v)
}

func TestSlot_SingleRuleFailure(t *testing.T) {
	c, _ := newSampleBuilder(t, sampleSection("one", "2", "xyz"))

	_, err := MustGet[sampleConfiguration](c).Value()
	var failure *ValidationFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, []string{"SampleNumber must be 1 when SampleKey is 'one'"}, failure.Failures)
	assert.Equal(t, "Sample", failure.Section)
	assert.Equal(t, coreerrors.CodeFailedPrecondition, coreerrors.CodeOf(err))
}

func TestSlot_AllRulesEvaluated(t *testing.T) {
	c, _ := newSampleBuilder(t, sampleSection("one", "11", "abc"))

	r := MustGet[sampleConfiguration](c).Current()
	assert.False(t, r.Valid())
	assert.Equal(t, []string{
		"SampleString can't contain vowels.",
		"SampleNumber must be 1 when SampleKey is 'one'",
		"The field SampleNumber must be less than or equal to 10.",
	}, r.Failures)
	assert.Equal(t, 11, r.Value.SampleNumber)
}

func TestSlot_SchemaMessages(t *testing.T) {
	c := NewCollection()
	b := AddOptions[sampleConfiguration](c)
	require.NoError(t, Bind(b, sampleSection("", "3", "")))
	ValidateSchema(b, nil)

	r := MustGet[sampleConfiguration](c).Current()
	assert.Equal(t, []string{"The SampleKey field is required."}, r.Failures)

	c2 := NewCollection()
	b2 := AddOptions[sampleConfiguration](c2)
	require.NoError(t, Bind(b2, sampleSection(strings.Repeat("k", 21), "3", "")))
	ValidateSchema(b2, nil)
	assert.Equal(t, []string{"The field SampleKey must have a maximum length of '20'."},
		MustGet[sampleConfiguration](c2).Current().Failures)
}

func TestValidate_DefaultMessage(t *testing.T) {
	c := NewCollection()
	b := AddOptions[sampleConfiguration](c)
	require.NoError(t, Bind(b, sampleSection("k", "1", "")))
	Validate(b, func(sampleConfiguration) bool { return false })
	ValidateWithMessage(b, func(sampleConfiguration) bool { return false }, "")

	assert.Equal(t, []string{DefaultFailureMessage, DefaultFailureMessage},
		MustGet[sampleConfiguration](c).Current().Failures)
}

func TestSlot_NoRulesNeverFails(t *testing.T) {
	c := NewCollection()
	b := AddOptions[sampleConfiguration](c)
	require.NoError(t, Bind(b, sampleSection("one", "99", "aeiou")))

	_, err := MustGet[sampleConfiguration](c).Value()
	assert.NoError(t, err)
	assert.NoError(t, c.ValidateOnStart(context.Background()))
}

func TestBind_AbsentSection(t *testing.T) {
	c := NewCollection()
	b := AddOptions[otherConfiguration](c)
	require.NoError(t, Bind(b, configx.FromMap(nil).Section("Other")))

	v, err := MustGet[otherConfiguration](c).Value()
	require.NoError(t, err)
	assert.Equal(t, "other", v.Name)
}

func TestBind_IncompatibleValue(t *testing.T) {
	c := NewCollection()
	b := AddOptions[sampleConfiguration](c)
	assert.Error(t, Bind(b, sampleSection("k", "not-a-number", "")))
}

func TestAddOptions_ReturnsExistingSlot(t *testing.T) {
	c := NewCollection()
	first := AddOptions[sampleConfiguration](c)
	second := AddOptions[sampleConfiguration](c)

	assert.Same(t, first.Slot(), second.Slot())
	assert.Same(t, c, first.Collection())
	assert.Len(t, c.Slots(), 1)
}

func TestCollection_ContainsAndSlots(t *testing.T) {
	c := NewCollection()
	assert.False(t, c.Contains(reflect.TypeOf(sampleConfiguration{})))

	ValidateOnStart(AddOptions[sampleConfiguration](c))
	b := AddOptions[otherConfiguration](c)
	require.NoError(t, Bind(b, configx.FromMap(nil).Section("Other")))
	Validate(b, func(otherConfiguration) bool { return true })

	assert.True(t, c.Contains(reflect.TypeOf(sampleConfiguration{})))
	assert.Equal(t, []SlotInfo{
		{Type: reflect.TypeOf(sampleConfiguration{}), Eager: true},
		{Type: reflect.TypeOf(otherConfiguration{}), Section: "Other", Rules: 1},
	}, c.Slots())
}

func TestGet_NotFound(t *testing.T) {
	c := NewCollection()
	_, err := Get[sampleConfiguration](c)
	require.Error(t, err)
	assert.True(t, coreerrors.IsCode(err, coreerrors.CodeNotFound))
	assert.Panics(t, func() { MustGet[sampleConfiguration](c) })
}

func TestCollection_ValidateOnStart(t *testing.T) {
	c, b := newSampleBuilder(t, sampleSection("one", "2", "xyz"))

	// Not flagged: reading would fail but startup does not check it.
	require.NoError(t, c.ValidateOnStart(context.Background()))

	ValidateOnStart(b)
	err := c.ValidateOnStart(context.Background())
	var failure *ValidationFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, reflect.TypeOf(sampleConfiguration{}).String(), failure.Type)
	assert.Equal(t, []string{"SampleNumber must be 1 when SampleKey is 'one'"}, failure.Failures)
}

func TestCollection_ValidateOnStart_Aggregates(t *testing.T) {
	c, b := newSampleBuilder(t, sampleSection("one", "2", "xyz"))
	ValidateOnStart(b)

	ob := AddOptions[otherConfiguration](c)
	require.NoError(t, Bind(ob, configx.FromMap(nil).Section("Other")))
	ValidateWithMessage(ob, func(otherConfiguration) bool { return false }, "other is wrong")
	ValidateOnStart(ob)

	err := c.ValidateOnStart(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SampleNumber must be 1 when SampleKey is 'one'")
	assert.Contains(t, err.Error(), "other is wrong")
}

func TestCollection_ValidateOnStart_Cancelled(t *testing.T) {
	c, b := newSampleBuilder(t, sampleSection("two", "2", "xyz"))
	ValidateOnStart(b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.ValidateOnStart(ctx), context.Canceled)
}

// fakeManager is a configx.Manager whose snapshot the test replaces.
type fakeManager struct {
	mu     sync.Mutex
	values map[string]string
	subs   []func(map[string]string)
}

func (m *fakeManager) Section(path string) configx.Section {
	m.mu.Lock()
	defer m.mu.Unlock()
	return configx.FromMap(m.values).Section(path)
}

func (m *fakeManager) Snapshot() map[string]string     { return m.values }
func (m *fakeManager) Value(key string) (string, bool) { v, ok := m.values[key]; return v, ok }
func (m *fakeManager) Bind(path string, target any) error {
	return configx.BindSection(m.Section(path), target)
}

func (m *fakeManager) OnUpdate(fn func(map[string]string)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
	return func() {}
}

func (m *fakeManager) set(values map[string]string) {
	m.mu.Lock()
	m.values = values
	subs := append([]func(map[string]string){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(values)
	}
}

type recordingObserver struct {
	mu        sync.Mutex
	validated map[bool]int
	reloaded  int
}

func (o *recordingObserver) SlotValidated(_ string, valid bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.validated[valid]++
}

func (o *recordingObserver) SlotReloaded(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reloaded++
}

func TestCollection_WatchReloads(t *testing.T) {
	mgr := &fakeManager{values: map[string]string{
		"sample.samplekey": "two", "sample.samplenumber": "5", "sample.samplestring": "xyz",
	}}
	observer := &recordingObserver{validated: make(map[bool]int)}

	c := NewCollection(WithObserver(observer))
	b := AddOptions[sampleConfiguration](c)
	require.NoError(t, Bind(b, mgr.Section("Sample")))
	ValidateWithMessage(b, oneMeansOne, "SampleNumber must be 1 when SampleKey is 'one'")
	unsubscribe := c.Watch(mgr)
	defer unsubscribe()

	slot := MustGet[sampleConfiguration](c)
	require.True(t, slot.Current().Valid())

	var changes []Result[sampleConfiguration]
	stop := slot.OnChange(func(r Result[sampleConfiguration]) {
		changes = append(changes, r)
	})

	mgr.set(map[string]string{
		"sample.samplekey": "one", "sample.samplenumber": "2", "sample.samplestring": "xyz",
	})

	require.Len(t, changes, 1)
	assert.False(t, changes[0].Valid())
	_, err := slot.Value()
	assert.Error(t, err)

	stop()
	mgr.set(map[string]string{
		"sample.samplekey": "one", "sample.samplenumber": "1", "sample.samplestring": "xyz",
	})
	assert.Len(t, changes, 1)
	_, err = slot.Value()
	assert.NoError(t, err)

	observer.mu.Lock()
	defer observer.mu.Unlock()
	assert.Equal(t, 2, observer.reloaded)
	assert.Equal(t, 2, observer.validated[true])
	assert.Equal(t, 1, observer.validated[false])
}

func TestSlot_ReloadBindingFailureIsReported(t *testing.T) {
	c := NewCollection()
	b := AddOptions[sampleConfiguration](c)
	require.NoError(t, Bind(b, sampleSection("k", "1", "")))
	c.UseProvider(configx.FromMap(map[string]string{"Sample:SampleNumber": "NaN"}))

	slot := MustGet[sampleConfiguration](c)
	slot.Reload()
	r := slot.Current()
	require.Len(t, r.Failures, 1)
	assert.Contains(t, r.Failures[0], "failed to bind section")
}

func TestSlot_ConcurrentReads(t *testing.T) {
	c, _ := newSampleBuilder(t, sampleSection("two", "5", "xyz"))
	slot := MustGet[sampleConfiguration](c)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%4 == 0 {
				slot.Reload()
			}
			_, err := slot.Value()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
