package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.eggybyte.com/settingsx/core/log"
)

// chanSource is a test source whose updates are pushed by the test.
type chanSource struct {
	initial map[string]string
	updates chan map[string]string
}

func newChanSource(initial map[string]string) *chanSource {
	return &chanSource{initial: initial, updates: make(chan map[string]string, 4)}
}

func (s *chanSource) Load(ctx context.Context) (map[string]string, error) {
	return copyMap(s.initial), nil
}

func (s *chanSource) Watch(ctx context.Context) (<-chan map[string]string, error) {
	return s.updates, nil
}

func TestNewManager_Success(t *testing.T) {
	manager, err := NewManager(log.Nop(), []Source{NewMapSource(nil)}, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, manager.sources, 1)
	assert.Equal(t, 100*time.Millisecond, manager.debounce)
}

func TestNewManager_NilLogger(t *testing.T) {
	manager, err := NewManager(nil, []Source{NewMapSource(nil)}, 0)
	require.Error(t, err)
	assert.Nil(t, manager)
	assert.Equal(t, "logger is required", err.Error())
}

func TestNewManager_EmptySources(t *testing.T) {
	manager, err := NewManager(log.Nop(), nil, 0)
	require.Error(t, err)
	assert.Nil(t, manager)
}

func TestNewManager_DefaultDebounce(t *testing.T) {
	manager, err := NewManager(log.Nop(), []Source{NewMapSource(nil)}, 0)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, manager.debounce)
}

func TestManagerImpl_MergeOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager, err := NewManager(log.Nop(), []Source{
		NewMapSource(map[string]string{"Sample:SampleKey": "one", "Sample:SampleNumber": "2"}),
		NewMapSource(map[string]string{"SAMPLE__SAMPLEKEY": "two", "sample.samplestring": ""}),
		NewMapSource(map[string]string{"sample.samplenumber": ""}),
	}, 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, manager.Initialize(ctx))

	assert.Equal(t, map[string]string{
		"sample.samplekey":    "two",
		"sample.samplenumber": "2",
		"sample.samplestring": "",
	}, manager.Snapshot())

	v, ok := manager.Value("Sample:SampleKey")
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	_, ok = manager.Value("missing")
	assert.False(t, ok)
}

func TestManagerImpl_Section(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager, err := NewManager(log.Nop(), []Source{
		NewMapSource(map[string]string{"sample.samplekey": "one", "other.key": "x"}),
	}, 0)
	require.NoError(t, err)
	require.NoError(t, manager.Initialize(ctx))

	section := manager.Section("Sample")
	assert.True(t, section.Exists())
	assert.Equal(t, map[string]string{"samplekey": "one"}, section.Values)

	assert.False(t, manager.Section("Absent").Exists())
}

func TestManagerImpl_OnUpdate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	base := newChanSource(map[string]string{"sample.samplekey": "one"})
	overlay := newChanSource(map[string]string{"sample.samplenumber": "3"})

	manager, err := NewManager(log.Nop(), []Source{base, overlay}, 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, manager.Initialize(ctx))

	var (
		mu       sync.Mutex
		received []map[string]string
	)
	unsubscribe := manager.OnUpdate(func(snapshot map[string]string) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, snapshot)
	})

	overlay.updates <- map[string]string{"Sample:SampleNumber": "7"}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	got := received[0]
	mu.Unlock()
	// The base source keeps its cached snapshot; only the overlay changed.
	assert.Equal(t, map[string]string{
		"sample.samplekey":    "one",
		"sample.samplenumber": "7",
	}, got)

	unsubscribe()
	base.updates <- map[string]string{"sample.samplekey": "two"}
	require.Eventually(t, func() bool {
		v, _ := manager.Value("sample.samplekey")
		return v == "two"
	}, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Len(t, received, 1)
	mu.Unlock()
}

func TestManagerImpl_Debounce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := newChanSource(map[string]string{"k": "0"})
	manager, err := NewManager(log.Nop(), []Source{src}, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, manager.Initialize(ctx))

	var (
		mu    sync.Mutex
		calls int
	)
	manager.OnUpdate(func(map[string]string) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	src.updates <- map[string]string{"k": "1"}
	src.updates <- map[string]string{"k": "2"}
	src.updates <- map[string]string{"k": "3"}

	require.Eventually(t, func() bool {
		v, _ := manager.Value("k")
		return v == "3"
	}, time.Second, 5*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}
