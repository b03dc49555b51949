package optionsx

import (
	"reflect"
	"sync"

	"go.eggybyte.com/settingsx/configx"
	"go.eggybyte.com/settingsx/core/log"
)

// Result is the outcome of binding and validating one configuration snapshot.
type Result[T any] struct {
	Value    T        // Bound value; populated even when invalid
	Failures []string // Failed rule messages in rule order
}

// Valid reports whether every rule passed.
func (r Result[T]) Valid() bool {
	return len(r.Failures) == 0
}

// rule returns the failure messages for v, or none when v passes.
type rule[T any] func(v T) []string

// Slot holds the bound and validated value of one settings type.
// The result of a snapshot is computed on first read and cached until reload.
type Slot[T any] struct {
	collection   *Collection
	settingsType reflect.Type
	logger       log.Logger

	mu      sync.RWMutex
	path    string
	bound   configx.Section
	rules   []rule[T]
	eager   bool
	cached  *Result[T]
	subs    map[int]func(Result[T])
	nextSub int
}

func newSlot[T any](c *Collection) *Slot[T] {
	t := typeOf[T]()
	return &Slot[T]{
		collection:   c,
		settingsType: t,
		logger:       c.logger.With(log.Str("type", t.String())),
		subs:         make(map[int]func(Result[T])),
	}
}

// Value returns the current value, or a *ValidationFailure when a rule failed.
// The value is returned alongside the failure.
func (s *Slot[T]) Value() (T, error) {
	r := s.Current()
	if !r.Valid() {
		return r.Value, s.failure(r.Failures)
	}
	return r.Value, nil
}

// Current returns the current result without turning failures into an error.
func (s *Slot[T]) Current() Result[T] {
	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return *cached
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		r := s.compute(s.source())
		s.cached = &r
	}
	return *s.cached
}

// OnChange registers fn to run with the new result after every reload.
// The returned function removes the registration.
func (s *Slot[T]) OnChange(fn func(Result[T])) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Reload rebinds the slot from its section source, re-runs its rules and
// notifies OnChange subscribers.
func (s *Slot[T]) Reload() {
	s.mu.Lock()
	r := s.compute(s.source())
	s.cached = &r
	subs := make([]func(Result[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.collection.observer.SlotReloaded(s.settingsType.String())
	if !r.Valid() {
		s.logger.Warn("settings invalid after reload", log.Int("failures", len(r.Failures)))
	}
	for _, fn := range subs {
		fn(r)
	}
}

// source returns the section to bind; callers hold s.mu.
func (s *Slot[T]) source() configx.Section {
	if s.path != "" {
		if p := s.collection.currentProvider(); p != nil {
			return p.Section(s.path)
		}
	}
	return s.bound
}

// compute binds section and runs every rule; callers hold s.mu.
// A snapshot that no longer binds is reported as a failure rather than an error.
func (s *Slot[T]) compute(section configx.Section) Result[T] {
	var r Result[T]
	if err := configx.BindSection(section, &r.Value); err != nil {
		r.Failures = []string{err.Error()}
		s.collection.observer.SlotValidated(s.settingsType.String(), false)
		return r
	}
	if len(s.rules) == 0 {
		return r
	}
	for _, check := range s.rules {
		r.Failures = append(r.Failures, check(r.Value)...)
	}
	s.collection.observer.SlotValidated(s.settingsType.String(), r.Valid())
	return r
}

func (s *Slot[T]) failure(failures []string) *ValidationFailure {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &ValidationFailure{
		Type:     s.settingsType.String(),
		Section:  s.path,
		Failures: append([]string(nil), failures...),
	}
}

func (s *Slot[T]) info() SlotInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SlotInfo{
		Type:    s.settingsType,
		Section: s.path,
		Rules:   len(s.rules),
		Eager:   s.eager,
	}
}

func (s *Slot[T]) check() *ValidationFailure {
	r := s.Current()
	if r.Valid() {
		return nil
	}
	return s.failure(r.Failures)
}

func (s *Slot[T]) reload() {
	s.Reload()
}

// invalidate drops the cached result after the slot definition changed.
func (s *Slot[T]) invalidate() {
	s.cached = nil
}
