package settingsx

import (
	"fmt"
	"reflect"
	"sync"
)

// Module is a named, ordered set of registered types.
type Module struct {
	name string

	mu      sync.RWMutex
	entries []*entry
	index   map[reflect.Type]*entry
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{name: name, index: make(map[reflect.Type]*entry)}
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// Types returns the registered types in registration order, marked or not.
func (m *Module) Types() []reflect.Type {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]reflect.Type, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.typ
	}
	return out
}

func (m *Module) snapshot() []*entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*entry(nil), m.entries...)
}

// marker is one Validator option: a method marked as a validator.
type marker struct {
	method  string
	message string
}

// entry is one registered type with its markers and operation table.
type entry struct {
	typ     reflect.Type
	module  string
	markers []marker
	table   *opTable
}

// RegisterOption configures a type registration.
type RegisterOption func(*entry)

// Validator marks method as a validator of the registered type. The method
// must be exported and declared on the value type as func() bool, so that
// the method expression T.Method is a func(T) bool. An empty message reports
// DefaultFailureMessage.
func Validator(method, message string) RegisterOption {
	return func(e *entry) {
		e.markers = append(e.markers, marker{method: method, message: message})
	}
}

// Register adds T to m and returns m. It records the typed operations for T
// so registration can later resolve them without knowing T statically.
// Register panics if T is already registered in m.
func Register[T any](m *Module, opts ...RegisterOption) *Module {
	t := reflect.TypeOf((*T)(nil)).Elem()
	e := &entry{typ: t, module: m.name, table: tableFor[T]()}
	for _, opt := range opts {
		opt(e)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.index[t]; dup {
		panic(fmt.Sprintf("settingsx: Register called twice for %s in module %q", t, m.name))
	}
	m.index[t] = e
	m.entries = append(m.entries, e)
	return m
}

// ModuleSet is an ordered set of modules addressed by name.
type ModuleSet struct {
	mu      sync.RWMutex
	modules []*Module
	byName  map[string]*Module
}

// Default is the process-wide module set used by RegisterAllDiscovered.
var Default = &ModuleSet{}

// Module returns the module called name, creating it on first use.
func (s *ModuleSet) Module(name string) *Module {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.byName[name]; ok {
		return m
	}
	m := NewModule(name)
	s.addLocked(m)
	return m
}

// Add appends m to the set. Adding a module already in the set is a no-op.
func (s *ModuleSet) Add(m *Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.modules {
		if existing == m {
			return
		}
	}
	s.addLocked(m)
}

func (s *ModuleSet) addLocked(m *Module) {
	if s.byName == nil {
		s.byName = make(map[string]*Module)
	}
	if _, taken := s.byName[m.name]; !taken {
		s.byName[m.name] = m
	}
	s.modules = append(s.modules, m)
}

// Modules returns the modules in insertion order.
func (s *ModuleSet) Modules() []*Module {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Module(nil), s.modules...)
}
