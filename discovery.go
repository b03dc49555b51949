package settingsx

import "reflect"

// Registration is a discovered settings type and the module it came from.
type Registration struct {
	Type   reflect.Type
	Module string

	entry *entry
}

// Discover returns the settings types registered in modules: struct types
// embedding Settings, in module order then registration order. A type found
// in several modules is returned once, from the first.
func Discover(modules ...*Module) []Registration {
	seen := make(map[reflect.Type]bool)
	var out []Registration
	for _, m := range modules {
		if m == nil {
			continue
		}
		for _, e := range m.snapshot() {
			if seen[e.typ] || !hasMarker(e.typ) {
				continue
			}
			seen[e.typ] = true
			out = append(out, Registration{Type: e.typ, Module: e.module, entry: e})
		}
	}
	return out
}
