package internal

import (
	"fmt"
	"sort"
	"strings"
)

// KeyDelimiter separates levels of a normalized configuration key.
const KeyDelimiter = "."

// NormalizeKey lower-cases key and rewrites the accepted level separators
// (":" and "__") to KeyDelimiter.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, "__", KeyDelimiter)
	key = strings.ReplaceAll(key, ":", KeyDelimiter)
	parts := strings.Split(key, KeyDelimiter)
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, KeyDelimiter)
}

// NormalizeMap returns a copy of m with normalized keys. Empty keys are dropped.
func NormalizeMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if nk := NormalizeKey(k); nk != "" {
			out[nk] = v
		}
	}
	return out
}

// Flatten writes value into out under prefix, descending into maps and slices.
func Flatten(prefix string, value any, out map[string]string) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + KeyDelimiter + k
	}

	switch v := value.(type) {
	case map[string]any:
		for k, child := range v {
			Flatten(join(k), child, out)
		}
	case map[any]any:
		for k, child := range v {
			Flatten(join(fmt.Sprint(k)), child, out)
		}
	case []any:
		for i, child := range v {
			Flatten(join(fmt.Sprint(i)), child, out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		if prefix != "" {
			out[prefix] = fmt.Sprint(v)
		}
	}
}

// Section is the subtree of a configuration snapshot rooted at Path.
// Keys in Values are normalized and relative to Path.
type Section struct {
	Path   string
	Values map[string]string
}

// SectionOf extracts the subtree under path from a normalized snapshot.
// An absent section yields an empty Section, never an error.
func SectionOf(snapshot map[string]string, path string) Section {
	norm := NormalizeKey(path)
	values := make(map[string]string)
	prefix := norm + KeyDelimiter
	for k, v := range snapshot {
		switch {
		case norm == "":
			values[k] = v
		case strings.HasPrefix(k, prefix):
			values[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return Section{Path: path, Values: values}
}

// Exists reports whether the section holds any key.
func (s Section) Exists() bool {
	return len(s.Values) > 0
}

// Get returns the value stored under key relative to the section.
func (s Section) Get(key string) (string, bool) {
	v, ok := s.Values[NormalizeKey(key)]
	return v, ok
}

// Keys returns the section keys in sorted order.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Tree expands the flat section into nested maps keyed by level.
// A key that is both a leaf and a parent keeps the nested form.
func (s Section) Tree() map[string]any {
	root := make(map[string]any)
	for _, key := range s.Keys() {
		parts := strings.Split(key, KeyDelimiter)
		node := root
		for i, part := range parts {
			if i == len(parts)-1 {
				if _, nested := node[part].(map[string]any); !nested {
					node[part] = s.Values[key]
				}
				break
			}
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
	}
	return root
}
