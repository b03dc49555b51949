package internal

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// TagName is the struct tag used to rename a bound field.
const TagName = "config"

// BindSection decodes s into target, which must be a non-nil pointer to struct.
// Field names match keys case-insensitively. A field whose key is absent takes
// its `default` tag value; otherwise it keeps whatever target already holds.
func BindSection(s Section, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a non-nil pointer to struct, got %T", target)
	}

	input := s.Tree()
	applyDefaults(input, rv.Elem().Type())

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			indexedMapToSliceHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
		Squash:           true,
		TagName:          TagName,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to bind section %q: %w", s.Path, err)
	}
	return nil
}

// applyDefaults fills missing keys of tree from `default` tags on t.
func applyDefaults(tree map[string]any, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		if field.Anonymous && ft.Kind() == reflect.Struct {
			applyDefaults(tree, ft)
			continue
		}

		key := fieldKey(field)
		if key == "-" {
			continue
		}

		if ft.Kind() == reflect.Struct && field.Tag.Get("default") == "" {
			child, ok := tree[key].(map[string]any)
			if !ok {
				if _, leaf := tree[key]; leaf {
					continue
				}
				child = make(map[string]any)
			}
			applyDefaults(child, ft)
			if len(child) > 0 {
				tree[key] = child
			}
			continue
		}

		def, ok := field.Tag.Lookup("default")
		if !ok {
			continue
		}
		if _, present := tree[key]; !present {
			tree[key] = def
		}
	}
}

func fieldKey(field reflect.StructField) string {
	if tag := field.Tag.Get(TagName); tag != "" {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			return NormalizeKey(name)
		}
	}
	return strings.ToLower(field.Name)
}

// indexedMapToSliceHook turns {"0": a, "1": b} into [a, b] for slice and
// array targets, which is how flattened list entries come back from Tree.
func indexedMapToSliceHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Slice && to.Kind() != reflect.Array {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}

	indexes := make([]int, 0, len(m))
	for k := range m {
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 {
			return data, nil
		}
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)

	out := make([]any, 0, len(indexes))
	for _, n := range indexes {
		out = append(out, m[strconv.Itoa(n)])
	}
	return out, nil
}
