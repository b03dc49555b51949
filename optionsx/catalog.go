package optionsx

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/settingsx/configx"
)

// ParamKind is a parameter or result shape in a generic operation signature.
type ParamKind int

// Parameter kinds. KindSettings stands for the type parameter T itself.
const (
	KindSettings   ParamKind = iota // T
	KindBuilder                     // *Builder[T]
	KindPredicate                   // func(T) bool
	KindCollection                  // *Collection
	KindSection                     // configx.Section
	KindValidator                   // *validator.Validate
	KindString                      // string
	KindError                       // error
)

var kindNames = map[ParamKind]string{
	KindSettings:   "T",
	KindBuilder:    "*Builder[T]",
	KindPredicate:  "func(T) bool",
	KindCollection: "*Collection",
	KindSection:    "configx.Section",
	KindValidator:  "*validator.Validate",
	KindString:     "string",
	KindError:      "error",
}

// String returns the Go spelling of the kind.
func (k ParamKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Signature describes one generic operation exported by this package.
type Signature struct {
	Name       string      // Function name
	TypeParams int         // Number of type parameters
	In         []ParamKind // Parameter kinds in order
	Out        []ParamKind // Result kinds in order
}

// String renders the signature in Go syntax.
func (s Signature) String() string {
	join := func(kinds []ParamKind) string {
		parts := make([]string, len(kinds))
		for i, k := range kinds {
			parts[i] = k.String()
		}
		return strings.Join(parts, ", ")
	}
	out := join(s.Out)
	if len(s.Out) > 1 {
		out = "(" + out + ")"
	}
	return strings.TrimSpace(s.Name + "[T any](" + join(s.In) + ") " + out)
}

// Catalog lists the generic operations of this package with their shapes.
func Catalog() []Signature {
	return []Signature{
		{Name: "AddOptions", TypeParams: 1, In: []ParamKind{KindCollection}, Out: []ParamKind{KindBuilder}},
		{Name: "Bind", TypeParams: 1, In: []ParamKind{KindBuilder, KindSection}, Out: []ParamKind{KindError}},
		{Name: "Validate", TypeParams: 1, In: []ParamKind{KindBuilder, KindPredicate}, Out: []ParamKind{KindBuilder}},
		{Name: "ValidateWithMessage", TypeParams: 1, In: []ParamKind{KindBuilder, KindPredicate, KindString}, Out: []ParamKind{KindBuilder}},
		{Name: "ValidateSchema", TypeParams: 1, In: []ParamKind{KindBuilder, KindValidator}, Out: []ParamKind{KindBuilder}},
		{Name: "ValidateOnStart", TypeParams: 1, In: []ParamKind{KindBuilder}, Out: []ParamKind{KindBuilder}},
	}
}

// KindTypes returns the concrete type of every kind with T substituted.
func KindTypes[T any]() map[ParamKind]reflect.Type {
	return map[ParamKind]reflect.Type{
		KindSettings:   typeOf[T](),
		KindBuilder:    reflect.TypeOf((*Builder[T])(nil)),
		KindPredicate:  reflect.TypeOf((func(T) bool)(nil)),
		KindCollection: reflect.TypeOf((*Collection)(nil)),
		KindSection:    reflect.TypeOf(configx.Section{}),
		KindValidator:  reflect.TypeOf((*validator.Validate)(nil)),
		KindString:     reflect.TypeOf(""),
		KindError:      reflect.TypeOf((*error)(nil)).Elem(),
	}
}
