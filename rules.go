package settingsx

import (
	"fmt"
	"reflect"
	"runtime"

	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/settingsx/optionsx"
)

// RuleKind tells custom predicate rules from the schema rule.
type RuleKind int

const (
	// RuleCustom is a validator method declared on the settings type.
	RuleCustom RuleKind = iota
	// RuleSchema checks the `validate` struct tags of all fields.
	RuleSchema
)

func (k RuleKind) String() string {
	if k == RuleSchema {
		return "schema"
	}
	return "custom"
}

// Rule is one validation rule of a settings type.
type Rule struct {
	Name      string   // Method name, or "schema"
	Message   string   // Failure message; empty for the schema rule
	Kind      RuleKind // Source of the rule
	Predicate any      // func(T) bool for custom rules; nil for the schema rule

	customMessage bool               // Message was given explicitly
	schema        *validator.Validate // Schema validator; nil means the collection's own
}

// operation returns the host operation that attaches the rule.
func (r Rule) operation() Operation {
	switch {
	case r.Kind == RuleSchema:
		return OpAttachSchemaValidation
	case r.customMessage:
		return OpAttachValidatorWithMessage
	default:
		return OpAttachValidator
	}
}

// args returns the arguments the rule's operation takes after the builder.
func (r Rule) args() []any {
	switch {
	case r.Kind == RuleSchema:
		// A nil validator makes the host fall back to the collection's own.
		if r.schema == nil {
			return []any{nil}
		}
		return []any{r.schema}
	case r.customMessage:
		return []any{r.Predicate, r.Message}
	default:
		return []any{r.Predicate}
	}
}

// ExtractRules returns the custom rules of a discovered registration in
// marker order. A method marked twice is an *AmbiguousValidatorError; a
// marked method that is missing, promoted from an embedded field, declared on
// the pointer type or not shaped func(T) bool is an *InvalidValidatorShapeError.
func ExtractRules(r Registration) ([]Rule, error) {
	t := r.Type
	e := r.entry

	seen := make(map[string]bool, len(e.markers))
	for _, m := range e.markers {
		if seen[m.method] {
			return nil, &AmbiguousValidatorError{Type: t, Method: m.method}
		}
		seen[m.method] = true
	}

	rules := make([]Rule, 0, len(e.markers))
	for _, m := range e.markers {
		method, err := validatorMethod(t, m.method)
		if err != nil {
			return nil, err
		}

		if want := e.table.kinds[optionsx.KindPredicate]; method.Type != want {
			return nil, &InvalidValidatorShapeError{
				Type:   t,
				Method: m.method,
				Reason: fmt.Sprintf("has shape %s, want %s", method.Type, want),
			}
		}

		message := m.message
		if message == "" {
			message = DefaultFailureMessage
		}
		rules = append(rules, Rule{
			Name:          m.method,
			Message:       message,
			Kind:          RuleCustom,
			Predicate:     method.Func.Interface(),
			customMessage: m.message != "",
		})
	}
	return rules, nil
}

// validatorMethod finds name on t's value method set, rejecting methods that
// t only gets through embedding. A method declared on t shadows embedded ones.
func validatorMethod(t reflect.Type, name string) (reflect.Method, error) {
	shapeErr := func(reason string) error {
		return &InvalidValidatorShapeError{Type: t, Method: name, Reason: reason}
	}

	method, ok := t.MethodByName(name)
	if !ok {
		if _, onPtr := reflect.PointerTo(t).MethodByName(name); onPtr {
			return reflect.Method{}, shapeErr("has a pointer receiver; declare it on the value type")
		}
		return reflect.Method{}, shapeErr("no exported method with this name")
	}

	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.Anonymous {
				continue
			}
			if providesMethod(f.Type, name) && !declaredInSource(method.Func) {
				return reflect.Method{}, shapeErr(fmt.Sprintf("is promoted from embedded %s", f.Type))
			}
		}
	}
	return method, nil
}

func providesMethod(t reflect.Type, name string) bool {
	if _, ok := t.MethodByName(name); ok {
		return true
	}
	if t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface {
		_, ok := reflect.PointerTo(t).MethodByName(name)
		return ok
	}
	return false
}

// declaredInSource reports whether fn has a body written in source rather
// than a wrapper the compiler generates for a promoted method. The outermost
// frame is checked so that an inlined callee is not mistaken for the wrapper.
func declaredInSource(fn reflect.Value) bool {
	frames := runtime.CallersFrames([]uintptr{fn.Pointer() + 1})
	var outer runtime.Frame
	for {
		frame, more := frames.Next()
		outer = frame
		if !more {
			break
		}
	}
	return outer.File != "<autogenerated>"
}

// schemaRule is the rule checking `validate` struct tags with v, or with the
// collection's validator when v is nil.
func schemaRule(v *validator.Validate) Rule {
	return Rule{Name: "schema", Kind: RuleSchema, schema: v}
}
