package settingsx

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.eggybyte.com/settingsx/optionsx"
)

// Operation is a logical registration step backed by a generic host operation.
type Operation string

// Operations performed by the registration pipeline.
const (
	OpCreateSlot                 Operation = "CreateSlot"
	OpBindSection                Operation = "BindSection"
	OpAttachValidator            Operation = "AttachValidator"
	OpAttachValidatorWithMessage Operation = "AttachValidatorWithMessage"
	OpAttachSchemaValidation     Operation = "AttachSchemaValidation"
	OpAttachEagerValidation      Operation = "AttachEagerValidation"
)

// Operations lists every operation in pipeline order.
var Operations = []Operation{
	OpCreateSlot,
	OpBindSection,
	OpAttachValidator,
	OpAttachValidatorWithMessage,
	OpAttachSchemaValidation,
	OpAttachEagerValidation,
}

// hostNames maps each operation to the optionsx function implementing it.
var hostNames = map[Operation]string{
	OpCreateSlot:                 "AddOptions",
	OpBindSection:                "Bind",
	OpAttachValidator:            "Validate",
	OpAttachValidatorWithMessage: "ValidateWithMessage",
	OpAttachSchemaValidation:     "ValidateSchema",
	OpAttachEagerValidation:      "ValidateOnStart",
}

// opTable holds the optionsx operations instantiated for one type, together
// with the concrete type of every parameter kind.
type opTable struct {
	funcs map[Operation]reflect.Value
	kinds map[optionsx.ParamKind]reflect.Type
}

// tables is the dispatch table keyed by type identity, filled by Register.
var tables sync.Map // reflect.Type -> *opTable

func tableFor[T any]() *opTable {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if existing, ok := tables.Load(t); ok {
		return existing.(*opTable)
	}

	table := &opTable{
		funcs: map[Operation]reflect.Value{
			OpCreateSlot:                 reflect.ValueOf(optionsx.AddOptions[T]),
			OpBindSection:                reflect.ValueOf(optionsx.Bind[T]),
			OpAttachValidator:            reflect.ValueOf(optionsx.Validate[T]),
			OpAttachValidatorWithMessage: reflect.ValueOf(optionsx.ValidateWithMessage[T]),
			OpAttachSchemaValidation:     reflect.ValueOf(optionsx.ValidateSchema[T]),
			OpAttachEagerValidation:      reflect.ValueOf(optionsx.ValidateOnStart[T]),
		},
		kinds: optionsx.KindTypes[T](),
	}
	actual, _ := tables.LoadOrStore(t, table)
	return actual.(*opTable)
}

func lookupTable(t reflect.Type) (*opTable, bool) {
	v, ok := tables.Load(t)
	if !ok {
		return nil, false
	}
	return v.(*opTable), true
}

// Handle is an operation resolved for one settings type.
type Handle struct {
	op  Operation
	typ reflect.Type
	fn  reflect.Value
}

// Operation returns the logical operation.
func (h *Handle) Operation() Operation { return h.op }

// Type returns the settings type the handle is bound to.
func (h *Handle) Type() reflect.Type { return h.typ }

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Invoke calls the operation. A nil argument passes the parameter's zero
// value. The first non-error result is returned, or nil when there is none;
// a non-nil error result is returned as the error.
func (h *Handle) Invoke(args ...any) (any, error) {
	ft := h.fn.Type()
	if len(args) != ft.NumIn() {
		return nil, fmt.Errorf("%s for %s takes %d arguments, got %d", h.op, h.typ, ft.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := ft.In(i)
		if arg == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(want) {
			return nil, fmt.Errorf("%s for %s: argument %d is %s, want %s", h.op, h.typ, i, v.Type(), want)
		}
		in[i] = v
	}

	var (
		result any
		err    error
	)
	for i, out := range h.fn.Call(in) {
		if ft.Out(i) == errorType {
			if !out.IsNil() {
				err = out.Interface().(error)
			}
			continue
		}
		if result == nil {
			result = out.Interface()
		}
	}
	return result, err
}

type handleKey struct {
	op  Operation
	typ reflect.Type
}

// Catalog resolves operations against a host's published generic signatures
// and caches the handles per operation and type.
type Catalog struct {
	signatures []optionsx.Signature

	mu    sync.Mutex
	cache map[handleKey]*Handle
}

// NewCatalog creates a catalog over signatures; nil means optionsx.Catalog().
func NewCatalog(signatures []optionsx.Signature) *Catalog {
	if signatures == nil {
		signatures = optionsx.Catalog()
	}
	return &Catalog{
		signatures: signatures,
		cache:      make(map[handleKey]*Handle),
	}
}

// Resolve returns the handle of op for t. The host signature with op's name
// and a single type parameter must match the instantiated operation for t
// parameter by parameter, otherwise the result is an *OperationResolutionError.
func (c *Catalog) Resolve(op Operation, t reflect.Type) (*Handle, error) {
	key := handleKey{op: op, typ: t}

	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.cache[key]; ok {
		return h, nil
	}

	fail := func(format string, args ...any) error {
		return &OperationResolutionError{Operation: op, Type: t, Reason: fmt.Sprintf(format, args...)}
	}

	name, ok := hostNames[op]
	if !ok {
		return nil, fail("unknown operation")
	}
	table, ok := lookupTable(t)
	if !ok {
		return nil, fail("type was never registered")
	}
	fn := table.funcs[op]

	var tried []string
	for _, sig := range c.signatures {
		if sig.Name != name || sig.TypeParams != 1 {
			continue
		}
		if signatureMatches(sig, fn.Type(), table.kinds) {
			h := &Handle{op: op, typ: t, fn: fn}
			c.cache[key] = h
			return h, nil
		}
		tried = append(tried, sig.String())
	}

	if len(tried) == 0 {
		return nil, fail("host publishes no generic operation %s with one type parameter", name)
	}
	return nil, fail("no host signature matches %s; tried %s", fn.Type(), strings.Join(tried, ", "))
}

func signatureMatches(sig optionsx.Signature, ft reflect.Type, kinds map[optionsx.ParamKind]reflect.Type) bool {
	if ft.IsVariadic() || ft.NumIn() != len(sig.In) || ft.NumOut() != len(sig.Out) {
		return false
	}
	for i, k := range sig.In {
		if kinds[k] != ft.In(i) {
			return false
		}
	}
	for i, k := range sig.Out {
		if kinds[k] != ft.Out(i) {
			return false
		}
	}
	return true
}
