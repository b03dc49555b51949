package optionsx

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/settingsx/configx"
	"go.eggybyte.com/settingsx/core/log"
)

// DefaultFailureMessage is reported by a predicate rule attached without a message.
const DefaultFailureMessage = "A validation error has occurred."

// Builder configures the slot of one settings type.
type Builder[T any] struct {
	collection *Collection
	slot       *Slot[T]
}

// Collection returns the collection the slot belongs to.
func (b *Builder[T]) Collection() *Collection {
	return b.collection
}

// Slot returns the slot being configured.
func (b *Builder[T]) Slot() *Slot[T] {
	return b.slot
}

// AddOptions creates the slot for T in c and returns its builder.
// Calling it again for the same T returns a builder for the existing slot.
func AddOptions[T any](c *Collection) *Builder[T] {
	key := typeOf[T]()

	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.slots[key]; ok {
		return &Builder[T]{collection: c, slot: h.(*Slot[T])}
	}

	slot := newSlot[T](c)
	if err := c.container.ProvideKeyed(key, func() *Slot[T] { return slot }); err != nil {
		// The slots map and the container are updated together under c.mu.
		panic(fmt.Sprintf("optionsx: inconsistent collection for %s: %v", key, err))
	}
	c.slots[key] = slot
	c.order = append(c.order, key)

	c.logger.Debug("settings slot created", log.Str("type", key.String()))
	return &Builder[T]{collection: c, slot: slot}
}

// Bind binds the slot to section. The section is decoded once immediately so
// that values which cannot be mapped onto T are reported here. An absent
// section is not an error: T keeps its zero and `default` tag values.
func Bind[T any](b *Builder[T], section configx.Section) error {
	var probe T
	if err := configx.BindSection(section, &probe); err != nil {
		return err
	}

	s := b.slot
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = section.Path
	s.bound = section
	s.invalidate()
	return nil
}

// Validate attaches a predicate rule reported with DefaultFailureMessage.
func Validate[T any](b *Builder[T], predicate func(T) bool) *Builder[T] {
	return ValidateWithMessage(b, predicate, DefaultFailureMessage)
}

// ValidateWithMessage attaches a predicate rule reported with message when it
// returns false. An empty message falls back to DefaultFailureMessage.
func ValidateWithMessage[T any](b *Builder[T], predicate func(T) bool, message string) *Builder[T] {
	if message == "" {
		message = DefaultFailureMessage
	}
	b.addRule(func(v T) []string {
		if predicate(v) {
			return nil
		}
		return []string{message}
	})
	return b
}

// ValidateSchema attaches a rule that checks `validate` struct tags with v.
// Every failing field contributes one message.
func ValidateSchema[T any](b *Builder[T], v *validator.Validate) *Builder[T] {
	if v == nil {
		v = b.collection.SchemaValidator()
	}
	b.addRule(func(value T) []string {
		return schemaFailures(v, value)
	})
	return b
}

// ValidateOnStart flags the slot for Collection.ValidateOnStart.
func ValidateOnStart[T any](b *Builder[T]) *Builder[T] {
	s := b.slot
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eager = true
	return b
}

func (b *Builder[T]) addRule(r rule[T]) {
	s := b.slot
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, r)
	s.invalidate()
}

func schemaFailures(v *validator.Validate, value any) []string {
	err := v.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fieldMessage(fe))
	}
	return out
}

// fieldMessage renders a field error the way annotation validators phrase them.
func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "max":
		if isLengthKind(fe) {
			return fmt.Sprintf("The field %s must have a maximum length of '%s'.", field, fe.Param())
		}
		return fmt.Sprintf("The field %s must be at most %s.", field, fe.Param())
	case "min":
		if isLengthKind(fe) {
			return fmt.Sprintf("The field %s must have a minimum length of '%s'.", field, fe.Param())
		}
		return fmt.Sprintf("The field %s must be at least %s.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("The field %s must be greater than or equal to %s.", field, fe.Param())
	case "lte":
		return fmt.Sprintf("The field %s must be less than or equal to %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The field %s must be one of [%s].", field, fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("The field %s failed the '%s=%s' rule.", field, fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("The field %s failed the '%s' rule.", field, fe.Tag())
	}
}

func isLengthKind(fe validator.FieldError) bool {
	switch strings.ToLower(fe.Kind().String()) {
	case "string", "slice", "map", "array":
		return true
	}
	return false
}
