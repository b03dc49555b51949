// Package optionsx provides typed, validated configuration slots.
//
// Overview:
//   - Responsibility: Hold one slot per settings type, bind it to a configuration
//     section and run attached validation rules on read, reload and startup
//   - Key Types: Collection, Builder[T], Slot[T], Result[T], ValidationFailure
//   - Concurrency Model: Collections and slots are safe for concurrent use;
//     validation rules may run on any goroutine and are not serialized
//   - Error Semantics: Registration helpers return errors for binding failures;
//     invalid values surface as *ValidationFailure or as a Result with failures
//
// Usage:
//
//	c := optionsx.NewCollection(optionsx.WithLogger(logger))
//	b := optionsx.AddOptions[SampleConfiguration](c)
//	if err := optionsx.Bind(b, mgr.Section("Sample")); err != nil { return err }
//	optionsx.ValidateSchema(b, validator.New())
//	optionsx.ValidateOnStart(b)
//	if err := c.ValidateOnStart(ctx); err != nil { return err }
package optionsx

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/settingsx/configx"
	"go.eggybyte.com/settingsx/core/errors"
	"go.eggybyte.com/settingsx/core/log"
	"go.eggybyte.com/settingsx/optionsx/internal"
)

// Observer receives slot lifecycle events, typically to record metrics.
type Observer interface {
	// SlotValidated is called each time a slot with rules computes a result.
	SlotValidated(settingsType string, valid bool)
	// SlotReloaded is called each time a slot is rebound after a configuration update.
	SlotReloaded(settingsType string)
}

type nopObserver struct{}

func (nopObserver) SlotValidated(string, bool) {}
func (nopObserver) SlotReloaded(string)        {}

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger used by the collection and its slots.
func WithLogger(logger log.Logger) Option {
	return func(c *Collection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the observer notified of slot validations and reloads.
func WithObserver(o Observer) Option {
	return func(c *Collection) {
		if o != nil {
			c.observer = o
		}
	}
}

// slotHandle is the type-erased view of a Slot[T] held by the collection.
type slotHandle interface {
	info() SlotInfo
	check() *ValidationFailure
	reload()
}

// SlotInfo describes a registered slot.
type SlotInfo struct {
	Type    reflect.Type // Settings type
	Section string       // Bound section path; empty when unbound
	Rules   int          // Number of attached rules
	Eager   bool         // Validated by ValidateOnStart
}

// Collection stores configuration slots keyed by settings type.
type Collection struct {
	container *internal.Container
	logger    log.Logger
	observer  Observer

	mu       sync.RWMutex
	slots    map[reflect.Type]slotHandle
	order    []reflect.Type
	provider configx.Provider
}

var validatorType = reflect.TypeOf((*validator.Validate)(nil))

// NewCollection creates an empty collection.
// The collection also provides a shared *validator.Validate, see SchemaValidator.
func NewCollection(opts ...Option) *Collection {
	c := &Collection{
		container: internal.NewContainer(),
		logger:    log.Nop(),
		observer:  nopObserver{},
		slots:     make(map[reflect.Type]slotHandle),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Fresh container, so this cannot collide.
	_ = c.container.Provide(func() *validator.Validate {
		return validator.New(validator.WithRequiredStructEnabled())
	})
	return c
}

// SchemaValidator returns the collection's shared struct-tag validator.
func (c *Collection) SchemaValidator() *validator.Validate {
	v, err := internal.Resolve[*validator.Validate](c.container, validatorType)
	if err != nil {
		// Provided in NewCollection with an infallible constructor.
		panic(fmt.Sprintf("optionsx: schema validator unavailable: %v", err))
	}
	return v
}

// Contains reports whether a slot exists for settingsType.
func (c *Collection) Contains(settingsType reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.slots[settingsType]
	return ok
}

// Slots describes the registered slots in registration order.
func (c *Collection) Slots() []SlotInfo {
	c.mu.RLock()
	handles := make([]slotHandle, 0, len(c.order))
	for _, t := range c.order {
		handles = append(handles, c.slots[t])
	}
	c.mu.RUnlock()

	out := make([]SlotInfo, 0, len(handles))
	for _, h := range handles {
		out = append(out, h.info())
	}
	return out
}

// UseProvider makes slots rebind from p on reload instead of the section
// captured when they were bound.
func (c *Collection) UseProvider(p configx.Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = p
}

// Watch uses m as the provider and reloads every slot after each update.
// The returned function stops the subscription.
func (c *Collection) Watch(m configx.Manager) (unsubscribe func()) {
	c.UseProvider(m)
	return m.OnUpdate(func(map[string]string) {
		c.ReloadAll()
	})
}

// ReloadAll rebinds every slot in registration order.
func (c *Collection) ReloadAll() {
	for _, h := range c.handles() {
		h.reload()
	}
}

// ValidateOnStart validates every slot flagged for eager validation.
// All flagged slots are checked. A single invalid slot yields its
// *ValidationFailure; several yield them joined, each reachable with errors.As.
func (c *Collection) ValidateOnStart(ctx context.Context) error {
	var failures []error
	for _, h := range c.handles() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !h.info().Eager {
			continue
		}
		if f := h.check(); f != nil {
			c.logger.Error(f, "settings validation failed",
				log.Str("type", f.Type),
				log.Str("section", f.Section),
				log.Int("failures", len(f.Failures)))
			failures = append(failures, f)
		}
	}

	switch len(failures) {
	case 0:
		return nil
	case 1:
		return failures[0]
	default:
		return errors.Join(failures...)
	}
}

func (c *Collection) handles() []slotHandle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]slotHandle, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.slots[t])
	}
	return out
}

func (c *Collection) currentProvider() configx.Provider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provider
}

// Get returns the slot for T.
func Get[T any](c *Collection) (*Slot[T], error) {
	key := typeOf[T]()
	if !c.Contains(key) {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("no settings slot registered for %s", key))
	}
	slot, err := internal.Resolve[*Slot[T]](c.container, key)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "optionsx.Get", err)
	}
	return slot, nil
}

// MustGet is like Get but panics if T has no slot.
func MustGet[T any](c *Collection) *Slot[T] {
	slot, err := Get[T](c)
	if err != nil {
		panic(err)
	}
	return slot
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
