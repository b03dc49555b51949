// Package internal provides the reflect-keyed container backing optionsx collections.
package internal

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrAlreadyProvided is returned when a key already has a constructor.
var ErrAlreadyProvided = errors.New("already provided")

// ErrNotProvided is returned when a key has no constructor.
var ErrNotProvided = errors.New("not provided")

// Container is a small dependency injection container keyed by reflect.Type.
// Instances are built lazily on first Get and cached; constructor parameters
// are resolved from the container by their type.
type Container struct {
	mu           sync.RWMutex
	constructors map[reflect.Type]reflect.Value
	instances    map[reflect.Type]reflect.Value
	building     map[reflect.Type]bool
	order        []reflect.Type
}

// NewContainer creates a new container.
func NewContainer() *Container {
	return &Container{
		constructors: make(map[reflect.Type]reflect.Value),
		instances:    make(map[reflect.Type]reflect.Value),
		building:     make(map[reflect.Type]bool),
	}
}

// Provide registers a constructor keyed by its first return type.
func (c *Container) Provide(constructor any) error {
	fn, err := checkConstructor(constructor)
	if err != nil {
		return err
	}
	return c.provide(fn.Type().Out(0), fn)
}

// ProvideKeyed registers a constructor under an explicit key, which need not
// match the return type. Parameters are resolved by their type, so a keyed
// entry is injectable only when its key is that parameter type.
func (c *Container) ProvideKeyed(key reflect.Type, constructor any) error {
	if key == nil {
		return fmt.Errorf("ProvideKeyed: key must not be nil")
	}
	fn, err := checkConstructor(constructor)
	if err != nil {
		return err
	}
	return c.provide(key, fn)
}

func (c *Container) provide(key reflect.Type, fn reflect.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.constructors[key]; ok {
		return fmt.Errorf("%s: %w", key, ErrAlreadyProvided)
	}
	c.constructors[key] = fn
	c.order = append(c.order, key)
	return nil
}

// Has reports whether key has a constructor.
func (c *Container) Has(key reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.constructors[key]
	return ok
}

// Keys returns the registered keys in registration order.
func (c *Container) Keys() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]reflect.Type(nil), c.order...)
}

// Get returns the instance for key, building it on first use.
func (c *Container) Get(key reflect.Type) (reflect.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *Container) getLocked(key reflect.Type) (reflect.Value, error) {
	if instance, ok := c.instances[key]; ok {
		return instance, nil
	}

	if c.building[key] {
		return reflect.Value{}, fmt.Errorf("circular dependency detected for type %s", key)
	}

	constructor, ok := c.constructors[key]
	if !ok {
		return reflect.Value{}, fmt.Errorf("%s: %w", key, ErrNotProvided)
	}

	c.building[key] = true
	defer delete(c.building, key)

	constructorType := constructor.Type()
	args := make([]reflect.Value, constructorType.NumIn())
	for i := 0; i < constructorType.NumIn(); i++ {
		paramType := constructorType.In(i)
		paramInstance, err := c.getLocked(paramType)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("failed to resolve dependency %s: %w", paramType, err)
		}
		args[i] = paramInstance
	}

	results := constructor.Call(args)
	if len(results) == 2 && !results[1].IsNil() {
		return reflect.Value{}, fmt.Errorf("constructor for %s failed: %w", key, results[1].Interface().(error))
	}

	instance := results[0]
	c.instances[key] = instance
	return instance, nil
}

// Resolve is the generic form of Get for an explicit key.
func Resolve[V any](c *Container, key reflect.Type) (V, error) {
	var zero V
	instance, err := c.Get(key)
	if err != nil {
		return zero, err
	}
	if typed, ok := instance.Interface().(V); ok {
		return typed, nil
	}
	return zero, fmt.Errorf("resolved value %s is not assignable to %T", instance.Type(), zero)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func checkConstructor(constructor any) (reflect.Value, error) {
	fn := reflect.ValueOf(constructor)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return reflect.Value{}, fmt.Errorf("constructor must be a function, got %T", constructor)
	}

	fnType := fn.Type()
	if fnType.NumOut() == 0 || fnType.NumOut() > 2 {
		return reflect.Value{}, fmt.Errorf("constructor must return 1 or 2 values (got %d), signature: %s", fnType.NumOut(), fnType)
	}
	if fnType.NumOut() == 2 && !fnType.Out(1).Implements(errorType) {
		return reflect.Value{}, fmt.Errorf("constructor's second return value must be error, got %s", fnType.Out(1))
	}
	return fn, nil
}
