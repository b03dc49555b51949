package settingsx

import (
	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/settingsx/configx"
	"go.eggybyte.com/settingsx/core/log"
	"go.eggybyte.com/settingsx/obsx"
	"go.eggybyte.com/settingsx/optionsx"
)

// Option configures a registration call.
type Option func(*config)

type config struct {
	logger    log.Logger
	validator *validator.Validate
	metrics   *obsx.Metrics
	catalog   *Catalog
}

func newConfig(opts []Option) config {
	cfg := config{logger: log.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.catalog == nil {
		cfg.catalog = NewCatalog(nil)
	}
	return cfg
}

// WithLogger sets the logger for registration events.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithValidator sets the struct-tag validator attached to every validated
// type. By default the collection's shared validator is used.
func WithValidator(v *validator.Validate) Option {
	return func(c *config) {
		c.validator = v
	}
}

// WithMetrics records registration counters on m.
func WithMetrics(m *obsx.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithCatalog resolves operations against signatures instead of the
// optionsx catalog.
func WithCatalog(signatures []optionsx.Signature) Option {
	return func(c *config) {
		c.catalog = NewCatalog(signatures)
	}
}

// RegisterAllDiscovered registers every settings type of the modules in
// Default into c.
func RegisterAllDiscovered(c *optionsx.Collection, src configx.Provider, opts ...Option) error {
	return RegisterFromModules(c, Default.Modules(), src, opts...)
}

// RegisterFromModules registers the settings types of modules into c, in
// module order then registration order. The first error aborts the call;
// types registered before it stay registered.
func RegisterFromModules(c *optionsx.Collection, modules []*Module, src configx.Provider, opts ...Option) error {
	return NewRegistrar(c, src, opts...).RegisterAll(Discover(modules...))
}

// RegisterFromModule registers the settings types of m into c.
func RegisterFromModule(c *optionsx.Collection, m *Module, src configx.Provider, opts ...Option) error {
	return RegisterFromModules(c, []*Module{m}, src, opts...)
}
