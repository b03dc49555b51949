package settingsx

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"go.eggybyte.com/settingsx/configx"
	"go.eggybyte.com/settingsx/core/log"
	"go.eggybyte.com/settingsx/obsx"
	"go.eggybyte.com/settingsx/optionsx"
)

// Registrar wires discovered settings types into a collection.
// A Registrar is not safe for concurrent use.
type Registrar struct {
	collection *optionsx.Collection
	source     configx.Provider
	catalog    *Catalog
	validator  *validator.Validate
	metrics    *obsx.Metrics
	logger     log.Logger
}

// NewRegistrar creates a registrar that binds sections from src into c.
// A nil src binds every type to an empty section.
func NewRegistrar(c *optionsx.Collection, src configx.Provider, opts ...Option) *Registrar {
	cfg := newConfig(opts)
	return &Registrar{
		collection: c,
		source:     src,
		catalog:    cfg.catalog,
		validator:  cfg.validator,
		metrics:    cfg.metrics,
		logger:     cfg.logger,
	}
}

// Catalog returns the catalog operations are resolved against.
func (r *Registrar) Catalog() *Catalog {
	return r.catalog
}

// RegisterAll registers regs in order and stops at the first error.
// Types registered before the error stay in the collection.
func (r *Registrar) RegisterAll(regs []Registration) error {
	logger := r.logger.With("run_id", uuid.NewString())
	start := time.Now()

	seen := make(map[reflect.Type]bool, len(regs))
	for i, reg := range regs {
		if seen[reg.Type] {
			err := &DuplicateRegistrationError{Type: reg.Type}
			r.fail(logger, reg, err)
			return err
		}
		seen[reg.Type] = true

		if err := r.register(logger, reg); err != nil {
			logger.Info("settings registration aborted",
				log.Int("registered", i),
				log.Int("total", len(regs)),
				log.Dur("elapsed", time.Since(start)))
			return err
		}
	}

	logger.Info("settings registration completed",
		log.Int("registered", len(regs)),
		log.Dur("elapsed", time.Since(start)))
	return nil
}

// Register registers a single discovered type.
func (r *Registrar) Register(reg Registration) error {
	return r.register(r.logger, reg)
}

func (r *Registrar) register(logger log.Logger, reg Registration) error {
	if err := r.apply(logger, reg); err != nil {
		r.fail(logger, reg, err)
		return err
	}
	return nil
}

func (r *Registrar) fail(logger log.Logger, reg Registration, err error) {
	kind := errorKind(err)
	r.metrics.RegistrationFailed(kind)
	logger.Error(err, "settings registration failed",
		log.Str("type", typeName(reg.Type)),
		log.Str("module", reg.Module),
		log.Str("kind", kind))
}

// plan holds the handles one registration needs, keyed by operation.
type plan map[Operation]*Handle

func (r *Registrar) apply(logger log.Logger, reg Registration) error {
	t := reg.Type
	if reg.entry == nil {
		return &DescriptorError{Type: t, Reason: "was not discovered from a module"}
	}
	if r.collection.Contains(t) {
		return &DuplicateRegistrationError{Type: t}
	}

	desc, err := DescriptorOf(t)
	if err != nil {
		return err
	}
	rules, err := ExtractRules(reg)
	if err != nil {
		return err
	}
	if desc.Mode == ModeNone {
		rules = nil
	} else {
		rules = append(rules, schemaRule(r.validator))
	}

	// Resolve and decode before touching the collection so that a failure
	// leaves no half-registered slot behind.
	p, err := r.resolve(desc, rules)
	if err != nil {
		return err
	}
	section := configx.Section{Path: desc.Section, Values: map[string]string{}}
	if r.source != nil {
		section = r.source.Section(desc.Section)
	}
	if err := configx.BindSection(section, reflect.New(t).Interface()); err != nil {
		return &BindingFailure{Type: t, Section: desc.Section, Err: err}
	}

	builder, err := p[OpCreateSlot].Invoke(r.collection)
	if err != nil {
		return err
	}
	if _, err := p[OpBindSection].Invoke(builder, section); err != nil {
		return &BindingFailure{Type: t, Section: desc.Section, Err: err}
	}

	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		args := append([]any{builder}, rule.args()...)
		if _, err := p[rule.operation()].Invoke(args...); err != nil {
			return err
		}
		names = append(names, rule.Name)
	}
	if desc.Mode == ModeStartup {
		if _, err := p[OpAttachEagerValidation].Invoke(builder); err != nil {
			return err
		}
	}

	r.metrics.TypeRegistered(desc.Mode.String())
	logger.Info("settings registered",
		log.Str("type", typeName(t)),
		log.Str("module", reg.Module),
		log.Str("section", desc.Section),
		log.Str("mode", desc.Mode.String()),
		log.Str("rules", strings.Join(names, ",")))
	return nil
}

// resolve looks up every operation the registration of desc with rules uses,
// in pipeline order.
func (r *Registrar) resolve(desc Descriptor, rules []Rule) (plan, error) {
	used := map[Operation]bool{OpCreateSlot: true, OpBindSection: true}
	for _, rule := range rules {
		used[rule.operation()] = true
	}
	if desc.Mode == ModeStartup {
		used[OpAttachEagerValidation] = true
	}

	p := make(plan, len(used))
	for _, op := range Operations {
		if !used[op] {
			continue
		}
		h, err := r.catalog.Resolve(op, desc.Type)
		if err != nil {
			return nil, err
		}
		p[op] = h
	}
	return p, nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
