// Package configx provides hierarchical configuration management with hot reloading.
//
// Overview:
//   - Responsibility: Merge configuration from multiple sources and expose it by section
//   - Key Types: Source interface, Manager interface, Section, Options for configuration
//   - Concurrency Model: Manager is safe for concurrent use, sources must be thread-safe
//   - Error Semantics: Functions return errors for initialization and binding failures
//   - Performance Notes: Supports debouncing and per-source snapshot caching
//
// Usage:
//
//	manager, err := configx.NewManager(ctx, configx.Options{
//	  Logger:  logger,
//	  Sources: configx.DefaultSources("appsettings.yaml", "APP_", flags),
//	})
//	var cfg SampleConfiguration
//	err = configx.BindSection(manager.Section("Sample"), &cfg)
package configx

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"k8s.io/client-go/kubernetes"

	"go.eggybyte.com/settingsx/configx/internal"
	"go.eggybyte.com/settingsx/core/log"
)

// Source describes a configuration source that can load and watch for updates.
// Implementations must be thread-safe and honor context cancellation.
type Source interface {
	// Load reads the current configuration snapshot for initial merge.
	// Keys may use ".", ":" or "__" as level separators.
	Load(ctx context.Context) (map[string]string, error)

	// Watch starts monitoring for updates and publishes snapshots via the returned channel.
	// The channel should be closed when the context is cancelled to avoid goroutine leaks.
	Watch(ctx context.Context) (<-chan map[string]string, error)
}

// Section is the subtree of the configuration rooted at a path.
// Keys are lower-cased and relative to the path.
type Section = internal.Section

// Provider exposes configuration by section.
type Provider interface {
	// Section returns the subtree under path. An absent path yields an empty
	// section, never an error.
	Section(path string) Section
}

// Manager manages multiple configuration sources and provides unified access.
// The manager merges configurations with later sources taking precedence.
type Manager interface {
	Provider

	// Snapshot returns a copy of the current merged configuration.
	Snapshot() map[string]string

	// Value returns the value for a key and whether it exists.
	Value(key string) (string, bool)

	// Bind decodes the section at path into target.
	Bind(path string, target any) error

	// OnUpdate subscribes to configuration update events.
	// Returns an unsubscribe function.
	OnUpdate(fn func(snapshot map[string]string)) (unsubscribe func())
}

// Options holds configuration for the manager.
type Options struct {
	Logger   log.Logger    // Logger for configuration operations
	Sources  []Source      // Configuration sources (later sources override earlier ones)
	Debounce time.Duration // Debounce duration for updates (default: 200ms)
}

// manager wraps the internal manager implementation.
type manager struct {
	impl *internal.ManagerImpl
}

// NewManager creates a new configuration manager, loads every source and
// starts watching them until ctx is cancelled.
func NewManager(ctx context.Context, opts Options) (Manager, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if len(opts.Sources) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}

	internalSources := make([]internal.Source, len(opts.Sources))
	for i, src := range opts.Sources {
		internalSources[i] = src
	}

	impl, err := internal.NewManager(opts.Logger, internalSources, opts.Debounce)
	if err != nil {
		return nil, err
	}

	if err := impl.Initialize(ctx); err != nil {
		return nil, err
	}

	return &manager{impl: impl}, nil
}

// Snapshot returns a copy of the current configuration.
func (m *manager) Snapshot() map[string]string {
	return m.impl.Snapshot()
}

// Value returns the value for a key and whether it exists.
func (m *manager) Value(key string) (string, bool) {
	return m.impl.Value(key)
}

// Section returns the subtree under path.
func (m *manager) Section(path string) Section {
	return m.impl.Section(path)
}

// Bind decodes the section at path into target.
func (m *manager) Bind(path string, target any) error {
	if target == nil {
		return fmt.Errorf("target cannot be nil")
	}
	return BindSection(m.impl.Section(path), target)
}

// OnUpdate subscribes to configuration update events.
func (m *manager) OnUpdate(fn func(snapshot map[string]string)) func() {
	return m.impl.OnUpdate(fn)
}

// staticProvider serves sections from a fixed snapshot.
type staticProvider map[string]string

func (p staticProvider) Section(path string) Section {
	return internal.SectionOf(p, path)
}

// FromMap returns a Provider over a fixed set of values.
// Keys are normalized the same way the manager normalizes source keys.
func FromMap(values map[string]string) Provider {
	return staticProvider(internal.NormalizeMap(values))
}

// NormalizeKey lower-cases key and rewrites ":" and "__" separators to ".".
func NormalizeKey(key string) string {
	return internal.NormalizeKey(key)
}

// BindSection decodes a section into target, a non-nil pointer to struct.
//
// Field names match keys case-insensitively; a `config:"name"` tag renames a
// field. Values are weakly typed: "5" binds to an int, "1s" to a
// time.Duration and "a,b" to a []string. Fields without a key take their
// `default` tag, if any. Values that cannot be converted return an error.
func BindSection(section Section, target any) error {
	return internal.BindSection(section, target)
}

// --- Public wrappers for source constructors (delegating to internal) ---

// EnvOptions configures environment variable source behavior.
type EnvOptions struct {
	Prefix string // Only variables starting with Prefix are read; the prefix is stripped
}

// NewEnvSource creates an environment variable configuration source.
// A double underscore separates levels: APP_SAMPLE__SAMPLEKEY with prefix
// "APP_" is the key sample.samplekey.
func NewEnvSource(opts EnvOptions) Source {
	return internal.NewEnvSource(internal.EnvOptions{Prefix: opts.Prefix})
}

// FileOptions configures file source behavior.
type FileOptions struct {
	Watch  bool       // Reload on change
	Format string     // "json", "yaml" or "toml"; empty detects from the extension
	Logger log.Logger // Logger for watch failures
}

// NewFileSource creates a JSON, YAML or TOML file configuration source.
// A missing file is treated as empty.
func NewFileSource(path string, opts FileOptions) Source {
	return internal.NewFileSource(path, internal.FileOptions{
		Watch:  opts.Watch,
		Format: opts.Format,
		Logger: opts.Logger,
	})
}

// NewYAMLSource creates a source over an inline YAML document.
func NewYAMLSource(data []byte) Source {
	return internal.NewYAMLSource(data)
}

// NewMapSource creates a source over a fixed map.
func NewMapSource(values map[string]string) Source {
	return internal.NewMapSource(values)
}

// NewFlagSource creates a source over the flags explicitly set on fs.
func NewFlagSource(fs *pflag.FlagSet) Source {
	return internal.NewFlagSource(fs)
}

// ConfigMapOptions configures Kubernetes ConfigMap source behavior.
type ConfigMapOptions struct {
	Namespace    string               // Namespace (default: "default")
	Client       kubernetes.Interface // Client; nil uses the in-cluster config
	Logger       log.Logger           // Logger for watch events
	RetryBackoff time.Duration        // Wait before re-establishing a broken watch (default: 5s)
}

// NewConfigMapSource creates a Kubernetes ConfigMap configuration source.
func NewConfigMapSource(name string, opts ConfigMapOptions) (Source, error) {
	src, err := internal.NewConfigMapSource(name, internal.ConfigMapOptions{
		Namespace:    opts.Namespace,
		Client:       opts.Client,
		Logger:       opts.Logger,
		RetryBackoff: opts.RetryBackoff,
	})
	if err != nil {
		return nil, err
	}
	return src, nil
}

// DefaultSources returns the conventional source order: file, then
// environment, then command-line flags. Empty arguments are skipped.
func DefaultSources(file, envPrefix string, flags *pflag.FlagSet) []Source {
	var sources []Source
	if file != "" {
		sources = append(sources, NewFileSource(file, FileOptions{Watch: true}))
	}
	sources = append(sources, NewEnvSource(EnvOptions{Prefix: envPrefix}))
	if flags != nil {
		sources = append(sources, NewFlagSource(flags))
	}
	return sources
}
