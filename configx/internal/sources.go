package internal

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvOptions configures environment variable source behavior.
type EnvOptions struct {
	Prefix string // Only variables with this prefix are read; the prefix is stripped
}

// EnvSource loads configuration from environment variables.
// A double underscore separates levels: SAMPLE__SAMPLEKEY is sample.samplekey.
type EnvSource struct {
	prefix string
}

// NewEnvSource creates a new environment variable source.
func NewEnvSource(opts EnvOptions) Source {
	return &EnvSource{prefix: opts.Prefix}
}

// Load reads configuration from environment variables.
func (s *EnvSource) Load(ctx context.Context) (map[string]string, error) {
	config := make(map[string]string)
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if s.prefix != "" {
			if !strings.HasPrefix(key, s.prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.prefix)
		}
		config[key] = value
	}
	return config, nil
}

// Watch never publishes; the environment is static for the process lifetime.
func (s *EnvSource) Watch(ctx context.Context) (<-chan map[string]string, error) {
	return idleWatch(ctx), nil
}

// MapSource serves a fixed map, mostly for tests and programmatic defaults.
type MapSource struct {
	values map[string]string
}

// NewMapSource creates a source over a copy of values.
func NewMapSource(values map[string]string) Source {
	return &MapSource{values: copyMap(values)}
}

// Load returns a copy of the map.
func (s *MapSource) Load(ctx context.Context) (map[string]string, error) {
	return copyMap(s.values), nil
}

// Watch never publishes.
func (s *MapSource) Watch(ctx context.Context) (<-chan map[string]string, error) {
	return idleWatch(ctx), nil
}

// YAMLSource serves configuration parsed from an inline YAML document.
type YAMLSource struct {
	data []byte
}

// NewYAMLSource creates a source over a YAML document.
func NewYAMLSource(data []byte) Source {
	return &YAMLSource{data: append([]byte(nil), data...)}
}

// Load parses the document into flat keys.
func (s *YAMLSource) Load(ctx context.Context) (map[string]string, error) {
	return ParseYAML(s.data)
}

// Watch never publishes.
func (s *YAMLSource) Watch(ctx context.Context) (<-chan map[string]string, error) {
	return idleWatch(ctx), nil
}

// ParseYAML decodes a YAML mapping document into flat keys.
func ParseYAML(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	out := make(map[string]string)
	Flatten("", doc, out)
	return out, nil
}

// FlagSource reads flags that were set explicitly on a parsed flag set.
// Flag names use the key separators directly: --sample.samplekey=one.
type FlagSource struct {
	flags *pflag.FlagSet
}

// NewFlagSource creates a source over fs. fs must be parsed before Load.
func NewFlagSource(fs *pflag.FlagSet) Source {
	return &FlagSource{flags: fs}
}

// Load collects changed flags only, so unset flags never mask other sources.
func (s *FlagSource) Load(ctx context.Context) (map[string]string, error) {
	config := make(map[string]string)
	if s.flags == nil {
		return config, nil
	}
	s.flags.Visit(func(f *pflag.Flag) {
		config[f.Name] = f.Value.String()
	})
	return config, nil
}

// Watch never publishes.
func (s *FlagSource) Watch(ctx context.Context) (<-chan map[string]string, error) {
	return idleWatch(ctx), nil
}
