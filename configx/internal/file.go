package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"go.eggybyte.com/settingsx/core/log"
)

// FileOptions configures file source behavior.
type FileOptions struct {
	Watch  bool       // Reload when the file changes
	Format string     // "json", "yaml" or "toml"; empty means detect from extension
	Logger log.Logger // Logger for watch failures
}

// FileSource loads configuration from a JSON, YAML or TOML file.
type FileSource struct {
	path   string
	format string
	watch  bool
	logger log.Logger
}

// NewFileSource creates a new file source.
func NewFileSource(path string, opts FileOptions) Source {
	format := opts.Format
	if format == "" {
		format = detectFileFormat(path)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &FileSource{
		path:   path,
		format: format,
		watch:  opts.Watch,
		logger: logger,
	}
}

// Load reads the file. A missing file yields an empty snapshot.
func (s *FileSource) Load(ctx context.Context) (map[string]string, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to stat file %s: %w", s.path, err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType(s.format)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", s.path, err)
	}

	out := make(map[string]string)
	for _, key := range v.AllKeys() {
		Flatten(key, v.Get(key), out)
	}
	return out, nil
}

// Watch publishes a fresh snapshot whenever the file is written or replaced.
// The parent directory is watched so editors that save atomically are seen.
func (s *FileSource) Watch(ctx context.Context) (<-chan map[string]string, error) {
	if !s.watch {
		return idleWatch(ctx), nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	absPath, err := filepath.Abs(s.path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	ch := make(chan map[string]string)
	go func() {
		defer close(ch)
		defer watcher.Close()

		name := filepath.Base(absPath)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				config, err := s.Load(ctx)
				if err != nil {
					s.logger.Error(err, "failed to reload file", log.Str("path", s.path))
					continue
				}
				select {
				case ch <- config:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error(err, "file watcher error", log.Str("path", s.path))
			}
		}
	}()
	return ch, nil
}

func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}
