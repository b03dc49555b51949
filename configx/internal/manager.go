package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.eggybyte.com/settingsx/core/log"
)

// ManagerImpl merges configuration sources and tracks updates.
type ManagerImpl struct {
	logger     log.Logger
	sources    []Source
	debounce   time.Duration
	snapshot   map[string]string
	perSource  []map[string]string
	mu         sync.RWMutex
	updateSubs map[int]func(map[string]string)
	subsMu     sync.RWMutex
	nextSubID  int
}

// NewManager creates a new configuration manager.
func NewManager(logger log.Logger, sources []Source, debounce time.Duration) (*ManagerImpl, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}

	return &ManagerImpl{
		logger:     logger,
		sources:    sources,
		debounce:   debounce,
		snapshot:   make(map[string]string),
		perSource:  make([]map[string]string, len(sources)),
		updateSubs: make(map[int]func(map[string]string)),
	}, nil
}

// Initialize loads initial configuration and starts watching.
func (m *ManagerImpl) Initialize(ctx context.Context) error {
	if err := m.loadInitial(ctx); err != nil {
		return fmt.Errorf("failed to load initial configuration: %w", err)
	}
	if err := m.startWatching(ctx); err != nil {
		return fmt.Errorf("failed to start watching: %w", err)
	}
	return nil
}

func (m *ManagerImpl) loadInitial(ctx context.Context) error {
	perSource := make([]map[string]string, len(m.sources))
	for i, source := range m.sources {
		snapshot, err := source.Load(ctx)
		if err != nil {
			return fmt.Errorf("source %d load failed: %w", i, err)
		}
		perSource[i] = NormalizeMap(snapshot)
	}

	merged := merge(perSource)

	m.mu.Lock()
	m.perSource = perSource
	m.snapshot = merged
	m.mu.Unlock()

	m.logger.Info("configuration loaded", log.Int("keys", len(merged)), log.Int("sources", len(m.sources)))
	return nil
}

// merge combines source snapshots with later sources taking precedence.
// Empty values never override a value from an earlier source.
func merge(perSource []map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, snapshot := range perSource {
		for k, v := range snapshot {
			if v != "" {
				merged[k] = v
			} else if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	return merged
}

func (m *ManagerImpl) startWatching(ctx context.Context) error {
	for i, source := range m.sources {
		updateChan, err := source.Watch(ctx)
		if err != nil {
			return fmt.Errorf("source %d watch failed: %w", i, err)
		}
		go m.watchSource(ctx, i, updateChan)
	}
	return nil
}

// watchSource debounces snapshots published by one source.
func (m *ManagerImpl) watchSource(ctx context.Context, sourceIndex int, updateChan <-chan map[string]string) {
	var (
		timerMu sync.Mutex
		timer   *time.Timer
		pending map[string]string
	)

	for {
		select {
		case <-ctx.Done():
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timerMu.Unlock()
			return
		case snapshot, ok := <-updateChan:
			if !ok {
				return
			}
			timerMu.Lock()
			pending = snapshot
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(m.debounce, func() {
				timerMu.Lock()
				update := pending
				timerMu.Unlock()
				m.applyUpdate(sourceIndex, update)
			})
			timerMu.Unlock()
		}
	}
}

// applyUpdate replaces one source's snapshot and re-merges the cached rest.
func (m *ManagerImpl) applyUpdate(sourceIndex int, update map[string]string) {
	m.mu.Lock()
	m.perSource[sourceIndex] = NormalizeMap(update)
	merged := merge(m.perSource)
	m.snapshot = merged
	m.mu.Unlock()

	m.logger.Info("configuration updated", log.Int("source", sourceIndex), log.Int("keys", len(merged)))
	m.notifySubscribers(copyMap(merged))
}

func (m *ManagerImpl) notifySubscribers(snapshot map[string]string) {
	m.subsMu.RLock()
	subs := make([]func(map[string]string), 0, len(m.updateSubs))
	for _, fn := range m.updateSubs {
		subs = append(subs, fn)
	}
	m.subsMu.RUnlock()

	for _, sub := range subs {
		go sub(snapshot)
	}
}

// Snapshot returns a copy of the current configuration.
func (m *ManagerImpl) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyMap(m.snapshot)
}

// Value returns the value for a key and whether it exists.
func (m *ManagerImpl) Value(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.snapshot[NormalizeKey(key)]
	return value, exists
}

// Section returns the subtree rooted at path.
func (m *ManagerImpl) Section(path string) Section {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return SectionOf(m.snapshot, path)
}

// OnUpdate subscribes to configuration update events.
func (m *ManagerImpl) OnUpdate(fn func(snapshot map[string]string)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	subID := m.nextSubID
	m.nextSubID++
	m.updateSubs[subID] = fn

	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.updateSubs, subID)
	}
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
