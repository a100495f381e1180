package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an AdminStore backed by a map. It serves tests, the static
// guild list of the configuration file, and the file store.
type Memory struct {
	mu      sync.RWMutex
	configs map[string]RootConfig
}

var _ AdminStore = (*Memory)(nil)

// NewMemory creates a store holding configs.
func NewMemory(configs ...RootConfig) *Memory {
	m := &Memory{configs: make(map[string]RootConfig, len(configs))}
	for _, c := range configs {
		m.configs[c.GuildID] = c
	}
	return m
}

// GetRootConfig implements RootConfigStore.
func (m *Memory) GetRootConfig(_ context.Context, guildID string) (RootConfig, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[guildID]
	return cfg, ok, nil
}

// Put inserts or replaces a guild's config.
func (m *Memory) Put(_ context.Context, cfg RootConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid root config: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.GuildID] = cfg
	return nil
}

// Delete removes a guild's config.
func (m *Memory) Delete(_ context.Context, guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[guildID]; !ok {
		return fmt.Errorf("%w: guild %s", ErrNotFound, guildID)
	}
	delete(m.configs, guildID)
	return nil
}

// List returns all configs ordered by guild id.
func (m *Memory) List(_ context.Context) ([]RootConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]RootConfig, 0, len(m.configs))
	for _, c := range m.configs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out, nil
}

// Replace swaps the whole content of the store.
func (m *Memory) Replace(configs []RootConfig) {
	next := make(map[string]RootConfig, len(configs))
	for _, c := range configs {
		next[c.GuildID] = c
	}
	m.mu.Lock()
	m.configs = next
	m.mu.Unlock()
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
