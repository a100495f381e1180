// Package file serves guild root configs from the guilds section of a YAML
// file and reloads them when the file changes on disk.
//
// The file may be the agent's main configuration file; admin writes only
// replace the guilds section and keep every other key as it was.
//
//	guilds:
//	  - guildId: "81384788765712384"
//	    rootChannelId: "381870553235193857"
//	    defaultLabel: Lobby
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"eclipse/internal/store"
	"eclipse/pkg/clock"
	"eclipse/pkg/logging"
)

const subsystem = "ConfigStore"

// DefaultDebounce is how long the store waits for further writes before
// reloading a changed file.
const DefaultDebounce = 500 * time.Millisecond

type document struct {
	Guilds []store.RootConfig `yaml:"guilds"`
}

// Options configures a Store.
type Options struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Clock defaults to the real clock.
	Clock clock.Clock
	// OnReload runs after every successful reload, e.g. to drop a cache.
	OnReload func()
}

// Store is a store.AdminStore over a YAML file.
type Store struct {
	path     string
	debounce time.Duration
	clock    clock.Clock
	onReload func()

	configs *store.Memory

	// writeMu serializes read-modify-write cycles of the file.
	writeMu sync.Mutex

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	pending clock.Timer
	stopCh  chan struct{}
	done    chan struct{}
}

var _ store.AdminStore = (*Store)(nil)

// Open loads path. A missing file is treated as an empty guild list and is
// created on the first write.
func Open(path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, errors.New("guild file path is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	s := &Store{
		path:     filepath.Clean(path),
		debounce: opts.Debounce,
		clock:    opts.Clock,
		onReload: opts.OnReload,
		configs:  store.NewMemory(),
	}
	configs, err := s.read()
	if err != nil {
		return nil, err
	}
	s.configs.Replace(configs)
	logging.Info(subsystem, "Loaded %d root config(s) from %s", len(configs), s.path)
	return s, nil
}

// read parses the guilds section of the file and validates every entry.
func (s *Store) read() ([]store.RootConfig, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read guild file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse guild file %s: %w", s.path, err)
	}

	seen := make(map[string]bool, len(doc.Guilds))
	var errs []error
	for i, cfg := range doc.Guilds {
		if err := cfg.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("guilds[%d]: %w", i, err))
			continue
		}
		if seen[cfg.GuildID] {
			errs = append(errs, fmt.Errorf("guilds[%d]: duplicate guild %s", i, cfg.GuildID))
		}
		seen[cfg.GuildID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid guild file %s: %w", s.path, err)
	}
	return doc.Guilds, nil
}

// GetRootConfig implements store.RootConfigStore.
func (s *Store) GetRootConfig(ctx context.Context, guildID string) (store.RootConfig, bool, error) {
	return s.configs.GetRootConfig(ctx, guildID)
}

// List returns all configs ordered by guild id.
func (s *Store) List(ctx context.Context) ([]store.RootConfig, error) {
	return s.configs.List(ctx)
}

// Put inserts or replaces a guild's config and writes the file.
func (s *Store) Put(ctx context.Context, cfg store.RootConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid root config: %w", err)
	}
	return s.update(ctx, func(m *store.Memory) error {
		return m.Put(ctx, cfg)
	})
}

// Delete removes a guild's config and writes the file.
func (s *Store) Delete(ctx context.Context, guildID string) error {
	return s.update(ctx, func(m *store.Memory) error {
		return m.Delete(ctx, guildID)
	})
}

func (s *Store) update(ctx context.Context, change func(*store.Memory) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	next := store.NewMemory(current...)
	if err := change(next); err != nil {
		return err
	}
	configs, err := next.List(ctx)
	if err != nil {
		return err
	}
	if err := s.write(configs); err != nil {
		return err
	}
	s.configs.Replace(configs)
	return nil
}

// write replaces the guilds key of the file, keeping the rest of the
// document.
func (s *Store) write(configs []store.RootConfig) error {
	var root yaml.Node
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read guild file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parse guild file %s: %w", s.path, err)
		}
	}

	var guilds yaml.Node
	if configs == nil {
		configs = []store.RootConfig{}
	}
	if err := guilds.Encode(configs); err != nil {
		return fmt.Errorf("encode guilds: %w", err)
	}

	if root.Kind == 0 || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	mapping := root.Content[0]
	replaced := false
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == "guilds" {
			mapping.Content[i+1] = &guilds
			replaced = true
			break
		}
	}
	if !replaced {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "guilds"}, &guilds)
	}

	out, err := yaml.Marshal(&root)
	if err != nil {
		return fmt.Errorf("encode guild file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create guild file directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("write guild file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace guild file: %w", err)
	}
	return nil
}

// Watch reloads the file whenever it changes until ctx is done or Close is
// called. The parent directory is watched so that editors replacing the file
// are noticed. A file that fails to parse is logged and the previous configs
// stay in effect.
func (s *Store) Watch(ctx context.Context) error {
	s.mu.Lock()
	if s.watcher != nil {
		s.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create file watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = watcher.Close()
		s.mu.Unlock()
		return fmt.Errorf("create guild file directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		s.mu.Unlock()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.watcher = watcher
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	stopCh, done := s.stopCh, s.done
	s.mu.Unlock()

	go s.processEvents(ctx, watcher, stopCh, done)
	logging.Info(subsystem, "Watching %s for root config changes", s.path)
	return nil
}

func (s *Store) processEvents(ctx context.Context, watcher *fsnotify.Watcher, stopCh, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			s.cancelPending()
			return
		case <-stopCh:
			s.cancelPending()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.scheduleReload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error(subsystem, err, "Guild file watcher error")
		}
	}
}

// scheduleReload restarts the debounce timer.
func (s *Store) scheduleReload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
	}
	s.pending = s.clock.AfterFunc(s.debounce, s.Reload)
}

func (s *Store) cancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// Reload reads the file again. On error the current configs are kept.
func (s *Store) Reload() {
	s.writeMu.Lock()
	configs, err := s.read()
	if err != nil {
		s.writeMu.Unlock()
		logging.Error(subsystem, err, "Keeping previous root configs")
		return
	}
	s.configs.Replace(configs)
	s.writeMu.Unlock()

	logging.Info(subsystem, "Reloaded %d root config(s) from %s", len(configs), s.path)
	if s.onReload != nil {
		s.onReload()
	}
}

// Close stops watching. The loaded configs remain readable.
func (s *Store) Close() error {
	s.mu.Lock()
	watcher, stopCh, done := s.watcher, s.stopCh, s.done
	s.watcher = nil
	s.mu.Unlock()

	if watcher == nil {
		return nil
	}
	close(stopCh)
	err := watcher.Close()
	<-done
	s.cancelPending()
	return err
}
