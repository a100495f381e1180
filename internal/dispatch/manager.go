package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"eclipse/internal/autochannel"
	"eclipse/pkg/logging"
)

// Manager runs a worker pool over a per-guild event queue.
//
// It manages:
//   - A queue that serializes events per guild
//   - Workers handling different guilds in parallel
//   - A status tracker per guild
type Manager struct {
	mu sync.RWMutex

	config  Config
	handler Handler
	queue   *guildQueue

	// statusTracker holds the dispatch status of every guild seen so far
	statusTracker map[string]*GuildStatus

	ctx        context.Context
	cancelFunc context.CancelFunc

	// wg tracks running workers
	wg sync.WaitGroup

	running bool
	stopped bool
}

// NewManager creates a dispatcher delivering events to handler.
func NewManager(config Config, handler Handler) *Manager {
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.QueueDepth <= 0 {
		config.QueueDepth = 1000
	}
	if config.HandleTimeout <= 0 {
		config.HandleTimeout = 30 * time.Second
	}

	return &Manager{
		config:        config,
		handler:       handler,
		queue:         newGuildQueue(config.QueueDepth),
		statusTracker: make(map[string]*GuildStatus),
	}
}

// Start launches the workers.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrStopped
	}
	if m.running {
		return nil
	}

	m.ctx, m.cancelFunc = context.WithCancel(ctx)
	m.running = true

	for i := 0; i < m.config.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}

	logging.Info("Dispatch", "Started with %d workers", m.config.Workers)
	return nil
}

// Submit queues ev and returns its correlation id.
func (m *Manager) Submit(ev autochannel.Event) (string, error) {
	env := Envelope{
		ID:       uuid.NewString(),
		Event:    ev,
		Enqueued: time.Now(),
	}

	if err := m.queue.Add(env); err != nil {
		if errors.Is(err, ErrQueueFull) {
			m.withStatus(ev.Guild(), func(s *GuildStatus) { s.Dropped++ })
			logging.Warn("Dispatch", "Dropping %s for guild %s: %v", ev.Kind(), ev.Guild(), err)
		}
		return "", err
	}

	logging.Debug("Dispatch", "[%s] Queued %s for guild %s", env.ID, ev.Kind(), ev.Guild())
	return env.ID, nil
}

// Requeue submits ev and logs a failure instead of returning it. It fits
// the orchestrator's requeue hook.
func (m *Manager) Requeue(ev autochannel.Event) {
	if _, err := m.Submit(ev); err != nil && !errors.Is(err, ErrQueueFull) {
		logging.Debug("Dispatch", "Not requeueing %s for guild %s: %v", ev.Kind(), ev.Guild(), err)
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()

	logging.Debug("Dispatch", "Worker %d started", id)

	for {
		env, ok := m.queue.Get(m.ctx)
		if !ok {
			logging.Debug("Dispatch", "Worker %d shutting down", id)
			return
		}

		m.process(env)
		m.queue.Done(env.Event.Guild())
	}
}

func (m *Manager) process(env Envelope) {
	guildID := env.Event.Guild()
	m.withStatus(guildID, func(s *GuildStatus) { s.LastEventID = env.ID })

	ctx := logging.WithCorrelationID(m.ctx, env.ID)
	ctx, cancel := context.WithTimeout(ctx, m.config.HandleTimeout)
	defer cancel()

	err := m.safeHandle(ctx, env.Event)

	now := time.Now()
	m.withStatus(guildID, func(s *GuildStatus) {
		s.LastEventAt = &now
		if err != nil {
			s.Failed++
			s.LastError = err.Error()
			return
		}
		s.Processed++
	})

	if err != nil {
		logging.Error("Dispatch", err, "[%s] Handling %s for guild %s failed", env.ID, env.Event.Kind(), guildID)
		return
	}
	logging.Debug("Dispatch", "[%s] Handled %s for guild %s in %s", env.ID, env.Event.Kind(), guildID, now.Sub(env.Enqueued))
}

func (m *Manager) safeHandle(ctx context.Context, ev autochannel.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return m.handler.Handle(ctx, ev)
}

func (m *Manager) withStatus(guildID string, fn func(*GuildStatus)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, ok := m.statusTracker[guildID]
	if !ok {
		status = &GuildStatus{GuildID: guildID}
		m.statusTracker[guildID] = status
	}
	fn(status)
}

// GetStatus returns the dispatch status of a guild.
func (m *Manager) GetStatus(guildID string) (GuildStatus, bool) {
	m.mu.RLock()
	status, ok := m.statusTracker[guildID]
	var out GuildStatus
	if ok {
		out = *status
	}
	m.mu.RUnlock()

	if !ok {
		return GuildStatus{}, false
	}
	m.fillQueueState(&out)
	return out, true
}

// GetAllStatuses returns the status of every guild ordered by guild id.
func (m *Manager) GetAllStatuses() []GuildStatus {
	m.mu.RLock()
	out := make([]GuildStatus, 0, len(m.statusTracker))
	for _, s := range m.statusTracker {
		out = append(out, *s)
	}
	m.mu.RUnlock()

	for i := range out {
		m.fillQueueState(&out[i])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out
}

func (m *Manager) fillQueueState(s *GuildStatus) {
	s.Pending = m.queue.GuildLen(s.GuildID)
	switch {
	case m.queue.Processing(s.GuildID):
		s.State = GuildStateProcessing
	case s.Pending > 0:
		s.State = GuildStateQueued
	default:
		s.State = GuildStateIdle
	}
}

// Len returns the number of pending events.
func (m *Manager) Len() int {
	return m.queue.Len()
}

// WaitIdle blocks until every submitted event has been handled.
func (m *Manager) WaitIdle(ctx context.Context) error {
	return m.queue.WaitIdle(ctx)
}

// Stop stops accepting events, lets the workers finish the queued ones and
// waits for them. If ctx ends first the workers are cancelled.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	running := m.running
	m.running = false
	m.mu.Unlock()

	m.queue.Shutdown()
	if !running {
		return nil
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.cancelFunc()
		logging.Info("Dispatch", "Stopped")
		return nil
	case <-ctx.Done():
		m.cancelFunc()
		<-done
		return fmt.Errorf("dispatcher stopped before the queue drained: %w", ctx.Err())
	}
}
