package dispatch

import (
	"context"
	"errors"
	"time"

	"eclipse/internal/autochannel"
)

var (
	// ErrQueueFull is returned when a guild has QueueDepth pending events.
	ErrQueueFull = errors.New("guild event queue is full")

	// ErrStopped is returned when submitting to a stopped manager.
	ErrStopped = errors.New("dispatcher is stopped")
)

// Handler processes one event. Calls for the same guild never overlap.
type Handler interface {
	Handle(ctx context.Context, ev autochannel.Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ev autochannel.Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, ev autochannel.Event) error {
	return f(ctx, ev)
}

// Envelope is a queued event with its correlation id.
type Envelope struct {
	ID       string
	Event    autochannel.Event
	Enqueued time.Time
}

// GuildState describes what the dispatcher is doing for a guild.
type GuildState string

const (
	GuildStateIdle       GuildState = "Idle"
	GuildStateQueued     GuildState = "Queued"
	GuildStateProcessing GuildState = "Processing"
)

// GuildStatus is the dispatch status of one guild.
type GuildStatus struct {
	GuildID     string     `json:"guildId"`
	State       GuildState `json:"state"`
	Pending     int        `json:"pending"`
	Processed   int64      `json:"processed"`
	Failed      int64      `json:"failed"`
	Dropped     int64      `json:"dropped"`
	LastEventID string     `json:"lastEventId,omitempty"`
	LastEventAt *time.Time `json:"lastEventAt,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
}

// Config configures a Manager.
type Config struct {
	// Workers is the number of guilds handled in parallel. Defaults to 4.
	Workers int

	// QueueDepth bounds the pending events per guild. Defaults to 1000.
	QueueDepth int

	// HandleTimeout bounds a single Handle call. Defaults to 30 seconds.
	HandleTimeout time.Duration
}
