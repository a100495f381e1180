package dispatch

import (
	"context"
	"sync"
)

// guildQueue hands out events so that each guild has at most one event in
// processing while different guilds proceed in parallel. Events of a guild
// are returned in the order they were added.
type guildQueue struct {
	mu sync.Mutex

	// pending holds each guild's events in FIFO order
	pending map[string][]Envelope

	// ready lists guilds with pending events that are not being processed
	ready []string

	// processing tracks guilds with an event handed out
	processing map[string]bool

	// maxDepth bounds len(pending[guild]); zero means unbounded
	maxDepth int

	// cond is used for blocking Get and WaitIdle
	cond *sync.Cond

	// shuttingDown indicates the queue is stopping
	shuttingDown bool
}

func newGuildQueue(maxDepth int) *guildQueue {
	q := &guildQueue{
		pending:    make(map[string][]Envelope),
		processing: make(map[string]bool),
		maxDepth:   maxDepth,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Add appends env to its guild's queue.
func (q *guildQueue) Add(env Envelope) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shuttingDown {
		return ErrStopped
	}

	guildID := env.Event.Guild()
	if q.maxDepth > 0 && len(q.pending[guildID]) >= q.maxDepth {
		return ErrQueueFull
	}

	wasEmpty := len(q.pending[guildID]) == 0
	q.pending[guildID] = append(q.pending[guildID], env)

	// A guild in processing is made ready again by Done
	if wasEmpty && !q.processing[guildID] {
		q.ready = append(q.ready, guildID)
		q.cond.Broadcast()
	}
	return nil
}

// Get retrieves the next event of the first ready guild, blocking if
// necessary. It returns false once the context is cancelled, or once the
// queue is shut down and empty.
func (q *guildQueue) Get(ctx context.Context) (Envelope, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.ready) == 0 && !(q.shuttingDown && q.emptyLocked()) {
		if !q.waitLocked(ctx) {
			return Envelope{}, false
		}
	}
	if len(q.ready) == 0 {
		return Envelope{}, false
	}

	guildID := q.ready[0]
	q.ready = q.ready[1:]

	list := q.pending[guildID]
	env := list[0]
	if len(list) == 1 {
		delete(q.pending, guildID)
	} else {
		q.pending[guildID] = list[1:]
	}
	q.processing[guildID] = true
	return env, true
}

// Done marks the guild's handed out event as completed.
func (q *guildQueue) Done(guildID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.processing, guildID)
	if len(q.pending[guildID]) > 0 {
		q.ready = append(q.ready, guildID)
	}
	q.cond.Broadcast()
}

// WaitIdle blocks until no event is pending or processing.
func (q *guildQueue) WaitIdle(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.emptyLocked() || len(q.processing) > 0 {
		if !q.waitLocked(ctx) {
			return ctx.Err()
		}
	}
	return nil
}

// waitLocked waits on the condition variable and reports false if ctx was
// cancelled.
func (q *guildQueue) waitLocked(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}

	// The goroutine exits either when the context is cancelled (it then
	// broadcasts to wake us up) or when done is closed after a normal wakeup.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			q.mu.Lock()
			q.cond.Broadcast()
			q.mu.Unlock()
		case <-done:
		}
	}()

	q.cond.Wait()
	close(done)

	select {
	case <-ctx.Done():
		return false
	default:
		return true
	}
}

func (q *guildQueue) emptyLocked() bool {
	return len(q.pending) == 0
}

// Len returns the number of pending events across all guilds.
func (q *guildQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, list := range q.pending {
		n += len(list)
	}
	return n
}

// GuildLen returns the number of pending events of one guild.
func (q *guildQueue) GuildLen(guildID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[guildID])
}

// Processing reports whether the guild has an event handed out.
func (q *guildQueue) Processing(guildID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.processing[guildID]
}

// Shutdown stops accepting events. Pending events are still handed out.
func (q *guildQueue) Shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shuttingDown = true
	q.cond.Broadcast()
}
