package autochannel

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrAlreadyTracked is returned when a channel id is added twice.
	ErrAlreadyTracked = errors.New("channel is already tracked")

	// ErrNotTracked is returned for operations on unknown channels.
	ErrNotTracked = errors.New("channel is not tracked")
)

// Registry is the authoritative in-memory view of active auto-channels.
//
// It holds, per guild, the ordered list of auto-channel ids (creation
// order), the owner of each channel and the set of manually renamed
// channels. Every method is atomic; callers never lock externally.
type Registry interface {
	// Add starts tracking channelID for guildID with the given owner.
	Add(guildID, channelID, ownerID string) error
	// Remove stops tracking channelID and drops its owner and renamed flag.
	// It returns false if the channel was not tracked for guildID.
	Remove(guildID, channelID string) bool
	// Contains returns the guild a tracked channel belongs to.
	Contains(channelID string) (string, bool)
	// List returns a copy of the guild's channel ids in creation order.
	List(guildID string) []string
	// IndexOf returns the zero-based position of channelID in its guild's
	// list, or -1.
	IndexOf(guildID, channelID string) int

	Owner(channelID string) (string, bool)
	SetOwner(channelID, ownerID string) error
	ClearOwner(channelID string) error
	MarkRenamed(channelID string) error
	IsRenamed(channelID string) bool

	// State returns the lifecycle state of a channel: Active while tracked,
	// NonExistent otherwise, including after Remove.
	State(channelID string) CloneState
	// Guilds returns the ids of guilds with at least one active channel.
	Guilds() []string
	// Len returns the total number of tracked channels.
	Len() int
}

// registry implements Registry with a single mutex over all structures.
type registry struct {
	mu sync.RWMutex

	// channels maps guild id to channel ids in creation order
	channels map[string][]string

	// guildOf maps channel id to its guild id
	guildOf map[string]string

	// states holds the lifecycle state of every tracked channel as
	// produced by the CloneState transitions
	states map[string]Active
}

// NewRegistry creates an empty registry.
func NewRegistry() Registry {
	return &registry{
		channels: make(map[string][]string),
		guildOf:  make(map[string]string),
		states:   make(map[string]Active),
	}
}

func (r *registry) Add(guildID, channelID, ownerID string) error {
	if guildID == "" || channelID == "" {
		return fmt.Errorf("guild and channel id are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.apply(channelID, func(s CloneState) (CloneState, error) { return Created(s, ownerID) })
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyTracked, channelID)
	}

	r.channels[guildID] = append(r.channels[guildID], channelID)
	r.guildOf[channelID] = guildID
	return nil
}

func (r *registry) Remove(guildID, channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.guildOf[channelID] != guildID {
		return false
	}
	if err := r.apply(channelID, Removed); err != nil {
		return false
	}

	list := r.channels[guildID]
	for i, id := range list {
		if id == channelID {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.channels, guildID)
	} else {
		r.channels[guildID] = list
	}

	delete(r.guildOf, channelID)
	return true
}

func (r *registry) Contains(channelID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	guildID, ok := r.guildOf[channelID]
	return guildID, ok
}

func (r *registry) List(guildID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.channels[guildID]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// IndexOf scans the guild's ordered list. Guilds hold a handful of
// auto-channels, so the linear scan is intentional.
func (r *registry) IndexOf(guildID, channelID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, id := range r.channels[guildID] {
		if id == channelID {
			return i
		}
	}
	return -1
}

func (r *registry) Owner(channelID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.states[channelID]
	return s.Owner, ok && s.Owned()
}

func (r *registry) SetOwner(channelID, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.apply(channelID, func(s CloneState) (CloneState, error) { return OwnerTransferred(s, ownerID) })
	if err != nil {
		if _, tracked := r.guildOf[channelID]; !tracked {
			return fmt.Errorf("%w: %s", ErrNotTracked, channelID)
		}
		return err
	}
	return nil
}

func (r *registry) ClearOwner(channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.apply(channelID, OwnerLost); err != nil {
		return fmt.Errorf("%w: %s", ErrNotTracked, channelID)
	}
	return nil
}

func (r *registry) MarkRenamed(channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.apply(channelID, ManuallyRenamed); err != nil {
		return fmt.Errorf("%w: %s", ErrNotTracked, channelID)
	}
	return nil
}

func (r *registry) IsRenamed(channelID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.states[channelID].ManuallyRenamed
}

func (r *registry) State(channelID string) CloneState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stateLocked(channelID)
}

func (r *registry) stateLocked(channelID string) CloneState {
	if s, ok := r.states[channelID]; ok {
		return s
	}
	return NonExistent{}
}

// apply runs transition on the channel's current state and stores the
// result. Deleted is not retained, so a removed channel reads as
// NonExistent again.
func (r *registry) apply(channelID string, transition func(CloneState) (CloneState, error)) error {
	next, err := transition(r.stateLocked(channelID))
	if err != nil {
		return err
	}
	if a, ok := next.(Active); ok {
		r.states[channelID] = a
	} else {
		delete(r.states, channelID)
	}
	return nil
}

func (r *registry) Guilds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	guilds := make([]string, 0, len(r.channels))
	for guildID := range r.channels {
		guilds = append(guilds, guildID)
	}
	return guilds
}

func (r *registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.guildOf)
}
