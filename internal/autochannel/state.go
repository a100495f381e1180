package autochannel

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when an event does not apply to the
// current state of an auto-channel.
var ErrIllegalTransition = errors.New("illegal auto-channel state transition")

// CloneState is the lifecycle state of an auto-channel. It is one of
// NonExistent, Active or Deleted.
type CloneState interface {
	cloneState()
	String() string
}

// NonExistent is the state of a channel that was never tracked.
type NonExistent struct{}

// Active is the state of a tracked auto-channel. An empty Owner means the
// channel is ownerless because an ownership transfer failed.
type Active struct {
	Owner           string
	ManuallyRenamed bool
}

// Deleted is the terminal state of an auto-channel. The registry drops a
// channel on reaching it, so Registry.State never reports it.
type Deleted struct{}

func (NonExistent) cloneState() {}
func (Active) cloneState()      {}
func (Deleted) cloneState()     {}

func (NonExistent) String() string { return "NonExistent" }
func (Deleted) String() string     { return "Deleted" }

func (a Active) String() string {
	owner := a.Owner
	if owner == "" {
		owner = "<none>"
	}
	return fmt.Sprintf("Active(owner=%s, manuallyRenamed=%t)", owner, a.ManuallyRenamed)
}

// Owned reports whether the channel has an owner.
func (a Active) Owned() bool { return a.Owner != "" }

func illegal(event string, s CloneState) error {
	return fmt.Errorf("%w: %s in state %s", ErrIllegalTransition, event, s)
}

// Created is the transition for a successful clone creation.
func Created(s CloneState, owner string) (CloneState, error) {
	if _, ok := s.(NonExistent); !ok {
		return s, illegal("Created", s)
	}
	return Active{Owner: owner}, nil
}

// OwnerTransferred is the transition for a confirmed ownership transfer.
func OwnerTransferred(s CloneState, newOwner string) (CloneState, error) {
	a, ok := s.(Active)
	if !ok || newOwner == "" {
		return s, illegal("OwnerTransferred", s)
	}
	a.Owner = newOwner
	return a, nil
}

// OwnerLost is the transition for a failed ownership transfer.
func OwnerLost(s CloneState) (CloneState, error) {
	a, ok := s.(Active)
	if !ok {
		return s, illegal("OwnerLost", s)
	}
	a.Owner = ""
	return a, nil
}

// ManuallyRenamed is the transition for an observed external rename.
// It is idempotent: the flag never reverts.
func ManuallyRenamed(s CloneState) (CloneState, error) {
	a, ok := s.(Active)
	if !ok {
		return s, illegal("ManuallyRenamed", s)
	}
	a.ManuallyRenamed = true
	return a, nil
}

// Removed is the transition for a deleted auto-channel.
func Removed(s CloneState) (CloneState, error) {
	if _, ok := s.(Active); !ok {
		return s, illegal("Removed", s)
	}
	return Deleted{}, nil
}
