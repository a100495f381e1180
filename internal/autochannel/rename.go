package autochannel

import (
	"context"
	"slices"

	"eclipse/internal/events"
	"eclipse/pkg/logging"
)

// label computes the name channelID should carry right now.
func (h *handling) label(channelID string) (string, bool) {
	index := h.registry.IndexOf(h.guild(), channelID)
	if index < 0 {
		return "", false
	}
	return Synthesize(h.state.VoiceMembers(h.guild(), channelID), index, h.fallbackLabel()), true
}

// rename requests the synthesized label for channelID unless the channel
// was renamed by a user, already carries the label, or is throttled.
func (h *handling) rename(channelID string, cause renameCause) {
	if h.registry.IsRenamed(channelID) {
		return
	}
	current, ok := h.state.Channel(h.guild(), channelID)
	if !ok {
		return
	}
	label, ok := h.label(channelID)
	if !ok {
		return
	}

	if h.upToDate(channelID, current.Name, label) {
		h.metrics.RecordRenameSkipped()
		return
	}

	throttled := h.policy.throttled(cause)
	if throttled {
		guildID := h.guild()
		acquired := h.throttle.Acquire(channelID, func() {
			h.requeueEvent(RenameDue{GuildID: guildID, ChannelID: channelID})
		})
		if !acquired {
			h.metrics.RecordRenameThrottled()
			logging.Debug(subsystem, "[%s] Rename of %s deferred by the %s window", h.id, channelID, h.policy.Window)
			return
		}
	}

	if !h.claim(channelID, current.Name, label) {
		if throttled {
			h.throttle.Refund(channelID)
		}
		h.metrics.RecordRenameSkipped()
		return
	}
	reason := h.reasons.Render(events.ReasonRenamed, events.ReasonData{Channel: channelID, Label: label})
	logging.Debug(subsystem, "[%s] Renaming %s to %q (%s)", h.id, channelID, label, cause)

	Do(h.exec, MutationRename, func(ctx context.Context) error {
		return h.mutator.RenameChannel(ctx, channelID, label, reason)
	}, func(err error) {
		if err == nil {
			return
		}
		if throttled {
			h.throttle.Refund(channelID)
		}
		h.consume(channelID, label)
		logging.Warn(subsystem, "[%s] Failed to rename %s to %q: %v", h.id, channelID, label, err)
	})
}

// upToDate reports whether no rename is needed: either the most recent
// outstanding request already asks for label, or nothing is outstanding and
// the channel carries label.
func (o *Orchestrator) upToDate(channelID, current, label string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.upToDateLocked(channelID, current, label)
}

func (o *Orchestrator) upToDateLocked(channelID, current, label string) bool {
	pending := o.requested[channelID]
	if len(pending) > 0 {
		return pending[len(pending)-1] == label
	}
	return current == label
}

// claim records label as an outstanding request unless the channel is
// already up to date. It reports whether the caller should send the rename.
func (o *Orchestrator) claim(channelID, current, label string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.upToDateLocked(channelID, current, label) {
		return false
	}
	o.requested[channelID] = append(o.requested[channelID], label)
	return true
}

// consume removes label from the outstanding requests and reports whether
// it was there.
func (o *Orchestrator) consume(channelID, label string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	pending := o.requested[channelID]
	i := slices.Index(pending, label)
	if i < 0 {
		return false
	}
	pending = slices.Delete(pending, i, i+1)
	if len(pending) == 0 {
		delete(o.requested, channelID)
	} else {
		o.requested[channelID] = pending
	}
	return true
}

// renamed handles a rename observed on the gateway. Names eclipse requested
// itself and names matching the current synthesized label are not manual.
func (h *handling) renamed(channelID, newName string) {
	if !h.tracked(channelID) {
		return
	}
	if h.consume(channelID, newName) {
		return
	}
	if h.registry.IsRenamed(channelID) {
		return
	}
	if label, ok := h.label(channelID); !ok || label == newName {
		return
	}

	if err := h.registry.MarkRenamed(channelID); err != nil {
		return
	}
	h.throttle.Forget(channelID)
	h.metrics.RecordManualRename()
	logging.Info(subsystem, "[%s] Auto-channel %s was renamed to %q by a user, automatic renames stop", h.id, channelID, newName)
}
