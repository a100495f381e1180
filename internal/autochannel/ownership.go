package autochannel

import (
	"context"

	"eclipse/internal/events"
	"eclipse/pkg/logging"
)

// pickOwner returns the first member that is not a bot, or the first member
// if all of them are bots. members must not be empty.
func pickOwner(members []Member) Member {
	for _, m := range members {
		if !m.Bot {
			return m
		}
	}
	return members[0]
}

// transferOwnership hands the owner override from the departed owner to one
// of the remaining members. The owner map follows the grant: it is updated
// when the grant succeeds and cleared when it fails.
func (h *handling) transferOwnership(channelID, oldOwner string, remaining []Member) {
	newOwner := pickOwner(remaining).ID
	reason := h.reasons.Render(events.ReasonOwnerLeft, events.ReasonData{
		Actor:    oldOwner,
		NewOwner: newOwner,
		Channel:  channelID,
	})

	logging.Info(subsystem, "[%s] Owner %s left auto-channel %s, designating %s", h.id, oldOwner, channelID, newOwner)

	Do(h.exec, MutationRemoveOverride, func(ctx context.Context) error {
		return h.mutator.RemovePermissionOverride(ctx, channelID, oldOwner, reason)
	}, func(err error) {
		if err != nil {
			logging.Warn(subsystem, "[%s] Failed to revoke override of former owner %s on %s: %v", h.id, oldOwner, channelID, err)
		}
	})

	Do(h.exec, MutationSetOverride, func(ctx context.Context) error {
		return h.mutator.SetPermissionOverride(ctx, channelID, ownerOverride(newOwner), reason)
	}, func(err error) {
		if err != nil {
			h.metrics.RecordOwnerTransferFail()
			logging.Error(subsystem, err, "[%s] Failed to grant ownership of %s to %s, channel is now ownerless", h.id, channelID, newOwner)
			if cerr := h.registry.ClearOwner(channelID); cerr != nil {
				logging.Debug(subsystem, "[%s] %v", h.id, cerr)
			}
			return
		}
		if serr := h.registry.SetOwner(channelID, newOwner); serr != nil {
			logging.Debug(subsystem, "[%s] Ownership of %s granted after it was untracked: %v", h.id, channelID, serr)
			return
		}
		h.metrics.RecordOwnerTransfer()
	})
}
