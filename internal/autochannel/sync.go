package autochannel

import (
	"context"
	"slices"

	"eclipse/internal/events"
	"eclipse/pkg/logging"
)

// Property identifiers used in audit-log reasons.
const (
	propertyUserLimit = "userlimit"
	propertyBitrate   = "bitrate"
	propertyParent    = "parent"
)

func (h *handling) isRoot(channelID string) bool {
	return channelID == h.cfg.RootChannelID
}

// userLimitChanged propagates a root user limit change to every
// auto-channel still using the root's previous limit.
func (h *handling) userLimitChanged(e ChannelUserLimitChanged) {
	if !h.isRoot(e.ChannelID) {
		return
	}
	reason := h.reasons.Render(events.ReasonPropertySynced, events.ReasonData{Property: propertyUserLimit, Channel: e.ChannelID})
	for _, ch := range h.clones() {
		if ch.UserLimit != e.Old {
			continue
		}
		id := ch.ID
		Do(h.exec, MutationSetUserLimit, func(ctx context.Context) error {
			return h.mutator.SetUserLimit(ctx, id, e.New, reason)
		}, h.logFailure(MutationSetUserLimit, id))
	}
}

// bitrateChanged propagates a root bitrate change to every auto-channel
// still using the root's previous bitrate.
func (h *handling) bitrateChanged(e ChannelBitrateChanged) {
	if !h.isRoot(e.ChannelID) {
		return
	}
	reason := h.reasons.Render(events.ReasonPropertySynced, events.ReasonData{Property: propertyBitrate, Channel: e.ChannelID})
	for _, ch := range h.clones() {
		if ch.Bitrate != e.Old {
			continue
		}
		id := ch.ID
		Do(h.exec, MutationSetBitrate, func(ctx context.Context) error {
			return h.mutator.SetBitrate(ctx, id, e.New, reason)
		}, h.logFailure(MutationSetBitrate, id))
	}
}

// parentChanged moves every auto-channel into the root's new category.
func (h *handling) parentChanged(e ChannelParentChanged) {
	if !h.isRoot(e.ChannelID) {
		return
	}
	reason := h.reasons.Render(events.ReasonPropertySynced, events.ReasonData{Property: propertyParent, Channel: e.ChannelID})
	for _, ch := range h.clones() {
		id := ch.ID
		Do(h.exec, MutationSetParent, func(ctx context.Context) error {
			return h.mutator.SetParent(ctx, id, e.NewParent, reason)
		}, h.logFailure(MutationSetParent, id))
	}
}

// permissionsChanged copies the root's overrides onto every auto-channel and
// puts the owner override back on top.
func (h *handling) permissionsChanged(channelID string) {
	if !h.isRoot(channelID) {
		return
	}
	root, ok := h.state.Channel(h.guild(), channelID)
	if !ok {
		return
	}
	reason := h.reasons.Render(events.ReasonPermissionsSynced, events.ReasonData{Channel: channelID})
	for _, ch := range h.clones() {
		id := ch.ID
		overrides := syncedOverrides(root.Overrides, h.ownerOf(id))
		Do(h.exec, MutationSyncOverrides, func(ctx context.Context) error {
			return h.mutator.SyncPermissionOverrides(ctx, id, overrides, reason)
		}, h.logFailure(MutationSyncOverrides, id))
	}
}

func (h *handling) ownerOf(channelID string) string {
	owner, _ := h.registry.Owner(channelID)
	return owner
}

// syncedOverrides returns the root overrides with the owner override
// replacing any root override for the same member.
func syncedOverrides(root []PermissionOverride, owner string) []PermissionOverride {
	out := slices.Clone(root)
	if owner == "" {
		return out
	}
	out = slices.DeleteFunc(out, func(o PermissionOverride) bool { return o.SubjectID == owner })
	return append(out, ownerOverride(owner))
}

// clones returns the cached state of the guild's auto-channels in creation
// order, skipping channels missing from the cache.
func (h *handling) clones() []Channel {
	var out []Channel
	for _, id := range h.registry.List(h.guild()) {
		if ch, ok := h.state.Channel(h.guild(), id); ok {
			out = append(out, ch)
		}
	}
	return out
}

func (h *handling) logFailure(kind MutationKind, channelID string) func(error) {
	return func(err error) {
		if err != nil {
			logging.Warn(subsystem, "[%s] %s on %s failed: %v", h.id, kind, channelID, err)
		}
	}
}
