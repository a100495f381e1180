package discord

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bwmarrin/discordgo"

	"eclipse/internal/autochannel"
)

// Mutator performs autochannel mutations over the Discord REST API.
type Mutator struct {
	session *discordgo.Session
}

var _ autochannel.Mutator = (*Mutator)(nil)

// NewMutator uses session for REST calls.
func NewMutator(session *discordgo.Session) *Mutator {
	return &Mutator{session: session}
}

// options attaches the call context and the URL-encoded audit log reason.
func options(ctx context.Context, reason string) []discordgo.RequestOption {
	opts := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		opts = append(opts, discordgo.WithAuditLogReason(url.PathEscape(reason)))
	}
	return opts
}

// patch sends a raw channel edit. ChannelEdit omits zero values, which
// makes it impossible to clear a user limit or a parent through it.
func (m *Mutator) patch(ctx context.Context, channelID string, body map[string]any, reason string) error {
	endpoint := discordgo.EndpointChannel(channelID)
	_, err := m.session.RequestWithBucketID("PATCH", endpoint, body, endpoint, options(ctx, reason)...)
	return err
}

// CreateClone implements autochannel.Mutator.
func (m *Mutator) CreateClone(ctx context.Context, root autochannel.Channel, overrides []autochannel.PermissionOverride, reason string) (autochannel.Channel, error) {
	created, err := m.session.GuildChannelCreateComplex(root.GuildID, discordgo.GuildChannelCreateData{
		Name:                 root.Name,
		Type:                 discordgo.ChannelTypeGuildVoice,
		Bitrate:              root.Bitrate,
		UserLimit:            root.UserLimit,
		Position:             root.Position,
		PermissionOverwrites: fromOverrides(overrides),
		ParentID:             root.ParentID,
	}, options(ctx, reason)...)
	if err != nil {
		return autochannel.Channel{}, fmt.Errorf("create copy of %s: %w", root.ID, err)
	}
	return toChannel(created), nil
}

// DeleteChannel implements autochannel.Mutator.
func (m *Mutator) DeleteChannel(ctx context.Context, channelID, reason string) error {
	if _, err := m.session.ChannelDelete(channelID, options(ctx, reason)...); err != nil {
		return fmt.Errorf("delete channel %s: %w", channelID, err)
	}
	return nil
}

// RenameChannel implements autochannel.Mutator.
func (m *Mutator) RenameChannel(ctx context.Context, channelID, name, reason string) error {
	if _, err := m.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name}, options(ctx, reason)...); err != nil {
		return fmt.Errorf("rename channel %s: %w", channelID, err)
	}
	return nil
}

// SetUserLimit implements autochannel.Mutator. A limit of 0 removes it.
func (m *Mutator) SetUserLimit(ctx context.Context, channelID string, limit int, reason string) error {
	if err := m.patch(ctx, channelID, map[string]any{"user_limit": limit}, reason); err != nil {
		return fmt.Errorf("set user limit of %s: %w", channelID, err)
	}
	return nil
}

// SetBitrate implements autochannel.Mutator.
func (m *Mutator) SetBitrate(ctx context.Context, channelID string, bitrate int, reason string) error {
	if err := m.patch(ctx, channelID, map[string]any{"bitrate": bitrate}, reason); err != nil {
		return fmt.Errorf("set bitrate of %s: %w", channelID, err)
	}
	return nil
}

// SetParent implements autochannel.Mutator. An empty parent moves the
// channel out of its category.
func (m *Mutator) SetParent(ctx context.Context, channelID, parentID, reason string) error {
	var parent any
	if parentID != "" {
		parent = parentID
	}
	if err := m.patch(ctx, channelID, map[string]any{"parent_id": parent}, reason); err != nil {
		return fmt.Errorf("set parent of %s: %w", channelID, err)
	}
	return nil
}

// SetPermissionOverride implements autochannel.Mutator.
func (m *Mutator) SetPermissionOverride(ctx context.Context, channelID string, o autochannel.PermissionOverride, reason string) error {
	err := m.session.ChannelPermissionSet(channelID, o.SubjectID, overwriteType(o.Kind),
		int64(o.Allow), int64(o.Deny), options(ctx, reason)...)
	if err != nil {
		return fmt.Errorf("set override of %s on %s: %w", o.SubjectID, channelID, err)
	}
	return nil
}

// RemovePermissionOverride implements autochannel.Mutator.
func (m *Mutator) RemovePermissionOverride(ctx context.Context, channelID, subjectID, reason string) error {
	if err := m.session.ChannelPermissionDelete(channelID, subjectID, options(ctx, reason)...); err != nil {
		return fmt.Errorf("remove override of %s on %s: %w", subjectID, channelID, err)
	}
	return nil
}

// SyncPermissionOverrides implements autochannel.Mutator.
func (m *Mutator) SyncPermissionOverrides(ctx context.Context, channelID string, overrides []autochannel.PermissionOverride, reason string) error {
	body := map[string]any{"permission_overwrites": fromOverrides(overrides)}
	if err := m.patch(ctx, channelID, body, reason); err != nil {
		return fmt.Errorf("sync overrides of %s: %w", channelID, err)
	}
	return nil
}

// MoveMember implements autochannel.Mutator.
func (m *Mutator) MoveMember(ctx context.Context, guildID, memberID, channelID string) error {
	if err := m.session.GuildMemberMove(guildID, memberID, &channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("move member %s to %s: %w", memberID, channelID, err)
	}
	return nil
}
