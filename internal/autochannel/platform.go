package autochannel

import "context"

// ActivityType mirrors the platform's activity categories.
type ActivityType int

const (
	ActivityPlaying ActivityType = iota
	ActivityStreaming
	ActivityListening
	ActivityWatching
	ActivityCustomStatus
	ActivityCompeting
)

// Activity is one entry of a member's rich presence.
type Activity struct {
	Name string
	Type ActivityType
}

// Member is a guild member currently connected to a voice channel.
type Member struct {
	ID         string
	Bot        bool
	Activities []Activity
}

// Permission is a bitset of channel permissions. Bit values match the
// Discord API so adapters can pass them through unchanged.
type Permission int64

const (
	PermissionManageChannels  Permission = 1 << 4
	PermissionPrioritySpeaker Permission = 1 << 8
	PermissionStream          Permission = 1 << 9
	PermissionSpeak           Permission = 1 << 21
	PermissionMoveMembers     Permission = 1 << 24
	PermissionUseVAD          Permission = 1 << 25
)

// OwnerAllow is granted to the owner of an auto-channel.
const OwnerAllow = PermissionManageChannels | PermissionPrioritySpeaker | PermissionSpeak |
	PermissionMoveMembers | PermissionUseVAD | PermissionStream

// OwnerDeny is denied to the owner of an auto-channel.
const OwnerDeny Permission = 0

// OverrideKind tells whether an override targets a role or a member.
type OverrideKind int

const (
	OverrideRole OverrideKind = iota
	OverrideMember
)

// PermissionOverride is a per-channel allow/deny pair for one subject.
type PermissionOverride struct {
	SubjectID string
	Kind      OverrideKind
	Allow     Permission
	Deny      Permission
}

// ownerOverride returns the override granted to an auto-channel owner.
func ownerOverride(memberID string) PermissionOverride {
	return PermissionOverride{
		SubjectID: memberID,
		Kind:      OverrideMember,
		Allow:     OwnerAllow,
		Deny:      OwnerDeny,
	}
}

// Channel is a snapshot of a voice channel's properties.
type Channel struct {
	ID        string
	GuildID   string
	Name      string
	Position  int
	UserLimit int
	Bitrate   int
	ParentID  string
	Overrides []PermissionOverride
}

// State is a read-only view of the platform cache. Implementations must
// answer from memory; none of these methods may perform network I/O.
type State interface {
	// Channel returns the current properties of a channel.
	Channel(guildID, channelID string) (Channel, bool)

	// VoiceMembers returns the members connected to a voice channel, in the
	// platform's enumeration order.
	VoiceMembers(guildID, channelID string) []Member

	// VoiceChannelOf returns the voice channel a member is connected to.
	VoiceChannelOf(guildID, memberID string) (string, bool)
}

// Mutator performs outbound calls against the platform. Calls block until
// the platform answered; the orchestrator only ever invokes them through
// an Executor. Every call carries an audit log reason.
type Mutator interface {
	// CreateClone creates a copy of root (name, limits, parent, position)
	// with the given permission overrides and returns the new channel.
	CreateClone(ctx context.Context, root Channel, overrides []PermissionOverride, reason string) (Channel, error)
	DeleteChannel(ctx context.Context, channelID, reason string) error
	RenameChannel(ctx context.Context, channelID, name, reason string) error
	SetUserLimit(ctx context.Context, channelID string, limit int, reason string) error
	SetBitrate(ctx context.Context, channelID string, bitrate int, reason string) error
	SetParent(ctx context.Context, channelID, parentID, reason string) error
	SetPermissionOverride(ctx context.Context, channelID string, override PermissionOverride, reason string) error
	RemovePermissionOverride(ctx context.Context, channelID, subjectID, reason string) error
	// SyncPermissionOverrides replaces the channel's full override list.
	SyncPermissionOverrides(ctx context.Context, channelID string, overrides []PermissionOverride, reason string) error
	MoveMember(ctx context.Context, guildID, memberID, channelID string) error
}
