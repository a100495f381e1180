package autochannel

// EventKind identifies the type of an inbound platform event.
type EventKind string

const (
	KindMemberJoined              EventKind = "MemberJoined"
	KindMemberLeft                EventKind = "MemberLeft"
	KindMemberMoved               EventKind = "MemberMoved"
	KindPresenceChanged           EventKind = "PresenceChanged"
	KindChannelRenamed            EventKind = "ChannelRenamed"
	KindChannelDeleted            EventKind = "ChannelDeleted"
	KindChannelUserLimitChanged   EventKind = "ChannelUserLimitChanged"
	KindChannelBitrateChanged     EventKind = "ChannelBitrateChanged"
	KindChannelParentChanged      EventKind = "ChannelParentChanged"
	KindChannelPermissionsChanged EventKind = "ChannelPermissionsChanged"
	KindRenameDue                 EventKind = "RenameDue"
)

// Event is an inbound platform event scoped to one guild.
type Event interface {
	Guild() string
	Kind() EventKind
}

// MemberJoined is delivered when a member connects to a voice channel.
type MemberJoined struct {
	GuildID   string
	ChannelID string
	MemberID  string
}

// MemberLeft is delivered when a member disconnects from a voice channel.
type MemberLeft struct {
	GuildID   string
	ChannelID string
	MemberID  string
}

// MemberMoved is delivered when a member switches voice channels.
type MemberMoved struct {
	GuildID  string
	FromID   string
	ToID     string
	MemberID string
}

// PresenceChanged is delivered when a member's activities change.
type PresenceChanged struct {
	GuildID  string
	MemberID string
}

// ChannelRenamed is delivered when a channel's name changes, including
// renames issued by eclipse itself.
type ChannelRenamed struct {
	GuildID   string
	ChannelID string
	OldName   string
	NewName   string
}

// ChannelDeleted is delivered when a channel is deleted.
type ChannelDeleted struct {
	GuildID   string
	ChannelID string
}

// ChannelUserLimitChanged is delivered when a channel's user limit changes.
type ChannelUserLimitChanged struct {
	GuildID   string
	ChannelID string
	Old       int
	New       int
}

// ChannelBitrateChanged is delivered when a channel's bitrate changes.
type ChannelBitrateChanged struct {
	GuildID   string
	ChannelID string
	Old       int
	New       int
}

// ChannelParentChanged is delivered when a channel moves to another category.
type ChannelParentChanged struct {
	GuildID   string
	ChannelID string
	OldParent string
	NewParent string
}

// ChannelPermissionsChanged is delivered when a channel's permission
// overrides change.
type ChannelPermissionsChanged struct {
	GuildID   string
	ChannelID string
}

// RenameDue is produced internally when a throttled rename window reopens.
type RenameDue struct {
	GuildID   string
	ChannelID string
}

func (e MemberJoined) Guild() string              { return e.GuildID }
func (e MemberLeft) Guild() string                { return e.GuildID }
func (e MemberMoved) Guild() string               { return e.GuildID }
func (e PresenceChanged) Guild() string           { return e.GuildID }
func (e ChannelRenamed) Guild() string            { return e.GuildID }
func (e ChannelDeleted) Guild() string            { return e.GuildID }
func (e ChannelUserLimitChanged) Guild() string   { return e.GuildID }
func (e ChannelBitrateChanged) Guild() string     { return e.GuildID }
func (e ChannelParentChanged) Guild() string      { return e.GuildID }
func (e ChannelPermissionsChanged) Guild() string { return e.GuildID }
func (e RenameDue) Guild() string                 { return e.GuildID }

func (MemberJoined) Kind() EventKind              { return KindMemberJoined }
func (MemberLeft) Kind() EventKind                { return KindMemberLeft }
func (MemberMoved) Kind() EventKind               { return KindMemberMoved }
func (PresenceChanged) Kind() EventKind           { return KindPresenceChanged }
func (ChannelRenamed) Kind() EventKind            { return KindChannelRenamed }
func (ChannelDeleted) Kind() EventKind            { return KindChannelDeleted }
func (ChannelUserLimitChanged) Kind() EventKind   { return KindChannelUserLimitChanged }
func (ChannelBitrateChanged) Kind() EventKind     { return KindChannelBitrateChanged }
func (ChannelParentChanged) Kind() EventKind      { return KindChannelParentChanged }
func (ChannelPermissionsChanged) Kind() EventKind { return KindChannelPermissionsChanged }
func (RenameDue) Kind() EventKind                 { return KindRenameDue }
