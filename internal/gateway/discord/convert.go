package discord

import (
	"github.com/bwmarrin/discordgo"

	"eclipse/internal/autochannel"
)

// voiceEvents converts a voice state update into membership events. The
// previous channel comes from the state cache; a member whose previous state
// was not cached is treated as joining.
func voiceEvents(u *discordgo.VoiceStateUpdate) []autochannel.Event {
	if u == nil || u.VoiceState == nil {
		return nil
	}
	before := ""
	if u.BeforeUpdate != nil {
		before = u.BeforeUpdate.ChannelID
	}
	after := u.ChannelID

	switch {
	case before == after:
		// mute, deafen, stream toggles
		return nil
	case before == "":
		return []autochannel.Event{autochannel.MemberJoined{GuildID: u.GuildID, ChannelID: after, MemberID: u.UserID}}
	case after == "":
		return []autochannel.Event{autochannel.MemberLeft{GuildID: u.GuildID, ChannelID: before, MemberID: u.UserID}}
	default:
		return []autochannel.Event{autochannel.MemberMoved{GuildID: u.GuildID, FromID: before, ToID: after, MemberID: u.UserID}}
	}
}

// channelUpdateEvents diffs a channel update against the cached channel. One
// gateway update may produce several events; they are returned in a fixed
// order. Updates of uncached channels are dropped.
func channelUpdateEvents(u *discordgo.ChannelUpdate) []autochannel.Event {
	if u == nil || u.Channel == nil || u.BeforeUpdate == nil || u.Type != discordgo.ChannelTypeGuildVoice {
		return nil
	}
	old, cur := u.BeforeUpdate, u.Channel
	g, id := cur.GuildID, cur.ID

	var out []autochannel.Event
	if old.Name != cur.Name {
		out = append(out, autochannel.ChannelRenamed{GuildID: g, ChannelID: id, OldName: old.Name, NewName: cur.Name})
	}
	if old.UserLimit != cur.UserLimit {
		out = append(out, autochannel.ChannelUserLimitChanged{GuildID: g, ChannelID: id, Old: old.UserLimit, New: cur.UserLimit})
	}
	if old.Bitrate != cur.Bitrate {
		out = append(out, autochannel.ChannelBitrateChanged{GuildID: g, ChannelID: id, Old: old.Bitrate, New: cur.Bitrate})
	}
	if old.ParentID != cur.ParentID {
		out = append(out, autochannel.ChannelParentChanged{GuildID: g, ChannelID: id, OldParent: old.ParentID, NewParent: cur.ParentID})
	}
	if !sameOverwrites(old.PermissionOverwrites, cur.PermissionOverwrites) {
		out = append(out, autochannel.ChannelPermissionsChanged{GuildID: g, ChannelID: id})
	}
	return out
}

func channelDeleteEvent(d *discordgo.ChannelDelete) (autochannel.Event, bool) {
	if d == nil || d.Channel == nil || d.GuildID == "" {
		return nil, false
	}
	return autochannel.ChannelDeleted{GuildID: d.GuildID, ChannelID: d.ID}, true
}

func presenceEvent(p *discordgo.PresenceUpdate) (autochannel.Event, bool) {
	if p == nil || p.User == nil || p.GuildID == "" {
		return nil, false
	}
	return autochannel.PresenceChanged{GuildID: p.GuildID, MemberID: p.User.ID}, true
}

// sameOverwrites compares override lists ignoring order.
func sameOverwrites(a, b []*discordgo.PermissionOverwrite) bool {
	if len(a) != len(b) {
		return false
	}
	index := make(map[string]discordgo.PermissionOverwrite, len(a))
	for _, o := range a {
		if o != nil {
			index[o.ID] = *o
		}
	}
	for _, o := range b {
		if o == nil {
			continue
		}
		prev, ok := index[o.ID]
		if !ok || prev != *o {
			return false
		}
	}
	return true
}

func toChannel(c *discordgo.Channel) autochannel.Channel {
	ch := autochannel.Channel{
		ID:        c.ID,
		GuildID:   c.GuildID,
		Name:      c.Name,
		Position:  c.Position,
		UserLimit: c.UserLimit,
		Bitrate:   c.Bitrate,
		ParentID:  c.ParentID,
	}
	for _, o := range c.PermissionOverwrites {
		if o != nil {
			ch.Overrides = append(ch.Overrides, toOverride(o))
		}
	}
	return ch
}

func toOverride(o *discordgo.PermissionOverwrite) autochannel.PermissionOverride {
	kind := autochannel.OverrideRole
	if o.Type == discordgo.PermissionOverwriteTypeMember {
		kind = autochannel.OverrideMember
	}
	return autochannel.PermissionOverride{
		SubjectID: o.ID,
		Kind:      kind,
		Allow:     autochannel.Permission(o.Allow),
		Deny:      autochannel.Permission(o.Deny),
	}
}

func fromOverride(o autochannel.PermissionOverride) *discordgo.PermissionOverwrite {
	return &discordgo.PermissionOverwrite{
		ID:    o.SubjectID,
		Type:  overwriteType(o.Kind),
		Allow: int64(o.Allow),
		Deny:  int64(o.Deny),
	}
}

func fromOverrides(in []autochannel.PermissionOverride) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(in))
	for _, o := range in {
		out = append(out, fromOverride(o))
	}
	return out
}

func overwriteType(k autochannel.OverrideKind) discordgo.PermissionOverwriteType {
	if k == autochannel.OverrideMember {
		return discordgo.PermissionOverwriteTypeMember
	}
	return discordgo.PermissionOverwriteTypeRole
}

func toActivities(in []*discordgo.Activity) []autochannel.Activity {
	out := make([]autochannel.Activity, 0, len(in))
	for _, a := range in {
		if a == nil {
			continue
		}
		out = append(out, autochannel.Activity{Name: a.Name, Type: toActivityType(a.Type)})
	}
	return out
}

func toActivityType(t discordgo.ActivityType) autochannel.ActivityType {
	switch t {
	case discordgo.ActivityTypeStreaming:
		return autochannel.ActivityStreaming
	case discordgo.ActivityTypeListening:
		return autochannel.ActivityListening
	case discordgo.ActivityTypeWatching:
		return autochannel.ActivityWatching
	case discordgo.ActivityTypeCustom:
		return autochannel.ActivityCustomStatus
	case discordgo.ActivityTypeCompeting:
		return autochannel.ActivityCompeting
	default:
		return autochannel.ActivityPlaying
	}
}
