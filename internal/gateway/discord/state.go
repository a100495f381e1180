package discord

import (
	"github.com/bwmarrin/discordgo"

	"eclipse/internal/autochannel"
)

// State answers autochannel.State queries from the discordgo state cache.
type State struct {
	cache *discordgo.State
}

var _ autochannel.State = (*State)(nil)

// NewState wraps a discordgo state cache. The cache must track channels,
// members, voice states and presences.
func NewState(cache *discordgo.State) *State {
	return &State{cache: cache}
}

// Channel implements autochannel.State.
func (s *State) Channel(guildID, channelID string) (autochannel.Channel, bool) {
	c, err := s.cache.Channel(channelID)
	if err != nil || c.GuildID != guildID {
		return autochannel.Channel{}, false
	}
	s.cache.RLock()
	defer s.cache.RUnlock()
	return toChannel(c), true
}

// VoiceMembers implements autochannel.State. Members are returned in the
// order the gateway reported their voice states.
func (s *State) VoiceMembers(guildID, channelID string) []autochannel.Member {
	guild, err := s.cache.Guild(guildID)
	if err != nil {
		return nil
	}

	s.cache.RLock()
	var userIDs []string
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			userIDs = append(userIDs, vs.UserID)
		}
	}
	s.cache.RUnlock()

	members := make([]autochannel.Member, 0, len(userIDs))
	for _, id := range userIDs {
		members = append(members, s.member(guildID, id))
	}
	return members
}

func (s *State) member(guildID, userID string) autochannel.Member {
	m := autochannel.Member{ID: userID}
	if gm, err := s.cache.Member(guildID, userID); err == nil && gm.User != nil {
		m.Bot = gm.User.Bot
	}
	if p, err := s.cache.Presence(guildID, userID); err == nil {
		s.cache.RLock()
		m.Activities = toActivities(p.Activities)
		if p.User != nil && p.User.Bot {
			m.Bot = true
		}
		s.cache.RUnlock()
	}
	return m
}

// VoiceChannelOf implements autochannel.State.
func (s *State) VoiceChannelOf(guildID, memberID string) (string, bool) {
	vs, err := s.cache.VoiceState(guildID, memberID)
	if err != nil || vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}
