// Package fake provides an in-memory platform that implements the
// autochannel State and Mutator interfaces, with call recording and
// failure injection for orchestrator tests.
package fake

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"eclipse/internal/autochannel"
)

// ErrUnknownChannel is returned for calls against channels that do not exist.
var ErrUnknownChannel = errors.New("unknown channel")

// Call records one Mutator invocation.
type Call struct {
	Kind      autochannel.MutationKind
	ChannelID string
	MemberID  string
	Name      string
	Value     int
	ParentID  string
	Override  autochannel.PermissionOverride
	Overrides []autochannel.PermissionOverride
	Reason    string
}

type failure struct {
	channelID string
	err       error
	remaining int
}

// Platform is a thread-safe in-memory guild. Test code mutates membership
// with Join, Leave and SetActivities and then hands the matching events to
// the orchestrator; Mutator calls update the same state.
type Platform struct {
	mu sync.Mutex

	channels map[string]autochannel.Channel
	voice    map[string][]string
	members  map[string]autochannel.Member
	calls    []Call
	failures map[autochannel.MutationKind][]*failure
	gates    map[autochannel.MutationKind]chan struct{}
	nextID   int
}

var (
	_ autochannel.State   = (*Platform)(nil)
	_ autochannel.Mutator = (*Platform)(nil)
)

// NewPlatform creates an empty platform.
func NewPlatform() *Platform {
	return &Platform{
		channels: make(map[string]autochannel.Channel),
		voice:    make(map[string][]string),
		members:  make(map[string]autochannel.Member),
		failures: make(map[autochannel.MutationKind][]*failure),
		gates:    make(map[autochannel.MutationKind]chan struct{}),
	}
}

// AddChannel creates or replaces a channel.
func (p *Platform) AddChannel(ch autochannel.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[ch.ID] = ch
}

// UpdateChannel applies fn to a stored channel.
func (p *Platform) UpdateChannel(channelID string, fn func(*autochannel.Channel)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.channels[channelID]; ok {
		fn(&ch)
		p.channels[channelID] = ch
	}
}

// RemoveChannel deletes a channel as if it were deleted by a user.
func (p *Platform) RemoveChannel(channelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.channels, channelID)
	delete(p.voice, channelID)
}

// AddMember registers a member without connecting it.
func (p *Platform) AddMember(m autochannel.Member) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members[m.ID] = m
}

// SetActivities replaces a member's activities.
func (p *Platform) SetActivities(memberID string, activities ...autochannel.Activity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.members[memberID]
	m.ID = memberID
	m.Activities = activities
	p.members[memberID] = m
}

// Join connects a member to a voice channel, disconnecting it elsewhere.
func (p *Platform) Join(channelID, memberID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.joinLocked(channelID, memberID)
}

func (p *Platform) joinLocked(channelID, memberID string) {
	p.leaveLocked(memberID)
	if _, ok := p.members[memberID]; !ok {
		p.members[memberID] = autochannel.Member{ID: memberID}
	}
	p.voice[channelID] = append(p.voice[channelID], memberID)
}

// Leave disconnects a member from voice.
func (p *Platform) Leave(memberID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.leaveLocked(memberID)
}

func (p *Platform) leaveLocked(memberID string) {
	for id, list := range p.voice {
		if i := slices.Index(list, memberID); i >= 0 {
			p.voice[id] = slices.Delete(slices.Clone(list), i, i+1)
		}
	}
}

// Fail makes the next n calls of kind fail with err. An empty channelID
// matches every channel.
func (p *Platform) Fail(kind autochannel.MutationKind, channelID string, n int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[kind] = append(p.failures[kind], &failure{channelID: channelID, err: err, remaining: n})
}

// Hold blocks calls of kind until the returned release function is called.
func (p *Platform) Hold(kind autochannel.MutationKind) (release func()) {
	gate := make(chan struct{})
	p.mu.Lock()
	p.gates[kind] = gate
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			if p.gates[kind] == gate {
				delete(p.gates, kind)
			}
			p.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns a copy of all recorded calls.
func (p *Platform) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.calls)
}

// CallsOf returns the recorded calls of one kind.
func (p *Platform) CallsOf(kind autochannel.MutationKind) []Call {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []Call
	for _, c := range p.calls {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (p *Platform) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

// Channel implements autochannel.State.
func (p *Platform) Channel(guildID, channelID string) (autochannel.Channel, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, ok := p.channels[channelID]
	if !ok || ch.GuildID != guildID {
		return autochannel.Channel{}, false
	}
	ch.Overrides = slices.Clone(ch.Overrides)
	return ch, true
}

// VoiceMembers implements autochannel.State.
func (p *Platform) VoiceMembers(guildID, channelID string) []autochannel.Member {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ch, ok := p.channels[channelID]; !ok || ch.GuildID != guildID {
		return nil
	}
	var out []autochannel.Member
	for _, id := range p.voice[channelID] {
		out = append(out, p.members[id])
	}
	return out
}

// VoiceChannelOf implements autochannel.State.
func (p *Platform) VoiceChannelOf(guildID, memberID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, list := range p.voice {
		if slices.Contains(list, memberID) && p.channels[id].GuildID == guildID {
			return id, true
		}
	}
	return "", false
}

// begin records the call, waits on a gate and returns an injected failure.
func (p *Platform) begin(ctx context.Context, call Call) error {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	gate := p.gates[call.Kind]
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range p.failures[call.Kind] {
		if f.remaining > 0 && (f.channelID == "" || f.channelID == call.ChannelID) {
			f.remaining--
			return f.err
		}
	}
	return nil
}

// CreateClone implements autochannel.Mutator.
func (p *Platform) CreateClone(ctx context.Context, root autochannel.Channel, overrides []autochannel.PermissionOverride, reason string) (autochannel.Channel, error) {
	if err := p.begin(ctx, Call{Kind: autochannel.MutationCreate, ChannelID: root.ID, Overrides: overrides, Reason: reason}); err != nil {
		return autochannel.Channel{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	clone := root
	clone.ID = fmt.Sprintf("clone-%d", p.nextID)
	clone.Overrides = slices.Clone(overrides)
	p.channels[clone.ID] = clone
	return clone, nil
}

// DeleteChannel implements autochannel.Mutator.
func (p *Platform) DeleteChannel(ctx context.Context, channelID, reason string) error {
	if err := p.begin(ctx, Call{Kind: autochannel.MutationDelete, ChannelID: channelID, Reason: reason}); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.channels[channelID]; !ok {
		return ErrUnknownChannel
	}
	delete(p.channels, channelID)
	delete(p.voice, channelID)
	return nil
}

// RenameChannel implements autochannel.Mutator.
func (p *Platform) RenameChannel(ctx context.Context, channelID, name, reason string) error {
	if err := p.begin(ctx, Call{Kind: autochannel.MutationRename, ChannelID: channelID, Name: name, Reason: reason}); err != nil {
		return err
	}
	return p.update(channelID, func(ch *autochannel.Channel) { ch.Name = name })
}

// SetUserLimit implements autochannel.Mutator.
func (p *Platform) SetUserLimit(ctx context.Context, channelID string, limit int, reason string) error {
	if err := p.begin(ctx, Call{Kind: autochannel.MutationSetUserLimit, ChannelID: channelID, Value: limit, Reason: reason}); err != nil {
		return err
	}
	return p.update(channelID, func(ch *autochannel.Channel) { ch.UserLimit = limit })
}

// SetBitrate implements autochannel.Mutator.
func (p *Platform) SetBitrate(ctx context.Context, channelID string, bitrate int, reason string) error {
	if err := p.begin(ctx, Call{Kind: autochannel.MutationSetBitrate, ChannelID: channelID, Value: bitrate, Reason: reason}); err != nil {
		return err
	}
	return p.update(channelID, func(ch *autochannel.Channel) { ch.Bitrate = bitrate })
}

// SetParent implements autochannel.Mutator.
func (p *Platform) SetParent(ctx context.Context, channelID, parentID, reason string) error {
	if err := p.begin(ctx, Call{Kind: autochannel.MutationSetParent, ChannelID: channelID, ParentID: parentID, Reason: reason}); err != nil {
		return err
	}
	return p.update(channelID, func(ch *autochannel.Channel) { ch.ParentID = parentID })
}

// SetPermissionOverride implements autochannel.Mutator.
func (p *Platform) SetPermissionOverride(ctx context.Context, channelID string, override autochannel.PermissionOverride, reason string) error {
	if err := p.begin(ctx, Call{Kind: autochannel.MutationSetOverride, ChannelID: channelID, MemberID: override.SubjectID, Override: override, Reason: reason}); err != nil {
		return err
	}
	return p.update(channelID, func(ch *autochannel.Channel) {
		ch.Overrides = slices.DeleteFunc(ch.Overrides, func(o autochannel.PermissionOverride) bool { return o.SubjectID == override.SubjectID })
		ch.Overrides = append(ch.Overrides, override)
	})
}

// RemovePermissionOverride implements autochannel.Mutator.
func (p *Platform) RemovePermissionOverride(ctx context.Context, channelID, subjectID, reason string) error {
	if err := p.begin(ctx, Call{Kind: autochannel.MutationRemoveOverride, ChannelID: channelID, MemberID: subjectID, Reason: reason}); err != nil {
		return err
	}
	return p.update(channelID, func(ch *autochannel.Channel) {
		ch.Overrides = slices.DeleteFunc(ch.Overrides, func(o autochannel.PermissionOverride) bool { return o.SubjectID == subjectID })
	})
}

// SyncPermissionOverrides implements autochannel.Mutator.
func (p *Platform) SyncPermissionOverrides(ctx context.Context, channelID string, overrides []autochannel.PermissionOverride, reason string) error {
	if err := p.begin(ctx, Call{Kind: autochannel.MutationSyncOverrides, ChannelID: channelID, Overrides: slices.Clone(overrides), Reason: reason}); err != nil {
		return err
	}
	return p.update(channelID, func(ch *autochannel.Channel) { ch.Overrides = slices.Clone(overrides) })
}

// MoveMember implements autochannel.Mutator.
func (p *Platform) MoveMember(ctx context.Context, guildID, memberID, channelID string) error {
	if err := p.begin(ctx, Call{Kind: autochannel.MutationMoveMember, ChannelID: channelID, MemberID: memberID}); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.channels[channelID]; !ok || ch.GuildID != guildID {
		return ErrUnknownChannel
	}
	p.joinLocked(channelID, memberID)
	return nil
}

func (p *Platform) update(channelID string, fn func(*autochannel.Channel)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[channelID]
	if !ok {
		return ErrUnknownChannel
	}
	fn(&ch)
	p.channels[channelID] = ch
	return nil
}
