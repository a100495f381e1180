package autochannel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"eclipse/internal/events"
	"eclipse/internal/store"
	"eclipse/pkg/clock"
	"eclipse/pkg/logging"
)

const subsystem = "AutoChannel"

// Options configures an Orchestrator. Registry, State, Mutator, Configs and
// Executor are required.
type Options struct {
	Registry Registry
	State    State
	Mutator  Mutator
	Configs  store.RootConfigStore
	Executor *Executor

	// Clock drives the rename throttle. Defaults to the real clock.
	Clock clock.Clock

	// Policy controls rename throttling. The zero value disables it, use
	// DefaultRenamePolicy for the standard behavior.
	Policy RenamePolicy

	// Reasons renders audit-log reasons. Defaults to the built-in templates.
	Reasons *events.ReasonEngine

	// DefaultLabel is used for guilds without their own default label.
	// Defaults to "General".
	DefaultLabel string
}

// Orchestrator keeps a guild's auto-channels in line with voice activity.
//
// Handle is called for every inbound event. Handlers read the registry and
// the platform state, then submit mutations to the executor and return
// without waiting. Continuations advance the registry once a mutation is
// confirmed.
type Orchestrator struct {
	registry     Registry
	state        State
	mutator      Mutator
	configs      store.RootConfigStore
	exec         *Executor
	metrics      *Metrics
	policy       RenamePolicy
	reasons      *events.ReasonEngine
	defaultLabel string
	throttle     *renameThrottle

	mu sync.Mutex
	// requested holds labels sent to the platform whose rename event has
	// not been observed yet, oldest first.
	requested map[string][]string
	requeue   func(Event)
}

// New creates an orchestrator.
func New(opts Options) (*Orchestrator, error) {
	var errs []error
	if opts.Registry == nil {
		errs = append(errs, errors.New("registry is required"))
	}
	if opts.State == nil {
		errs = append(errs, errors.New("state is required"))
	}
	if opts.Mutator == nil {
		errs = append(errs, errors.New("mutator is required"))
	}
	if opts.Configs == nil {
		errs = append(errs, errors.New("config store is required"))
	}
	if opts.Executor == nil {
		errs = append(errs, errors.New("executor is required"))
	}
	if opts.Policy.Window < 0 {
		errs = append(errs, fmt.Errorf("rename window must not be negative, got %s", opts.Policy.Window))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid orchestrator options: %w", errors.Join(errs...))
	}

	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Reasons == nil {
		opts.Reasons = events.MustReasonEngine()
	}
	if opts.DefaultLabel == "" {
		opts.DefaultLabel = DefaultLabel
	}

	return &Orchestrator{
		registry:     opts.Registry,
		state:        opts.State,
		mutator:      opts.Mutator,
		configs:      opts.Configs,
		exec:         opts.Executor,
		metrics:      opts.Executor.Metrics(),
		policy:       opts.Policy,
		reasons:      opts.Reasons,
		defaultLabel: opts.DefaultLabel,
		throttle:     newRenameThrottle(opts.Clock, opts.Policy.Window),
		requested:    make(map[string][]string),
	}, nil
}

// SetRequeue sets the function used to deliver RenameDue events once a
// throttled rename may be applied. Without it the event is handled directly
// on the timer goroutine.
func (o *Orchestrator) SetRequeue(fn func(Event)) {
	o.mu.Lock()
	o.requeue = fn
	o.mu.Unlock()
}

// Registry returns the registry the orchestrator maintains.
func (o *Orchestrator) Registry() Registry {
	return o.registry
}

// Metrics returns the metrics shared with the executor.
func (o *Orchestrator) Metrics() *Metrics {
	return o.metrics
}

// Close stops pending trailing renames.
func (o *Orchestrator) Close() {
	o.throttle.Stop()
}

// Handle processes one event. Guilds without a root config are ignored.
// The returned error only reports a failed config lookup; mutation failures
// are logged and counted.
func (o *Orchestrator) Handle(ctx context.Context, ev Event) error {
	guildID := ev.Guild()
	cfg, ok, err := o.configs.GetRootConfig(ctx, guildID)
	if err != nil {
		return fmt.Errorf("load root config for guild %s: %w", guildID, err)
	}
	if !ok {
		return nil
	}

	h := &handling{Orchestrator: o, cfg: cfg, id: logging.CorrelationID(ctx)}
	switch e := ev.(type) {
	case MemberJoined:
		h.joined(e.ChannelID, e.MemberID)
	case MemberLeft:
		h.left(e.ChannelID, e.MemberID)
	case MemberMoved:
		if e.FromID != "" {
			h.left(e.FromID, e.MemberID)
		}
		if e.ToID != "" {
			h.joined(e.ToID, e.MemberID)
		}
	case PresenceChanged:
		h.presenceChanged(e.MemberID)
	case ChannelRenamed:
		h.renamed(e.ChannelID, e.NewName)
	case ChannelDeleted:
		h.deleted(e.ChannelID)
	case ChannelUserLimitChanged:
		h.userLimitChanged(e)
	case ChannelBitrateChanged:
		h.bitrateChanged(e)
	case ChannelParentChanged:
		h.parentChanged(e)
	case ChannelPermissionsChanged:
		h.permissionsChanged(e.ChannelID)
	case RenameDue:
		h.rename(e.ChannelID, causeTrailing)
	default:
		logging.Debug(subsystem, "[%s] Ignoring unsupported event %T", h.id, ev)
	}
	return nil
}

// handling binds the guild config and correlation id of one event.
type handling struct {
	*Orchestrator
	cfg store.RootConfig
	id  string
}

func (h *handling) guild() string { return h.cfg.GuildID }

func (h *handling) fallbackLabel() string {
	if h.cfg.DefaultLabel != "" {
		return h.cfg.DefaultLabel
	}
	return h.defaultLabel
}

// tracked reports whether channelID is an auto-channel of this guild.
func (h *handling) tracked(channelID string) bool {
	guildID, ok := h.registry.Contains(channelID)
	return ok && guildID == h.guild()
}

func (h *handling) joined(channelID, memberID string) {
	switch {
	case channelID == h.cfg.RootChannelID:
		h.createClone(memberID)
	case h.tracked(channelID):
		h.rename(channelID, causeMembership)
	}
}

func (h *handling) left(channelID, memberID string) {
	if !h.tracked(channelID) {
		return
	}

	var remaining []Member
	for _, m := range h.state.VoiceMembers(h.guild(), channelID) {
		if m.ID != memberID {
			remaining = append(remaining, m)
		}
	}
	if len(remaining) == 0 {
		h.deleteEmpty(channelID)
		return
	}

	if owner, ok := h.registry.Owner(channelID); ok && owner == memberID {
		h.transferOwnership(channelID, memberID, remaining)
	}
	h.rename(channelID, causeMembership)
}

func (h *handling) presenceChanged(memberID string) {
	channelID, ok := h.state.VoiceChannelOf(h.guild(), memberID)
	if !ok || !h.tracked(channelID) {
		return
	}
	h.rename(channelID, causePresence)
}

func (h *handling) createClone(memberID string) {
	root, ok := h.state.Channel(h.guild(), h.cfg.RootChannelID)
	if !ok {
		logging.Warn(subsystem, "[%s] Root channel %s of guild %s is not in the state cache", h.id, h.cfg.RootChannelID, h.guild())
		return
	}

	overrides := slices.DeleteFunc(slices.Clone(root.Overrides), func(o PermissionOverride) bool {
		return o.SubjectID == memberID
	})
	overrides = append(overrides, ownerOverride(memberID))
	reason := h.reasons.Render(events.ReasonCloneCreated, events.ReasonData{Actor: memberID, Channel: root.ID})

	Submit(h.exec, MutationCreate, func(ctx context.Context) (Channel, error) {
		return h.mutator.CreateClone(ctx, root, overrides, reason)
	}, nil).OnComplete(func(clone Channel, err error) {
		if err != nil {
			logging.Error(subsystem, err, "[%s] Failed to create auto-channel for member %s in guild %s", h.id, memberID, h.guild())
			return
		}
		if err := h.registry.Add(h.guild(), clone.ID, memberID); err != nil {
			logging.Error(subsystem, err, "[%s] Created auto-channel %s could not be tracked", h.id, clone.ID)
			return
		}
		h.metrics.RecordCloneCreated()
		logging.Info(subsystem, "[%s] Created auto-channel %s for member %s in guild %s", h.id, clone.ID, memberID, h.guild())
		h.moveInto(clone.ID, memberID)
	})
}

// moveInto moves the creator into its new auto-channel. If the move fails
// the channel is untracked, later auto-channels are renumbered and the
// channel is deleted again.
func (h *handling) moveInto(channelID, memberID string) {
	Do(h.exec, MutationMoveMember, func(ctx context.Context) error {
		return h.mutator.MoveMember(ctx, h.guild(), memberID, channelID)
	}, func(err error) {
		if err == nil {
			return
		}
		logging.Error(subsystem, err, "[%s] Failed to move member %s into auto-channel %s, removing it", h.id, memberID, channelID)
		h.untrack(channelID)
		reason := h.reasons.Render(events.ReasonCloneEmpty, events.ReasonData{Channel: channelID})
		Do(h.exec, MutationDelete, func(ctx context.Context) error {
			return h.mutator.DeleteChannel(ctx, channelID, reason)
		}, func(err error) {
			if err != nil {
				logging.Warn(subsystem, "[%s] Failed to delete orphaned auto-channel %s: %v", h.id, channelID, err)
			}
		})
	})
}

func (h *handling) deleteEmpty(channelID string) {
	reason := h.reasons.Render(events.ReasonCloneEmpty, events.ReasonData{Channel: channelID})
	Do(h.exec, MutationDelete, func(ctx context.Context) error {
		return h.mutator.DeleteChannel(ctx, channelID, reason)
	}, func(err error) {
		if err != nil {
			logging.Warn(subsystem, "[%s] Failed to delete empty auto-channel %s: %v", h.id, channelID, err)
			return
		}
		h.untrack(channelID)
	})
}

// deleted handles a channel deletion observed on the gateway.
func (h *handling) deleted(channelID string) {
	if h.tracked(channelID) {
		h.untrack(channelID)
		return
	}
	if channelID != h.cfg.RootChannelID {
		return
	}

	clones := h.registry.List(h.guild())
	logging.Info(subsystem, "[%s] Root channel of guild %s was deleted, deleting %d auto-channels", h.id, h.guild(), len(clones))
	reason := h.reasons.Render(events.ReasonRootDeleted, events.ReasonData{Channel: channelID})
	for _, id := range clones {
		Do(h.exec, MutationDelete, func(ctx context.Context) error {
			return h.mutator.DeleteChannel(ctx, id, reason)
		}, func(err error) {
			if err != nil {
				logging.Warn(subsystem, "[%s] Failed to delete auto-channel %s after root deletion: %v", h.id, id, err)
			}
		})
	}
}

// untrack removes a deleted auto-channel and renumbers the remaining ones.
// Only the first caller for a channel renumbers.
func (h *handling) untrack(channelID string) {
	if !h.registry.Remove(h.guild(), channelID) {
		return
	}
	h.forget(channelID)
	h.metrics.RecordCloneDeleted()
	logging.Info(subsystem, "[%s] Auto-channel %s of guild %s is gone", h.id, channelID, h.guild())

	for _, id := range h.registry.List(h.guild()) {
		h.rename(id, causeReindex)
	}
}

func (o *Orchestrator) forget(channelID string) {
	o.throttle.Forget(channelID)
	o.mu.Lock()
	delete(o.requested, channelID)
	o.mu.Unlock()
}

func (o *Orchestrator) requeueEvent(ev Event) {
	o.mu.Lock()
	requeue := o.requeue
	o.mu.Unlock()

	if requeue != nil {
		requeue(ev)
		return
	}
	if err := o.Handle(context.Background(), ev); err != nil {
		logging.Error(subsystem, err, "Failed to handle %s", ev.Kind())
	}
}
