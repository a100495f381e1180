// Package discord connects the auto-channel orchestrator to Discord through
// discordgo. It converts gateway events into autochannel events, answers
// state queries from the discordgo cache and performs mutations over REST.
package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"eclipse/internal/autochannel"
	"eclipse/pkg/logging"
)

const subsystem = "Discord"

// DefaultIntents are the gateway intents auto-channels need. Members and
// presences are privileged and must be enabled for the application.
const DefaultIntents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsGuildPresences

// Sink receives converted events. It is called on discordgo's event
// goroutines and must not block for long.
type Sink func(autochannel.Event)

// Config configures the gateway session.
type Config struct {
	Token   string
	Intents discordgo.Intent
}

// Gateway owns a discordgo session.
type Gateway struct {
	session *discordgo.Session
	state   *State
	mutator *Mutator

	mu       sync.Mutex
	removers []func()
	open     bool
}

// New creates a session without connecting.
func New(cfg Config) (*Gateway, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}
	if cfg.Intents == 0 {
		cfg.Intents = DefaultIntents
	}

	session, err := discordgo.New(token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = cfg.Intents
	session.StateEnabled = true
	session.State.TrackChannels = true
	session.State.TrackMembers = true
	session.State.TrackVoice = true
	session.State.TrackPresences = true

	return &Gateway{
		session: session,
		state:   NewState(session.State),
		mutator: NewMutator(session),
	}, nil
}

// State returns the cache-backed autochannel.State.
func (g *Gateway) State() *State { return g.state }

// Mutator returns the REST-backed autochannel.Mutator.
func (g *Gateway) Mutator() *Mutator { return g.mutator }

// Open registers the event handlers and connects to the gateway.
func (g *Gateway) Open(ctx context.Context, sink Sink) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	g.removers = append(g.removers,
		g.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
			logging.Info(subsystem, "Connected as %s to %d guild(s)", r.User.Username, len(r.Guilds))
		}),
		g.session.AddHandler(func(_ *discordgo.Session, u *discordgo.VoiceStateUpdate) {
			for _, ev := range voiceEvents(u) {
				sink(ev)
			}
		}),
		g.session.AddHandler(func(_ *discordgo.Session, u *discordgo.ChannelUpdate) {
			if u.BeforeUpdate == nil {
				logging.Debug(subsystem, "Ignoring update of uncached channel %s", u.ID)
			}
			for _, ev := range channelUpdateEvents(u) {
				sink(ev)
			}
		}),
		g.session.AddHandler(func(_ *discordgo.Session, d *discordgo.ChannelDelete) {
			if ev, ok := channelDeleteEvent(d); ok {
				sink(ev)
			}
		}),
		g.session.AddHandler(func(_ *discordgo.Session, p *discordgo.PresenceUpdate) {
			if ev, ok := presenceEvent(p); ok {
				sink(ev)
			}
		}),
	)

	if err := g.session.Open(); err != nil {
		g.removeHandlers()
		return fmt.Errorf("open discord gateway: %w", err)
	}
	g.open = true
	logging.Info(subsystem, "Gateway session opened")
	return nil
}

func (g *Gateway) removeHandlers() {
	for _, remove := range g.removers {
		remove()
	}
	g.removers = nil
}

// Close disconnects from the gateway. Events stop being delivered before
// the session closes.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeHandlers()
	if !g.open {
		return nil
	}
	g.open = false
	if err := g.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	logging.Info(subsystem, "Gateway session closed")
	return nil
}

// Verify checks the token by fetching the bot user and returns its name.
func (g *Gateway) Verify(ctx context.Context) (string, error) {
	u, err := g.session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("verify discord token: %w", err)
	}
	return u.Username, nil
}
