package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"eclipse/internal/autochannel"
	"eclipse/internal/config"
	"eclipse/internal/dispatch"
	"eclipse/internal/events"
	"eclipse/internal/gateway/discord"
	"eclipse/internal/store"
	"eclipse/internal/store/file"
	"eclipse/internal/store/sqlite"
	"eclipse/pkg/clock"
	"eclipse/pkg/logging"
)

// Gateway is the inbound side of the platform connection.
type Gateway interface {
	Open(ctx context.Context, sink discord.Sink) error
	Close() error
}

// Services holds all initialized components of a running agent.
//
// Field descriptions:
//   - Store: the admin view of the root config store
//   - Configs: the cached read view used by the orchestrator
//   - Executor: runs outbound platform calls off the event workers
//   - Orchestrator: the auto-channel logic
//   - Dispatcher: per-guild ordered event delivery to the orchestrator
//   - Gateway: the Discord session feeding the dispatcher
type Services struct {
	Settings     *config.Config
	Store        store.AdminStore
	Configs      *store.Cached
	Executor     *autochannel.Executor
	Orchestrator *autochannel.Orchestrator
	Dispatcher   *dispatch.Manager
	Gateway      Gateway

	// watcher is set for the file store and reloads it on change.
	watcher *file.Store
}

// InitializeServices creates every service of the agent.
//
// Initialization Sequence:
//  1. Root config store (sqlite or file) with a TTL cache in front
//  2. Discord session (not connected yet)
//  3. Executor and orchestrator
//  4. Dispatcher with the orchestrator as handler
func InitializeServices(ctx context.Context, cfg *Config) (*Services, error) {
	settings := cfg.Settings
	if settings.Discord.Token == "" {
		return nil, errors.New("discord token is not configured (discord.token or ECLIPSE_DISCORD_TOKEN)")
	}

	var cache *store.Cached
	admin, err := OpenStore(ctx, settings, func() {
		if cache != nil {
			cache.InvalidateAll()
		}
	})
	if err != nil {
		return nil, err
	}

	gw, err := discord.New(discord.Config{
		Token:   settings.Discord.Token,
		Intents: discordgo.Intent(settings.Discord.Intents),
	})
	if err != nil {
		_ = admin.Close()
		return nil, err
	}

	services, err := buildServices(settings, admin, gw, gw.State(), gw.Mutator(), clock.Real{})
	if err != nil {
		_ = admin.Close()
		return nil, err
	}
	cache = services.Configs
	return services, nil
}

// OpenStore opens the configured root config store. onReload runs whenever
// the file store picked up a change on disk.
func OpenStore(ctx context.Context, settings *config.Config, onReload func()) (store.AdminStore, error) {
	switch settings.Store.Driver {
	case config.StoreDriverSQLite:
		s, err := sqlite.Open(ctx, settings.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	case config.StoreDriverFile:
		s, err := file.Open(settings.Store.Path, file.Options{OnReload: onReload})
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", settings.Store.Driver)
	}
}

// buildServices wires the components around an already opened store and
// platform connection.
func buildServices(settings *config.Config, admin store.AdminStore, gw Gateway,
	state autochannel.State, mutator autochannel.Mutator, clk clock.Clock) (*Services, error) {

	reasons, err := events.NewReasonEngine(settings.AutoChannel.AuditReasons)
	if err != nil {
		return nil, fmt.Errorf("audit reasons: %w", err)
	}

	cached := store.NewCached(admin, settings.Store.CacheTTL, clk)

	executor := autochannel.NewExecutor(context.Background(), autochannel.ExecutorConfig{
		MaxConcurrent: settings.AutoChannel.MaxConcurrentCalls,
		CallTimeout:   settings.AutoChannel.CallTimeout,
	})

	orch, err := autochannel.New(autochannel.Options{
		Registry: autochannel.NewRegistry(),
		State:    state,
		Mutator:  mutator,
		Configs:  cached,
		Executor: executor,
		Clock:    clk,
		Policy: autochannel.RenamePolicy{
			Window:             settings.AutoChannel.RenameWindow,
			ThrottleMembership: settings.AutoChannel.ThrottleMembershipRenames,
		},
		Reasons:      reasons,
		DefaultLabel: settings.AutoChannel.DefaultLabel,
	})
	if err != nil {
		executor.Close()
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}

	dispatcher := dispatch.NewManager(dispatch.Config{
		Workers:       settings.Dispatch.Workers,
		QueueDepth:    settings.Dispatch.QueueDepth,
		HandleTimeout: settings.Dispatch.HandleTimeout,
	}, orch)
	orch.SetRequeue(dispatcher.Requeue)

	s := &Services{
		Settings:     settings,
		Store:        admin,
		Configs:      cached,
		Executor:     executor,
		Orchestrator: orch,
		Dispatcher:   dispatcher,
		Gateway:      gw,
	}
	if fs, ok := admin.(*file.Store); ok {
		s.watcher = fs
	}

	logging.Info("Bootstrap", "Services initialized (store=%s, workers=%d, rename window=%s)",
		settings.Store.Driver, settings.Dispatch.Workers, settings.AutoChannel.RenameWindow)
	return s, nil
}

// submit is the gateway sink.
func (s *Services) submit(ev autochannel.Event) {
	if _, err := s.Dispatcher.Submit(ev); err != nil {
		logging.Warn("Dispatch", "Dropped %s event for guild %s: %v", ev.Kind(), ev.Guild(), err)
	}
}
