package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eclipse/internal/autochannel"
	"eclipse/internal/config"
	"eclipse/internal/gateway/discord"
	"eclipse/internal/store"
	"eclipse/internal/testing/fake"
	"eclipse/internal/testing/mock"
)

type stubGateway struct {
	mu     sync.Mutex
	sink   discord.Sink
	opened chan struct{}
	closed bool
}

func newStubGateway() *stubGateway {
	return &stubGateway{opened: make(chan struct{})}
}

func (g *stubGateway) Open(_ context.Context, sink discord.Sink) error {
	g.mu.Lock()
	g.sink = sink
	g.mu.Unlock()
	close(g.opened)
	return nil
}

func (g *stubGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

func (g *stubGateway) emit(ev autochannel.Event) {
	g.mu.Lock()
	sink := g.sink
	g.mu.Unlock()
	sink(ev)
}

func testSettings() *config.Config {
	cfg := config.Default()
	cfg.Discord.Token = "token"
	cfg.Shutdown.Timeout = 5 * time.Second
	return &cfg
}

func TestServices_RunHandlesEventsAndShutsDown(t *testing.T) {
	platform := fake.NewPlatform()
	platform.AddChannel(autochannel.Channel{ID: "root", GuildID: "g1", Name: "Join to create", Bitrate: 64000})
	platform.AddMember(autochannel.Member{ID: "alice"})
	platform.Join("root", "alice")

	configs := store.NewMemory(store.RootConfig{GuildID: "g1", RootChannelID: "root"})
	gw := newStubGateway()

	s, err := buildServices(testSettings(), configs, gw, platform, platform, mock.NewMockClock(time.Now()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-gw.opened:
	case <-time.After(5 * time.Second):
		t.Fatal("gateway was not opened")
	}

	gw.emit(autochannel.MemberJoined{GuildID: "g1", ChannelID: "root", MemberID: "alice"})

	require.Eventually(t, func() bool {
		return len(platform.CallsOf(autochannel.MutationMoveMember)) == 1
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	assert.True(t, gw.closed)
	assert.Len(t, platform.CallsOf(autochannel.MutationCreate), 1)
	assert.Equal(t, int64(1), s.Orchestrator.Metrics().Summary().ClonesCreated)

	status, ok := s.Dispatcher.GetStatus("g1")
	require.True(t, ok)
	assert.Equal(t, int64(1), status.Processed)

	report, err := s.metricsReport("Final metrics")
	require.NoError(t, err)
	assert.Contains(t, report, "auto-channels=1 in 1 guild(s), dispatched guilds=1")
	assert.Contains(t, report, `"clones_created":1`)
}

func TestServices_IgnoresUnconfiguredGuild(t *testing.T) {
	platform := fake.NewPlatform()
	platform.AddChannel(autochannel.Channel{ID: "root", GuildID: "g2"})
	gw := newStubGateway()

	s, err := buildServices(testSettings(), store.NewMemory(), gw, platform, platform, mock.NewMockClock(time.Now()))
	require.NoError(t, err)

	require.NoError(t, s.Dispatcher.Start(context.Background()))
	_, err = s.Dispatcher.Submit(autochannel.MemberJoined{GuildID: "g2", ChannelID: "root", MemberID: "bob"})
	require.NoError(t, err)

	require.NoError(t, s.Shutdown(context.Background()))
	assert.Empty(t, platform.Calls())
}

func TestBuildServices_RejectsBadAuditReasons(t *testing.T) {
	settings := testSettings()
	settings.AutoChannel.AuditReasons = map[string]string{"Nope": "x"}

	platform := fake.NewPlatform()
	_, err := buildServices(settings, store.NewMemory(), newStubGateway(), platform, platform, nil)
	assert.Error(t, err)
}

func TestInitializeServices_RequiresToken(t *testing.T) {
	settings := config.Default()
	_, err := InitializeServices(context.Background(), &Config{Settings: &settings})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discord token")
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	settings := config.Default()
	settings.Store.Path = dir + "/eclipse.db"
	s, err := OpenStore(context.Background(), &settings, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), store.RootConfig{GuildID: "1", RootChannelID: "2"}))
	require.NoError(t, s.Close())

	settings.Store.Driver = config.StoreDriverFile
	settings.Store.Path = dir + "/guilds.yaml"
	s, err = OpenStore(context.Background(), &settings, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	settings.Store.Driver = "etcd"
	_, err = OpenStore(context.Background(), &settings, nil)
	assert.Error(t, err)
}
