package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"eclipse/pkg/logging"
)

// metricsInterval is how often a metrics summary is logged at debug level.
const metricsInterval = 5 * time.Minute

// Run starts the dispatcher, connects the gateway and blocks until ctx is
// cancelled or SIGINT/SIGTERM arrives. systemd is notified when the agent
// is ready and when it starts stopping; the watchdog is served when the
// unit enables it.
//
// Shutdown order: the gateway is closed first so that no new events arrive,
// queued events are handled, pending trailing renames are cancelled and
// in-flight platform calls are drained, all within shutdown.timeout.
func (s *Services) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Workers outlive ctx so that Shutdown can drain the queue.
	if err := s.Dispatcher.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start dispatcher: %w", err)
	}
	if s.watcher != nil {
		if err := s.watcher.Watch(ctx); err != nil {
			logging.Warn("Bootstrap", "Root config file will not be reloaded: %v", err)
		}
	}
	if err := s.Gateway.Open(ctx, s.submit); err != nil {
		return errors.Join(fmt.Errorf("connect gateway: %w", err), s.Shutdown(context.Background()))
	}

	notify(daemon.SdNotifyReady)
	logging.Info("Bootstrap", "eclipse is running. Press Ctrl+C to stop.")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serveWatchdog(gctx)
	})
	g.Go(func() error {
		s.reportMetrics(gctx, metricsInterval)
		return nil
	})
	runErr := g.Wait()

	notify(daemon.SdNotifyStopping)
	logging.Info("Bootstrap", "Shutting down")
	return errors.Join(runErr, s.Shutdown(context.Background()))
}

// Shutdown stops every service. It waits at most shutdown.timeout for queued
// events and in-flight calls.
func (s *Services) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.Settings.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if err := s.Gateway.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Dispatcher.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop dispatcher: %w", err))
	}
	s.Orchestrator.Close()
	if err := s.Executor.Drain(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain platform calls: %w", err))
	}
	s.Executor.Close()
	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}

	s.logMetrics(logging.Info, "Final metrics")
	return errors.Join(errs...)
}

func (s *Services) reportMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logMetrics(logging.Debug, "Metrics")
		}
	}
}

func (s *Services) logMetrics(log func(string, string, ...interface{}), title string) {
	report, err := s.metricsReport(title)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to encode metrics")
		return
	}
	log("Bootstrap", "%s", report)
}

func (s *Services) metricsReport(title string) (string, error) {
	data, err := json.Marshal(s.Orchestrator.Metrics().Summary())
	if err != nil {
		return "", err
	}
	reg := s.Orchestrator.Registry()
	return fmt.Sprintf("%s (auto-channels=%d in %d guild(s), dispatched guilds=%d): %s",
		title, reg.Len(), len(reg.Guilds()), len(s.Dispatcher.GetAllStatuses()), data), nil
}

// serveWatchdog pings the systemd watchdog at half its interval until ctx
// is done. Without WATCHDOG_USEC it returns immediately.
func serveWatchdog(ctx context.Context) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logging.Warn("Bootstrap", "Ignoring invalid watchdog settings: %v", err)
		return nil
	}
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			notify(daemon.SdNotifyWatchdog)
		}
	}
}

func notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("Bootstrap", "systemd notification %q failed: %v", state, err)
		return
	}
	if sent {
		logging.Debug("Bootstrap", "Notified systemd: %s", state)
	}
}
