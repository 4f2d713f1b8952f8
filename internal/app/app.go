package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jkaberg/carinfo/internal/cache"
	"github.com/jkaberg/carinfo/internal/config"
	"github.com/jkaberg/carinfo/internal/host"
	"github.com/jkaberg/carinfo/internal/manager"
	"github.com/jkaberg/carinfo/internal/notify"
	"github.com/jkaberg/carinfo/internal/permission"
	"github.com/jkaberg/carinfo/internal/screen"
	"github.com/jkaberg/carinfo/internal/transmission"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Source produces vehicle signals until ctx is cancelled: the Di-Plus
// provider in production, the simulator otherwise.
type Source interface {
	Run(ctx context.Context) error
}

// Services are the long-lived components Run supervises. Host, Transmitter
// and Notifier are optional. Permissions is only read when a Notifier is set,
// and a nil store skips the missing-permissions notice.
type Services struct {
	Source      Source
	Manager     *manager.Manager
	Screen      *screen.MainScreen
	Permissions *permission.Store
	Host        *host.Server
	Transmitter transmission.Transmitter
	Notifier    notify.Notifier
}

// Run launches every service and blocks until ctx is cancelled or one of them
// fails.
func Run(ctx context.Context, cfg *config.Config, svc Services, logger *logrus.Logger) error {
	grp, ctx := errgroup.WithContext(ctx)

	// Collector -----------------------------------------------------------
	grp.Go(func() error { return svc.Source.Run(ctx) })

	// Screen ---------------------------------------------------------------
	grp.Go(func() error { return svc.Screen.Watch(ctx) })

	// Template host ---------------------------------------------------------
	if svc.Host != nil {
		grp.Go(func() error { return svc.Host.Hub().Run(ctx) })
		grp.Go(func() error { return svc.Host.PushTemplates(ctx) })
		grp.Go(func() error { return svc.Host.Run(ctx, cfg.ListenAddr) })
	}

	// Notifications ----------------------------------------------------------
	if svc.Notifier != nil {
		if svc.Permissions != nil {
			notify.PermissionsMissing(svc.Notifier, svc.Permissions.Missing(permission.Required...))
		}
		grp.Go(func() error {
			return notify.WatchProfile(ctx, svc.Manager.Profile().Subscribe(ctx), svc.Notifier)
		})
	}

	// MQTT scheduler ----------------------------------------------------------
	if svc.Transmitter != nil {
		sched := newScheduler(svc.Transmitter, cfg.MQTTInterval, logger)
		grp.Go(func() error { return sched.run(ctx, svc.Manager) })
	}

	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("app: background group exited: %w", err)
	}
	return nil
}

const mqttCacheKey = "mqtt"

// scheduler publishes the latest report at most once per interval and only
// when it differs from the last one sent successfully.
type scheduler struct {
	tx       transmission.Transmitter
	interval time.Duration
	cache    *cache.Manager
	lastSent time.Time
	logger   *logrus.Logger
}

func newScheduler(tx transmission.Transmitter, interval time.Duration, logger *logrus.Logger) *scheduler {
	return &scheduler{
		tx:       tx,
		interval: interval,
		cache:    cache.NewManager(logger),
		lastSent: time.Now().Add(-interval),
		logger:   logger,
	}
}

func (s *scheduler) run(ctx context.Context, mgr *manager.Manager) error {
	snapshots := mgr.Snapshot().Subscribe(ctx)
	profiles := mgr.Profile().Subscribe(ctx)

	var latest transmission.Report
	ticker := time.NewTicker(config.SchedulerTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-snapshots:
			if !ok {
				return ctx.Err()
			}
			latest.Snapshot = snap
		case p, ok := <-profiles:
			if !ok {
				return ctx.Err()
			}
			latest.Profile = p
		case now := <-ticker.C:
			s.tick(now, latest)
		}
	}
}

// tick sends r if the interval has elapsed and r changed. A failed send
// forgets the cached report so the next eligible tick retries.
func (s *scheduler) tick(now time.Time, r transmission.Report) bool {
	if now.Sub(s.lastSent) < s.interval {
		return false
	}
	if !s.cache.Changed(mqttCacheKey, r) {
		return false
	}
	s.lastSent = now
	if err := s.tx.Transmit(r); err != nil {
		s.logger.WithError(err).Warn("MQTT transmit failed")
		s.cache.Forget(mqttCacheKey)
		return false
	}
	return true
}
