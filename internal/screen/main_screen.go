// Package screen renders the vehicle snapshot into host templates: a
// permission prompt, a dashboard tab and a diagnostics tab.
package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jkaberg/carinfo/internal/manager"
	"github.com/jkaberg/carinfo/internal/permission"
	"github.com/jkaberg/carinfo/internal/state"
	"github.com/sirupsen/logrus"
)

// Action identifiers understood by OnAction.
const (
	ActionRequestPermissions = "request_permissions"
	ActionContinueWithout    = "continue_without"
	ActionRefresh            = "refresh"
	tabActionPrefix          = "tab:"
)

// Tab identifiers.
const (
	TabDashboard   = "dashboard"
	TabDiagnostics = "diagnostics"
)

// ErrUnknownAction is returned by OnAction for identifiers it does not know.
var ErrUnknownAction = errors.New("unknown action")

const permissionMessage = "To display vehicle information like battery level and speed, " +
	"carinfo needs access to your car's data. This data is only used on this screen " +
	"and is never stored or shared. Please grant the permissions on your phone."

// MainScreen is the root screen. Its template is recomputed on demand; the
// version counter moves forward on every invalidation.
type MainScreen struct {
	mgr    *manager.Manager
	perms  *permission.Store
	diag   *DiagnosticsScreen
	logger *logrus.Logger

	mu        sync.Mutex
	degraded  bool
	activeTab string

	version *state.Observable[uint64]
}

// NewMainScreen builds the root screen.
func NewMainScreen(mgr *manager.Manager, perms *permission.Store, host HostInfo, logger *logrus.Logger) *MainScreen {
	return &MainScreen{
		mgr:       mgr,
		perms:     perms,
		diag:      NewDiagnosticsScreen(mgr, host),
		logger:    logger,
		activeTab: TabDashboard,
		version:   state.NewObservable[uint64](0),
	}
}

// Version is bumped by every Invalidate.
func (s *MainScreen) Version() *state.Observable[uint64] { return s.version }

// Invalidate marks the current template stale.
func (s *MainScreen) Invalidate() {
	s.version.Update(func(v uint64) uint64 { return v + 1 })
}

// Template renders the current state.
func (s *MainScreen) Template() Template {
	s.mu.Lock()
	degraded, active := s.degraded, s.activeTab
	s.mu.Unlock()

	if missing := s.perms.Missing(permission.Required...); len(missing) > 0 && !degraded {
		return s.permissionTemplate(missing)
	}

	dashboard := PaneTemplate{
		Title:        "Dashboard",
		HeaderAction: "back",
		Pane: Pane{
			Rows: dashboardRows(s.mgr.Snapshot().Get(), s.mgr.Profile().Get(), s.perms.Granted),
			// the row layout depends on the energy profile
			Loading: !s.mgr.Status(manager.SignalEnergyProfile).Get().Active,
		},
		ActionStrip: []Action{{ID: ActionRefresh, Title: "Refresh"}},
	}
	return TabTemplate{
		Tabs: []Tab{
			{ID: TabDashboard, Title: "Dashboard", Contents: dashboard},
			{ID: TabDiagnostics, Title: "Diagnostics", Contents: s.diag.Template()},
		},
		ActiveTabID: active,
	}
}

func (s *MainScreen) permissionTemplate(missing []permission.Permission) MessageTemplate {
	names := make([]string, len(missing))
	for i, p := range missing {
		names[i] = p.ShortName()
	}
	return MessageTemplate{
		Title:   "carinfo Needs Permissions",
		Message: permissionMessage + " Missing: " + strings.Join(names, ", ") + ".",
		Actions: []Action{
			{ID: ActionRequestPermissions, Title: "Request Permissions"},
			{ID: ActionContinueWithout, Title: "Continue Without"},
		},
	}
}

// OnAction handles an action posted back by the host.
func (s *MainScreen) OnAction(id string) error {
	switch {
	case id == ActionRequestPermissions:
		granted, rejected := s.perms.Request(permission.Required...)
		s.logger.WithFields(logrus.Fields{
			"granted":  len(granted),
			"rejected": len(rejected),
		}).Info("Permissions requested from the dashboard")
		if len(granted) > 0 {
			s.Invalidate()
		}
	case id == ActionContinueWithout:
		s.mu.Lock()
		s.degraded = true
		s.mu.Unlock()
		s.logger.Info("Continuing without full permissions")
		s.Invalidate()
	case id == ActionRefresh:
		s.Invalidate()
	case strings.HasPrefix(id, tabActionPrefix):
		tab := strings.TrimPrefix(id, tabActionPrefix)
		if tab != TabDashboard && tab != TabDiagnostics {
			return fmt.Errorf("%w: %s", ErrUnknownAction, id)
		}
		s.mu.Lock()
		s.activeTab = tab
		s.mu.Unlock()
		s.Invalidate()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, id)
	}
	return nil
}

// Watch invalidates the screen whenever the snapshot, profile, raw energy
// profile or any listener status changes. It blocks until ctx is done.
func (s *MainScreen) Watch(ctx context.Context) error {
	changed := s.changes(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
			s.Invalidate()
		}
	}
}

// changes subscribes to every observable the template reads and returns a
// channel that fires, coalesced, after any of them is replaced. Values stored
// before the call are not reported.
func (s *MainScreen) changes(ctx context.Context) <-chan struct{} {
	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	forward(ctx, s.mgr.Snapshot().Changes(ctx), notify)
	forward(ctx, s.mgr.Profile().Changes(ctx), notify)
	forward(ctx, s.mgr.RawEnergyProfile().Changes(ctx), notify)
	for _, name := range manager.Signals {
		forward(ctx, s.mgr.Status(name).Changes(ctx), notify)
	}
	return changed
}

func forward[T any](ctx context.Context, ch <-chan T, notify func()) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				notify()
			}
		}
	}()
}
