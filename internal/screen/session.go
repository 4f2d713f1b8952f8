package screen

import (
	"github.com/jkaberg/carinfo/internal/manager"
	"github.com/jkaberg/carinfo/internal/permission"
	"github.com/sirupsen/logrus"
)

// Session is the host-facing entry point. It owns the screen for one
// connection of the template host.
type Session struct {
	mgr    *manager.Manager
	perms  *permission.Store
	host   HostInfo
	logger *logrus.Logger
}

func NewSession(mgr *manager.Manager, perms *permission.Store, host HostInfo, logger *logrus.Logger) *Session {
	return &Session{mgr: mgr, perms: perms, host: host, logger: logger}
}

// OnCreateScreen returns the initial screen.
func (s *Session) OnCreateScreen() *MainScreen {
	s.logger.WithField("host", s.host.PackageName).Debug("Creating main screen")
	return NewMainScreen(s.mgr, s.perms, s.host, s.logger)
}
