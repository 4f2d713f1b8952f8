// Package host exposes the screen templates and vehicle state over HTTP so a
// template host (or a browser) can render them.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jkaberg/carinfo/internal/manager"
	"github.com/jkaberg/carinfo/internal/profiler"
	"github.com/jkaberg/carinfo/internal/screen"
	"github.com/jkaberg/carinfo/internal/vehicle"
	"github.com/sirupsen/logrus"
)

// Server routes host requests to the main screen and the manager.
type Server struct {
	screen *screen.MainScreen
	mgr    *manager.Manager
	info   screen.HostInfo
	hub    *Hub
	router *mux.Router
	logger *logrus.Logger

	upgrader websocket.Upgrader
}

// TemplateEnvelope pairs a rendered template with its version.
type TemplateEnvelope struct {
	Version  uint64          `json:"version"`
	Template screen.Template `json:"template"`
}

// SnapshotResponse is the body of GET /api/v1/snapshot.
type SnapshotResponse struct {
	Snapshot vehicle.Snapshot `json:"snapshot"`
	Profile  profiler.Profile `json:"profile"`
}

// DiagnosticsResponse is the body of GET /api/v1/diagnostics.
type DiagnosticsResponse struct {
	Host             screen.HostInfo          `json:"host"`
	Profile          profiler.Profile         `json:"profile"`
	RawEnergyProfile string                   `json:"raw_energy_profile"`
	Listeners        []vehicle.ListenerStatus `json:"listeners"`
}

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// NewServer creates the host server.
func NewServer(main *screen.MainScreen, mgr *manager.Manager, info screen.HostInfo, logger *logrus.Logger) *Server {
	s := &Server{
		screen: main,
		mgr:    mgr,
		info:   info,
		router: mux.NewRouter(),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the host runs on the head unit's loopback
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.hub = NewHub(func() interface{} { return s.envelope() }, main.OnAction, logger)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/ws", s.handleWebSocket).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/template", s.handleTemplate).Methods(http.MethodGet)
	api.HandleFunc("/actions/{id}", s.handleAction).Methods(http.MethodPost)
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/diagnostics", s.handleDiagnostics).Methods(http.MethodGet)

	s.router.Use(s.loggingMiddleware)
	api.Use(jsonMiddleware)
}

// Router returns the configured router.
func (s *Server) Router() *mux.Router { return s.router }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) envelope() TemplateEnvelope {
	return TemplateEnvelope{Version: s.screen.Version().Get(), Template: s.screen.Template()}
}

// PushTemplates broadcasts the template on every screen invalidation until
// ctx is done.
func (s *Server) PushTemplates(ctx context.Context) error {
	versions := s.screen.Version().Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-versions:
			if !ok {
				return ctx.Err()
			}
			if s.hub.ClientCount() == 0 {
				continue
			}
			s.hub.BroadcastMessage(MsgTypeTemplate, s.envelope())
		}
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Template host listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("Template host shutdown failed")
		}
		return ctx.Err()
	}
}

// Middleware

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("HTTP request")
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message})
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.envelope())
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.screen.OnAction(id); err != nil {
		if errors.Is(err, screen.ErrUnknownAction) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.envelope())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SnapshotResponse{
		Snapshot: s.mgr.Snapshot().Get(),
		Profile:  s.mgr.Profile().Get(),
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, DiagnosticsResponse{
		Host:             s.info,
		Profile:          s.mgr.Profile().Get(),
		RawEnergyProfile: s.mgr.RawEnergyProfile().Get(),
		Listeners:        s.mgr.Statuses(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	client := newClient(s.hub, conn)
	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}
	go client.writePump()
	go client.readPump()
}
