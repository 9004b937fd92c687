// Package health exposes liveness and readiness endpoints for the
// long-running collector daemon.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/metrics"
)

// checkTimeout bounds every individual readiness check.
const checkTimeout = 3 * time.Second

// DatabasePinger reports database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// CheckFunc is a named readiness check. A non-nil error marks the
// service not ready.
type CheckFunc func(ctx context.Context) error

// HealthResponse is the body of the /health and /live endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse is the body of the /ready endpoint, with one entry
// per registered check.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Server answers container health probes and serves the Prometheus
// registry on the same port.
type Server struct {
	serviceName string
	version     string
	commit      string
	port        string
	server      *http.Server
	logger      *logrus.Logger
	db          DatabasePinger

	mu     sync.RWMutex
	ready  bool
	checks map[string]CheckFunc
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Port        string
	Logger      *logrus.Logger
	DB          DatabasePinger
}

// NewServer creates a health server. It starts not ready; the owning
// process flips it with SetReady once its dependencies are up.
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == "" {
		port = os.Getenv("HEALTH_PORT")
	}
	if port == "" {
		port = "8080"
	}

	return &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		commit:      cfg.Commit,
		port:        port,
		logger:      cfg.Logger,
		db:          cfg.DB,
		checks:      make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named readiness check. Registering the same
// name again replaces the previous check.
func (s *Server) RegisterCheck(name string, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = fn
}

// SetReady marks the service ready or not ready for traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns the manual readiness flag.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start serves the health endpoints in the background until ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)
	mux.Handle("/metrics", metrics.Handler())

	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"port":    s.port,
				"service": s.serviceName,
			}).Info("Health server starting")
		}

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.WithError(err).Error("Health server error")
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully stops the health server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	if s.logger != nil {
		s.logger.Info("Health server shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// handleHealth reports basic liveness plus build identity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
		Commit:    s.commit,
	})
}

// handleLive is the kubernetes liveness probe target.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: s.serviceName,
	})
}

// handleReady runs the manual flag, the database ping and every
// registered check. Any failure returns 503 with the failing checks
// named in the body.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	results := make(map[string]string)
	healthy := true

	if s.IsReady() {
		results["service"] = "ok"
	} else {
		healthy = false
		results["service"] = "not_ready"
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		if err := s.db.Ping(ctx); err != nil {
			healthy = false
			results["database"] = fmt.Sprintf("error: %v", err)
		} else {
			results["database"] = "ok"
		}
		cancel()
	}

	for name, check := range s.snapshotChecks() {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		if err := check(ctx); err != nil {
			healthy = false
			results[name] = fmt.Sprintf("error: %v", err)
		} else {
			results[name] = "ok"
		}
		cancel()
	}

	response := ReadyResponse{
		Service:  s.serviceName,
		Checks:   results,
		Duration: time.Since(start).String(),
	}

	status := http.StatusOK
	response.Status = "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		response.Status = "not_ready"
	}
	writeJSON(w, status, response)
}

func (s *Server) snapshotChecks() map[string]CheckFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]CheckFunc, len(s.checks))
	for name, fn := range s.checks {
		snapshot[name] = fn
	}
	return snapshot
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
