package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gatehouse-core/internal/audit"
	"github.com/nerrad567/gatehouse-core/internal/auth"
	"github.com/nerrad567/gatehouse-core/internal/clientinfo"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/gatehouse-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/gatehouse-core/internal/session"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// EventPublisher publishes account events. Satisfied by *mqtt.Client.
type EventPublisher interface {
	PublishAuthEvent(ev mqtt.AuthEvent) error
	IsConnected() bool
}

// TelemetryWriter records account events as time series. Satisfied by
// *influxdb.Client.
type TelemetryWriter interface {
	WriteAuthEvent(ev influxdb.AuthEventPoint)
	IsConnected() bool
	Stats() influxdb.Stats
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	DB        *sql.DB // optional: health ping and pool stats
	Store     *auth.Store
	Tokens    *auth.TokenService
	Sessions  session.Repository
	AuditRepo audit.Repository         // optional
	Devices   *clientinfo.DeviceParser // defaults to NewDeviceParser()
	Events    EventPublisher           // optional
	Telemetry TelemetryWriter          // optional
	Version   string
}

// Server is the Gatehouse HTTP API server.
type Server struct {
	cfg         config.APIConfig
	logger      *logging.Logger
	db          *sql.DB
	store       *auth.Store
	tokens      *auth.TokenService
	gate        *auth.Gate
	sessions    session.Repository
	recorder    *session.Recorder
	devices     *clientinfo.DeviceParser
	auditRepo   audit.Repository
	auditWriter *audit.Writer
	events      EventPublisher
	telemetry   TelemetryWriter
	version     string
	startTime   time.Time

	server    *http.Server
	auditDone chan struct{}
	cancel    context.CancelFunc
}

// New creates a new API server. The server is not started until Start()
// is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session repository is required")
	}

	devices := deps.Devices
	if devices == nil {
		devices = clientinfo.NewDeviceParser()
	}

	s := &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		db:        deps.DB,
		store:     deps.Store,
		tokens:    deps.Tokens,
		gate:      auth.NewGate(deps.Tokens),
		sessions:  deps.Sessions,
		recorder:  session.NewRecorder(deps.Sessions),
		devices:   devices,
		auditRepo: deps.AuditRepo,
		events:    deps.Events,
		telemetry: deps.Telemetry,
		version:   deps.Version,
		startTime: time.Now(),
	}
	if s.auditRepo != nil {
		s.auditWriter = audit.NewWriter(s.auditRepo, s.logger.Component("audit").Logger, audit.DefaultQueueSize)
	}

	return s, nil
}

// Handler returns the fully wired router. Start serves the same handler.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start launches the audit writer and the HTTP listener in the background.
func (s *Server) Start(ctx context.Context) error {
	s.startBackground(ctx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.Handler(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// startBackground starts the audit writer goroutine once.
func (s *Server) startBackground(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	var bgCtx context.Context
	bgCtx, s.cancel = context.WithCancel(ctx)

	if s.auditWriter != nil {
		s.auditDone = make(chan struct{})
		go func() {
			defer close(s.auditDone)
			s.auditWriter.Run(bgCtx)
		}()
	}
}

// Close shuts down the listener, waiting up to 10 seconds for in-flight
// requests, then flushes queued audit entries.
func (s *Server) Close() error {
	var shutdownErr error
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		s.logger.Info("API server shutting down")
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("shutting down API server: %w", err)
		}
	}

	if s.cancel != nil {
		s.cancel()
	}
	if s.auditDone != nil {
		<-s.auditDone
	}
	return shutdownErr
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
