package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SRIDEV20/AI-powered-interview-simulator/ai"
	"github.com/SRIDEV20/AI-powered-interview-simulator/events"
	"github.com/SRIDEV20/AI-powered-interview-simulator/repository"
	ws "github.com/SRIDEV20/AI-powered-interview-simulator/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Dependencies are the collaborators a Server is built from.
type Dependencies struct {
	Repo         *repository.GORMRepository
	Pool         *pgxpool.Pool // optional, pinged by /health when set
	Collaborator ai.Collaborator
	Publisher    events.Publisher // optional, receives every event next to the websocket hub
	Logger       *zap.Logger
}

// Server holds all server dependencies
type Server struct {
	config *Config
	repo   *repository.GORMRepository
	pool   *pgxpool.Pool
	logger *zap.Logger
	hub    *ws.Hub

	authService        *AuthService
	authEndpoints      *AuthEndpoints
	interviewEndpoints *InterviewEndpoints
	skillGapEndpoints  *SkillGapEndpoints
	userEndpoints      *UserEndpoints
	websocketHandler   *WebSocketHandler
}

// NewServer wires the services. Events go to the websocket hub and, when
// configured, to deps.Publisher.
func NewServer(config *Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	hub := ws.NewHub(logger.Named("websocket"))
	publisher := events.Multi{hub}
	if deps.Publisher != nil {
		publisher = append(publisher, deps.Publisher)
	}

	interviews := NewInterviewService(deps.Repo, deps.Collaborator, publisher, logger)
	evaluation := NewEvaluationService(deps.Repo, deps.Collaborator, publisher, logger)
	scoring := NewScoringService(deps.Repo, deps.Collaborator, publisher, logger)
	skillGaps := NewSkillGapService(deps.Repo, deps.Collaborator, publisher, logger)
	users := NewUserService(deps.Repo, logger)

	authService := NewAuthService(deps.Repo, config.JWT.Secret, config.IsProduction(), logger.Named("auth"))

	return &Server{
		config:             config,
		repo:               deps.Repo,
		pool:               deps.Pool,
		logger:             logger,
		hub:                hub,
		authService:        authService,
		authEndpoints:      NewAuthEndpoints(authService, logger),
		interviewEndpoints: NewInterviewEndpoints(interviews, evaluation, scoring, logger),
		skillGapEndpoints:  NewSkillGapEndpoints(skillGaps, logger),
		userEndpoints:      NewUserEndpoints(users, logger),
		websocketHandler:   NewWebSocketHandler(hub, config.WebSocket.AllowedOrigins, logger),
	}
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)

		s.authEndpoints.RegisterRoutes(r)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authService.Middleware)
			s.interviewEndpoints.RegisterRoutes(r)
			s.skillGapEndpoints.RegisterRoutes(r)
			s.userEndpoints.RegisterRoutes(r)
			r.Get("/ws", s.websocketHandler.ServeHTTP)
		})
	})

	return r
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("Server exited")
	return nil
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests
	if allowedOriginsStr == "" {
		return false
	}

	for _, allowed := range strings.Split(allowedOriginsStr, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "up"

	var err error
	if s.pool != nil {
		err = s.pool.Ping(r.Context())
	} else {
		err = s.repo.Ping(r.Context())
	}
	if err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		dbStatus = "down"
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status, "database": dbStatus})
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API v1", "version": "1.0.0"})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(started)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
