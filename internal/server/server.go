// Package server provides the HTTP server and routing for Railbird.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/railbird/internal/config"
	"github.com/aristath/railbird/internal/database"
	"github.com/aristath/railbird/internal/modules/calculations"
	"github.com/aristath/railbird/internal/modules/hands"
	handshandlers "github.com/aristath/railbird/internal/modules/hands/handlers"
	"github.com/aristath/railbird/internal/modules/leaks"
	leakshandlers "github.com/aristath/railbird/internal/modules/leaks/handlers"
	"github.com/aristath/railbird/internal/modules/opponents"
	opponentshandlers "github.com/aristath/railbird/internal/modules/opponents/handlers"
	"github.com/aristath/railbird/internal/modules/population"
	populationhandlers "github.com/aristath/railbird/internal/modules/population/handlers"
	"github.com/aristath/railbird/internal/modules/sessions"
	sessionshandlers "github.com/aristath/railbird/internal/modules/sessions/handlers"
	"github.com/aristath/railbird/internal/modules/simulation"
	simulationhandlers "github.com/aristath/railbird/internal/modules/simulation/handlers"
	"github.com/aristath/railbird/internal/modules/tagging"
	tagginghandlers "github.com/aristath/railbird/internal/modules/tagging/handlers"
	"github.com/aristath/railbird/internal/modules/tilt"
	tilthandlers "github.com/aristath/railbird/internal/modules/tilt/handlers"
	"github.com/aristath/railbird/internal/modules/volatility"
	volatilityhandlers "github.com/aristath/railbird/internal/modules/volatility/handlers"
	"github.com/aristath/railbird/internal/modules/winrate"
	winratehandlers "github.com/aristath/railbird/internal/modules/winrate/handlers"
)

// Config holds server configuration
type Config struct {
	Log        zerolog.Logger
	RailbirdDB *database.DB
	CacheDB    *database.DB
	Config     *config.Config
	Port       int
	DevMode    bool
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	server     *http.Server
	log        zerolog.Logger
	railbirdDB *database.DB
	cacheDB    *database.DB
	cfg        *config.Config

	sessionRepo    *sessions.Repository
	sessionService *sessions.Service
	handRepo       *hands.Repository
	handService    *hands.Service
	opponentRepo   *opponents.Repository
	opponentSvc    *opponents.Service
	cache          *calculations.Cache
}

// New creates a new HTTP server with all services and routes wired.
func New(cfg Config) *Server {
	log := cfg.Log.With().Str("component", "server").Logger()

	s := &Server{
		router:     chi.NewRouter(),
		log:        log,
		railbirdDB: cfg.RailbirdDB,
		cacheDB:    cfg.CacheDB,
		cfg:        cfg.Config,
	}

	// Repositories and services over railbird.db
	s.sessionRepo = sessions.NewRepository(cfg.RailbirdDB.Conn(), cfg.Log)
	s.sessionService = sessions.NewService(s.sessionRepo, cfg.Log)
	s.handRepo = hands.NewRepository(cfg.RailbirdDB.Conn(), cfg.Log)
	s.handService = hands.NewService(s.handRepo, s.sessionRepo, cfg.Log)
	s.opponentRepo = opponents.NewRepository(cfg.RailbirdDB.Conn(), cfg.Log)
	s.opponentSvc = opponents.NewService(s.opponentRepo, cfg.Log)
	s.cache = calculations.NewCache(cfg.CacheDB.Conn(), cfg.Log)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg.Log)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Cache exposes the calculation cache for the scheduler's sweep job.
func (s *Server) Cache() *calculations.Cache {
	return s.cache
}

// SessionService exposes the session service for the scheduler's summary
// warm job.
func (s *Server) SessionService() *sessions.Service {
	return s.sessionService
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(log zerolog.Logger) {
	systemHandlers := NewSystemHandlers(log, s.railbirdDB, s.cacheDB, s.cache)
	s.router.Get("/health", systemHandlers.HandleHealth)

	// Analytics engines are stateless; one instance each serves all requests.
	simulator := simulation.NewSimulator(log)
	model := volatility.NewModel(log)
	estimator := winrate.NewBootstrapEstimator(log)
	engine := population.NewClusteringEngine(log)
	detector := tilt.NewDetector(log)
	tagger := tagging.NewTagger(log)
	finder := leaks.NewFinder(log)

	s.router.Route("/api", func(r chi.Router) {
		sessionshandlers.NewHandler(s.sessionService, log).RegisterRoutes(r)
		handshandlers.NewHandler(s.handService, log).RegisterRoutes(r)
		opponentshandlers.NewHandler(s.opponentSvc, log).RegisterRoutes(r)

		simulationhandlers.NewHandler(simulator, s.cache, log).RegisterRoutes(r)
		volatilityhandlers.NewHandler(model, s.sessionRepo, s.cache, log).RegisterRoutes(r)
		winratehandlers.NewHandler(estimator, s.handRepo, s.cache, log).RegisterRoutes(r)
		populationhandlers.NewHandler(engine, s.opponentSvc, s.cache, log).RegisterRoutes(r)
		tilthandlers.NewHandler(detector, s.handRepo, log).RegisterRoutes(r)
		tagginghandlers.NewHandler(tagger, s.opponentSvc, log).RegisterRoutes(r)
		leakshandlers.NewHandler(finder, detector, tagger, s.sessionRepo, s.handRepo, s.opponentSvc, log).RegisterRoutes(r)

		systemHandlers.RegisterRoutes(r)
	})
}

// loggingMiddleware logs each request with its status and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request handled")
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
