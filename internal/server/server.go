package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/careerloop/platform/internal/admin"
	"github.com/careerloop/platform/internal/auth"
	"github.com/careerloop/platform/internal/config"
	"github.com/careerloop/platform/internal/database"
	"github.com/careerloop/platform/internal/domain"
	"github.com/careerloop/platform/internal/handlers"
	"github.com/careerloop/platform/internal/logging"
	appmw "github.com/careerloop/platform/internal/middleware"
	"github.com/careerloop/platform/internal/module"
	"github.com/careerloop/platform/internal/modules/feedback"
	"github.com/careerloop/platform/internal/modules/jobscrape"
	"github.com/careerloop/platform/internal/modules/resume"
	"github.com/careerloop/platform/internal/modules/waitlist"
	"github.com/careerloop/platform/internal/pubsub"
	"github.com/careerloop/platform/internal/pubsub/runtime"
	"github.com/careerloop/platform/internal/registry"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/surrealdb/surrealdb.go"
)

// Server holds the dependencies for the application.
type Server struct {
	E           *echo.Echo
	Cfg         config.Provider
	Bus         *pubsub.Bus
	Runtime     *runtime.Runtime
	DeadLetters *runtime.DeadLetterStore
	Verifier    *auth.Verifier
	Aggregator  *admin.Aggregator

	db            *surrealdb.DB
	reg           *registry.Registry
	modules       []module.Module
	adminHandler  *handlers.AdminHandler
	healthHandler *handlers.HealthHandler
	otelCleanup   func()
}

// New creates a new Server instance.
func New() *Server {
	logging.New() // Initialize the structured logger
	cfg := config.New()

	ctx := context.Background()

	tracer, otelCleanup, err := runtime.SetupOTel(ctx, runtime.LoadTracingConfigFromEnv())
	if err != nil {
		slog.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	bus := pubsub.NewBus()
	rt, err := runtime.New(bus, runtime.Config{
		MaxRetries:      cfg.GetDeliveryMaxRetries(),
		InitialBackoff:  cfg.GetDeliveryInitialBackoff(),
		MaxBackoff:      cfg.GetDeliveryMaxBackoff(),
		DeadLetterTopic: cfg.GetDeadLetterTopic(),
		Tracer:          tracer,
	})
	if err != nil {
		slog.Error("Failed to build delivery runtime", "error", err)
		os.Exit(1)
	}
	deadLetters := runtime.NewDeadLetterStore(cfg.GetDeadLetterRetention())

	// The user directory is optional: without a configured database the
	// consumers see every lookup as a miss, which they tolerate.
	var db *surrealdb.DB
	var directory domain.UserDirectory = database.NoopUserDirectory{}
	if cfg.GetDBUrl() != "" {
		db, err = database.NewDB(ctx, cfg)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		directory = database.NewSurrealUserDirectory(db, cfg.GetDBNs(), cfg.GetDBDb())
	}

	verifierOpts := []auth.VerifierOption{}
	if cfg.GetFrontendAuthorityURL() != "" {
		verifierOpts = append(verifierOpts, auth.WithFrontendAuthority(cfg.GetFrontendAuthorityURL()))
	}
	verifier := auth.NewVerifier(
		auth.NewKeyCache(auth.NewFetcher(cfg.GetKeyFetchTimeout()), cfg.GetKeySetTTL()),
		verifierOpts...,
	)

	waitlistModule := waitlist.New(nil)
	jobscrapeModule := jobscrape.New()
	resumeModule := resume.New(bus, resume.DefaultThreshold)
	feedbackModule := feedback.New(nil, directory)

	// Maintenance order matters: stores clear first-to-last and a failure
	// stops the sequence.
	aggregator := admin.NewAggregator(
		waitlistModule.Store(),
		jobscrapeModule.Ledger(),
		deadLetters,
	)

	reg := registry.New(cfg)
	registry.Set(reg, registry.PublisherKey, pubsub.Publisher(bus))
	registry.Set(reg, registry.RuntimeKey, rt)
	registry.Set(reg, registry.DeadLettersKey, deadLetters)
	registry.Set(reg, registry.AggregatorKey, aggregator)
	registry.Set(reg, registry.UserDirectoryKey, directory)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(appmw.Logger)
	e.Use(middleware.Recover())

	return &Server{
		E:           e,
		Cfg:         cfg,
		Bus:         bus,
		Runtime:     rt,
		DeadLetters: deadLetters,
		Verifier:    verifier,
		Aggregator:  aggregator,

		db:  db,
		reg: reg,
		modules: []module.Module{
			waitlistModule,
			jobscrapeModule,
			resumeModule,
			feedbackModule,
		},
		adminHandler:  handlers.NewAdminHandler(aggregator, deadLetters),
		healthHandler: handlers.NewHealthHandler(),
		otelCleanup:   otelCleanup,
	}
}

// Registry exposes the service registry, mainly for tests.
func (s *Server) Registry() *registry.Registry {
	return s.reg
}
