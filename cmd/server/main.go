package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ayash-Bera/vbm-explorer/internal/api/handlers"
	"github.com/Ayash-Bera/vbm-explorer/internal/config"
	"github.com/Ayash-Bera/vbm-explorer/internal/corpus"
	"github.com/Ayash-Bera/vbm-explorer/internal/database"
	"github.com/Ayash-Bera/vbm-explorer/internal/health"
	"github.com/Ayash-Bera/vbm-explorer/internal/metrics"
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/Ayash-Bera/vbm-explorer/internal/narration"
	"github.com/Ayash-Bera/vbm-explorer/internal/repository"
	"github.com/Ayash-Bera/vbm-explorer/internal/services"
	"github.com/Ayash-Bera/vbm-explorer/internal/session"
	"github.com/Ayash-Bera/vbm-explorer/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.NewLogger(cfg.Log.Level)
	utils.Logger = logger
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A corpus load failure is fatal.
	resultCorpus, err := corpus.Load(ctx, cfg.Corpus.Source, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load result corpus")
	}
	for outcome, n := range resultCorpus.Stats() {
		metrics.CorpusAnalyses.WithLabelValues(string(outcome)).Set(float64(n))
	}

	dbManager, err := database.NewManager(&database.Config{
		Driver:      cfg.Database.Driver,
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.Log.Level,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	var (
		repoManager   *repository.RepositoryManager
		healthRepo    models.SystemHealthRepository
		cache         *database.Cache
		narrationMemo narration.Cache
		store         session.Store
		memoryStore   *session.MemoryStore
	)
	if dbManager.DB != nil {
		repoManager = repository.NewRepositoryManager(dbManager.DB)
		healthRepo = repoManager.SystemHealth
	}
	if dbManager.Redis != nil {
		cache = database.NewCache(dbManager.Redis, logger)
		narrationMemo = cache
		store = session.NewRedisStore(dbManager.Redis)
	} else {
		memoryStore = session.NewMemoryStore()
		store = memoryStore
	}

	provider, err := narration.NewProvider(cfg.Narration.Provider, cfg.Narration.APIKey, cfg.Narration.Model, cfg.Narration.BaseURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to configure narration")
	}
	if !cfg.NarrationEnabled() {
		logger.WithField("provider", cfg.Narration.Provider).Warn("Narration API key not configured; answers will carry a narration error")
	}
	relay := narration.NewRelay(provider, narrationMemo, logger, narration.Options{
		Timeout:   cfg.Narration.Timeout,
		MaxTokens: cfg.Narration.MaxTokens,
		CacheTTL:  cfg.Narration.CacheTTL,
	})

	guard := session.NewGuard(store, cfg.Session.Limit, cfg.Session.Window)
	explorer := services.NewExplorerService(resultCorpus, nil, relay, repoManager, logger)
	checker := health.NewHealthChecker(healthRepo, cache, logger, probes(resultCorpus, dbManager, cache, relay)...)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Health.Schedule, func() { checker.Refresh(ctx) }); err != nil {
		logger.WithError(err).Fatal("Invalid health check schedule")
	}
	if memoryStore != nil {
		window := cfg.Session.Window
		if _, err := scheduler.AddFunc("@every 5m", func() {
			if n := memoryStore.Sweep(time.Now(), window); n > 0 {
				logger.WithField("sessions", n).Debug("Expired sessions swept")
			}
		}); err != nil {
			logger.WithError(err).Fatal("Failed to schedule session sweep")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()
	checker.Refresh(ctx)

	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.Dependencies{
		Corpus:         resultCorpus,
		Explorer:       explorer,
		Relay:          relay,
		Guard:          guard,
		Health:         checker,
		Cache:          cache,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Narration.Timeout + 15*time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":      cfg.Server.Port,
			"narration": relay.Provider(),
			"analyses":  resultCorpus.Len(),
		}).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	logger.Info("Server exited")
}

func probes(c *corpus.Corpus, dbManager *database.Manager, cache *database.Cache, relay *narration.Relay) []health.Probe {
	list := []health.Probe{{
		Name:     "corpus",
		Required: true,
		Check: func(context.Context) error {
			if c.Len() == 0 {
				return errors.New("corpus is empty")
			}
			return nil
		},
	}, {
		Name: "narration",
		Check: func(context.Context) error {
			if relay.Provider() == narration.ProviderNone {
				return narration.ErrNotConfigured
			}
			return nil
		},
	}}

	if dbManager.DB != nil {
		list = append(list, health.Probe{Name: "database", Check: dbManager.PingDatabase})
	}
	if cache != nil {
		list = append(list, health.RedisProbe(dbManager.PingRedis, cache))
	}
	return list
}
