// internal/app/agent.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"console-agent/internal/bus"
	"console-agent/internal/client"
	"console-agent/internal/config"
	"console-agent/internal/db"
	authHandler "console-agent/internal/handlers/auth"
	catalogHandler "console-agent/internal/handlers/catalog"
	profileHandler "console-agent/internal/handlers/profile"
	settingsHandler "console-agent/internal/handlers/settings"
	wsHandler "console-agent/internal/handlers/ws"
	"console-agent/internal/middleware"
	"console-agent/internal/notify"
	sessionSvc "console-agent/internal/service/session"
	settingsSvc "console-agent/internal/service/settings"
	"console-agent/internal/storage"
	memstorage "console-agent/internal/storage/memory"
	redisstorage "console-agent/internal/storage/redis"
)

// Agent wires the session core, the settings layer and the local UI surface
// together. One Agent per process; independent instances coordinate only
// through the shared key-value store and the sync channel.
type Agent struct {
	cfg      config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	settings *settingsSvc.Service
	kv       storage.Store
	syncBus  bus.Bus
}

func NewAgent() *Agent {
	cfg := config.Load()
	engine := gin.New()
	return &Agent{cfg: cfg, engine: engine}
}

func (a *Agent) Start(ctx context.Context) error {
	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	a.logger = logger

	// ----- Shared state (key-value store + sync channel) -----
	var kv storage.Store
	var syncBus bus.Bus

	switch a.cfg.StorageBackend {
	case "redis":
		rdb, err := db.NewRedisClient(db.RedisConfig{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPass,
			DB:       a.cfg.RedisDB,
			PoolSize: 10,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Println("[REDIS] connected")
		kv = redisstorage.New(rdb, a.cfg.Origin)
		syncBus = bus.NewRedisBus(rdb, a.cfg.SyncChannel)
	default:
		// Single-instance development mode without Redis; cross-instance
		// sync degrades to a no-op loopback.
		kv = memstorage.New()
		syncBus = bus.NewMemoryBus()
	}
	a.kv = kv
	a.syncBus = syncBus

	// ----- Notification hub -----
	hub := notify.NewHub(logger)
	go hub.Run(ctx)

	// ----- Session core -----
	store := sessionSvc.NewStore(kv, hub, logger)

	backend, err := client.NewBackend(a.cfg.BackendURL, store.AccessToken, logger)
	if err != nil {
		return fmt.Errorf("failed to build backend client: %w", err)
	}

	// ----- Settings layer -----
	cache := settingsSvc.NewCache(a.cfg.SettingsTTL)
	syncer := settingsSvc.NewSynchronizer(syncBus, cache, logger)
	settingsService := settingsSvc.NewService(cache, backend, syncer, hub, logger)
	a.settings = settingsService

	scheduler := sessionSvc.NewScheduler(
		backend,
		store,
		func() time.Duration { return settingsService.RefreshMargin(a.cfg.RefreshMargin) },
		hub,
		logger,
		sessionSvc.SchedulerConfig{
			DefaultMargin: a.cfg.RefreshMargin,
			RetryDelay:    a.cfg.RetryDelay,
			MaxRetries:    a.cfg.MaxRetries,
		},
	)
	store.SetScheduler(scheduler)

	if err := syncer.InitSync(ctx); err != nil {
		return fmt.Errorf("failed to open sync channel: %w", err)
	}

	// Resume a persisted session, if any; an expired token triggers an
	// immediate refresh attempt.
	if err := store.Load(ctx); err != nil {
		logger.Warn("failed to restore persisted session", zap.Error(err))
	}

	manager := sessionSvc.NewManager(backend, store, logger)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:     authHandler.NewAuthHandler(manager, store, logger),
		ProfileHandler:  profileHandler.NewProfileHandler(backend, logger),
		SettingsHandler: settingsHandler.NewSettingsHandler(settingsService, logger),
		CatalogHandler:  catalogHandler.NewCatalogHandler(backend, logger),
		WSHandler:       wsHandler.NewWSHandler(hub, logger),
	}

	a.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)
	SetupRouter(a.engine, handlers)

	log.Printf("agent listening on %s", a.cfg.HTTPAddr)
	return a.engine.Run(a.cfg.HTTPAddr)
}

// Shutdown flushes pending debounced writes and releases shared resources.
func (a *Agent) Shutdown() {
	if a.settings != nil {
		a.settings.Flush()
	}
	if a.syncBus != nil {
		_ = a.syncBus.Close()
	}
	if a.kv != nil {
		_ = a.kv.Close()
	}
}
