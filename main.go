package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/learnquest/api/rest"
	"github.com/kasuganosora/learnquest/api/sse"
	"github.com/kasuganosora/learnquest/audit"
	"github.com/kasuganosora/learnquest/cache"
	"github.com/kasuganosora/learnquest/config"
	dbadapter "github.com/kasuganosora/learnquest/db"
	"github.com/kasuganosora/learnquest/game/engine"
	"github.com/kasuganosora/learnquest/metrics"
	mw "github.com/kasuganosora/learnquest/middleware"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
	"github.com/kasuganosora/learnquest/scheduler"
	"github.com/kasuganosora/learnquest/store"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	loc, err := cfg.Game.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer c.Close()
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Catalog ----
	var cat *resource.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = resource.Load(cfg.Catalog.Path)
	} else {
		cat, err = resource.LoadDefault()
	}
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	logger.Info("Catalog loaded",
		zap.String("path", cfg.Catalog.Path),
		zap.Int("items", len(cat.Items)),
		zap.Int("skills", len(cat.Skills)),
		zap.Int("banners", len(cat.Banners)))

	// ---- Engine ----
	m := metrics.New()
	eng := engine.New(cat, engine.Flags{
		StreakBonus: cfg.Features.StreakBonus,
		Heatmap:     cfg.Features.LearningHeatmap,
		Badges:      cfg.Features.BadgeSystem,
	}, loc, logger, m)

	st := store.New(db, c, pubsub, cfg.Cache.SnapshotTTL, logger)
	sseH := sse.NewHandler(pubsub, cfg.Security.AllowedOrigins, logger)

	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		w, err := resource.NewWatcher(cfg.Catalog.Path, func(next *resource.Catalog) {
			eng.SetCatalog(next)
			m.CatalogReload(true)
			info := map[string]int{"items": len(next.Items), "skills": len(next.Skills), "banners": len(next.Banners)}
			if err := sseH.AnnounceCatalog(ctx, info); err != nil {
				logger.Warn("catalog announce failed", zap.Error(err))
			}
		}, func(error) { m.CatalogReload(false) }, logger)
		if err != nil {
			log.Fatalf("catalog watcher: %v", err)
		}
		defer w.Stop()
		logger.Info("Catalog hot reload enabled", zap.String("path", cfg.Catalog.Path))
	}

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	if d := cfg.Jobs.LeaderboardRefresh; d > 0 {
		sched.AddTicker("leaderboard_refresh", d, 0, func(ctx context.Context) error {
			_, err := st.RefreshLeaderboard(ctx)
			return err
		})
	}
	if d := cfg.Jobs.AuditPurge; d > 0 && cfg.Jobs.AuditRetention > 0 {
		sched.AddTicker("audit_purge", d, 0, func(ctx context.Context) error {
			n, err := auditSvc.Purge(ctx, time.Now().Add(-cfg.Jobs.AuditRetention))
			if n > 0 {
				logger.Info("audit rows purged", zap.Int64("rows", n))
			}
			return err
		})
	}

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger, "/health", "/metrics"), mw.Recovery(logger), m.Middleware())
	r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst, mw.ByIP))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// ---- REST API routes ----
	api := r.Group("/api")
	restH := apirest.NewHandler(eng, st, auditSvc, m, logger)
	restH.Register(api,
		mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS/10), max(1, cfg.Security.RateLimitBurst/10), mw.ByPlayer))
	api.GET("/players/:id/events", sseH.ServeEvents)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
		// Open event streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
}
