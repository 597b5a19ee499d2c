package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ayush/argumetrics/internal/activity"
	"github.com/ayush/argumetrics/internal/arguments"
	"github.com/ayush/argumetrics/internal/auth"
	"github.com/ayush/argumetrics/internal/config"
	"github.com/ayush/argumetrics/internal/exports"
	"github.com/ayush/argumetrics/internal/logger"
	"github.com/ayush/argumetrics/internal/server"
	"github.com/ayush/argumetrics/internal/store"
)

// businessStore is what the composition root needs from the user and
// argument gateway.
type businessStore interface {
	auth.UserStore
	arguments.Store
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Config{})
		boot.Fatal("config", zap.Error(err))
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev, File: cfg.LogFile})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── PostgreSQL ────────────────────────────────────────────
	var pgPool *pgxpool.Pool
	if cfg.StoreBackend == config.BackendPostgres || cfg.SessionBackend == config.BackendPostgres {
		pgPool, err = pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal("postgres connect", zap.Error(err))
		}
		defer pgPool.Close()
		if err := pgPool.Ping(ctx); err != nil {
			log.Fatal("postgres ping", zap.Error(err))
		}
	}

	var business businessStore
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Fatal("postgres migrate", zap.Error(err))
		}
		business = pgStore
	default:
		log.Warn("using in-memory store; data is lost on restart")
		business = store.NewMemoryStore()
	}

	// ── Sessions ─────────────────────────────────────────────
	var sessions auth.SessionStore
	switch cfg.SessionBackend {
	case config.BackendRedis:
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		sessions = auth.NewRedisSessionStore(rdb, cfg.SessionTTL)
	case config.BackendPostgres:
		sessions = auth.NewPostgresSessionStore(pgPool, cfg.SessionTTL)
	default:
		sessions = auth.NewMemorySessionStore(cfg.SessionTTL)
	}
	if p, ok := sessions.(auth.Pruner); ok {
		go auth.StartPruner(ctx, p, cfg.SessionPruneInterval, log.Named("pruner"))
	}

	// ── MongoDB (activity journal) ───────────────────────────
	var journalStore activity.Store
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("mongo connect", zap.Error(err))
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(dctx)
		}()
		activityStore := store.NewActivityStore(mongoClient.Database(cfg.MongoDB))
		if err := activityStore.EnsureIndexes(ctx); err != nil {
			log.Fatal("mongo indexes", zap.Error(err))
		}
		journalStore = activityStore
	} else {
		log.Info("MONGO_URI not set; activity journal disabled")
	}
	journal := activity.NewJournal(journalStore, log.Named("activity"))

	// ── MinIO (exports) ──────────────────────────────────────
	var files exports.FileStore
	if cfg.MinioEndpoint != "" {
		exportStore, err := store.NewExportStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			log.Fatal("minio connect", zap.Error(err))
		}
		files = exportStore
	} else {
		log.Info("MINIO_ENDPOINT not set; exports disabled")
	}

	// ── Auth ─────────────────────────────────────────────────
	authService := auth.NewService(business, sessions, auth.BcryptHasher{}, log.Named("auth"))
	if err := authService.SeedAdmin(ctx, cfg.AdminPassword); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}

	// ── Router ───────────────────────────────────────────────
	router := server.NewRouter(server.Deps{
		Log:         log,
		Auth:        authService,
		Arguments:   business,
		Journal:     journal,
		Exports:     files,
		Cookie:      auth.CookieConfig{TTL: cfg.SessionTTL, Secure: cfg.SessionSecureCookie},
		CORSOrigins: cfg.CORSOrigins,
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreBackend),
			zap.String("sessions", cfg.SessionBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
		os.Exit(1)
	}
}
