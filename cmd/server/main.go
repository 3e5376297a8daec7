package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ngabo-dev/salon-backend/internal/api"
	"github.com/ngabo-dev/salon-backend/internal/config"
	"github.com/ngabo-dev/salon-backend/pkg/realtime"
	"github.com/ngabo-dev/salon-backend/pkg/salon"
	memoryrepo "github.com/ngabo-dev/salon-backend/pkg/salon/repo/memory"
	postgresrepo "github.com/ngabo-dev/salon-backend/pkg/salon/repo/postgres"
	fsstorage "github.com/ngabo-dev/salon-backend/pkg/salon/storage/fs"
	memorystorage "github.com/ngabo-dev/salon-backend/pkg/salon/storage/memory"
	s3storage "github.com/ngabo-dev/salon-backend/pkg/salon/storage/s3"
)

func buildRepository(ctx context.Context, cfg *config.Config) (salon.Repository, func(), error) {
	switch cfg.DatabaseType {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DB.DatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return postgresrepo.NewWithPool(pool), pool.Close, nil
	default:
		return memoryrepo.New(), func() {}, nil
	}
}

func buildBlobStore(ctx context.Context, cfg *config.Config) (salon.BlobStore, error) {
	switch cfg.StorageType {
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 cfg.S3.Region,
			Bucket:                 cfg.S3.Bucket,
			AccessKeyID:            cfg.S3.AccessKeyID,
			SecretAccessKey:        cfg.S3.SecretAccessKey,
			Endpoint:               cfg.S3.Endpoint,
			UsePathStyle:           cfg.S3.UsePathStyle,
			PublicBaseURL:          cfg.S3.PublicBaseURL,
			CreateBucketIfNotExist: cfg.S3.CreateBucketIfNotExist,
		})
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   cfg.FS.BaseDir,
			URLPrefix: cfg.FS.URLPrefix,
		})
	default:
		return memorystorage.New(), nil
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	repo, closeRepo, err := buildRepository(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize metadata store", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	blobStore, err := buildBlobStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	hub := realtime.NewHub(logger)

	svc, err := salon.New(
		salon.WithRepository(repo),
		salon.WithBlobStore(blobStore),
		salon.WithEventSink(realtime.NewSink(hub)),
		salon.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	auth := jwtauth.New("HS256", []byte(cfg.JWTSecret), nil)

	galleryHandler := api.NewAssetHandler(svc, salon.KindGallery, cfg.StagingDir)
	serviceHandler := api.NewAssetHandler(svc, salon.KindService, cfg.StagingDir)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/api/gallery", galleryHandler.Routes(auth))
	r.Mount("/api/services", serviceHandler.Routes(auth))
	r.Handle("/ws", hub)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Locally stored objects are served straight from disk.
	if cfg.StorageType == "fs" {
		fileServer := http.StripPrefix(cfg.FS.URLPrefix+"/", http.FileServer(http.Dir(cfg.FS.BaseDir)))
		r.Get(cfg.FS.URLPrefix+"/*", fileServer.ServeHTTP)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	hub.Close()

	logger.Info("server exiting")
}
