//	@title			Image Storage Gateway API
//	@version		1.0
//	@description	Multi-backend image upload and retrieval gateway
//	@description	(SeaweedFS / S3-compatible / local).
//
//	@host		localhost:8080
//	@BasePath	/api/v1

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/namkata/imagestore/internal/config"
	"github.com/namkata/imagestore/internal/db"
	"github.com/namkata/imagestore/internal/files"
	"github.com/namkata/imagestore/internal/logging"
	appmiddleware "github.com/namkata/imagestore/internal/middleware"
	"github.com/namkata/imagestore/internal/record"
	"github.com/namkata/imagestore/internal/storage"
	"github.com/namkata/imagestore/internal/upload"

	_ "github.com/namkata/imagestore/docs/swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration failed")
	}
	logging.Setup(cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	// One backend per process; an unusable backend means we must not serve.
	backend, err := storage.Select(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage backend selection failed")
	}

	// Wire dependencies: store → pipeline/service → handler
	records := record.NewPostgresStore(pool)
	pipeline := upload.NewPipeline(cfg, backend, records)
	uploadHandler := upload.NewHandler(pipeline)

	filesSvc := files.NewService(records, backend)
	filesHandler := files.NewHandler(filesSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(appmiddleware.Logger)
	r.Use(appmiddleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", uploadHandler.Upload)

		r.Route("/files", func(r chi.Router) {
			r.Get("/{id}", filesHandler.Get)
			r.Get("/{id}/content", filesHandler.Download)
			r.Get("/{id}/thumbnail", filesHandler.Thumbnail)
			r.Delete("/{id}", filesHandler.Delete)
			r.Post("/{id}/purge", filesHandler.Purge)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).
			Str("backend", string(backend.Kind())).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
