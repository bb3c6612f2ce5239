package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/inspecta/internal/application"
	appai "github.com/bryanwahyu/inspecta/internal/application/ai"
	appinspections "github.com/bryanwahyu/inspecta/internal/application/inspections"
	appsettings "github.com/bryanwahyu/inspecta/internal/application/settings"
	appuploads "github.com/bryanwahyu/inspecta/internal/application/uploads"
	"github.com/bryanwahyu/inspecta/internal/domain/photos"
	infraai "github.com/bryanwahyu/inspecta/internal/infra/ai"
	"github.com/bryanwahyu/inspecta/internal/infra/db/sqlstore"
	"github.com/bryanwahyu/inspecta/internal/infra/httpserver"
	"github.com/bryanwahyu/inspecta/internal/infra/storage"
	"github.com/bryanwahyu/inspecta/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, dialect, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		schema := sqlstore.NewSchema(db, dialect)
		if err := schema.Bootstrap(ctx); err != nil {
			return err
		}

		checks := map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: schema},
		}
		blobs, err := openBlobStore(ctx)
		if err != nil {
			return err
		}
		if s, ok := blobs.(*storage.Store); ok {
			checks["storage"] = s
		}

		gen, err := infraai.NewGenerator(cfg.AI)
		if err != nil {
			return err
		}

		metrics, err := middleware.NewMetrics(middleware.NewRegistry())
		if err != nil {
			return eris.Wrap(err, "register metrics")
		}

		batcher := &appai.Batcher{
			Generator:   gen,
			Size:        cfg.AI.BatchSize,
			Concurrency: cfg.AI.BatchConcurrency,
			Observer:    metrics,
		}
		settings := &appsettings.Service{Repo: sqlstore.NewConfigRepository(db, dialect)}

		handler := httpserver.NewRouter(httpserver.Deps{
			Inspections: &appinspections.Service{
				Inspections: sqlstore.NewInspectionRepository(db, dialect),
				Findings:    sqlstore.NewFindingRepository(db, dialect),
				Schema:      schema,
				Enricher:    batcher,
				Zones:       settings,
				Clock:       application.SystemClock{},
			},
			Settings: settings,
			Uploads: &appuploads.Service{
				Store:            blobs,
				BestEffortDelete: cfg.Uploads.BestEffortDelete,
			},
			AI:             appai.NewService(gen, batcher),
			Metrics:        metrics,
			Health:         checks,
			Ready:          checks["database"],
			CORSOrigins:    cfg.Server.CORSOrigins,
			RateLimit:      cfg.Server.RateLimit,
			RateBurst:      cfg.Server.RateBurst,
			MaxUploadBytes: cfg.Uploads.MaxBytes,
		})

		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:        addr,
			Handler:     handler,
			ReadTimeout: 15 * time.Second,
			// enrichment makes one generator call per chunk
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server listening",
				zap.String("addr", addr),
				zap.String("db", dialect.Name),
				zap.String("ai_provider", cfg.AI.Provider),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return eris.Wrap(err, "server error")
			}
		case <-ctx.Done():
		}

		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "shutdown")
		}
		return nil
	},
}

// openBlobStore connects MinIO, or returns a store that refuses every call
// when no endpoint is configured.
func openBlobStore(ctx context.Context) (photos.BlobStore, error) {
	if cfg.Minio.Endpoint == "" {
		zap.L().Warn("minio endpoint not set; photo uploads disabled")
		return storage.Disabled{}, nil
	}
	return storage.New(ctx, storage.Options{
		Endpoint:  cfg.Minio.Endpoint,
		Region:    cfg.Minio.Region,
		Bucket:    cfg.Minio.BucketName,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		UseSSL:    cfg.Minio.UseSSL,
		PublicURL: cfg.Minio.PublicURL,
	})
}
