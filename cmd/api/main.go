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

	_ "github.com/joho/godotenv/autoload"

	appanalysis "github.com/compliance-copilot/backend/internal/application/analysis"
	"github.com/compliance-copilot/backend/internal/config"
	"github.com/compliance-copilot/backend/internal/domain/reports"
	"github.com/compliance-copilot/backend/internal/infra/ai/groq"
	mysqldb "github.com/compliance-copilot/backend/internal/infra/db/mysql"
	postgresdb "github.com/compliance-copilot/backend/internal/infra/db/postgres"
	"github.com/compliance-copilot/backend/internal/infra/httpserver"
	"github.com/compliance-copilot/backend/internal/infra/pdf"
	"github.com/compliance-copilot/backend/internal/infra/storage"
	"github.com/compliance-copilot/backend/internal/middleware"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("config load error", "error", err)
		os.Exit(1)
	}
	if cfg.Groq.APIKey == "" {
		logger.Error("GROQ_API_KEY is not set")
		os.Exit(1)
	}

	ctx := context.Background()

	// persistence is optional: without it analyses still work, reports are
	// just not stored
	var repo reports.Repository
	if cfg.DatabaseConfigured() {
		switch cfg.Database.Driver {
		case "mysql":
			db, err := mysqldb.Connect(ctx, cfg.MySQLDSN())
			if err != nil {
				logger.Error("mysql connect error", "error", err)
				os.Exit(1)
			}
			defer db.Close()
			repo = mysqldb.NewReportRepository(db)
		default:
			db, err := postgresdb.Connect(ctx, cfg.PostgresDSN())
			if err != nil {
				logger.Error("postgres connect error", "error", err)
				os.Exit(1)
			}
			defer db.Close()
			repo = postgresdb.NewReportRepository(db)
		}
	} else {
		logger.Warn("database not configured, reports will not be persisted")
	}

	var archive *storage.Store
	if cfg.ArchiveConfigured() {
		archive, err = storage.New(ctx,
			cfg.Archive.Endpoint,
			cfg.Archive.Region,
			cfg.Archive.BucketName,
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			cfg.Archive.UseSSL,
		)
		if err != nil {
			logger.Error("archive init error", "error", err)
			os.Exit(1)
		}
	}

	model := groq.NewClient(
		cfg.Groq.APIKey,
		cfg.Groq.BaseURL,
		cfg.Groq.Model,
		time.Duration(cfg.Groq.TimeoutSeconds)*time.Second,
	)

	svc := &appanalysis.Service{
		Extractor:      pdf.NewExtractor(),
		Model:          model,
		Repo:           repo,
		Clock:          appanalysis.SystemClock{},
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}
	if archive != nil {
		svc.Archive = archive
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		ModelConfigured:   cfg.Groq.APIKey != "",
		StorageConfigured: cfg.DatabaseConfigured(),
		RateLimiter:       middleware.NewRateLimiter(10, 2),
		Logger:            logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// WriteTimeout stays 0: SSE responses outlive any fixed deadline
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
