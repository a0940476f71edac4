package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/smritirangarajan/spenderella/internal/ai"
	"github.com/smritirangarajan/spenderella/internal/analytics"
	analyticsStore "github.com/smritirangarajan/spenderella/internal/analytics/store"
	"github.com/smritirangarajan/spenderella/internal/auth"
	authStore "github.com/smritirangarajan/spenderella/internal/auth/store"
	"github.com/smritirangarajan/spenderella/internal/config"
	"github.com/smritirangarajan/spenderella/internal/database"
	appHttp "github.com/smritirangarajan/spenderella/internal/http"
	analyticsHandler "github.com/smritirangarajan/spenderella/internal/http/analytics"
	"github.com/smritirangarajan/spenderella/internal/export"
	authHandler "github.com/smritirangarajan/spenderella/internal/http/auth"
	exportHandler "github.com/smritirangarajan/spenderella/internal/http/export"
	importHandler "github.com/smritirangarajan/spenderella/internal/http/importcsv"
	matchingHandler "github.com/smritirangarajan/spenderella/internal/http/matching"
	"github.com/smritirangarajan/spenderella/internal/http/middleware"
	reportHandler "github.com/smritirangarajan/spenderella/internal/http/report"
	txHandler "github.com/smritirangarajan/spenderella/internal/http/transaction"
	userHandler "github.com/smritirangarajan/spenderella/internal/http/user"
	"github.com/smritirangarajan/spenderella/internal/importer"
	"github.com/smritirangarajan/spenderella/internal/jobs"
	"github.com/smritirangarajan/spenderella/internal/logger"
	"github.com/smritirangarajan/spenderella/internal/mail"
	"github.com/smritirangarajan/spenderella/internal/matching"
	matchingStore "github.com/smritirangarajan/spenderella/internal/matching/store"
	"github.com/smritirangarajan/spenderella/internal/receipt"
	"github.com/smritirangarajan/spenderella/internal/report"
	reportStore "github.com/smritirangarajan/spenderella/internal/report/store"
	"github.com/smritirangarajan/spenderella/internal/storage"
	"github.com/smritirangarajan/spenderella/internal/transaction"
	txStore "github.com/smritirangarajan/spenderella/internal/transaction/store"
	"github.com/smritirangarajan/spenderella/internal/user"
	userStore "github.com/smritirangarajan/spenderella/internal/user/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.App.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func uploader(ctx context.Context, cfg *config.Config) (storage.Uploader, func(), error) {
	if cfg.Storage.Bucket == "" {
		slog.Warn("GCS_BUCKET not set, keeping uploads in memory")
		return storage.NewMemory(cfg.App.BaseURL + "/uploads"), func() {}, nil
	}

	gcs, err := storage.NewGCS(ctx, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("creating storage client: %w", err)
	}

	return gcs, func() { _ = gcs.Close() }, nil
}

func generator(ctx context.Context, cfg *config.Config) (ai.Generator, error) {
	if cfg.AI.APIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, receipt scanning and report insights are disabled")
		return nil, nil
	}

	return ai.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model)
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	uploads, closeUploads, err := uploader(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeUploads()

	gen, err := generator(ctx, cfg)
	if err != nil {
		return err
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	var (
		authService        = auth.NewService(authStore.New(db), tokens, cfg.Auth.BcryptCost)
		userService        = user.NewService(userStore.New(db), uploads, cfg.Storage.MaxImageSize)
		transactionService = transaction.NewService(txStore.New(db), cfg.Import.MaxRows)
		matchingService    = matching.NewService(matchingStore.New(db))
		analyticsService   = analytics.NewService(analyticsStore.New(db), cfg.Analytics.CacheTTL)
		mailer             = mail.New(cfg.Mail.Provider, cfg.Mail.Domain, cfg.Mail.APIKey, cfg.Mail.From)
		reportService      = report.NewService(reportStore.New(db), analyticsService, gen, mailer)
		importSessions     = importer.NewSessions(importer.Limits{
			MaxFileSize: cfg.Import.MaxFileSize,
			MaxRows:     cfg.Import.MaxRows,
		}, cfg.Import.SessionTTL)
	)

	transactionService.OnChange(analyticsService.Invalidate)

	var scanner *receipt.Scanner
	if gen != nil {
		scanner = receipt.NewScanner(gen, uploads, matchingService, cfg.Storage.MaxImageSize)
	}

	router := appHttp.New(appHttp.Handlers{
		Auth:        authHandler.NewHandler(authService),
		User:        userHandler.NewHandler(userService, cfg.Storage.MaxImageSize),
		Transaction: txHandler.NewHandler(transactionService, scanner, cfg.Storage.MaxImageSize),
		Import:      importHandler.NewHandler(importSessions, transactionService),
		Matching:    matchingHandler.NewHandler(matchingService),
		Analytics:   analyticsHandler.NewHandler(analyticsService),
		Report:      reportHandler.NewHandler(reportService),
		Export:      exportHandler.NewHandler(export.NewService(transactionService, nil)),
	}, appHttp.Options{
		CORSOrigins: cfg.App.CORSOrigins,
		Timeout:     cfg.Server.Timeout,
		Tokens:      tokens,
		AuthLimiter: middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute),
	})

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(
			jobs.Job{
				Name:     "recurring-transactions",
				Interval: cfg.Jobs.RecurringInterval,
				Run: func(ctx context.Context) (int, error) {
					return transactionService.ProcessRecurring(ctx, time.Now())
				},
			},
			jobs.Job{
				Name:     "monthly-reports",
				Interval: cfg.Jobs.ReportInterval,
				Run:      reportService.SendDue,
			},
		)
		scheduler.Start(ctx)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr, "app", cfg.App.Name)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	if scheduler != nil {
		scheduler.Wait()
	}

	return nil
}
