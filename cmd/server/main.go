package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"communityhub/internal/config"
	"communityhub/internal/db"
	"communityhub/internal/handlers"
	"communityhub/internal/logger"
	"communityhub/internal/router"
	"communityhub/internal/seed"
	"communityhub/internal/services"
	"communityhub/internal/session"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "communityhub",
	Short: "CommunityHub - neighbourhood events, issues and notices",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		db.Close()
		_ = logger.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.Init(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Log.Info("Migration complete")
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired OTP codes and old rate limit records",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.Init(cfg.DatabaseURL); err != nil {
			return err
		}
		res, err := services.NewMaintenanceService(0).RunOnce()
		if err != nil {
			return err
		}
		logger.Log.Info("Cleanup complete",
			zap.Int64("expired_otps", res.ExpiredOTPs),
			zap.Int64("old_rate_limits", res.OldRateLimits),
		)
		return nil
	},
}

var (
	seedUsers int
	seedItems int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with fake development data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction() {
			return errors.New("refusing to seed a production database")
		}
		if err := db.Init(cfg.DatabaseURL); err != nil {
			return err
		}
		return seed.NewSeeder(db.DB).SeedDev(seedUsers, seedItems)
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedUsers, "users", 20, "number of users to create")
	seedCmd.Flags().IntVar(&seedItems, "items", 100, "number of items to create")

	rootCmd.AddCommand(serveCmd, migrateCmd, cleanupCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newSessionStore() (session.Store, error) {
	switch cfg.SessionBackend {
	case "redis":
		return session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "", "memory":
		return session.NewMemoryStore(10000)
	}
	return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
}

func runServer() error {
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: 0.2,
		}); err != nil {
			logger.Log.Error("Sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if err := db.Init(cfg.DatabaseURL); err != nil {
		return err
	}

	store, err := newSessionStore()
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	mailer, err := services.NewMailerFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}
	media, err := services.NewMediaStoreFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to create media store: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.New(cfg, router.Deps{
		Sessions: session.NewManager(store, cfg.SessionTTL),
		Mail:     services.NewMailService(mailer),
		Media:    media,
		OAuth:    handlers.NewGoogleOAuthConfig(cfg),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 后台清理过期验证码与限流记录
	services.NewMaintenanceService(services.DefaultMaintenanceInterval).Start(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Log.Info("CommunityHub server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
