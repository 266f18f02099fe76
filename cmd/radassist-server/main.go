package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/radassist/radassist/internal/config"
	"github.com/radassist/radassist/internal/domain/account"
	"github.com/radassist/radassist/internal/domain/admin"
	"github.com/radassist/radassist/internal/domain/auditlog"
	"github.com/radassist/radassist/internal/domain/chat"
	"github.com/radassist/radassist/internal/domain/report"
	"github.com/radassist/radassist/internal/domain/scan"
	"github.com/radassist/radassist/internal/platform/ai"
	"github.com/radassist/radassist/internal/platform/auth"
	"github.com/radassist/radassist/internal/platform/blobstore"
	"github.com/radassist/radassist/internal/platform/db"
	"github.com/radassist/radassist/internal/platform/middleware"
	"github.com/radassist/radassist/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "radassist-server",
		Short: "Radiology AI assistant API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrations.FS).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.FS).Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.AppliedAt != nil {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%03d %-30s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			fullName, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")
			samples, _ := cmd.Flags().GetBool("samples")

			if password == "" {
				return fmt.Errorf("--password is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			auditSvc := auditlog.NewService(auditlog.NewAuditLogRepoPG(pool))
			codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL())
			accountSvc := account.NewService(account.NewAccountRepoPG(pool), codec, auditSvc)

			_, created, err := accountSvc.Bootstrap(ctx, account.RegisterInput{
				Email:    email,
				Username: username,
				Password: password,
				FullName: fullName,
				Role:     auth.RoleAdmin,
			})
			if err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			if created {
				fmt.Printf("Admin account %q created.\n", username)
			} else {
				fmt.Printf("Admin account %q already exists, left untouched.\n", username)
			}

			if !samples {
				return nil
			}
			demo := []account.RegisterInput{
				{Email: "patient@example.com", Username: "patient_demo", Password: "password123", FullName: "John Doe", Role: auth.RolePatient},
				{Email: "doctor@example.com", Username: "doctor_demo", Password: "password123", FullName: "Dr. Jane Smith", Role: auth.RoleDoctor},
			}
			for _, in := range demo {
				if _, created, err := accountSvc.Bootstrap(ctx, in); err != nil {
					return fmt.Errorf("seed %s: %w", in.Username, err)
				} else if created {
					fmt.Printf("Sample account %q created (password: %s).\n", in.Username, in.Password)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("username", "admin", "Admin username")
	cmd.Flags().String("email", "admin@example.com", "Admin email")
	cmd.Flags().String("name", "Administrator", "Admin full name")
	cmd.Flags().String("password", "", "Admin password (required)")
	cmd.Flags().Bool("samples", false, "Also create demo patient and doctor accounts")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Platform services
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL())
	blobs := blobstore.NewDiskStore(cfg.UploadDir, cfg.MaxUploadMB<<20)
	gemini := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout())
	aiSvc := ai.NewService(gemini)

	// Repositories
	accountRepo := account.NewAccountRepoPG(pool)
	scanRepo := scan.NewScanRepoPG(pool)
	reportRepo := report.NewReportRepoPG(pool)
	chatRepo := chat.NewChatRepoPG(pool)
	auditRepo := auditlog.NewAuditLogRepoPG(pool)

	// Domain services
	auditSvc := auditlog.NewService(auditRepo)
	accountSvc := account.NewService(accountRepo, codec, auditSvc)
	scanSvc := scan.NewService(scanRepo, blobs, aiSvc, accountRepo, auditSvc)
	reportSvc := report.NewService(reportRepo, scanRepo, accountRepo, aiSvc, auditSvc)
	chatSvc := chat.NewService(chatRepo, scanRepo, aiSvc, auditSvc,
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		})
	adminSvc := admin.NewService(accountRepo, scanRepo, reportRepo)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(auth.Middleware(codec, auth.DefaultSkipper))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// API groups
	public := e.Group("/api/v1")
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	// Routes
	account.NewHandler(accountSvc).RegisterRoutes(public, apiV1)
	scan.NewHandler(scanSvc, blobs).RegisterRoutes(apiV1)
	report.NewHandler(reportSvc).RegisterRoutes(apiV1)
	chat.NewHandler(chatSvc, aiSvc).RegisterRoutes(apiV1)
	admin.NewHandler(adminSvc).RegisterRoutes(apiV1)
	auditlog.NewHandler(auditSvc).RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
