package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"meme-gallery-backend/internal/config"
	"meme-gallery-backend/internal/database"
	"meme-gallery-backend/internal/middleware"
	"meme-gallery-backend/internal/server"
	"meme-gallery-backend/internal/services"
)

func main() {
	app := &cli.App{
		Name:   "meme-gallery",
		Usage:  "meme gallery backend",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply the database migrations",
				Action: migrate,
			},
			{
				Name:   "migrate-images",
				Usage:  "move inline images to the object store",
				Action: migrateImages,
			},
			{
				Name:  "rewrite-urls",
				Usage: "point image URLs on legacy hosts at the current public base URL",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "from-host",
						Usage:    "legacy host to rewrite, repeatable",
						Required: true,
					},
				},
				Action: rewriteURLs,
			},
		},
		Version: "1.0.0",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadApp(c *cli.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newApp(c.Context, cfg)
}

func serve(c *cli.Context) error {
	a, err := loadApp(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer a.Close()
	cfg := a.cfg

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set. Migrations will be skipped.")
	} else if err := runMigrations(c.Context, cfg.DatabaseURL); err != nil {
		log.Printf("Warning: Migration failed: %v", err)
	}

	if checker, ok := a.store.(interface{ Health(context.Context) error }); ok {
		if err := checker.Health(c.Context); err != nil {
			log.Printf("Warning: object store health check failed: %v", err)
		}
	}

	verifier, err := middleware.NewTokenVerifier(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to initialize token verification: %v", err), 1)
	}

	if cfg.ClerkWebhookSecret == "" {
		log.Println("Warning: CLERK_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}

	photos := a.photoService()
	profiles := services.NewProfileService(a.db, cfg.ClerkWebhookSecret)
	router := server.NewRouter(server.Deps{
		Photos:         photos,
		Uploads:        services.NewUploadService(photos, a.db, a.store, a.publisher, cfg.MaxUploadBytes),
		Comments:       services.NewCommentService(a.db, a.db, a.counts, a.publisher),
		Profiles:       profiles,
		Hosts:          a.hosts,
		Verifier:       verifier,
		ProxyTimeout:   cfg.ProxyTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("Server starting on port %s (storage backend: %s)", cfg.Port, cfg.StorageBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return cli.Exit(fmt.Sprintf("failed to start server: %v", err), 1)
	}
	log.Println("Server stopped")
	return nil
}

func runMigrations(ctx context.Context, dbURL string) error {
	migrator, err := database.NewMigrator(ctx, dbURL)
	if err != nil {
		return err
	}
	defer migrator.Close()

	applied, err := migrator.Run(ctx)
	if err != nil {
		return err
	}
	log.Printf("Migrations completed successfully (%d applied)", applied)
	return nil
}

func migrate(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if cfg.DatabaseURL == "" {
		return cli.Exit("DATABASE_URL is required for migrate", 1)
	}
	if err := runMigrations(c.Context, cfg.DatabaseURL); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func migrateImages(c *cli.Context) error {
	a, err := loadApp(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer a.Close()

	report, err := services.NewBackfillService(a.db, a.store).MigrateInlineImages(c.Context)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	log.Printf("Image migration finished: %s", report)
	return nil
}

func rewriteURLs(c *cli.Context) error {
	a, err := loadApp(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer a.Close()

	report, err := services.NewBackfillService(a.db, a.store).RewriteImageURLs(c.StringSlice("from-host"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	log.Printf("URL rewrite finished: %s", report)
	return nil
}
