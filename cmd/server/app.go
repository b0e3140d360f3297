package main

import (
	"context"
	"fmt"
	"log"

	"meme-gallery-backend/internal/cache"
	"meme-gallery-backend/internal/config"
	"meme-gallery-backend/internal/events"
	"meme-gallery-backend/internal/objectstore"
	"meme-gallery-backend/internal/services"
	"meme-gallery-backend/internal/supabase"
)

// app holds the long-lived clients shared by every command.
type app struct {
	cfg       *config.Config
	db        *supabase.DatabaseClient
	store     services.ObjectStore
	hosts     *objectstore.HostMatcher
	publisher services.EventPublisher
	counts    services.CountCache

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
	}

	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s object store: %w", cfg.StorageBackend, err)
	}

	a := &app{
		cfg:       cfg,
		db:        supabase.NewDatabaseClient(supabaseClient.Supabase),
		store:     store,
		hosts:     objectstore.NewHostMatcher(cfg.PublicBaseURL(), cfg.MediaAllowedHosts),
		publisher: events.NoopPublisher{},
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := events.NewRabbitPublisher(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("Warning: event publishing disabled: %v", err)
		} else {
			a.publisher = publisher
			a.closers = append(a.closers, publisher.Close)
		}
	}

	if cfg.RedisURL != "" {
		counts, err := cache.NewCountCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: comment count cache disabled: %v", err)
		} else {
			a.counts = counts
			a.closers = append(a.closers, counts.Close)
		}
	}

	return a, nil
}

func newObjectStore(ctx context.Context, cfg *config.Config) (services.ObjectStore, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendMinio:
		return objectstore.NewMinioStore(ctx, objectstore.MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			UseSSL:        cfg.MinioUseSSL,
			Bucket:        cfg.MinioBucket,
			PublicBaseURL: cfg.PublicBaseURL(),
		})
	case config.StorageBackendSupabase:
		return supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseStorageBucket), nil
	default:
		return objectstore.NewR2Store(ctx, objectstore.R2Config{
			Endpoint:      cfg.R2EndpointURL(),
			AccessKeyID:   cfg.R2AccessKeyID,
			SecretKey:     cfg.R2SecretAccessKey,
			Bucket:        cfg.R2BucketName,
			PublicBaseURL: cfg.PublicBaseURL(),
		})
	}
}

func (a *app) photoService() *services.PhotoService {
	return services.NewPhotoService(a.db, a.store, a.hosts, a.publisher)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Warning: shutdown: %v", err)
		}
	}
}
