package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"journal-desk/client"
	"journal-desk/config"
	"journal-desk/handlers"
	"journal-desk/repositories"
	"journal-desk/services"
	"journal-desk/uploader"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Draft storage
	draftRepo, closeDrafts, err := newDraftRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to open draft store: %v", err)
	}
	defer closeDrafts()
	drafts := services.NewDraftService(draftRepo)

	// Object storage
	up, err := newUploader(cfg)
	if err != nil {
		log.Fatalf("Failed to configure uploads: %v", err)
	}

	// Journal backend
	opts := []client.Option{
		client.WithTimeout(cfg.APITimeout),
		client.WithRateLimit(cfg.APIRateLimit, cfg.APIBurst),
	}
	if cfg.TokenFile != "" {
		opts = append(opts, client.WithTokenStore(client.NewFileTokenStore(cfg.TokenFile)))
	}
	api := client.New(cfg.APIBaseURL, opts...)

	// Initialize services
	validator := services.NewValidator()
	accounts := services.NewEmailDirectory(api, 10*time.Minute)
	desks := services.NewDeskRegistry(services.DeskDeps{
		API:       api,
		Uploader:  up,
		Drafts:    drafts,
		Validator: validator,
		Accounts:  accounts,
	})
	autosaver := services.NewAutosaver(drafts, cfg.AutosaveInterval)
	autosaver.Start()
	defer autosaver.Stop()
	sessions := services.NewSessionManager(drafts, autosaver, validator, cfg.AttachmentExtensions)
	authService := services.NewAuthService(api, desks, sessions)

	// Setup router
	router := handlers.NewRouter(gin.Default(), handlers.RouterDeps{
		Auth:     authService,
		Desks:    desks,
		Sessions: sessions,
		Accounts: accounts,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

func newDraftRepository(cfg config.Config) (repositories.DraftRepository, func(), error) {
	if cfg.DraftDriver == "redis" {
		rdb := config.NewRedisClient(cfg)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, nil, err
		}
		log.Printf("[Config] draft store ready (redis %s)", cfg.RedisAddr)
		return repositories.NewRedisDraftRepository(rdb, 0), func() { rdb.Close() }, nil
	}

	db, err := config.InitDraftDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return repositories.NewDraftRepository(db), closeDB, nil
}

func newUploader(cfg config.Config) (uploader.Uploader, error) {
	switch cfg.UploadDriver {
	case "s3":
		store, err := uploader.NewS3(context.Background(), uploader.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "cloudinary":
		if cfg.CloudinaryCloudName == "" {
			return nil, errors.New("CLOUDINARY_CLOUD_NAME is required")
		}
		return uploader.NewCloudinary(uploader.CloudinaryConfig{
			CloudName:       cfg.CloudinaryCloudName,
			AvatarPreset:    cfg.CloudinaryAvatarPreset,
			ThumbnailPreset: cfg.CloudinaryThumbnailPreset,
			FilePreset:      cfg.CloudinaryFilePreset,
			Timeout:         cfg.APITimeout,
		}), nil
	}
	return nil, errors.New("unsupported upload driver " + cfg.UploadDriver)
}
