package main

import (
	"context"
	"log"

	_ "github.com/AnuphapGBC/invoice-management-service/docs"
	"github.com/AnuphapGBC/invoice-management-service/internal/blobstore"
	"github.com/AnuphapGBC/invoice-management-service/internal/config"
	"github.com/AnuphapGBC/invoice-management-service/internal/database"
	"github.com/AnuphapGBC/invoice-management-service/internal/handler"
	"github.com/AnuphapGBC/invoice-management-service/internal/imageconv"
	"github.com/AnuphapGBC/invoice-management-service/internal/ingest"
	"github.com/AnuphapGBC/invoice-management-service/internal/middleware"
	"github.com/AnuphapGBC/invoice-management-service/internal/repository"
	"github.com/AnuphapGBC/invoice-management-service/internal/server"
	"github.com/AnuphapGBC/invoice-management-service/internal/service"
)

// @title Invoice Management Service API
// @version 1.0
// @description Records expense invoices with scanned receipt images.
// @BasePath /api
func main() {
	log.Println("Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	log.Println("Connecting to database...")
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Initializing %s blob storage...", cfg.StorageBackend)
	var store blobstore.Store
	var fsStore *blobstore.FilesystemStore
	switch cfg.StorageBackend {
	case config.StorageS3:
		store, err = blobstore.NewS3Store(&blobstore.S3Config{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			AccessKeySecret: cfg.S3AccessKeySecret,
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
		})
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
	default:
		fsStore, err = blobstore.NewFilesystemStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to initialize filesystem storage: %v", err)
		}
		store = fsStore
	}

	converter := &imageconv.ExecConverter{
		Tool:   cfg.ConvertTool,
		Args:   []string{"{src}", "{dst}"},
		SrcExt: ".heic",
		DstExt: imageconv.CanonicalExt,
	}
	normalizer := imageconv.NewNormalizer(store, converter, cfg.ConvertTimeout, cfg.MaxImageDimension)

	pipeline := ingest.NewPipeline(store, normalizer, ingest.Config{
		AcceptedTypes: cfg.AcceptedImageTypes,
		MaxFileSize:   cfg.MaxFileSize,
		MaxConcurrent: cfg.MaxUploadWorkers,
		MaxDimension:  cfg.MaxImageDimension,
	})

	invoiceRepo := repository.NewPostgresInvoiceRepository(db)
	userRepo := repository.NewPostgresUserRepository(db.GetPool())

	invoiceService := service.NewInvoiceService(invoiceRepo, store, pipeline)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)

	appServer := server.NewServer(cfg)
	if fsStore != nil {
		appServer.ServeUploads(fsStore.BaseDir())
	}

	api := appServer.Router().Group("/api")
	handler.NewAuthHandler(authService).RegisterRoutes(api)

	protected := api.Group("", middleware.AuthMiddleware(authService))
	handler.NewInvoiceHandler(invoiceService, cfg.MaxFileSize).RegisterRoutes(protected)
	handler.NewUserHandler(userRepo, authService).RegisterRoutes(protected)

	if cfg.MailEnabled {
		mailService := service.NewMailService(invoiceRepo, store, service.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Sender:   cfg.SMTPSender,
		})
		handler.NewMailHandler(mailService).RegisterRoutes(protected)
	}

	log.Printf("Starting server on port %d...", cfg.Port)
	if err := appServer.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
