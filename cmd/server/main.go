package main

import (
	"alcyxob/fitness-companion/internal/api"
	"alcyxob/fitness-companion/internal/config"
	"alcyxob/fitness-companion/internal/remote"
	"alcyxob/fitness-companion/internal/repository/mongo"
	"alcyxob/fitness-companion/internal/service"
	"alcyxob/fitness-companion/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Fitness Companion Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureGymIndexes(ctx, appDB.Collection("gyms"))
		mongo.EnsureTemplateIndexes(ctx, appDB.Collection("templates"))
		mongo.EnsureCatalogIndexes(ctx, appDB.Collection("catalog_exercises"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Snapshot Archiver (optional) ---
	var archiver storage.SnapshotArchiver
	if cfg.Archive.Enabled {
		log.Println("Initializing snapshot archiver...")
		archiver, err = storage.NewS3Archiver(cfg.Archive)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 archiver: %v", err)
		}
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	gymRepo := mongo.NewMongoGymRepository(appDB)
	templateRepo := mongo.NewMongoTemplateRepository(appDB)
	catalogRepo := mongo.NewMongoCatalogRepository(appDB)

	// --- Initialize Remote Template Source ---
	// Retry policy lives here at the wiring layer: the synchronizer itself
	// never retries.
	templateSource := remote.NewRetryingSource(
		remote.NewHTTPSource(cfg.Remote.BaseURL, cfg.Remote.Token, cfg.Remote.Timeout),
		cfg.Remote.Retries,
		cfg.Remote.RetryBackoff,
	)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	// One gate per process so sync and adaptation serialize against each
	// other per (user, gym) scope.
	gate := service.NewScopeGate()
	syncService := service.NewSyncService(userRepo, templateRepo, templateSource, gate)
	adaptService := service.NewAdaptationService(templateRepo, gymRepo, catalogRepo, gate)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, syncService, adaptService, templateRepo, userRepo, gymRepo, catalogRepo, archiver)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // sync can wait on the template backend
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
