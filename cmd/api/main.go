package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"onboardkit/internal/config"
	"onboardkit/internal/database"
	"onboardkit/internal/domain/files"
	"onboardkit/internal/domain/kits"
	"onboardkit/internal/domain/progress"
	"onboardkit/internal/domain/team"
	"onboardkit/internal/middleware"
	jwtsvc "onboardkit/internal/pkg/jwt"
	"onboardkit/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(
		&team.Member{},
		&kits.Kit{},
		&kits.Step{},
		&kits.Client{},
		&storage.FileUpload{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	manager, err := buildStorage(context.Background(), cfg, db)
	if err != nil {
		log.Fatal(err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	teamService := team.NewService(team.NewRepository(db), j)
	teamHandler := team.NewHandler(teamService)

	kitService := kits.NewService(kits.NewRepository(db))
	kitHandler := kits.NewHandler(kitService)

	hub := progress.NewHub()
	progressHandler := progress.NewHandler(hub)

	fileHandler := files.NewHandler(manager, cfg.FileConfig(), hub)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		team.RegisterPublicRoutes(v1, teamHandler)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			team.RegisterRoutes(protected, teamHandler)
			kits.RegisterRoutes(protected, kitHandler)
			files.RegisterRoutes(protected, fileHandler)
			progress.RegisterRoutes(protected, progressHandler)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// buildStorage resolves the storage mode once at startup and constructs
// only the clients the resolved mode needs.
func buildStorage(ctx context.Context, cfg *config.Config, db *gorm.DB) (*storage.Manager, error) {
	mode, dualPrimary, err := cfg.ResolveStorageMode()
	if err != nil {
		return nil, err
	}
	config.LogStorageMode(mode, dualPrimary)

	var primary storage.PrimaryStore
	var secondary storage.SecondaryStore

	if mode == storage.ModePrimary || mode == storage.ModeDual {
		s3c, err := storage.NewS3Client(ctx, cfg.S3Config())
		if err != nil {
			return nil, err
		}
		primary = s3c
	}
	if mode == storage.ModeSecondary || mode == storage.ModeDual {
		sbc, err := storage.NewSupabaseClient(cfg.SupabaseConfig(), storage.NewMetadataRepository(db))
		if err != nil {
			return nil, err
		}
		secondary = sbc
	}

	return storage.NewManager(mode, dualPrimary, primary, secondary)
}
