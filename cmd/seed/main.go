package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"onboardkit/internal/database"
	"onboardkit/internal/domain/kits"
	"onboardkit/internal/domain/team"
	"onboardkit/internal/storage"
)

// Seeds a local database with a demo tenant, team and kit. Never run this
// against production.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "onboardkit.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&team.Member{},
		&kits.Kit{},
		&kits.Step{},
		&kits.Client{},
		&storage.FileUpload{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM file_uploads")
	db.Exec("DELETE FROM clients")
	db.Exec("DELETE FROM steps")
	db.Exec("DELETE FROM kits")
	db.Exec("DELETE FROM team_members")

	tenantID := uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}
	admin := &team.Member{
		TenantID:     tenantID,
		Email:        "admin@example.com",
		Name:         "Demo Admin",
		PasswordHash: string(hash),
		Role:         team.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(admin).Error; err != nil {
		log.Fatal(err)
	}

	kitRepo := kits.NewRepository(db)
	ctx := context.Background()

	kit := &kits.Kit{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        "New Client Onboarding",
		Slug:        "new-client-onboarding",
		Description: "Everything we need from a new client before kickoff.",
		Status:      kits.KitStatusPublished,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := kitRepo.CreateKit(ctx, kit); err != nil {
		log.Fatal(err)
	}

	steps := []struct {
		title, kind string
		required    bool
	}{
		{"Company details", "form", true},
		{"Signed agreement", "upload", true},
		{"Brand assets", "upload", false},
	}
	for i, s := range steps {
		if err := kitRepo.CreateStep(ctx, &kits.Step{
			ID:        uuid.NewString(),
			KitID:     kit.ID,
			Title:     s.title,
			Kind:      s.kind,
			Position:  i + 1,
			Required:  s.required,
			CreatedAt: time.Now(),
		}); err != nil {
			log.Fatal(err)
		}
	}

	client := &kits.Client{
		ID:          uuid.NewString(),
		KitID:       kit.ID,
		Identifier:  uuid.NewString(),
		Name:        "Acme Corp",
		Email:       "contact@acme.example",
		InviteToken: uuid.NewString(),
		Status:      kits.ClientStatusInvited,
		CreatedAt:   time.Now(),
	}
	if err := kitRepo.CreateClient(ctx, client); err != nil {
		log.Fatal(err)
	}

	log.Printf("seed completed tenant_id=%s kit_id=%s admin=%s password=demo-password",
		tenantID, kit.ID, admin.Email)
}
