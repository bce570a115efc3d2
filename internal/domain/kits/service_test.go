package kits

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"onboardkit/internal/database"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:kits_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&Kit{}, &Step{}, &Client{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return NewService(NewRepository(db))
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"New Client Onboarding", "new-client-onboarding"},
		{"  Q3 / Launch  Plan!  ", "q3-launch-plan"},
		{"---", "kit"},
		{"Déjà vu", "d-j-vu"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateKitGeneratesSlugAndDraftStatus(t *testing.T) {
	svc := setupTestService(t)

	k, err := svc.CreateKit(context.Background(), "tenant-1", "New Client Onboarding", "desc")
	if err != nil {
		t.Fatalf("CreateKit returned error: %v", err)
	}
	if k.Slug != "new-client-onboarding" {
		t.Fatalf("unexpected slug %q", k.Slug)
	}
	if k.Status != KitStatusDraft {
		t.Fatalf("expected draft status, got %q", k.Status)
	}
}

func TestCreateKitDuplicateSlugSameTenant(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateKit(ctx, "tenant-1", "Onboarding", ""); err != nil {
		t.Fatalf("first CreateKit returned error: %v", err)
	}
	_, err := svc.CreateKit(ctx, "tenant-1", "Onboarding", "")
	if !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}

	// the same slug is fine for a different tenant
	if _, err := svc.CreateKit(ctx, "tenant-2", "Onboarding", ""); err != nil {
		t.Fatalf("cross-tenant CreateKit returned error: %v", err)
	}
}

func TestGetKitIsTenantScoped(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	k, err := svc.CreateKit(ctx, "tenant-1", "Onboarding", "")
	if err != nil {
		t.Fatalf("CreateKit returned error: %v", err)
	}

	if _, err := svc.GetKit(ctx, "tenant-2", k.ID); !errors.Is(err, ErrKitNotFound) {
		t.Fatalf("expected ErrKitNotFound for other tenant, got %v", err)
	}
}

func TestAddStepAutoPosition(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	k, err := svc.CreateKit(ctx, "tenant-1", "Onboarding", "")
	if err != nil {
		t.Fatalf("CreateKit returned error: %v", err)
	}

	first, err := svc.AddStep(ctx, "tenant-1", k.ID, "Company details", "form", 0, true, "")
	if err != nil {
		t.Fatalf("AddStep returned error: %v", err)
	}
	second, err := svc.AddStep(ctx, "tenant-1", k.ID, "Signed agreement", "upload", 0, true, "")
	if err != nil {
		t.Fatalf("AddStep returned error: %v", err)
	}
	if first.Position != 1 || second.Position != 2 {
		t.Fatalf("expected positions 1 and 2, got %d and %d", first.Position, second.Position)
	}

	steps, err := svc.ListSteps(ctx, "tenant-1", k.ID)
	if err != nil {
		t.Fatalf("ListSteps returned error: %v", err)
	}
	if len(steps) != 2 || steps[0].ID != first.ID {
		t.Fatalf("expected steps ordered by position, got %+v", steps)
	}
}

func TestInviteClientRequiresPublishedKit(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	k, err := svc.CreateKit(ctx, "tenant-1", "Onboarding", "")
	if err != nil {
		t.Fatalf("CreateKit returned error: %v", err)
	}

	_, err = svc.InviteClient(ctx, "tenant-1", k.ID, "Acme", "a@acme.example")
	if !errors.Is(err, ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished for draft kit, got %v", err)
	}

	if _, err := svc.PublishKit(ctx, "tenant-1", k.ID); err != nil {
		t.Fatalf("PublishKit returned error: %v", err)
	}

	c, err := svc.InviteClient(ctx, "tenant-1", k.ID, "Acme", "a@acme.example")
	if err != nil {
		t.Fatalf("InviteClient returned error: %v", err)
	}
	if c.Identifier == "" || c.InviteToken == "" {
		t.Fatalf("expected identifier and invite token, got %+v", c)
	}
	if c.Status != ClientStatusInvited {
		t.Fatalf("expected invited status, got %q", c.Status)
	}
}

func TestDeleteKitCascades(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	k, err := svc.CreateKit(ctx, "tenant-1", "Onboarding", "")
	if err != nil {
		t.Fatalf("CreateKit returned error: %v", err)
	}
	if _, err := svc.AddStep(ctx, "tenant-1", k.ID, "Step", "form", 0, true, ""); err != nil {
		t.Fatalf("AddStep returned error: %v", err)
	}
	if _, err := svc.PublishKit(ctx, "tenant-1", k.ID); err != nil {
		t.Fatalf("PublishKit returned error: %v", err)
	}
	if _, err := svc.InviteClient(ctx, "tenant-1", k.ID, "Acme", "a@acme.example"); err != nil {
		t.Fatalf("InviteClient returned error: %v", err)
	}

	if err := svc.DeleteKit(ctx, "tenant-1", k.ID); err != nil {
		t.Fatalf("DeleteKit returned error: %v", err)
	}
	if _, err := svc.GetKit(ctx, "tenant-1", k.ID); !errors.Is(err, ErrKitNotFound) {
		t.Fatalf("expected kit gone, got %v", err)
	}
	if err := svc.DeleteKit(ctx, "tenant-1", k.ID); !errors.Is(err, ErrKitNotFound) {
		t.Fatalf("expected ErrKitNotFound on second delete, got %v", err)
	}
}

func TestDeleteStepNotFound(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	k, err := svc.CreateKit(ctx, "tenant-1", "Onboarding", "")
	if err != nil {
		t.Fatalf("CreateKit returned error: %v", err)
	}
	if err := svc.DeleteStep(ctx, "tenant-1", k.ID, "missing"); !errors.Is(err, ErrStepNotFound) {
		t.Fatalf("expected ErrStepNotFound, got %v", err)
	}
}
