package kits

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a kit name into a URL-safe slug.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugCleaner.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "kit"
	}
	return s
}

// isUniqueViolation covers both backends: Postgres reports 23505 through
// pgconn, the SQLite driver surfaces gorm's translated error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *Service) CreateKit(ctx context.Context, tenantID, name, description string) (*Kit, error) {
	k := &Kit{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        name,
		Slug:        Slugify(name),
		Description: description,
		Status:      KitStatusDraft,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.repo.CreateKit(ctx, k); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return k, nil
}

func (s *Service) GetKit(ctx context.Context, tenantID, id string) (*Kit, error) {
	return s.repo.GetKit(ctx, tenantID, id)
}

func (s *Service) ListKits(ctx context.Context, tenantID string) ([]*Kit, error) {
	return s.repo.ListKits(ctx, tenantID)
}

func (s *Service) PublishKit(ctx context.Context, tenantID, id string) (*Kit, error) {
	k, err := s.repo.GetKit(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	k.Status = KitStatusPublished
	k.UpdatedAt = time.Now()
	if err := s.repo.UpdateKit(ctx, k); err != nil {
		return nil, err
	}
	return k, nil
}

func (s *Service) DeleteKit(ctx context.Context, tenantID, id string) error {
	return s.repo.DeleteKit(ctx, tenantID, id)
}

// AddStep appends a step at the end of the kit unless a position is given.
func (s *Service) AddStep(ctx context.Context, tenantID, kitID, title, kind string, position int, required bool, config string) (*Step, error) {
	if _, err := s.repo.GetKit(ctx, tenantID, kitID); err != nil {
		return nil, err
	}
	if position <= 0 {
		existing, err := s.repo.ListSteps(ctx, kitID)
		if err != nil {
			return nil, err
		}
		position = len(existing) + 1
	}
	st := &Step{
		ID:        uuid.NewString(),
		KitID:     kitID,
		Title:     title,
		Kind:      kind,
		Position:  position,
		Required:  required,
		Config:    config,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateStep(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) ListSteps(ctx context.Context, tenantID, kitID string) ([]*Step, error) {
	if _, err := s.repo.GetKit(ctx, tenantID, kitID); err != nil {
		return nil, err
	}
	return s.repo.ListSteps(ctx, kitID)
}

func (s *Service) DeleteStep(ctx context.Context, tenantID, kitID, stepID string) error {
	if _, err := s.repo.GetKit(ctx, tenantID, kitID); err != nil {
		return err
	}
	return s.repo.DeleteStep(ctx, kitID, stepID)
}

// InviteClient creates a client record for a published kit and issues an
// invite token for the portal link.
func (s *Service) InviteClient(ctx context.Context, tenantID, kitID, name, email string) (*Client, error) {
	k, err := s.repo.GetKit(ctx, tenantID, kitID)
	if err != nil {
		return nil, err
	}
	if k.Status != KitStatusPublished {
		return nil, ErrNotPublished
	}
	c := &Client{
		ID:          uuid.NewString(),
		KitID:       kitID,
		Identifier:  uuid.NewString(),
		Name:        name,
		Email:       email,
		InviteToken: uuid.NewString(),
		Status:      ClientStatusInvited,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListClients(ctx context.Context, tenantID, kitID string) ([]*Client, error) {
	if _, err := s.repo.GetKit(ctx, tenantID, kitID); err != nil {
		return nil, err
	}
	return s.repo.ListClients(ctx, kitID)
}

func (s *Service) RemoveClient(ctx context.Context, tenantID, kitID, clientID string) error {
	if _, err := s.repo.GetKit(ctx, tenantID, kitID); err != nil {
		return err
	}
	return s.repo.DeleteClient(ctx, kitID, clientID)
}
