package team

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	jwtsvc "onboardkit/internal/pkg/jwt"
)

type Service struct {
	repo Repository
	jwt  *jwtsvc.Service
}

func NewService(repo Repository, jwt *jwtsvc.Service) *Service {
	return &Service{repo: repo, jwt: jwt}
}

func validRole(role string) bool {
	return role == RoleAdmin || role == RoleEditor || role == RoleViewer
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Register creates the first member of a fresh tenant (admin) or adds a
// member to an existing tenant when tenantID is supplied.
func (s *Service) Register(ctx context.Context, tenantID, email, name, password, role string) (*Member, error) {
	if tenantID == "" {
		tenantID = uuid.NewString()
		role = RoleAdmin
	}
	if role == "" {
		role = RoleViewer
	}
	if !validRole(role) {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	m := &Member{
		TenantID:     tenantID,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return m, nil
}

// Login verifies credentials and issues a tenant-scoped JWT.
func (s *Service) Login(ctx context.Context, tenantID, email, password string) (string, *Member, error) {
	m, err := s.repo.GetByEmail(ctx, tenantID, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(m.ID, m.TenantID, m.Role)
	if err != nil {
		return "", nil, err
	}
	return token, m, nil
}

func (s *Service) List(ctx context.Context, tenantID string) ([]*Member, error) {
	return s.repo.List(ctx, tenantID)
}

func (s *Service) ChangeRole(ctx context.Context, tenantID string, id int64, role string) error {
	if !validRole(role) {
		return ErrInvalidRole
	}
	return s.repo.UpdateRole(ctx, tenantID, id, role)
}
