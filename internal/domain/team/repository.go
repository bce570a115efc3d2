package team

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByEmail(ctx context.Context, tenantID, email string) (*Member, error)
	GetByID(ctx context.Context, tenantID string, id int64) (*Member, error)
	List(ctx context.Context, tenantID string) ([]*Member, error)
	UpdateRole(ctx context.Context, tenantID string, id int64, role string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *repository) GetByEmail(ctx context.Context, tenantID, email string) (*Member, error) {
	var m Member
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND email = ?", tenantID, email).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	return &m, err
}

func (r *repository) GetByID(ctx context.Context, tenantID string, id int64) (*Member, error) {
	var m Member
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	return &m, err
}

func (r *repository) List(ctx context.Context, tenantID string) ([]*Member, error) {
	var ms []*Member
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at ASC").Find(&ms).Error
	return ms, err
}

func (r *repository) UpdateRole(ctx context.Context, tenantID string, id int64, role string) error {
	res := r.db.WithContext(ctx).Model(&Member{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
