package kits

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	CreateKit(ctx context.Context, k *Kit) error
	GetKit(ctx context.Context, tenantID, id string) (*Kit, error)
	ListKits(ctx context.Context, tenantID string) ([]*Kit, error)
	UpdateKit(ctx context.Context, k *Kit) error
	DeleteKit(ctx context.Context, tenantID, id string) error

	CreateStep(ctx context.Context, s *Step) error
	ListSteps(ctx context.Context, kitID string) ([]*Step, error)
	GetStep(ctx context.Context, kitID, id string) (*Step, error)
	DeleteStep(ctx context.Context, kitID, id string) error

	CreateClient(ctx context.Context, c *Client) error
	ListClients(ctx context.Context, kitID string) ([]*Client, error)
	GetClient(ctx context.Context, kitID, id string) (*Client, error)
	DeleteClient(ctx context.Context, kitID, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateKit(ctx context.Context, k *Kit) error {
	return r.db.WithContext(ctx).Create(k).Error
}

func (r *repository) GetKit(ctx context.Context, tenantID, id string) (*Kit, error) {
	var k Kit
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&k).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKitNotFound
	}
	return &k, err
}

func (r *repository) ListKits(ctx context.Context, tenantID string) ([]*Kit, error) {
	var ks []*Kit
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&ks).Error
	return ks, err
}

func (r *repository) UpdateKit(ctx context.Context, k *Kit) error {
	return r.db.WithContext(ctx).Save(k).Error
}

// DeleteKit removes the kit together with its steps and clients.
func (r *repository) DeleteKit(ctx context.Context, tenantID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&Kit{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrKitNotFound
		}
		if err := tx.Where("kit_id = ?", id).Delete(&Step{}).Error; err != nil {
			return err
		}
		return tx.Where("kit_id = ?", id).Delete(&Client{}).Error
	})
}

func (r *repository) CreateStep(ctx context.Context, s *Step) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) ListSteps(ctx context.Context, kitID string) ([]*Step, error) {
	var ss []*Step
	err := r.db.WithContext(ctx).Where("kit_id = ?", kitID).Order("position ASC").Find(&ss).Error
	return ss, err
}

func (r *repository) GetStep(ctx context.Context, kitID, id string) (*Step, error) {
	var s Step
	err := r.db.WithContext(ctx).Where("kit_id = ? AND id = ?", kitID, id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStepNotFound
	}
	return &s, err
}

func (r *repository) DeleteStep(ctx context.Context, kitID, id string) error {
	res := r.db.WithContext(ctx).Where("kit_id = ? AND id = ?", kitID, id).Delete(&Step{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStepNotFound
	}
	return nil
}

func (r *repository) CreateClient(ctx context.Context, c *Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) ListClients(ctx context.Context, kitID string) ([]*Client, error) {
	var cs []*Client
	err := r.db.WithContext(ctx).Where("kit_id = ?", kitID).Order("created_at DESC").Find(&cs).Error
	return cs, err
}

func (r *repository) GetClient(ctx context.Context, kitID, id string) (*Client, error) {
	var c Client
	err := r.db.WithContext(ctx).Where("kit_id = ? AND id = ?", kitID, id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	return &c, err
}

func (r *repository) DeleteClient(ctx context.Context, kitID, id string) error {
	res := r.db.WithContext(ctx).Where("kit_id = ? AND id = ?", kitID, id).Delete(&Client{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}
