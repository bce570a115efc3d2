package kits

import "time"

// Kit is an onboarding kit owned by a tenant: an ordered set of steps that
// invited clients work through.
type Kit struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	TenantID    string    `gorm:"column:tenant_id;index;uniqueIndex:idx_kits_tenant_slug" json:"tenant_id"`
	Name        string    `gorm:"column:name" json:"name"`
	Slug        string    `gorm:"column:slug;uniqueIndex:idx_kits_tenant_slug" json:"slug"`
	Description string    `gorm:"column:description" json:"description"`
	Status      string    `gorm:"column:status" json:"status"` // draft, published, archived
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Kit) TableName() string { return "kits" }

const (
	KitStatusDraft     = "draft"
	KitStatusPublished = "published"
	KitStatusArchived  = "archived"
)

// Step is one unit of work inside a kit. Kind decides how the frontend
// renders it (form, upload, signature, ...); Config carries kind-specific
// settings as JSON.
type Step struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	KitID     string    `gorm:"column:kit_id;index" json:"kit_id"`
	Title     string    `gorm:"column:title" json:"title"`
	Kind      string    `gorm:"column:kind" json:"kind"`
	Position  int       `gorm:"column:position" json:"position"`
	Required  bool      `gorm:"column:required" json:"required"`
	Config    string    `gorm:"column:config" json:"config,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Step) TableName() string { return "steps" }

// Client is a person invited to complete a kit. Identifier is the stable
// token used in object keys; InviteToken authenticates the invite link.
type Client struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	KitID       string    `gorm:"column:kit_id;index" json:"kit_id"`
	Identifier  string    `gorm:"column:identifier;index" json:"identifier"`
	Name        string    `gorm:"column:name" json:"name"`
	Email       string    `gorm:"column:email" json:"email"`
	InviteToken string    `gorm:"column:invite_token;uniqueIndex" json:"-"`
	Status      string    `gorm:"column:status" json:"status"` // invited, active, completed
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Client) TableName() string { return "clients" }

const (
	ClientStatusInvited   = "invited"
	ClientStatusActive    = "active"
	ClientStatusCompleted = "completed"
)
