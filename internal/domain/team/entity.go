package team

import "time"

// Member is a tenant team member. Clients invited to kits are not members;
// they authenticate through invite tokens instead.
type Member struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TenantID     string    `gorm:"column:tenant_id;index;uniqueIndex:idx_members_tenant_email" json:"tenant_id"`
	Email        string    `gorm:"column:email;uniqueIndex:idx_members_tenant_email" json:"email"`
	Name         string    `gorm:"column:name" json:"name"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	Role         string    `gorm:"column:role" json:"role"` // admin, editor, viewer
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Member) TableName() string { return "team_members" }

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)
