package team

type RegisterRequest struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	TenantID string `json:"tenant_id" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin editor viewer"`
}
