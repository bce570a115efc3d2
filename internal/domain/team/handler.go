package team

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"onboardkit/internal/middleware"
	"onboardkit/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register godoc
// @Summary Register a team member
// @Description Creates a new tenant when tenant_id is omitted; the first member becomes admin.
// @Tags Team
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Member"
// @Success 201 {object} map[string]interface{}
// @Failure 400,409 {object} map[string]interface{}
// @Router /team/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	m, err := h.service.Register(c.Request.Context(), req.TenantID, req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			response.Error(c, http.StatusConflict, "EMAIL_TAKEN", err.Error())
		case errors.Is(err, ErrInvalidRole):
			response.Error(c, http.StatusBadRequest, "INVALID_ROLE", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "REGISTER_FAILED", "failed to register member")
		}
		return
	}
	response.Success(c, http.StatusCreated, m)
}

// Login godoc
// @Summary Log in
// @Tags Team
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /team/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	token, m, err := h.service.Login(c.Request.Context(), req.TenantID, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "failed to log in")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token, "member": m})
}

func (h *Handler) List(c *gin.Context) {
	members, err := h.service.List(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list members")
		return
	}
	response.Success(c, http.StatusOK, members)
}

func (h *Handler) ChangeRole(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid member id")
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.service.ChangeRole(c.Request.Context(), middleware.TenantID(c), id, req.Role); err != nil {
		switch {
		case errors.Is(err, ErrMemberNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrInvalidRole):
			response.Error(c, http.StatusBadRequest, "INVALID_ROLE", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "failed to change role")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}
