package kits

import (
	"errors"
	"net/http"

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

// CreateKit godoc
// @Summary Create a kit
// @Tags Kits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateKitRequest true "Kit"
// @Success 201 {object} map[string]interface{}
// @Failure 400,409 {object} map[string]interface{}
// @Router /kits [post]
func (h *Handler) CreateKit(c *gin.Context) {
	var req CreateKitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	kit, err := h.service.CreateKit(c.Request.Context(), middleware.TenantID(c), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Error(c, http.StatusConflict, "SLUG_TAKEN", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "failed to create kit")
		return
	}
	response.Success(c, http.StatusCreated, kit)
}

// ListKits godoc
// @Summary List tenant kits
// @Tags Kits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /kits [get]
func (h *Handler) ListKits(c *gin.Context) {
	kits, err := h.service.ListKits(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list kits")
		return
	}
	response.Success(c, http.StatusOK, kits)
}

func (h *Handler) GetKit(c *gin.Context) {
	kit, err := h.service.GetKit(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrKitNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "kit not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "GET_FAILED", "failed to load kit")
		return
	}
	response.Success(c, http.StatusOK, kit)
}

func (h *Handler) PublishKit(c *gin.Context) {
	kit, err := h.service.PublishKit(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrKitNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "kit not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "PUBLISH_FAILED", "failed to publish kit")
		return
	}
	response.Success(c, http.StatusOK, kit)
}

func (h *Handler) DeleteKit(c *gin.Context) {
	if err := h.service.DeleteKit(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		if errors.Is(err, ErrKitNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "kit not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "failed to delete kit")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) AddStep(c *gin.Context) {
	var req AddStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	step, err := h.service.AddStep(c.Request.Context(), middleware.TenantID(c), c.Param("id"),
		req.Title, req.Kind, req.Position, req.Required, req.Config)
	if err != nil {
		if errors.Is(err, ErrKitNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "kit not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "failed to add step")
		return
	}
	response.Success(c, http.StatusCreated, step)
}

func (h *Handler) ListSteps(c *gin.Context) {
	steps, err := h.service.ListSteps(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrKitNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "kit not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list steps")
		return
	}
	response.Success(c, http.StatusOK, steps)
}

func (h *Handler) DeleteStep(c *gin.Context) {
	err := h.service.DeleteStep(c.Request.Context(), middleware.TenantID(c), c.Param("id"), c.Param("stepId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrKitNotFound), errors.Is(err, ErrStepNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "failed to delete step")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) InviteClient(c *gin.Context) {
	var req InviteClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	client, err := h.service.InviteClient(c.Request.Context(), middleware.TenantID(c), c.Param("id"), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrKitNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "kit not found")
		case errors.Is(err, ErrNotPublished):
			response.Error(c, http.StatusConflict, "NOT_PUBLISHED", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INVITE_FAILED", "failed to invite client")
		}
		return
	}
	response.Success(c, http.StatusCreated, client)
}

func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.service.ListClients(c.Request.Context(), middleware.TenantID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrKitNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "kit not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list clients")
		return
	}
	response.Success(c, http.StatusOK, clients)
}

func (h *Handler) RemoveClient(c *gin.Context) {
	err := h.service.RemoveClient(c.Request.Context(), middleware.TenantID(c), c.Param("id"), c.Param("clientId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrKitNotFound), errors.Is(err, ErrClientNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "failed to remove client")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
