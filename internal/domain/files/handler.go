package files

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"onboardkit/internal/domain/progress"
	"onboardkit/internal/middleware"
	"onboardkit/internal/pkg/response"
	"onboardkit/internal/pkg/validator"
	"onboardkit/internal/storage"
)

// Handler is the HTTP surface of the upload orchestrator. Delete and
// signed-URL requests carry the UploadResult returned at upload time, since
// its provider tag decides which backend(s) the operation targets.
type Handler struct {
	manager *storage.Manager
	fileCfg storage.FileConfig
	hub     *progress.Hub
}

func NewHandler(manager *storage.Manager, fileCfg storage.FileConfig, hub *progress.Hub) *Handler {
	return &Handler{manager: manager, fileCfg: fileCfg, hub: hub}
}

// Upload godoc
// @Summary Upload a file for a kit step
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Param kit_id formData string true "Kit ID"
// @Param client_id formData string true "Client identifier"
// @Param step_id formData string true "Step ID"
// @Param provider formData string false "Provider override: aws-s3, supabase or dual"
// @Success 201 {object} map[string]interface{}
// @Failure 400,413,502 {object} map[string]interface{}
// @Router /files [post]
func (h *Handler) Upload(c *gin.Context) {
	uctx, ok := h.uploadContext(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "no file provided")
		return
	}

	info, closeFn, err := fileInfoFromHeader(fileHeader)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_FILE", err.Error())
		return
	}
	defer closeFn()

	override := storage.Provider(c.PostForm("provider"))
	reporter := h.hub.Reporter(middleware.UserID(c), info.Name)

	result, err := h.manager.Upload(c.Request.Context(), info, uctx, h.fileCfg, override, reporter)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// UploadBatch godoc
// @Summary Upload multiple files for a kit step
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400,413,502 {object} map[string]interface{}
// @Router /files/batch [post]
func (h *Handler) UploadBatch(c *gin.Context) {
	uctx, ok := h.uploadContext(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "no files provided")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "no files provided")
		return
	}

	infos := make([]storage.FileInfo, 0, len(headers))
	closers := make([]func(), 0, len(headers))
	defer func() {
		for _, fn := range closers {
			fn()
		}
	}()
	for _, fh := range headers {
		info, closeFn, err := fileInfoFromHeader(fh)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "BAD_FILE", err.Error())
			return
		}
		closers = append(closers, closeFn)
		infos = append(infos, info)
	}

	override := storage.Provider(c.PostForm("provider"))
	userID := middleware.UserID(c)
	reporter := func(transferred, total int64) {
		h.hub.Reporter(userID, "batch")(transferred, total)
	}

	results, err := h.manager.UploadMany(c.Request.Context(), infos, uctx, h.fileCfg, override, reporter)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, results)
}

// List godoc
// @Summary List completed uploads for a kit step
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param kit_id query string true "Kit ID"
// @Param step_id query string true "Step ID"
// @Param client_id query string false "Client identifier"
// @Success 200 {object} map[string]interface{}
// @Router /files [get]
func (h *Handler) List(c *gin.Context) {
	kitID := c.Query("kit_id")
	stepID := c.Query("step_id")
	if kitID == "" || stepID == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "kit_id and step_id are required")
		return
	}

	results, err := h.manager.List(c.Request.Context(), kitID, stepID, c.Query("client_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "failed to list uploads")
		return
	}
	response.Success(c, http.StatusOK, results)
}

type signURLRequest struct {
	Result    storage.UploadResult `json:"result" binding:"required"`
	ExpiresIn int64                `json:"expires_in"` // seconds, defaults to 3600
}

// SignURL godoc
// @Summary Issue a signed download URL for an upload result
// @Tags Files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body signURLRequest true "Upload result"
// @Success 200 {object} map[string]interface{}
// @Failure 400,502 {object} map[string]interface{}
// @Router /files/sign-url [post]
func (h *Handler) SignURL(c *gin.Context) {
	var req signURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	url, err := h.manager.SignedURL(c.Request.Context(), &req.Result, time.Duration(req.ExpiresIn)*time.Second)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url})
}

type deleteRequest struct {
	Result storage.UploadResult `json:"result" binding:"required"`
}

// Delete godoc
// @Summary Delete an upload from every provider that holds it
// @Tags Files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body deleteRequest true "Upload result"
// @Success 200 {object} map[string]interface{}
// @Failure 400,502 {object} map[string]interface{}
// @Router /files/delete [post]
func (h *Handler) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.manager.Delete(c.Request.Context(), &req.Result); err != nil {
		writeStorageError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Health godoc
// @Summary Probe provider connectivity
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /files/health [get]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, h.manager.Ping(c.Request.Context()))
}

type uploadForm struct {
	KitID    string `validate:"required"`
	ClientID string `validate:"required"`
	StepID   string `validate:"required"`
}

func (h *Handler) uploadContext(c *gin.Context) (storage.UploadContext, bool) {
	form := uploadForm{
		KitID:    c.PostForm("kit_id"),
		ClientID: c.PostForm("client_id"),
		StepID:   c.PostForm("step_id"),
	}
	if errs := validator.Validate(form); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_REQUEST",
			"kit_id, client_id and step_id are required", errs)
		return storage.UploadContext{}, false
	}
	return storage.UploadContext{
		TenantID: middleware.TenantID(c),
		KitID:    form.KitID,
		ClientID: form.ClientID,
		StepID:   form.StepID,
	}, true
}

// fileInfoFromHeader opens the multipart part and sniffs the MIME type from
// the first 512 bytes when the client did not send one.
func fileInfoFromHeader(fh *multipart.FileHeader) (storage.FileInfo, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return storage.FileInfo{}, func() {}, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		buf := make([]byte, 512)
		n, _ := f.Read(buf)
		contentType = strings.Split(http.DetectContentType(buf[:n]), ";")[0]
		if _, err := f.Seek(0, 0); err != nil {
			f.Close()
			return storage.FileInfo{}, func() {}, err
		}
	}

	return storage.FileInfo{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: contentType,
		Body:        f,
	}, func() { f.Close() }, nil
}

func writeStorageError(c *gin.Context, err error) {
	var se *storage.StorageError
	if !errors.As(err, &se) {
		response.Error(c, http.StatusInternalServerError, "STORAGE_FAILED", err.Error())
		return
	}

	switch se.Code {
	case storage.CodeTooManyFiles, storage.CodeBatchTooLarge:
		response.Error(c, http.StatusRequestEntityTooLarge, se.Code, se.Message)
	case storage.CodeValidationFailed:
		response.Error(c, http.StatusBadRequest, se.Code, se.Message)
	case storage.CodeUploadFailed, storage.CodeSignFailed, storage.CodeDeleteFailed:
		response.ErrorWithDetails(c, http.StatusBadGateway, se.Code, se.Message, gin.H{"provider": se.Provider})
	default:
		response.Error(c, http.StatusInternalServerError, se.Code, se.Message)
	}
}
