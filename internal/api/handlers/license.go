package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/MacJediWizard/licenze/internal/licensing"
	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
)

// LicenseService defines the license operations used by LicenseHandler.
type LicenseService interface {
	Check(ctx context.Context, username string) (*models.LicenseStatus, error)
	List(ctx context.Context) []*models.License
	Add(ctx context.Context, req models.CreateLicenseRequest) (*models.License, error)
	Update(ctx context.Context, req models.UpdateLicenseRequest) (*models.License, error)
	Delete(ctx context.Context, username string) (*models.License, error)
}

// LicenseHandler handles license check and administration endpoints.
type LicenseHandler struct {
	service LicenseService
	logger  zerolog.Logger
}

// NewLicenseHandler creates a new LicenseHandler.
func NewLicenseHandler(service LicenseService, logger zerolog.Logger) *LicenseHandler {
	return &LicenseHandler{
		service: service,
		logger:  logger.With().Str("component", "license_handler").Logger(),
	}
}

// RegisterPublicRoutes registers license routes. None require authentication.
func (h *LicenseHandler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/licenses", h.List)

	lic := r.Group("/license")
	{
		lic.GET("", h.Check)
		lic.POST("/add", h.Add)
		lic.PUT("/update", h.Update)
		lic.DELETE("/delete", h.Delete)
	}
}

// LicenseChangeResponse is returned by add and update.
type LicenseChangeResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	License *models.License `json:"license"`
}

// LicenseDeleteResponse is returned by delete.
type LicenseDeleteResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Deleted *models.License `json:"deleted"`
}

// Check reports whether a user holds a valid, unexpired license.
// @Summary Check a license
// @Description Looks up a license by username, ignoring case
// @Tags Licenses
// @Produce json
// @Param user query string true "Username"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /license [get]
func (h *LicenseHandler) Check(c *gin.Context) {
	status, err := h.service.Check(c.Request.Context(), c.Query("user"))
	if err != nil {
		h.writeError(c, err, "missing user parameter")
		return
	}
	c.JSON(http.StatusOK, checkResponse(status))
}

// checkResponse shapes a status the way clients expect: negative results
// carry a reason and no role, positive results always carry role and expires.
func checkResponse(s *models.LicenseStatus) gin.H {
	switch s.Reason {
	case models.ReasonNotFound:
		return gin.H{"valid": false, "reason": s.Reason, "username": s.Username}
	case models.ReasonExpired:
		return gin.H{"valid": false, "reason": s.Reason, "expires": s.Expires, "username": s.Username}
	}
	return gin.H{
		"valid":    s.Valid,
		"role":     s.Role,
		"expires":  s.Expires,
		"username": s.Username,
	}
}

// List returns every license record.
// @Summary List licenses
// @Tags Licenses
// @Produce json
// @Success 200 {array} models.License
// @Router /licenses [get]
func (h *LicenseHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.List(c.Request.Context()))
}

// Add creates a license.
// @Summary Add a license
// @Tags Licenses
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body models.CreateLicenseRequest true "License"
// @Success 200 {object} LicenseChangeResponse
// @Failure 400 {object} map[string]string
// @Router /license/add [post]
func (h *LicenseHandler) Add(c *gin.Context) {
	var req models.CreateLicenseRequest
	if !bindBody(c, &req) {
		return
	}

	lic, err := h.service.Add(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "missing username")
		return
	}

	c.JSON(http.StatusOK, LicenseChangeResponse{
		Status:  "ok",
		Message: "license added for " + req.Username,
		License: lic,
	})
}

// Update overwrites the fields present in the body.
// @Summary Update a license
// @Description Partial update: only fields present in the body change; "role": null clears the role
// @Tags Licenses
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body models.UpdateLicenseRequest true "Fields to change"
// @Success 200 {object} LicenseChangeResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /license/update [put]
func (h *LicenseHandler) Update(c *gin.Context) {
	var req models.UpdateLicenseRequest
	if !bindBody(c, &req) {
		return
	}

	lic, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "missing username")
		return
	}

	c.JSON(http.StatusOK, LicenseChangeResponse{
		Status:  "ok",
		Message: "license updated for " + req.Username,
		License: lic,
	})
}

// Delete removes a license.
// @Summary Delete a license
// @Tags Licenses
// @Produce json
// @Param user query string true "Username"
// @Success 200 {object} LicenseDeleteResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /license/delete [delete]
func (h *LicenseHandler) Delete(c *gin.Context) {
	username := c.Query("user")
	removed, err := h.service.Delete(c.Request.Context(), username)
	if err != nil {
		h.writeError(c, err, "missing user parameter")
		return
	}

	c.JSON(http.StatusOK, LicenseDeleteResponse{
		Status:  "ok",
		Message: "license deleted for " + username,
		Deleted: removed,
	})
}

func (h *LicenseHandler) writeError(c *gin.Context, err error, missingMsg string) {
	switch {
	case errors.Is(err, licensing.ErrMissingParameter):
		c.JSON(http.StatusBadRequest, gin.H{"error": missingMsg})
	case errors.Is(err, licensing.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, gin.H{"error": "username already exists"})
	case errors.Is(err, licensing.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "license not found"})
	default:
		h.logger.Error().Err(err).Msg("license operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindBody decodes JSON or form bodies, selected by Content-Type; anything
// that is not a form is decoded as JSON. An empty body leaves obj zero so the
// service reports the missing field. On failure the error response is
// written and false returned.
func bindBody(c *gin.Context, obj any) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}

	var err error
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		err = c.ShouldBindWith(obj, binding.Form)
	default:
		err = c.ShouldBindJSON(obj)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		writeBindError(c, err)
		return false
	}
	return true
}

// writeBindError maps body decoding failures to 413 or 400.
func writeBindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
