package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retailops/passreset/internal/api/dto"
	"github.com/retailops/passreset/internal/models"
)

// ==============================================
// SERVICE INTERFACE (for testing)
// ==============================================

type ResetService interface {
	RequestReset(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error)
	VerifyCode(ctx context.Context, req dto.VerifyCodeRequest) (*dto.VerifyCodeResponse, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error)
	PendingStatus(ctx context.Context, identifier string) (*dto.ResetStatusResponse, error)
}

// ==============================================
// HANDLER (HTTP Layer ONLY)
// ==============================================

type ResetHandler struct {
	service ResetService
}

func NewResetHandler(service ResetService) *ResetHandler {
	return &ResetHandler{service: service}
}

// ==============================================
// ENDPOINTS
// ==============================================

// ForgotPassword handles POST /api/v1/auth/forgot-password
func (h *ResetHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidationFailed, "Email or username is required")
		return
	}

	resp, err := h.service.RequestReset(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyCode handles POST /api/v1/auth/verify-code
func (h *ResetHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyCodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidationFailed, "Email and 6-digit code are required")
		return
	}

	resp, err := h.service.VerifyCode(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *ResetHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidationFailed, "Email, code and new password are required")
		return
	}

	resp, err := h.service.ResetPassword(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ResetStatus handles GET /api/v1/auth/reset-status?email=
func (h *ResetHandler) ResetStatus(c *gin.Context) {
	identifier := c.Query("email")
	if identifier == "" {
		respondError(c, http.StatusBadRequest, models.ErrCodeValidationFailed, "email query parameter is required")
		return
	}

	resp, err := h.service.PendingStatus(c.Request.Context(), identifier)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ==============================================
// ROUTE REGISTRATION
// ==============================================

func (h *ResetHandler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1/auth")
	{
		v1.POST("/forgot-password", h.ForgotPassword)
		v1.POST("/verify-code", h.VerifyCode)
		v1.POST("/reset-password", h.ResetPassword)
		v1.GET("/reset-status", h.ResetStatus)
	}
}

// ==============================================
// HELPER FUNCTIONS
// ==============================================

// respondError sends an error JSON response
func respondError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Success: false,
		Error:   code,
		Message: message,
	})
}

// respondServiceError maps service errors to HTTP status codes and responses
func respondServiceError(c *gin.Context, err error) {
	statusCode, code, message := mapServiceError(err)
	respondError(c, statusCode, code, message)
}

// mapServiceError maps service errors to HTTP status codes and user-facing
// messages. Nothing internal (store errors, stack detail) crosses this
// boundary, and an invalid code reads the same whether the identifier or
// the code itself was wrong.
func mapServiceError(err error) (int, string, string) {
	switch {
	// Validation errors (400 Bad Request)
	case errors.Is(err, models.ErrIdentifierRequired):
		return http.StatusBadRequest, models.ErrCodeValidationFailed, "Email or username is required"
	case errors.Is(err, models.ErrPasswordMismatch):
		return http.StatusBadRequest, models.ErrCodeValidationFailed, "Password confirmation does not match"
	case errors.Is(err, models.ErrPasswordTooShort):
		return http.StatusBadRequest, models.ErrCodeValidationFailed, "Password is too short"

	// Reset code errors (400 Bad Request)
	case errors.Is(err, models.ErrCodeInvalid):
		return http.StatusBadRequest, models.ErrCodeResetInvalid, "Invalid code"
	case errors.Is(err, models.ErrCodeExpired):
		return http.StatusBadRequest, models.ErrCodeResetExpired, "Code has expired, please request a new one"
	case errors.Is(err, models.ErrCodeUsed):
		return http.StatusBadRequest, models.ErrCodeResetUsed, "Code has already been used"

	// Not found (404) - only reachable from the redeem path
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound, models.ErrCodeNotFound, "User not found"

	// Delivery errors (500 Internal Server Error)
	case errors.Is(err, models.ErrEmailDelivery):
		return http.StatusInternalServerError, models.ErrCodeEmailDelivery, "Failed to send email, please try again later"

	// Default (500 Internal Server Error)
	default:
		return http.StatusInternalServerError, models.ErrCodeInternalError, "Internal server error"
	}
}
