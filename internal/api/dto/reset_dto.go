package dto

// ==============================================
// PASSWORD RESET REQUEST DTOs
// ==============================================

// ForgotPasswordRequest - Initiate password reset via email code.
// The field is named email for historical API compatibility but accepts
// a username as well.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyCodeRequest - Non-destructive check of a reset code
type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// ResetPasswordRequest - Complete password reset with a verified code
type ResetPasswordRequest struct {
	Email           string `json:"email" binding:"required"`
	Code            string `json:"code" binding:"required,len=6,numeric"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// ==============================================
// PASSWORD RESET RESPONSE DTOs
// ==============================================

// ForgotPasswordResponse - Identical shape whether or not the identifier
// resolved to a real account
type ForgotPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VerifyCodeResponse
type VerifyCodeResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *VerifyCodeData `json:"data,omitempty"`
}

// VerifyCodeData - Opaque reference to the matched reset code
type VerifyCodeData struct {
	Email  string `json:"email"`
	CodeID string `json:"codeId"`
}

// ResetPasswordResponse
type ResetPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResetStatusResponse - Whether an identifier has a pending valid code
type ResetStatusResponse struct {
	Success      bool `json:"success"`
	HasValidCode bool `json:"hasValidCode"`
}
