package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/retailops/passreset/internal/api/dto"
	"github.com/retailops/passreset/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==============================================
// MOCK SERVICE
// ==============================================

type MockResetService struct {
	mock.Mock
}

func (m *MockResetService) RequestReset(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ForgotPasswordResponse), args.Error(1)
}

func (m *MockResetService) VerifyCode(ctx context.Context, req dto.VerifyCodeRequest) (*dto.VerifyCodeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.VerifyCodeResponse), args.Error(1)
}

func (m *MockResetService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResetPasswordResponse), args.Error(1)
}

func (m *MockResetService) PendingStatus(ctx context.Context, identifier string) (*dto.ResetStatusResponse, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResetStatusResponse), args.Error(1)
}

// ==============================================
// TEST SETUP
// ==============================================

func setupTest() (*gin.Engine, *MockResetService) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	mockService := new(MockResetService)
	handler := NewResetHandler(mockService)
	handler.RegisterRoutes(router)

	return router, mockService
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ==============================================
// FORGOT PASSWORD TESTS
// ==============================================

func TestForgotPassword_Success(t *testing.T) {
	router, mockService := setupTest()

	mockService.On("RequestReset", mock.Anything, dto.ForgotPasswordRequest{Email: "user@example.com"}).
		Return(&dto.ForgotPasswordResponse{Success: true, Message: "sent"}, nil)

	w := doJSON(router, "POST", "/api/v1/auth/forgot-password", gin.H{"email": "user@example.com"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.ForgotPasswordResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockService.AssertExpectations(t)
}

func TestForgotPassword_MissingEmail(t *testing.T) {
	router, mockService := setupTest()

	w := doJSON(router, "POST", "/api/v1/auth/forgot-password", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "RequestReset")
}

func TestForgotPassword_DeliveryFailure(t *testing.T) {
	router, mockService := setupTest()

	mockService.On("RequestReset", mock.Anything, mock.Anything).
		Return(nil, models.ErrEmailDelivery)

	w := doJSON(router, "POST", "/api/v1/auth/forgot-password", gin.H{"email": "user@example.com"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, models.ErrCodeEmailDelivery, resp.Error)
}

// ==============================================
// VERIFY CODE TESTS
// ==============================================

func TestVerifyCode_Success(t *testing.T) {
	router, mockService := setupTest()

	mockService.On("VerifyCode", mock.Anything, dto.VerifyCodeRequest{Email: "user@example.com", Code: "123456"}).
		Return(&dto.VerifyCodeResponse{
			Success: true,
			Message: "verified",
			Data:    &dto.VerifyCodeData{Email: "user@example.com", CodeID: "f3b8e7a0-0000-0000-0000-000000000001"},
		}, nil)

	w := doJSON(router, "POST", "/api/v1/auth/verify-code", gin.H{"email": "user@example.com", "code": "123456"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.VerifyCodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, "user@example.com", resp.Data.Email)
}

func TestVerifyCode_MalformedCode(t *testing.T) {
	router, mockService := setupTest()

	// Not 6 digits: rejected by binding before the service is touched
	w := doJSON(router, "POST", "/api/v1/auth/verify-code", gin.H{"email": "user@example.com", "code": "12ab"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "VerifyCode")
}

func TestVerifyCode_InvalidLooksSameForUnknownUser(t *testing.T) {
	router, mockService := setupTest()

	// The service collapses "no such user" and "wrong code" into the same
	// sentinel; both responses must be byte-identical at the HTTP layer.
	mockService.On("VerifyCode", mock.Anything, mock.Anything).
		Return(nil, models.ErrCodeInvalid)

	wrongCode := doJSON(router, "POST", "/api/v1/auth/verify-code", gin.H{"email": "user@example.com", "code": "000000"})
	unknownUser := doJSON(router, "POST", "/api/v1/auth/verify-code", gin.H{"email": "ghost@example.com", "code": "000000"})

	assert.Equal(t, http.StatusBadRequest, wrongCode.Code)
	assert.Equal(t, wrongCode.Code, unknownUser.Code)
	assert.Equal(t, wrongCode.Body.String(), unknownUser.Body.String())
}

// ==============================================
// RESET PASSWORD TESTS
// ==============================================

func TestResetPassword_Success(t *testing.T) {
	router, mockService := setupTest()

	req := dto.ResetPasswordRequest{
		Email:           "user@example.com",
		Code:            "123456",
		NewPassword:     "abc",
		ConfirmPassword: "abc",
	}
	mockService.On("ResetPassword", mock.Anything, req).
		Return(&dto.ResetPasswordResponse{Success: true, Message: "done"}, nil)

	w := doJSON(router, "POST", "/api/v1/auth/reset-password", req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestResetPassword_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"mismatch", models.ErrPasswordMismatch, http.StatusBadRequest, models.ErrCodeValidationFailed},
		{"too short", models.ErrPasswordTooShort, http.StatusBadRequest, models.ErrCodeValidationFailed},
		{"invalid", models.ErrCodeInvalid, http.StatusBadRequest, models.ErrCodeResetInvalid},
		{"expired", models.ErrCodeExpired, http.StatusBadRequest, models.ErrCodeResetExpired},
		{"used", models.ErrCodeUsed, http.StatusBadRequest, models.ErrCodeResetUsed},
		{"not found", models.ErrUserNotFound, http.StatusNotFound, models.ErrCodeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, mockService := setupTest()
			mockService.On("ResetPassword", mock.Anything, mock.Anything).
				Return(nil, tc.serviceErr)

			w := doJSON(router, "POST", "/api/v1/auth/reset-password", gin.H{
				"email": "user@example.com", "code": "123456",
				"newPassword": "abc", "confirmPassword": "abc",
			})

			assert.Equal(t, tc.wantStatus, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tc.wantCode, resp.Error)
		})
	}
}

// ==============================================
// RESET STATUS TESTS
// ==============================================

func TestResetStatus_Success(t *testing.T) {
	router, mockService := setupTest()

	mockService.On("PendingStatus", mock.Anything, "user@example.com").
		Return(&dto.ResetStatusResponse{Success: true, HasValidCode: true}, nil)

	w := doJSON(router, "GET", "/api/v1/auth/reset-status?email=user@example.com", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.ResetStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.HasValidCode)
}

func TestResetStatus_MissingEmail(t *testing.T) {
	router, mockService := setupTest()

	w := doJSON(router, "GET", "/api/v1/auth/reset-status", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "PendingStatus")
}
