package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/passreset/internal/api/dto"
	"github.com/retailops/passreset/internal/auth"
	"github.com/retailops/passreset/internal/models"
	"github.com/retailops/passreset/internal/repository"
)

// ==============================================
// CODE STORE INTERFACE
// ==============================================

type CodeStore interface {
	Create(ctx context.Context, code *models.ResetCode) error
	GetByEmailAndCode(ctx context.Context, email, code string) (*models.ResetCode, error)
	ExpireActiveByEmail(ctx context.Context, email string) (int64, error)
	MarkExpired(ctx context.Context, id uuid.UUID) error
	MarkUsed(ctx context.Context, id uuid.UUID) error
	HasActiveCode(ctx context.Context, email string) (bool, error)
	CanIssue(ctx context.Context, email string, cooldown time.Duration) (bool, error)
	CountRecent(ctx context.Context, email string, since time.Duration) (int, error)
}

// ==============================================
// RESET POLICY
// ==============================================

type ResetPolicy struct {
	CodeTTL           time.Duration
	PasswordMinLength int
	IssueCooldown     time.Duration
	HourlyIssueLimit  int
}

func DefaultResetPolicy() ResetPolicy {
	return ResetPolicy{
		CodeTTL:           models.ResetCodeExpiryMinutes * time.Minute,
		PasswordMinLength: 3,
		IssueCooldown:     models.ResetCodeResendCooldown,
		HourlyIssueLimit:  models.ResetCodeHourlyLimit,
	}
}

// ==============================================
// RESET SERVICE
// ==============================================

// Callers must never learn from the issue or verify paths whether an
// identifier maps to a real account.
const issuedMessage = "If this account exists, a password reset code was sent to its email address"

type ResetService struct {
	resolver *IdentityResolver
	codes    CodeStore
	accounts AccountStore
	mailer   Mailer
	policy   ResetPolicy
	now      func() time.Time
}

func NewResetService(
	resolver *IdentityResolver,
	codes CodeStore,
	accounts AccountStore,
	mailer Mailer,
	policy ResetPolicy,
) *ResetService {
	return &ResetService{
		resolver: resolver,
		codes:    codes,
		accounts: accounts,
		mailer:   mailer,
		policy:   policy,
		now:      time.Now,
	}
}

// ==============================================
// ISSUE CODE
// ==============================================

func (s *ResetService) RequestReset(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error) {
	// 1. Resolve identifier to a canonical account
	user, err := s.resolver.Resolve(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// Don't reveal if the account exists or not
			return &dto.ForgotPasswordResponse{
				Success: true,
				Message: issuedMessage,
			}, nil
		}
		return nil, err
	}

	// 2. Throttle issuance. A throttled request is answered with the same
	// success shape as an unknown identifier, so it leaks nothing either.
	canIssue, err := s.codes.CanIssue(ctx, user.Email, s.policy.IssueCooldown)
	if err != nil {
		return nil, fmt.Errorf("failed to check issue eligibility: %w", err)
	}
	if !canIssue {
		log.Printf("reset code request throttled (cooldown) for %s", maskEmail(user.Email))
		return &dto.ForgotPasswordResponse{Success: true, Message: issuedMessage}, nil
	}

	recent, err := s.codes.CountRecent(ctx, user.Email, time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to check issue rate limit: %w", err)
	}
	if recent >= s.policy.HourlyIssueLimit {
		log.Printf("reset code request throttled (hourly limit) for %s", maskEmail(user.Email))
		return &dto.ForgotPasswordResponse{Success: true, Message: issuedMessage}, nil
	}

	// 3. Invalidate prior unused codes before inserting the replacement,
	// so a racing verify never sees two simultaneously valid codes.
	if _, err := s.codes.ExpireActiveByEmail(ctx, user.Email); err != nil {
		return nil, fmt.Errorf("failed to invalidate prior reset codes: %w", err)
	}

	// 4. Generate and persist the new code
	code := auth.GenerateResetCode()
	resetCode := &models.ResetCode{
		Email:     user.Email,
		Code:      code,
		ExpiresAt: s.now().Add(s.policy.CodeTTL),
	}

	if err := s.codes.Create(ctx, resetCode); err != nil {
		return nil, fmt.Errorf("failed to create reset code: %w", err)
	}

	// 5. Deliver the code. On failure the persisted code is left in place:
	// it is harmless without the email and expires on its own.
	if err := s.mailer.SendResetCode(ctx, user.Email, code); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmailDelivery, err)
	}

	return &dto.ForgotPasswordResponse{
		Success: true,
		Message: issuedMessage,
	}, nil
}

// ==============================================
// VERIFY CODE
// ==============================================

// VerifyCode checks a code without consuming it, so it may be called
// repeatedly for the same still-valid code. It is not a pure read: a code
// found past its lifetime has its expired flag persisted before the
// failure is reported.
func (s *ResetService) VerifyCode(ctx context.Context, req dto.VerifyCodeRequest) (*dto.VerifyCodeResponse, error) {
	resetCode, _, err := s.lookupValidCode(ctx, req.Email, req.Code)
	if err != nil {
		return nil, err
	}

	return &dto.VerifyCodeResponse{
		Success: true,
		Message: "Code verified. You can now set a new password.",
		Data: &dto.VerifyCodeData{
			Email:  resetCode.Email,
			CodeID: resetCode.ID.String(),
		},
	}, nil
}

// ==============================================
// REDEEM CODE
// ==============================================

func (s *ResetService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.ResetPasswordResponse, error) {
	// 1. Free checks first, before any resolver or store call
	if req.NewPassword != req.ConfirmPassword {
		return nil, models.ErrPasswordMismatch
	}
	if len(req.NewPassword) < s.policy.PasswordMinLength {
		return nil, models.ErrPasswordTooShort
	}

	// 2. Re-validate the code from scratch; a prior VerifyCode call is not
	// trusted
	resetCode, user, err := s.lookupValidCode(ctx, req.Email, req.Code)
	if err != nil {
		return nil, err
	}

	// 3. Update the credential
	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	// 4. Consume the code. This is the only place a code becomes used.
	if err := s.codes.MarkUsed(ctx, resetCode.ID); err != nil {
		if errors.Is(err, repository.ErrCodeConsumed) {
			return nil, models.ErrCodeUsed
		}
		return nil, fmt.Errorf("failed to mark reset code as used: %w", err)
	}

	// 5. Confirmation email is best-effort; the reset already succeeded
	if err := s.mailer.SendPasswordChanged(ctx, user.Email); err != nil {
		log.Printf("password change notice for %s not delivered: %v", maskEmail(user.Email), err)
	}

	return &dto.ResetPasswordResponse{
		Success: true,
		Message: "Password reset successfully. You can now login with your new password.",
	}, nil
}

// ==============================================
// PENDING STATUS
// ==============================================

func (s *ResetService) PendingStatus(ctx context.Context, identifier string) (*dto.ResetStatusResponse, error) {
	user, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return &dto.ResetStatusResponse{Success: true, HasValidCode: false}, nil
		}
		return nil, err
	}

	hasCode, err := s.codes.HasActiveCode(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending reset code: %w", err)
	}

	return &dto.ResetStatusResponse{Success: true, HasValidCode: hasCode}, nil
}

// ==============================================
// HELPER FUNCTIONS
// ==============================================

// lookupValidCode resolves the identifier and validates the code against it.
// An unresolvable identifier and a wrong code both come back as
// models.ErrCodeInvalid: the caller must not be able to tell them apart.
func (s *ResetService) lookupValidCode(ctx context.Context, identifier, code string) (*models.ResetCode, *models.User, error) {
	user, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, nil, models.ErrCodeInvalid
		}
		return nil, nil, err
	}

	resetCode, err := s.codes.GetByEmailAndCode(ctx, user.Email, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, nil, models.ErrCodeInvalid
		}
		return nil, nil, fmt.Errorf("failed to get reset code: %w", err)
	}

	if resetCode.IsUsed() {
		return nil, nil, models.ErrCodeUsed
	}

	if resetCode.Expired {
		return nil, nil, models.ErrCodeExpired
	}

	if resetCode.IsExpiredAt(s.now()) {
		// Lazy expiry: persist the flag before reporting the failure
		if err := s.codes.MarkExpired(ctx, resetCode.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to mark reset code as expired: %w", err)
		}
		resetCode.Expired = true
		return nil, nil, models.ErrCodeExpired
	}

	return resetCode, user, nil
}

func maskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	username := parts[0]
	domain := parts[1]

	if len(username) <= 2 {
		return username[0:1] + "***@" + domain
	}

	return username[0:1] + "***" + username[len(username)-1:] + "@" + domain
}
