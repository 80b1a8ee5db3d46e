package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/retailops/passreset/internal/models"
)

// ==============================================
// ERRORS
// ==============================================

var (
	ErrCodeNotFound = errors.New("reset code not found")
	ErrCodeConsumed = errors.New("reset code already consumed")
)

// ==============================================
// RESET CODE REPOSITORY
// ==============================================

type ResetCodeRepository struct {
	db *pgxpool.Pool
}

func NewResetCodeRepository(db *pgxpool.Pool) *ResetCodeRepository {
	return &ResetCodeRepository{db: db}
}

// ==============================================
// CREATE
// ==============================================

func (r *ResetCodeRepository) Create(ctx context.Context, code *models.ResetCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}

	query := `
		INSERT INTO password_reset_codes (id, email, code, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	row := r.db.QueryRow(ctx, query,
		code.ID,
		code.Email,
		code.Code,
		code.ExpiresAt,
	)

	if err := row.Scan(&code.CreatedAt); err != nil {
		return fmt.Errorf("failed to create reset code: %w", err)
	}

	return nil
}

// ==============================================
// GET
// ==============================================

func (r *ResetCodeRepository) GetByEmailAndCode(ctx context.Context, email, code string) (*models.ResetCode, error) {
	query := `
		SELECT id, email, code, expires_at, used, redeemed_at, expired, created_at
		FROM password_reset_codes
		WHERE email = $1 AND code = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var rc models.ResetCode
	err := r.db.QueryRow(ctx, query, email, code).Scan(
		&rc.ID,
		&rc.Email,
		&rc.Code,
		&rc.ExpiresAt,
		&rc.Used,
		&rc.RedeemedAt,
		&rc.Expired,
		&rc.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get reset code: %w", err)
	}

	return &rc, nil
}

// ==============================================
// STATE TRANSITIONS
// ==============================================

// ExpireActiveByEmail marks every unused, unexpired code for the email as
// expired. Called before inserting a replacement so at most one code per
// email stays active.
func (r *ResetCodeRepository) ExpireActiveByEmail(ctx context.Context, email string) (int64, error) {
	query := `
		UPDATE password_reset_codes
		SET expired = TRUE
		WHERE email = $1 AND used = FALSE AND expired = FALSE
	`

	tag, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return 0, fmt.Errorf("failed to expire active reset codes: %w", err)
	}

	return tag.RowsAffected(), nil
}

// MarkExpired flips the expired flag on a single code. Used for lazy expiry
// when a validity check finds the lifetime already passed.
func (r *ResetCodeRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE password_reset_codes
		SET expired = TRUE
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark reset code as expired: %w", err)
	}

	return nil
}

// MarkUsed marks a code as redeemed. The conditional update makes redemption
// single-use even under concurrent calls: the second caller matches zero rows.
func (r *ResetCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE password_reset_codes
		SET used = TRUE, redeemed_at = NOW()
		WHERE id = $1 AND used = FALSE
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark reset code as used: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrCodeConsumed
	}

	return nil
}

// ==============================================
// STATUS CHECKS
// ==============================================

func (r *ResetCodeRepository) HasActiveCode(ctx context.Context, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM password_reset_codes
			WHERE email = $1 AND used = FALSE AND expired = FALSE AND expires_at >= NOW()
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active reset code: %w", err)
	}

	return exists, nil
}

func (r *ResetCodeRepository) CanIssue(ctx context.Context, email string, cooldown time.Duration) (bool, error) {
	query := `
		SELECT created_at
		FROM password_reset_codes
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var lastCreated time.Time
	err := r.db.QueryRow(ctx, query, email).Scan(&lastCreated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, fmt.Errorf("failed to check issue eligibility: %w", err)
	}

	return time.Since(lastCreated) >= cooldown, nil
}

func (r *ResetCodeRepository) CountRecent(ctx context.Context, email string, since time.Duration) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM password_reset_codes
		WHERE email = $1 AND created_at > $2
	`

	sinceTime := time.Now().Add(-since)
	var count int
	err := r.db.QueryRow(ctx, query, email, sinceTime).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent reset codes: %w", err)
	}

	return count, nil
}

// ==============================================
// CLEANUP
// ==============================================

// DeleteExpired physically removes long-dead rows. Housekeeping only: the
// expired flag is the logical marker, and lazy expiry needs recent rows to
// still exist, so the cutoff trails expiry by olderThan.
func (r *ResetCodeRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM password_reset_codes
		WHERE expires_at < $1
	`

	cutoff := time.Now().Add(-olderThan)
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset codes: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *ResetCodeRepository) DeleteRedeemed(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM password_reset_codes
		WHERE redeemed_at IS NOT NULL AND redeemed_at < $1
	`

	cutoff := time.Now().Add(-olderThan)
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete redeemed reset codes: %w", err)
	}

	return tag.RowsAffected(), nil
}
