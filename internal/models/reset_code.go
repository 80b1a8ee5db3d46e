package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ==============================================
// RESET CODE MODEL
// ==============================================

type ResetCode struct {
	ID         uuid.UUID        `db:"id"`
	Email      string           `db:"email"` // canonical, lowercased account email
	Code       string           `db:"code"`  // 6-digit reset code
	ExpiresAt  time.Time        `db:"expires_at"`
	Used       bool             `db:"used"`
	RedeemedAt pgtype.Timestamp `db:"redeemed_at"` // set iff Used
	Expired    bool             `db:"expired"`
	CreatedAt  time.Time        `db:"created_at"`
}

// IsExpiredAt reports whether the code's lifetime has passed at the given
// instant. The boundary is inclusive: a check at exactly ExpiresAt succeeds.
func (r *ResetCode) IsExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r *ResetCode) IsUsed() bool {
	return r.Used
}

// IsActiveAt reports whether the code is still redeemable at the given instant.
func (r *ResetCode) IsActiveAt(now time.Time) bool {
	return !r.Used && !r.Expired && !r.IsExpiredAt(now)
}

// ==============================================
// RESET CODE CONFIGURATION
// ==============================================
const (
	ResetCodeLength         = 6                // 6-digit numeric code
	ResetCodeExpiryMinutes  = 10               // code expires in 10 minutes
	ResetCodeResendCooldown = 60 * time.Second // 60 seconds between issues
	ResetCodeHourlyLimit    = 5                // max codes per email per hour
)
