package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/retailops/passreset/internal/models"
	"github.com/retailops/passreset/internal/repository"
)

// ==============================================
// ACCOUNT STORE INTERFACE
// ==============================================

type AccountStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

// ==============================================
// IDENTITY RESOLVER
// ==============================================

// IdentityResolver maps a user-supplied identifier (username or email,
// case-insensitive) to exactly one account. All downstream reset-code
// operations key on the account's canonical email, not on the raw input:
// a user may type their username, but the code is filed under the address
// they will actually check.
type IdentityResolver struct {
	users AccountStore
}

func NewIdentityResolver(users AccountStore) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve returns the account for the identifier, or models.ErrUserNotFound.
func (r *IdentityResolver) Resolve(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, models.ErrIdentifierRequired
	}

	var user *models.User
	var err error

	if strings.HasPrefix(identifier, "@") {
		// Username with @ prefix
		user, err = r.users.GetUserByUsername(ctx, strings.TrimPrefix(identifier, "@"))
	} else if strings.Contains(identifier, "@") {
		// Email address
		user, err = r.users.GetUserByEmail(ctx, identifier)
	} else {
		// Assume it's a bare username
		user, err = r.users.GetUserByUsername(ctx, identifier)
	}

	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve identifier: %w", err)
	}

	// Canonical form used as the reset-code key
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	return user, nil
}
