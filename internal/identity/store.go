package identity

import "context"

// UserStore describes persistence operations required by the identity
// service. Uniqueness of email is enforced by the store so concurrent
// registrations cannot both succeed.
type UserStore interface {
	// Create inserts a new user. Returns ErrEmailTaken when the email is
	// already registered.
	Create(ctx context.Context, u *User) error
	// FindByID returns ErrNotFound when no user matches.
	FindByID(ctx context.Context, id string) (*User, error)
	// FindByEmail returns ErrNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// UpdatePassword replaces the stored credential hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}
