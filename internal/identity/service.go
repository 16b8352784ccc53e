package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const minPasswordLength = 8

// Service registers and authenticates users and issues bearer credentials.
type Service struct {
	store  UserStore
	tokens *Tokens
}

// RegisterRequest carries the four required registration fields.
type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Session bundles a user with a freshly issued bearer credential.
type Session struct {
	User      *User
	Token     string
	ExpiresAt time.Time
}

// NewService constructs the identity service.
func NewService(store UserStore, tokens *Tokens) (*Service, error) {
	if store == nil {
		return nil, errors.New("identity: user store is required")
	}
	if tokens == nil {
		return nil, errors.New("identity: token signer is required")
	}
	return &Service{store: store, tokens: tokens}, nil
}

// Register creates a new account and returns it with a 24h credential.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := normalizeEmail(req.Email)
	if firstName == "" || lastName == "" || email == "" || req.Password == "" {
		return Session{}, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return Session{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(req.Password) < minPasswordLength {
		return Session{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("identity: hash password: %w", err)
	}
	user := &User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return Session{}, err
	}
	return s.session(user)
}

// Login verifies credentials and returns the user with a fresh credential.
// An unknown email is reported as ErrNotFound, a failed hash comparison as
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(user)
}

// Authenticate resolves an Authorization header to a verified subject. Pure
// token verification: no store lookup, no revocation list.
func (s *Service) Authenticate(ctx context.Context, bearerHeader string) (Subject, error) {
	token, err := ExtractBearer(bearerHeader)
	if err != nil {
		return Subject{}, err
	}
	return s.tokens.ParseAccess(token)
}

// Profile loads the full user record for an authenticated subject.
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	return s.store.FindByID(ctx, userID)
}

// Logout is best-effort: there is no server-side revocation store, so the
// credential remains valid until natural expiry. Documented limitation.
func (s *Service) Logout(ctx context.Context, sub Subject) error {
	return nil
}

// InitiatePasswordReset issues a signed 1h reset credential for the account.
// The caller is responsible for out-of-band delivery; returning it directly
// in an API response is a placeholder behavior, not production-safe.
func (s *Service) InitiatePasswordReset(ctx context.Context, email string) (string, time.Time, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", time.Time{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.tokens.Reset(user.ID)
}

// CompletePasswordReset consumes a reset credential and replaces the stored
// hash.
func (s *Service) CompletePasswordReset(ctx context.Context, resetToken, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	userID, err := s.tokens.ParseReset(resetToken)
	if err != nil {
		return err
	}
	if _, err := s.store.FindByID(ctx, userID); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("identity: hash password: %w", err)
	}
	return s.store.UpdatePassword(ctx, userID, hash)
}

func (s *Service) session(user *User) (Session, error) {
	token, expires, err := s.tokens.Access(user.ID, user.Role)
	if err != nil {
		return Session{}, fmt.Errorf("identity: sign token: %w", err)
	}
	return Session{User: user, Token: token, ExpiresAt: expires}, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
