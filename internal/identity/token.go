package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "jobdesk"

	// tokenUseAccess marks a regular 24h bearer credential, tokenUseReset a
	// 1h password-reset credential. The two are never interchangeable.
	tokenUseAccess = "access"
	tokenUseReset  = "reset"

	accessTTL = 24 * time.Hour
	resetTTL  = time.Hour
)

// Claims are the JWT claims carried by every credential the service signs.
type Claims struct {
	Role     Role   `json:"role,omitempty"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies the service's HS256 bearer credentials. The
// signing secret is explicit construction-time configuration, not ambient
// process state.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens constructs a token signer from the configured secret.
func NewTokens(secret string) (*Tokens, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("identity: token secret is required")
	}
	return &Tokens{secret: []byte(secret), now: time.Now}, nil
}

// WithClock overrides the time source. Intended for tests.
func (t *Tokens) WithClock(fn func() time.Time) *Tokens {
	if fn != nil {
		t.now = fn
	}
	return t
}

// Access issues a 24h bearer credential for the user.
func (t *Tokens) Access(userID string, role Role) (string, time.Time, error) {
	return t.sign(userID, role, tokenUseAccess, accessTTL)
}

// Reset issues a 1h password-reset credential for the user.
func (t *Tokens) Reset(userID string) (string, time.Time, error) {
	return t.sign(userID, "", tokenUseReset, resetTTL)
}

func (t *Tokens) sign(userID string, role Role, use string, ttl time.Duration) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, errors.New("userID is required")
	}
	now := t.now().UTC()
	expires := now.Add(ttl)
	claims := Claims{
		Role:     role,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseAccess verifies an access token and returns the subject it encodes.
func (t *Tokens) ParseAccess(token string) (Subject, error) {
	claims, err := t.parse(token, tokenUseAccess)
	if err != nil {
		return Subject{}, err
	}
	return Subject{UserID: claims.Subject, Role: claims.Role}, nil
}

// ParseReset verifies a password-reset token and returns the user id it was
// issued for.
func (t *Tokens) ParseReset(token string) (string, error) {
	claims, err := t.parse(token, tokenUseReset)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (t *Tokens) parse(token, use string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenUse != use {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearer parses an "Authorization: Bearer <token>" header value.
func ExtractBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrInvalidToken
	}
	const scheme = "Bearer "
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(scheme)) {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(header[len(scheme):])
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}
