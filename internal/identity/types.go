package identity

import "time"

// Role groups users into the three permission tiers the policy rules know
// about.
type Role string

const (
	RoleUser     Role = "user"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// Preferences holds the attributes a user volunteers for matching.
type Preferences struct {
	JobTypes      []string `json:"jobTypes,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	DesiredSalary *int64   `json:"desiredSalary,omitempty"`
}

// User is a registered account. PasswordHash never crosses the API boundary.
type User struct {
	ID           string      `json:"id"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Summary is the public projection of a user attached to API responses.
type Summary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Summary returns the public projection of u.
func (u *User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// Subject is the verified caller identity carried through a request.
type Subject struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the subject holds the admin role.
func (s Subject) IsAdmin() bool { return s.Role == RoleAdmin }
