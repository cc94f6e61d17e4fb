package user

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxEmailLength = 254
)

// Role constants
const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"
)

// Domain errors
var (
	ErrNotFound        = errors.New("user not found")
	ErrEmptyIdentityID = errors.New("identity id cannot be empty")
	ErrInvalidEmail    = errors.New("user email must be valid")
	ErrInvalidRole     = errors.New("role must be 'STUDENT' or 'ADMIN'")
)

// User is the root entity: it owns zero-or-one Membership and
// zero-or-many Payments. Created lazily on first authenticated
// contact or first payment submission.
type User struct {
	ID         string
	IdentityID string // stable id issued by the identity provider
	Email      string
	Name       string
	Role       string
	CreatedAt  time.Time
}

// Validate checks if the User has valid data.
// PRE: User struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email must contain '@', IdentityID must not be empty
func (u *User) Validate() error {
	if strings.TrimSpace(u.IdentityID) == "" {
		return ErrEmptyIdentityID
	}
	if !strings.Contains(u.Email, "@") || len(u.Email) > MaxEmailLength {
		return ErrInvalidEmail
	}
	if len(u.Name) > MaxNameLength {
		return errors.New("user name cannot exceed 100 characters")
	}
	if u.Role != RoleStudent && u.Role != RoleAdmin {
		return ErrInvalidRole
	}
	return nil
}

// IsAdmin returns true if the user holds the admin role.
// INVARIANT: User fields are not mutated
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the name to address the user by in notifications,
// falling back to a neutral greeting when no name was captured.
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) == "" {
		return "Member"
	}
	return u.Name
}
