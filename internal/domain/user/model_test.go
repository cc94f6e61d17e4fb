package user_test

import (
	"testing"

	"studyhall/internal/domain/user"
)

// TestUserValidation tests validation of User.
func TestUserValidation(t *testing.T) {
	tests := []struct {
		name    string
		user    user.User
		wantErr bool
	}{
		{
			name:    "valid student",
			user:    user.User{ID: "u1", IdentityID: "idp_123", Email: "s@example.com", Name: "Asha", Role: user.RoleStudent},
			wantErr: false,
		},
		{
			name:    "valid admin",
			user:    user.User{ID: "u2", IdentityID: "idp_456", Email: "a@example.com", Role: user.RoleAdmin},
			wantErr: false,
		},
		{
			name:    "missing identity id",
			user:    user.User{ID: "u1", Email: "s@example.com", Role: user.RoleStudent},
			wantErr: true,
		},
		{
			name:    "invalid email",
			user:    user.User{ID: "u1", IdentityID: "idp_123", Email: "not-an-email", Role: user.RoleStudent},
			wantErr: true,
		},
		{
			name:    "invalid role",
			user:    user.User{ID: "u1", IdentityID: "idp_123", Email: "s@example.com", Role: "JANITOR"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("User.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestUserIsAdmin tests the IsAdmin method.
func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{"admin", user.RoleAdmin, true},
		{"student", user.RoleStudent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := user.User{Role: tt.role}
			if got := u.IsAdmin(); got != tt.want {
				t.Errorf("User.IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestDisplayName tests the notification greeting fallback.
func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"with name", "Asha Rao", "Asha Rao"},
		{"empty name", "", "Member"},
		{"whitespace name", "   ", "Member"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := user.User{Name: tt.in}
			if got := u.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
