package account_test

import (
	"errors"
	"testing"
	"time"

	"studyhall/internal/domain/account"
)

// TestAccountValidation tests validation of Account.
func TestAccountValidation(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr bool
	}{
		{
			name:    "valid admin",
			account: account.Account{ID: "a1", Email: "admin@example.com", Role: account.RoleAdmin},
			wantErr: false,
		},
		{
			name:    "valid student",
			account: account.Account{ID: "a2", Email: "s@example.com", Role: account.RoleStudent},
			wantErr: false,
		},
		{
			name:    "empty email",
			account: account.Account{ID: "a1", Role: account.RoleAdmin},
			wantErr: true,
		},
		{
			name:    "invalid email",
			account: account.Account{ID: "a1", Email: "nope", Role: account.RoleAdmin},
			wantErr: true,
		},
		{
			name:    "invalid role",
			account: account.Account{ID: "a1", Email: "a@example.com", Role: "coach"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Account.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestSetAndCheckPassword tests bcrypt round-trip and rejection rules.
func TestSetAndCheckPassword(t *testing.T) {
	a := account.Account{Email: "a@example.com", Role: account.RoleAdmin}

	if err := a.SetPassword(""); !errors.Is(err, account.ErrEmptyPassword) {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
	if err := a.SetPassword("short"); !errors.Is(err, account.ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}

	if err := a.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.CheckPassword("correct horse battery"); err != nil {
		t.Errorf("expected password to verify, got %v", err)
	}
	if err := a.CheckPassword("wrong password!"); !errors.Is(err, account.ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

// TestLockout tests the failed-login lockout policy.
func TestLockout(t *testing.T) {
	a := account.Account{}
	if a.IsLocked() {
		t.Error("fresh account should not be locked")
	}

	for i := 0; i < 5; i++ {
		a.RecordFailedLogin()
	}
	if !a.IsLocked() {
		t.Error("account should lock after 5 failures")
	}

	a.ResetFailedLogins()
	if a.IsLocked() || a.FailedLogins != 0 {
		t.Error("reset should clear lock and counter")
	}
}

// TestIsLockedExpiry tests that an expired lock no longer blocks.
func TestIsLockedExpiry(t *testing.T) {
	a := account.Account{LockedUntil: time.Now().Add(-time.Minute)}
	if a.IsLocked() {
		t.Error("expired lock should not block")
	}
}
