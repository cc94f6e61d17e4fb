package orchestrators

import (
	"context"
	"errors"
	"testing"

	"studyhall/internal/domain/account"
	userDomain "studyhall/internal/domain/user"
)

// --- Mock account store ---

type mockAccountStore struct {
	accounts map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

func TestExecuteCreateAccount_CreatesAccountAndUser(t *testing.T) {
	accounts := newMockAccountStore()
	users := newMockUserStore()
	deps := CreateAccountDeps{AccountStore: accounts, UserStore: users}

	id, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email:    "admin@test.com",
		Password: "a-long-enough-password",
		Name:     "Admin",
		Role:     account.RoleAdmin,
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteCreateAccount failed: %v", err)
	}

	acct := accounts.accounts[id]
	if acct.PasswordHash == "" || acct.PasswordHash == "a-long-enough-password" {
		t.Error("password not hashed")
	}

	// Mirrored user keyed by the account id.
	u, err := users.GetByIdentityID(context.Background(), id)
	if err != nil {
		t.Fatalf("user not mirrored: %v", err)
	}
	if u.Role != userDomain.RoleAdmin {
		t.Errorf("user role = %q, want ADMIN", u.Role)
	}
	if u.Email != "admin@test.com" {
		t.Errorf("user email = %q", u.Email)
	}
}

func TestExecuteCreateAccount_DuplicateEmail(t *testing.T) {
	accounts := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: accounts, UserStore: newMockUserStore()}

	input := CreateAccountInput{Email: "a@test.com", Password: "a-long-enough-password", Role: account.RoleStudent}
	if _, err := ExecuteCreateAccount(context.Background(), input, deps); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := ExecuteCreateAccount(context.Background(), input, deps); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("err = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestExecuteCreateAccount_ShortPassword(t *testing.T) {
	deps := CreateAccountDeps{AccountStore: newMockAccountStore(), UserStore: newMockUserStore()}

	_, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email: "a@test.com", Password: "short", Role: account.RoleStudent,
	}, deps)
	if !errors.Is(err, account.ErrPasswordTooShort) {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestExecuteSeedAdmin_OnlyOnEmptyStore(t *testing.T) {
	accounts := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: accounts, UserStore: newMockUserStore()}

	if err := ExecuteSeedAdmin(context.Background(), deps, "admin@test.com", "a-long-enough-password"); err != nil {
		t.Fatalf("ExecuteSeedAdmin failed: %v", err)
	}
	if len(accounts.accounts) != 1 {
		t.Fatalf("have %d accounts, want 1", len(accounts.accounts))
	}

	// Second run is a no-op.
	if err := ExecuteSeedAdmin(context.Background(), deps, "other@test.com", "a-long-enough-password"); err != nil {
		t.Fatalf("second ExecuteSeedAdmin failed: %v", err)
	}
	if len(accounts.accounts) != 1 {
		t.Errorf("have %d accounts after reseed, want 1", len(accounts.accounts))
	}
}

func TestExecuteLogin_WrongPasswordLocksAfterFive(t *testing.T) {
	accounts := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: accounts, UserStore: newMockUserStore()}
	if _, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email: "a@test.com", Password: "a-long-enough-password", Role: account.RoleStudent,
	}, deps); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	loginDeps := LoginDeps{AccountStore: accounts}
	for i := 0; i < 5; i++ {
		_, err := ExecuteLogin(context.Background(), LoginInput{Email: "a@test.com", Password: "wrong-password!"}, loginDeps)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// Sixth attempt hits the lockout, even with the right password.
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "a@test.com", Password: "a-long-enough-password"}, loginDeps)
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("err = %v, want ErrAccountLocked", err)
	}
}

func TestExecuteLogin_Success(t *testing.T) {
	accounts := newMockAccountStore()
	deps := CreateAccountDeps{AccountStore: accounts, UserStore: newMockUserStore()}
	id, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email: "a@test.com", Password: "a-long-enough-password", Role: account.RoleAdmin,
	}, deps)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	result, err := ExecuteLogin(context.Background(), LoginInput{Email: "a@test.com", Password: "a-long-enough-password"}, LoginDeps{AccountStore: accounts})
	if err != nil {
		t.Fatalf("ExecuteLogin failed: %v", err)
	}
	if result.AccountID != id {
		t.Errorf("account id = %q, want %q", result.AccountID, id)
	}
	if result.Role != account.RoleAdmin {
		t.Errorf("role = %q, want admin", result.Role)
	}
}

func TestExecuteWipeUser(t *testing.T) {
	users := newMockUserStore()
	users.users["u-1"] = userDomain.User{ID: "u-1", IdentityID: "idn-1", Email: "a@b.c", Role: userDomain.RoleStudent, CreatedAt: fixedNow}

	if err := ExecuteWipeUser(context.Background(), WipeUserInput{UserID: "u-1"}, WipeUserDeps{UserStore: users}); err != nil {
		t.Fatalf("ExecuteWipeUser failed: %v", err)
	}
	if _, ok := users.users["u-1"]; ok {
		t.Error("user still present after wipe")
	}

	if err := ExecuteWipeUser(context.Background(), WipeUserInput{}, WipeUserDeps{UserStore: users}); err == nil {
		t.Error("expected error for empty user id")
	}
}
