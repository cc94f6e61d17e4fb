package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"studyhall/internal/adapters/http/middleware"
	"studyhall/internal/application/orchestrators"
	paymentDomain "studyhall/internal/domain/payment"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// notifyDeps bundles the globally configured notification plumbing for
// orchestrator calls.
func notifyDeps() orchestrators.NotifyDeps {
	return orchestrators.NotifyDeps{
		EmailSender: emailSender,
		OutboxStore: stores.OutboxStore,
		GenerateID:  generateID,
		Now:         timeNow,
	}
}

// requireSession extracts the session or writes a 401.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireAdmin extracts the session and enforces the admin role.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	if !middleware.IsAdmin(r.Context()) {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// paymentErrorStatus maps payment sentinels onto HTTP status codes.
func paymentErrorStatus(err error) int {
	switch {
	case errors.Is(err, paymentDomain.ErrEmptyTransactionID),
		errors.Is(err, paymentDomain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, paymentDomain.ErrDuplicateTransaction),
		errors.Is(err, paymentDomain.ErrPendingExists),
		errors.Is(err, paymentDomain.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, paymentDomain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// registerRoutes attaches every handler to the mux. Method dispatch
// happens inside each handler.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/dashboard", handleDashboard)
	mux.HandleFunc("/api/payments", handlePayments)
	mux.HandleFunc("/api/pass/qr", handlePassQR)
	mux.HandleFunc("/api/verify", handleVerifyPass)
	mux.HandleFunc("/api/admin/payments/approve", handlePaymentApprove)
	mux.HandleFunc("/api/admin/payments/reject", handlePaymentReject)
	mux.HandleFunc("/api/admin/memberships/toggle", handleMembershipToggle)
	mux.HandleFunc("/api/admin/wifi-password", handleFacilitySecret)
	mux.HandleFunc("/api/admin/overview", handleAdminOverview)
	mux.HandleFunc("/api/admin/outbox", handleOutbox)
	mux.HandleFunc("/api/admin/outbox/retry", handleOutboxRetry)
	mux.HandleFunc("/api/admin/outbox/abandon", handleOutboxAbandon)
	mux.HandleFunc("/api/admin/accounts", handleAccounts)
	mux.HandleFunc("/api/admin/users/wipe", handleUserWipe)
	mux.HandleFunc("/api/admin/perf", handlePerfSnapshot)
	mux.HandleFunc("/api/cron/renewal-reminders", handleRenewalSweep)
	mux.HandleFunc("/api/healthz", handleHealthz)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLogin handles POST /api/login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		Email    string `json:"Email"`
		Password string `json:"Password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	// Resolve the member record behind this account. Admin-only
	// accounts may not have one; the session then carries an empty
	// user id and member endpoints answer 404.
	userID := ""
	if u, err := stores.UserStore.GetByEmail(r.Context(), result.Email); err == nil {
		userID = u.ID
	}

	token, err := sessions.Create(result.AccountID, userID, result.Email, result.Role)
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	middleware.SetSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]string{
		"Email": result.Email,
		"Role":  result.Role,
	})
}

// handleLogout handles POST /api/logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	cookie, err := r.Cookie("studyhall_session")
	if err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
