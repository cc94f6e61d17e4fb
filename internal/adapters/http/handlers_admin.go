package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"studyhall/internal/application/orchestrators"
	"studyhall/internal/application/projections"
)

// handlePaymentApprove handles POST /api/admin/payments/approve
func handlePaymentApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input struct {
		PaymentID string `json:"PaymentID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.PaymentID == "" {
		http.Error(w, "PaymentID is required", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteApprovePayment(r.Context(), orchestrators.ApprovePaymentInput{
		PaymentID: input.PaymentID,
	}, orchestrators.ApprovePaymentDeps{
		UserStore:       stores.UserStore,
		PaymentStore:    stores.PaymentStore,
		MembershipStore: stores.MembershipStore,
		SettingStore:    stores.SettingStore,
		Renderer:        documentRenderer,
		Notify:          notifyDeps(),
		FromAddress:     emailFromAddress,
	})
	if err != nil {
		status := paymentErrorStatus(err)
		if status == http.StatusInternalServerError {
			internalError(w, err)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePaymentReject handles POST /api/admin/payments/reject
func handlePaymentReject(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input struct {
		PaymentID string `json:"PaymentID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.PaymentID == "" {
		http.Error(w, "PaymentID is required", http.StatusBadRequest)
		return
	}

	p, err := orchestrators.ExecuteRejectPayment(r.Context(), orchestrators.RejectPaymentInput{
		PaymentID: input.PaymentID,
	}, orchestrators.RejectPaymentDeps{
		UserStore:    stores.UserStore,
		PaymentStore: stores.PaymentStore,
		Notify:       notifyDeps(),
		FromAddress:  emailFromAddress,
	})
	if err != nil {
		status := paymentErrorStatus(err)
		if status == http.StatusInternalServerError {
			internalError(w, err)
			return
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleMembershipToggle handles POST /api/admin/memberships/toggle
func handleMembershipToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input struct {
		UserID string `json:"UserID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	m, err := orchestrators.ExecuteToggleMembership(r.Context(), orchestrators.ToggleMembershipInput{
		UserID: input.UserID,
	}, orchestrators.ToggleMembershipDeps{
		MembershipStore: stores.MembershipStore,
		GenerateID:      generateID,
		Now:             timeNow,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleFacilitySecret handles GET (read) and POST (rotate) for
// /api/admin/wifi-password
func handleFacilitySecret(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	if r.Method == "GET" {
		value, err := orchestrators.ExecuteGetFacilitySecret(r.Context(), orchestrators.GetFacilitySecretDeps{
			SettingStore: stores.SettingStore,
		})
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"Value": value})
		return
	}

	if r.Method == "POST" {
		var input struct {
			Value string `json:"Value"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		result, err := orchestrators.ExecuteRotateFacilitySecret(r.Context(), orchestrators.RotateFacilitySecretInput{
			Value: input.Value,
		}, orchestrators.RotateFacilitySecretDeps{
			SettingStore:    stores.SettingStore,
			MembershipStore: stores.MembershipStore,
			UserStore:       stores.UserStore,
			Notify:          notifyDeps(),
			FromAddress:     emailFromAddress,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAdminOverview handles GET /api/admin/overview
func handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	result, err := projections.QueryGetAdminOverview(r.Context(), projections.GetAdminOverviewDeps{
		UserStore:       stores.UserStore,
		PaymentStore:    stores.PaymentStore,
		MembershipStore: stores.MembershipStore,
		Now:             timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleOutbox handles GET /api/admin/outbox: recent delivery attempts.
func handleOutbox(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := stores.OutboxStore.List(r.Context(), limit)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleOutboxRetry handles POST /api/admin/outbox/retry
func handleOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if outboxProcessor == nil {
		http.Error(w, "outbox processing not configured", http.StatusServiceUnavailable)
		return
	}

	var input struct {
		EntryID string `json:"EntryID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := outboxProcessor.ProcessSingle(r.Context(), input.EntryID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleOutboxAbandon handles POST /api/admin/outbox/abandon
func handleOutboxAbandon(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if outboxProcessor == nil {
		http.Error(w, "outbox processing not configured", http.StatusServiceUnavailable)
		return
	}

	var input struct {
		EntryID string `json:"EntryID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := outboxProcessor.AbandonEntry(r.Context(), input.EntryID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAccounts handles POST /api/admin/accounts: create a login
// account plus its mirrored member record.
func handleAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input struct {
		Email    string `json:"Email"`
		Password string `json:"Password"`
		Name     string `json:"Name"`
		Role     string `json:"Role"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	id, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Role:     input.Role,
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		UserStore:    stores.UserStore,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrEmailAlreadyExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"ID": id})
}

// handleUserWipe handles POST /api/admin/users/wipe: erase a member and
// everything hanging off them.
func handleUserWipe(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var input struct {
		UserID string `json:"UserID"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := orchestrators.ExecuteWipeUser(r.Context(), orchestrators.WipeUserInput{
		UserID: input.UserID,
	}, orchestrators.WipeUserDeps{
		UserStore: stores.UserStore,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePerfSnapshot handles GET /api/admin/perf?window_minutes=N
func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		http.Error(w, "perf collection not configured", http.StatusServiceUnavailable)
		return
	}

	windowMinutes := 15
	if m := r.URL.Query().Get("window_minutes"); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 && n <= 24*60 {
			windowMinutes = n
		}
	}

	since := timeNow().Add(-time.Duration(windowMinutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, 10))
}
