package web

import (
	"net/http"

	qrcode "github.com/skip2/go-qrcode"

	"studyhall/internal/application/orchestrators"
	"studyhall/internal/application/projections"
)

// handleDashboard handles GET /api/dashboard for the logged-in member.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if sess.UserID == "" {
		http.Error(w, "no member record for this account", http.StatusNotFound)
		return
	}

	result, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardQuery{
		UserID: sess.UserID,
	}, projections.GetDashboardDeps{
		UserStore:       stores.UserStore,
		MembershipStore: stores.MembershipStore,
		PaymentStore:    stores.PaymentStore,
		SettingStore:    stores.SettingStore,
		Now:             timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePayments handles POST /api/payments: a member reports a payment
// they claim to have made.
func handlePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var input struct {
		Amount        int64  `json:"Amount"`
		Method        string `json:"Method"`
		TransactionID string `json:"TransactionID"`
		Name          string `json:"Name"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	name := input.Name
	if name == "" {
		name = sess.Email
	}

	p, err := orchestrators.ExecuteSubmitPayment(r.Context(), orchestrators.SubmitPaymentInput{
		IdentityID:    sess.AccountID,
		Email:         sess.Email,
		Name:          name,
		Amount:        input.Amount,
		Method:        input.Method,
		TransactionID: input.TransactionID,
	}, orchestrators.SubmitPaymentDeps{
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
	writeJSON(w, http.StatusCreated, p)
}

// handleVerifyPass handles GET /api/verify?id=<user-id>. Public: this
// is what a pass QR code resolves to, so no session is required and an
// unknown id is a normal answer.
func handleVerifyPass(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("id")
	if userID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	result, err := projections.QueryVerifyPass(r.Context(), projections.VerifyPassQuery{
		UserID: userID,
	}, projections.VerifyPassDeps{
		UserStore:       stores.UserStore,
		MembershipStore: stores.MembershipStore,
		Now:             timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePassQR handles GET /api/pass/qr: a PNG QR code pointing at the
// member's public verification URL.
func handlePassQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if sess.UserID == "" {
		http.Error(w, "no member record for this account", http.StatusNotFound)
		return
	}

	verifyURL := baseURL + "/api/verify?id=" + sess.UserID
	png, err := qrcode.Encode(verifyURL, qrcode.Medium, 256)
	if err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
