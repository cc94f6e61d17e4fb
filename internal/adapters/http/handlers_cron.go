package web

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"studyhall/internal/application/orchestrators"
)

// sweepAuthorized reports whether a sweep request carries a valid
// credential: either a short-lived minted token or the static key.
func sweepAuthorized(key string) bool {
	if key == "" {
		return false
	}
	if sweepStaticKey != "" &&
		subtle.ConstantTimeCompare([]byte(key), []byte(sweepStaticKey)) == 1 {
		return true
	}
	if len(sweepTokenSecret) > 0 &&
		orchestrators.VerifySweepToken(sweepTokenSecret, key) == nil {
		return true
	}
	return false
}

// handleRenewalSweep handles POST /api/cron/renewal-reminders?key=...
// Called by an external scheduler, not by a browser session.
func handleRenewalSweep(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !sweepAuthorized(r.URL.Query().Get("key")) {
		slog.Warn("sweep_event", "event", "sweep_denied", "remote", r.RemoteAddr)
		http.Error(w, "invalid sweep key", http.StatusUnauthorized)
		return
	}

	result, err := orchestrators.ExecuteRenewalSweep(r.Context(), orchestrators.RenewalSweepDeps{
		MembershipStore: stores.MembershipStore,
		UserStore:       stores.UserStore,
		Notify:          notifyDeps(),
		FromAddress:     emailFromAddress,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
