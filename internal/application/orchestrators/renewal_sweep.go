package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	emailAdapter "studyhall/internal/adapters/email"
	membershipDomain "studyhall/internal/domain/membership"
)

// RenewalSweepDeps holds dependencies for the renewal reminder sweep.
type RenewalSweepDeps struct {
	MembershipStore MembershipStore
	UserStore       UserStore
	Notify          NotifyDeps
	FromAddress     string
}

// RenewalSweepResult counts what the sweep touched.
type RenewalSweepResult struct {
	TotalInactive int
	Sent          int
	Failed        int
}

// ExecuteRenewalSweep emails a renewal reminder to every user whose
// membership status is INACTIVE. Selection is by status alone; expiry
// is not consulted, so a stale-active row is skipped until something
// flips its status.
// POST: Every inactive member with an email was attempted; the sweep
// never halts on a per-recipient failure
func ExecuteRenewalSweep(ctx context.Context, deps RenewalSweepDeps) (RenewalSweepResult, error) {
	inactive, err := deps.MembershipStore.ListByStatus(ctx, membershipDomain.StatusInactive)
	if err != nil {
		return RenewalSweepResult{}, fmt.Errorf("list inactive memberships: %w", err)
	}

	result := RenewalSweepResult{TotalInactive: len(inactive)}
	if len(inactive) == 0 {
		slog.Info("sweep_event", "event", "renewal_sweep_empty")
		return result, nil
	}

	for _, m := range inactive {
		u, err := deps.UserStore.GetByID(ctx, m.UserID)
		if err != nil {
			slog.Warn("sweep_event", "event", "sweep_user_lookup_failed", "user_id", m.UserID, "error", err.Error())
			result.Failed++
			continue
		}
		if u.Email == "" {
			continue
		}

		body := fmt.Sprintf(`Hi %s,

Your membership is currently inactive. Renew now to keep
access to the study hall.

Submit your payment from the dashboard and we will verify it shortly.`, u.DisplayName())

		err = sendOrEnqueue(ctx, deps.Notify, emailAdapter.SendRequest{
			To:      []string{u.Email},
			From:    deps.FromAddress,
			Subject: "Membership Renewal Reminder - Study Hall",
			HTML:    renderMarkdown(body),
		})
		if err != nil {
			result.Failed++
			continue
		}
		result.Sent++
	}

	slog.Info("sweep_event", "event", "renewal_sweep_done", "total_inactive", result.TotalInactive, "sent", result.Sent, "failed", result.Failed)
	return result, nil
}
