package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	emailAdapter "studyhall/internal/adapters/email"
	membershipDomain "studyhall/internal/domain/membership"
	settingDomain "studyhall/internal/domain/setting"
	userDomain "studyhall/internal/domain/user"
)

// rotationFanOutLimit bounds concurrent notification sends during a
// secret rotation.
const rotationFanOutLimit = 5

// GetFacilitySecretDeps holds dependencies for reading the secret.
type GetFacilitySecretDeps struct {
	SettingStore SettingStore
}

// ExecuteGetFacilitySecret returns the current facility secret, or an
// empty string when none has been set.
func ExecuteGetFacilitySecret(ctx context.Context, deps GetFacilitySecretDeps) (string, error) {
	return deps.SettingStore.Get(ctx, settingDomain.KeyWiFiPassword)
}

// RotateFacilitySecretInput carries input for the rotation orchestrator.
type RotateFacilitySecretInput struct {
	Value string
}

// RotateFacilitySecretDeps holds dependencies for RotateFacilitySecret.
type RotateFacilitySecretDeps struct {
	SettingStore    SettingStore
	MembershipStore MembershipStore
	UserStore       UserStore
	Notify          NotifyDeps
	FromAddress     string
}

// RotateFacilitySecretResult reports fan-out counts.
type RotateFacilitySecretResult struct {
	Notified int
	Failed   int
}

// ExecuteRotateFacilitySecret stores the new secret and notifies every
// currently effective-active member.
// PRE: Value is non-empty after trimming
// POST: Secret is durably stored. Notification is all-settle: every
// recipient is attempted, per-recipient failures are logged and
// outboxed, and the operation result depends only on the write
func ExecuteRotateFacilitySecret(ctx context.Context, input RotateFacilitySecretInput, deps RotateFacilitySecretDeps) (RotateFacilitySecretResult, error) {
	value := strings.TrimSpace(input.Value)
	if value == "" {
		return RotateFacilitySecretResult{}, settingDomain.ErrEmptyValue
	}

	if err := deps.SettingStore.Upsert(ctx, settingDomain.KeyWiFiPassword, value); err != nil {
		return RotateFacilitySecretResult{}, err
	}
	slog.Info("setting_event", "event", "facility_secret_rotated")

	recipients, err := effectiveActiveRecipients(ctx, deps)
	if err != nil {
		// The write already succeeded; report zero notifications.
		slog.Error("setting_event", "event", "rotation_recipient_lookup_failed", "error", err.Error())
		return RotateFacilitySecretResult{}, nil
	}

	var (
		mu     sync.Mutex
		result RotateFacilitySecretResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rotationFanOutLimit)
	for _, u := range recipients {
		u := u
		g.Go(func() error {
			body := fmt.Sprintf(`Hi %s,

The WiFi password has been updated.

New password: **%s**`, u.DisplayName(), value)

			err := sendOrEnqueue(gctx, deps.Notify, emailAdapter.SendRequest{
				To:      []string{u.Email},
				From:    deps.FromAddress,
				Subject: "WiFi Password Updated - Study Hall",
				HTML:    renderMarkdown(body),
			})

			mu.Lock()
			if err != nil {
				result.Failed++
			} else {
				result.Notified++
			}
			mu.Unlock()
			// All-settle: never propagate so remaining sends proceed.
			return nil
		})
	}
	g.Wait()

	slog.Info("setting_event", "event", "rotation_fanout_done", "notified", result.Notified, "failed", result.Failed)
	return result, nil
}

// effectiveActiveRecipients resolves the users whose membership is
// effective-active at rotation time and who have an email address.
func effectiveActiveRecipients(ctx context.Context, deps RotateFacilitySecretDeps) ([]userDomain.User, error) {
	memberships, err := deps.MembershipStore.ListByStatus(ctx, membershipDomain.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active memberships: %w", err)
	}

	now := deps.Notify.Now()
	var recipients []userDomain.User
	for _, m := range memberships {
		if !m.EffectiveActive(now) {
			continue
		}
		u, err := deps.UserStore.GetByID(ctx, m.UserID)
		if err != nil {
			slog.Warn("setting_event", "event", "rotation_user_lookup_failed", "user_id", m.UserID, "error", err.Error())
			continue
		}
		if u.Email == "" {
			continue
		}
		recipients = append(recipients, u)
	}
	return recipients, nil
}
