package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	emailAdapter "studyhall/internal/adapters/email"
	outboxStore "studyhall/internal/adapters/storage/outbox"
	outboxDomain "studyhall/internal/domain/outbox"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts a markdown email body to HTML. On a render
// failure the raw markdown is returned so the message is still readable.
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		slog.Warn("markdown_render_failed", "error", err.Error())
		return md
	}
	return buf.String()
}

// EmailPayload is the JSON structure persisted for outboxed email
// intents. The message is fully composed at enqueue time so a replay
// never re-reads mutable state. Attachment content round-trips as
// base64 through encoding/json.
type EmailPayload struct {
	To          []string                  `json:"to"`
	Subject     string                    `json:"subject"`
	HTML        string                    `json:"html"`
	Attachments []emailAdapter.Attachment `json:"attachments,omitempty"`
}

// NotifyDeps bundles what every notification site needs: the live
// sender plus the outbox used when the live send fails.
type NotifyDeps struct {
	EmailSender emailAdapter.Sender
	OutboxStore outboxStore.Store
	GenerateID  func() string
	Now         func() time.Time
}

// sendOrEnqueue attempts a live send and falls back to the outbox.
// POST: Either the provider accepted the message or an outbox entry
// exists for retry; the returned error is informational only and
// callers never fail the surrounding operation on it.
func sendOrEnqueue(ctx context.Context, deps NotifyDeps, req emailAdapter.SendRequest) error {
	if len(req.To) == 0 {
		return nil
	}

	_, sendErr := deps.EmailSender.Send(ctx, req)
	if sendErr == nil {
		return nil
	}
	slog.Error("email_event", "event", "send_failed", "to", req.To, "subject", req.Subject, "error", sendErr.Error())

	if deps.OutboxStore == nil {
		return sendErr
	}

	payload, err := json.Marshal(EmailPayload{
		To:          req.To,
		Subject:     req.Subject,
		HTML:        req.HTML,
		Attachments: req.Attachments,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	entry := outboxDomain.Entry{
		ID:          deps.GenerateID(),
		ActionType:  outboxDomain.ActionTypeEmail,
		Payload:     string(payload),
		Status:      outboxDomain.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   deps.Now(),
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		slog.Error("email_event", "event", "outbox_enqueue_failed", "subject", req.Subject, "error", err.Error())
		return err
	}

	slog.Info("email_event", "event", "send_outboxed", "entry_id", entry.ID, "subject", req.Subject)
	return sendErr
}

// EmailExecutor replays outboxed email intents through the configured sender.
type EmailExecutor struct {
	Sender emailAdapter.Sender
	From   string
}

// Execute sends an email from the payload.
// PRE: payload is valid JSON matching EmailPayload
// POST: email sent via configured sender, returns provider message ID
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}

	result, err := e.Sender.Send(ctx, emailAdapter.SendRequest{
		To:          p.To,
		From:        e.From,
		Subject:     p.Subject,
		HTML:        p.HTML,
		Attachments: p.Attachments,
	})
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}
