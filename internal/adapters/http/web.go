package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"studyhall/internal/adapters/document"
	"studyhall/internal/adapters/email"
	"studyhall/internal/adapters/http/middleware"
	"studyhall/internal/adapters/http/perf"
	accountStore "studyhall/internal/adapters/storage/account"
	membershipStore "studyhall/internal/adapters/storage/membership"
	outboxStore "studyhall/internal/adapters/storage/outbox"
	paymentStore "studyhall/internal/adapters/storage/payment"
	settingStore "studyhall/internal/adapters/storage/setting"
	userStore "studyhall/internal/adapters/storage/user"
	"studyhall/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	UserStore       userStore.Store
	PaymentStore    paymentStore.Store
	MembershipStore membershipStore.Store
	SettingStore    settingStore.Store
	OutboxStore     outboxStore.Store
}

// loadCSRFKey reads the CSRF secret from STUDYHALL_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("STUDYHALL_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("STUDYHALL_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("STUDYHALL_ENV") == "production" {
		log.Fatal("STUDYHALL_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set STUDYHALL_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// Global invoice renderer (set by SetDocumentRenderer)
var documentRenderer document.Renderer

// SetDocumentRenderer sets the renderer used for invoice attachments.
func SetDocumentRenderer(r document.Renderer) {
	documentRenderer = r
}

// Global outbox processor (set by SetOutboxProcessor)
var outboxProcessor *orchestrators.OutboxProcessor

// SetOutboxProcessor sets the processor backing the admin outbox endpoints.
func SetOutboxProcessor(p *orchestrators.OutboxProcessor) {
	outboxProcessor = p
}

// Sweep authentication. A request to the renewal sweep endpoint must
// carry either a short-lived token minted with sweepTokenSecret or the
// static key, when one is configured.
var sweepTokenSecret []byte
var sweepStaticKey string

// SetSweepKeys configures how the cron sweep endpoint authenticates.
func SetSweepKeys(tokenSecret []byte, staticKey string) {
	sweepTokenSecret = tokenSecret
	sweepStaticKey = staticKey
}

// Base URL used when composing the public pass verification link.
var baseURL = "http://localhost:8080"

// SetBaseURL sets the externally visible origin for links and QR codes.
func SetBaseURL(u string) {
	if u != "" {
		baseURL = u
	}
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("STUDYHALL_ENV") == "production"

	mux := http.NewServeMux()
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
