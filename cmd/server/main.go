package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"studyhall/internal/adapters/document"
	emailPkg "studyhall/internal/adapters/email"
	web "studyhall/internal/adapters/http"
	"studyhall/internal/adapters/http/perf"
	"studyhall/internal/adapters/storage"
	accountStore "studyhall/internal/adapters/storage/account"
	membershipStore "studyhall/internal/adapters/storage/membership"
	outboxStorePkg "studyhall/internal/adapters/storage/outbox"
	paymentStore "studyhall/internal/adapters/storage/payment"
	settingStore "studyhall/internal/adapters/storage/setting"
	userStore "studyhall/internal/adapters/storage/user"
	"studyhall/internal/application/orchestrators"
	outboxDomain "studyhall/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("STUDYHALL_DB_PATH", "studyhall.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	// Run database migrations
	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	uStore := userStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:    acctStore,
		UserStore:       uStore,
		PaymentStore:    paymentStore.NewSQLiteStore(timedDB),
		MembershipStore: membershipStore.NewSQLiteStore(timedDB),
		SettingStore:    settingStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStorePkg.NewSQLiteStore(timedDB),
	}

	// Seed default admin account if no accounts exist
	adminEmail := envOrDefault("STUDYHALL_ADMIN_EMAIL", "admin@studyhall.local")
	adminPassword := os.Getenv("STUDYHALL_ADMIN_PASSWORD")
	if adminPassword != "" {
		seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore, UserStore: uStore}
		if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
	} else if os.Getenv("STUDYHALL_ENV") != "production" {
		log.Println("STUDYHALL_ADMIN_PASSWORD not set — skipping admin seed")
	}

	// Configure email sender
	resendKey := os.Getenv("STUDYHALL_RESEND_KEY")
	emailFrom := envOrDefault("STUDYHALL_RESEND_FROM", "Study Hall <noreply@studyhall.local>")
	emailReply := envOrDefault("STUDYHALL_REPLY_TO", "hello@studyhall.local")
	var sender emailPkg.Sender
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("STUDYHALL_ENV") == "production" {
			log.Println("WARNING: STUDYHALL_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set STUDYHALL_RESEND_KEY for real delivery)")
		}
	}
	web.SetEmailSender(sender, emailFrom, emailReply)

	// Invoice PDF renderer
	businessName := envOrDefault("STUDYHALL_BUSINESS_NAME", "Study Hall")
	web.SetDocumentRenderer(document.NewPDFRenderer(businessName, []string{
		envOrDefault("STUDYHALL_BUSINESS_ADDRESS", ""),
	}))

	// Cron sweep authentication: short-lived tokens and/or a static key
	web.SetSweepKeys([]byte(os.Getenv("STUDYHALL_SWEEP_SECRET")), os.Getenv("STUDYHALL_SWEEP_KEY"))
	web.SetBaseURL(os.Getenv("STUDYHALL_BASE_URL"))

	// Start outbox background worker for retrying failed email deliveries
	outboxStopCh := make(chan struct{})
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outboxDomain.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: sender, From: emailFrom},
	})
	orchestrators.StartBackgroundWorker(processor, 1*time.Minute, outboxStopCh)
	defer close(outboxStopCh)
	web.SetOutboxProcessor(processor)

	// Create HTTP handler with middleware (pass collector for timing + snapshots)
	mux := web.NewMux(stores, collector)

	// Start server
	addr := envOrDefault("STUDYHALL_ADDR", ":8080")
	log.Printf("Study Hall %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("STUDYHALL_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
