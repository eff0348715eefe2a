// Canary is a crash-reporting notifier. It wraps a unit of work and, when
// that work fails with a matched error or a panic, formats a crash report
// and delivers it over Telegram or SMTP mail before letting the failure
// propagate unchanged.
//
// # Telegram
//
// Wrap a function with a Telegram-backed reporter:
//
//	reporter, err := canary.NewTelegramReporter(telegram.Config{
//	    Token:   "123:abc",
//	    ChatIDs: []int64{42},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	run := reporter.Wrap("ingest", func() error {
//	    return ingest()
//	})
//	if err := run(); err != nil {
//	    // The original error; the crash report was already dispatched.
//	}
//
// Context-aware functions use the explicit context wrapper:
//
//	run := reporter.WrapContext("ingest", func(ctx context.Context) error {
//	    return ingest(ctx)
//	})
//
// Value-returning functions keep their signatures through the generic
// wrappers:
//
//	load := canary.WrapCall(reporter, "load", func() (*Snapshot, error) {
//	    return loadSnapshot()
//	})
//
// # Mail
//
// Mail reporters open one scoped SMTP session per report:
//
//	reporter, err := canary.NewMailReporter(
//	    mailer.Config{Host: "smtp.example.com", Port: 587, Login: "u", Password: "p"},
//	    canary.MailParams{From: "canary@example.com", To: "ops@example.com", Subject: "crash"},
//	    canary.WithAsAttachment(),
//	)
//
// # Configuration
//
// Credentials and formatting defaults can come from CANARY_* environment
// variables (with .env support), resolved once at startup:
//
//	cfg, err := canary.ConfigFromEnv()
//	reporter, err := canary.NewTelegramReporter(cfg.Telegram, cfg.ReporterOptions()...)
//
// # Failure semantics
//
// The reporter observes failures, never owns them: the wrapped function's
// error or panic always reaches the caller unchanged, and a failure to
// deliver the report is logged rather than raised.
package canary
