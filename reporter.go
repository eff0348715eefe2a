package canary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Delivery carries per-dispatch delivery parameters resolved by the
// reporter and handed to the channel adapter.
type Delivery struct {
	// Filename names the report attachment, when one is sent.
	Filename string

	// DisableNotification suppresses the recipient-side notification
	// (chat-bot channel).
	DisableNotification bool

	// DisableWebPagePreview suppresses link previews for text reports
	// (chat-bot channel).
	DisableWebPagePreview bool
}

// Notifier delivers a built report through one channel.
type Notifier interface {
	Notify(ctx context.Context, report *Report, d Delivery) error
}

// Reporter observes failures from wrapped functions and dispatches crash
// reports without altering the functions' return or panic contract.
type Reporter struct {
	notifier Notifier
	match    func(error) bool
	log      zerolog.Logger

	header         string
	serviceName    string
	hostName       string
	timeLayout     string
	asAttachment   bool
	filename       string
	filenameLayout string

	disableNotification   bool
	disableWebPagePreview bool
}

// NewReporter creates a Reporter dispatching through n. By default every
// non-nil error is reported; configure the filter with WithMatch or
// WithMatchFunc.
func NewReporter(n Notifier, opts ...Option) *Reporter {
	r := &Reporter{
		notifier: n,
		match:    func(err error) bool { return err != nil },
		log:      zerolog.New(os.Stderr).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	// Preview suppression has no effect on attachment delivery; resolve
	// the conflict instead of failing.
	if r.asAttachment && r.disableWebPagePreview {
		r.log.Warn().Msg("disable_web_page_preview has no effect for attached reports; flag dropped")
		r.disableWebPagePreview = false
	}
	return r
}

// Wrap returns fn wrapped with failure reporting. A matched returned error
// or any panic triggers exactly one dispatch attempt; the error or panic
// then propagates to the caller unchanged.
func (r *Reporter) Wrap(name string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if v := recover(); v != nil {
				r.dispatch(context.Background(), name, panicTraceback(v))
				panic(v)
			}
		}()
		err = fn()
		if r.match(err) {
			r.dispatch(context.Background(), name, errorTraceback(err))
		}
		return err
	}
}

// WrapContext is Wrap for context-aware functions. The function's context
// also governs report delivery.
func (r *Reporter) WrapContext(name string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) (err error) {
		defer func() {
			if v := recover(); v != nil {
				r.dispatch(ctx, name, panicTraceback(v))
				panic(v)
			}
		}()
		err = fn(ctx)
		if r.match(err) {
			r.dispatch(ctx, name, errorTraceback(err))
		}
		return err
	}
}

// WrapCall wraps a value-returning function with failure reporting. The
// result and error pass through untouched.
func WrapCall[T any](r *Reporter, name string, fn func() (T, error)) func() (T, error) {
	return func() (result T, err error) {
		defer func() {
			if v := recover(); v != nil {
				r.dispatch(context.Background(), name, panicTraceback(v))
				panic(v)
			}
		}()
		result, err = fn()
		if r.match(err) {
			r.dispatch(context.Background(), name, errorTraceback(err))
		}
		return result, err
	}
}

// WrapCallContext is WrapCall for context-aware functions.
func WrapCallContext[T any](r *Reporter, name string, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (result T, err error) {
		defer func() {
			if v := recover(); v != nil {
				r.dispatch(ctx, name, panicTraceback(v))
				panic(v)
			}
		}()
		result, err = fn(ctx)
		if r.match(err) {
			r.dispatch(ctx, name, errorTraceback(err))
		}
		return result, err
	}
}

// dispatch builds the report and delivers it. A delivery failure is logged
// and dropped: the reporting side-channel never changes the calling code's
// control flow.
func (r *Reporter) dispatch(ctx context.Context, funcName, traceback string) {
	rep := BuildReport(ReportOptions{
		Header:       r.header,
		ServiceName:  r.serviceName,
		HostName:     r.hostName,
		AsAttachment: r.asAttachment,
		TimeLayout:   r.timeLayout,
	}, funcName, traceback)

	d := Delivery{
		DisableNotification:   r.disableNotification,
		DisableWebPagePreview: r.disableWebPagePreview,
	}
	if rep.HasAttachment() {
		d.Filename = r.filename
		if d.Filename == "" {
			d.Filename = defaultFilename(r.filenameLayout)
		}
	}

	if err := r.notifier.Notify(ctx, rep, d); err != nil {
		r.log.Error().Err(err).Str("report_id", rep.ID).Str("function", funcName).
			Msg("crash report delivery failed")
	}
}

// defaultFilename generates "<timestamp>.txt" for report attachments.
func defaultFilename(layout string) string {
	if layout == "" {
		layout = DefaultFilenameTimeLayout
	}
	return timeNow().Format(layout) + ".txt"
}

// matchTargets builds an errors.Is filter over a target list.
func matchTargets(targets []error) func(error) bool {
	return func(err error) bool {
		if err == nil {
			return false
		}
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

func errorTraceback(err error) string {
	return fmt.Sprintf("error: %v\n\n%s", err, debug.Stack())
}

func panicTraceback(v any) string {
	return fmt.Sprintf("panic: %v\n\n%s", v, debug.Stack())
}
