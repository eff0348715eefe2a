package canary

import "github.com/rs/zerolog"

// Option configures a Reporter.
type Option func(*Reporter)

// WithHeader replaces the default crash banner.
func WithHeader(header string) Option {
	return func(r *Reporter) { r.header = header }
}

// WithServiceName adds a service line to reports.
func WithServiceName(name string) Option {
	return func(r *Reporter) { r.serviceName = name }
}

// WithHostName overrides the resolved machine name.
func WithHostName(host string) Option {
	return func(r *Reporter) { r.hostName = host }
}

// WithTimeLayout sets the Go layout for the crash timestamp.
func WithTimeLayout(layout string) Option {
	return func(r *Reporter) { r.timeLayout = layout }
}

// WithAsAttachment delivers the traceback as a file instead of inline
// text.
func WithAsAttachment() Option {
	return func(r *Reporter) { r.asAttachment = true }
}

// WithFilename names the report attachment explicitly. Without it the
// filename is "<timestamp>.txt".
func WithFilename(name string) Option {
	return func(r *Reporter) { r.filename = name }
}

// WithFilenameTimeLayout sets the timestamp layout used for generated
// attachment filenames.
func WithFilenameTimeLayout(layout string) Option {
	return func(r *Reporter) { r.filenameLayout = layout }
}

// WithMatch reports only errors matching one of targets (via errors.Is).
func WithMatch(targets ...error) Option {
	return func(r *Reporter) { r.match = matchTargets(targets) }
}

// WithMatchFunc installs a custom error filter. Panics are always
// reported regardless of the filter.
func WithMatchFunc(match func(error) bool) Option {
	return func(r *Reporter) {
		if match != nil {
			r.match = match
		}
	}
}

// WithDisableNotification suppresses recipient-side notifications for
// chat-bot deliveries.
func WithDisableNotification() Option {
	return func(r *Reporter) { r.disableNotification = true }
}

// WithDisableWebPagePreview suppresses link previews for chat-bot text
// deliveries. Ignored, with a warning, when combined with
// WithAsAttachment.
func WithDisableWebPagePreview() Option {
	return func(r *Reporter) { r.disableWebPagePreview = true }
}

// WithLogger sets the logger used for delivery failures and warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Reporter) { r.log = log }
}
