package canary

import (
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Formatting defaults.
const (
	// DefaultHeader is the first line of a report when no custom header is
	// configured.
	DefaultHeader = "Your program has crashed ☠️"

	// DefaultTimeLayout formats the crash timestamp (seconds precision).
	DefaultTimeLayout = "2006-01-02 15:04:05"

	// DefaultFilenameTimeLayout formats the timestamp used in generated
	// report filenames.
	DefaultFilenameTimeLayout = "2006-01-02 15_04_05"
)

// timeNow is swapped in tests.
var timeNow = time.Now

// Report is a formatted crash summary. It is built once per caught
// failure, consumed by exactly one delivery, and then discarded.
type Report struct {
	// ID uniquely identifies this report.
	ID string

	// Text is the formatted message body.
	Text string

	// Attachment carries the full traceback when as-attached mode is
	// selected; otherwise the traceback is inline in Text and Attachment
	// is empty.
	Attachment string
}

// HasAttachment reports whether the traceback was split out as a file
// payload.
func (r *Report) HasAttachment() bool {
	return r.Attachment != ""
}

// ReportOptions control report formatting. The zero value produces the
// default banner, the local host name, and the default time layout.
type ReportOptions struct {
	// Header replaces the default first line.
	Header string

	// ServiceName adds a "Service:" line directly after the header.
	ServiceName string

	// HostName overrides the local machine name.
	HostName string

	// AsAttachment moves the traceback out of the text body into the
	// report's attachment payload.
	AsAttachment bool

	// TimeLayout is the Go layout for the crash timestamp.
	TimeLayout string
}

// BuildReport formats a crash report from a traceback and the name of the
// function it originated in. It performs no I/O beyond resolving the local
// host name.
func BuildReport(opts ReportOptions, funcName, traceback string) *Report {
	header := opts.Header
	if header == "" {
		header = DefaultHeader
	}
	host := opts.HostName
	if host == "" {
		host = localHostName()
	}
	layout := opts.TimeLayout
	if layout == "" {
		layout = DefaultTimeLayout
	}

	lines := []string{header}
	if opts.ServiceName != "" {
		lines = append(lines, "Service: "+opts.ServiceName)
	}
	lines = append(lines, "Machine name: "+host)
	lines = append(lines, "Crash date: "+timeNow().Format(layout))
	if funcName != "" {
		lines = append(lines, "Main call: "+funcName)
	}

	rep := &Report{ID: ulid.Make().String()}
	if opts.AsAttachment {
		rep.Text = strings.Join(lines, "\n")
		rep.Attachment = traceback
	} else {
		lines = append(lines, "Traceback:", traceback)
		rep.Text = strings.Join(lines, "\n")
	}
	return rep
}

func localHostName() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}
