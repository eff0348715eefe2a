package canary

import (
	"strings"
	"testing"
	"time"
)

func fixedTime(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2026, 8, 30, 12, 4, 5, 999_000_000, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
	return at
}

func TestBuildReport_InlineTraceback(t *testing.T) {
	fixedTime(t)
	rep := BuildReport(ReportOptions{HostName: "worker-1"}, "", "boom stack")

	if rep.Attachment != "" {
		t.Errorf("Expected no attachment, got %q", rep.Attachment)
	}
	if !strings.Contains(rep.Text, "Traceback:\nboom stack") {
		t.Errorf("Expected Traceback label followed by the exact traceback, got:\n%s", rep.Text)
	}
	lines := strings.Split(rep.Text, "\n")
	want := []string{
		DefaultHeader,
		"Machine name: worker-1",
		"Crash date: 2026-08-30 12:04:05",
		"Traceback:",
		"boom stack",
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("Line %d: expected %q, got %q", i, w, lines[i])
		}
	}
}

func TestBuildReport_AsAttachment(t *testing.T) {
	fixedTime(t)
	rep := BuildReport(ReportOptions{HostName: "h", AsAttachment: true}, "", "full traceback")

	if rep.Attachment != "full traceback" {
		t.Errorf("Expected attachment to equal the traceback, got %q", rep.Attachment)
	}
	if strings.Contains(rep.Text, "traceback") || strings.Contains(rep.Text, "Traceback") {
		t.Errorf("Expected no traceback content in text, got:\n%s", rep.Text)
	}
	if !rep.HasAttachment() {
		t.Error("Expected HasAttachment to be true")
	}
}

func TestBuildReport_OptionalLines(t *testing.T) {
	fixedTime(t)
	rep := BuildReport(ReportOptions{
		Header:      "It broke",
		ServiceName: "billing",
		HostName:    "h",
	}, "ProcessInvoice", "tb")

	lines := strings.Split(rep.Text, "\n")
	want := []string{
		"It broke",
		"Service: billing",
		"Machine name: h",
		"Crash date: 2026-08-30 12:04:05",
		"Main call: ProcessInvoice",
		"Traceback:",
		"tb",
	}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d:\n%s", len(want), len(lines), rep.Text)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("Line %d: expected %q, got %q", i, w, lines[i])
		}
	}
}

func TestBuildReport_ResolvesLocalHost(t *testing.T) {
	rep := BuildReport(ReportOptions{}, "", "tb")
	if !strings.Contains(rep.Text, "Machine name: ") {
		t.Errorf("Expected a machine name line, got:\n%s", rep.Text)
	}
}

func TestBuildReport_UniqueIDs(t *testing.T) {
	a := BuildReport(ReportOptions{HostName: "h"}, "", "tb")
	b := BuildReport(ReportOptions{HostName: "h"}, "", "tb")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Expected distinct non-empty report ids, got %q and %q", a.ID, b.ID)
	}
}

func TestDefaultFilename(t *testing.T) {
	fixedTime(t)
	if got := defaultFilename(""); got != "2026-08-30 12_04_05.txt" {
		t.Errorf("Expected generated filename with underscores, got %q", got)
	}
	if got := defaultFilename("20060102"); got != "20260830.txt" {
		t.Errorf("Expected custom layout filename, got %q", got)
	}
}
