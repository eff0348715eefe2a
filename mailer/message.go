package mailer

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/synqronlabs/canary/attach"
)

// Message describes one outgoing email.
type Message struct {
	// From is the sender address.
	From string

	// To is a comma-separated recipient list. Segments are trimmed and
	// empty segments ignored.
	To string

	// Subject is the mail subject. Non-ASCII subjects are RFC 2047
	// word-encoded.
	Subject string

	// Body is the plain-text message body.
	Body string

	// Attachment is an optional file payload, added as a named
	// base64-encoded part.
	Attachment attach.Attachment

	// Filename names the attachment part; empty means a generated token.
	Filename string
}

// Recipients parses the To field into individual addresses.
func (m *Message) Recipients() []string {
	var addrs []string
	for _, seg := range strings.Split(m.To, ",") {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			addrs = append(addrs, seg)
		}
	}
	return addrs
}

// Encode serializes the message as a MIME multipart document with a text
// part and, when an attachment is present, an application part.
func (m *Message) Encode(recipients []string) ([]byte, error) {
	u := uuid.New()
	boundary := hex.EncodeToString(u[:])

	var b bytes.Buffer
	writeHeader(&b, "From", m.From)
	writeHeader(&b, "To", strings.Join(recipients, ", "))
	if m.Subject != "" {
		writeHeader(&b, "Subject", encodeHeaderWord(m.Subject))
	}
	writeHeader(&b, "Date", time.Now().Format(time.RFC1123Z))
	writeHeader(&b, "Message-ID", messageID(m.From))
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", `multipart/mixed; boundary="`+boundary+`"`)
	b.WriteString("\r\n")

	// Text part.
	body := normalizeLineEndings(m.Body)
	encoding := "7bit"
	if containsNonASCII(body) {
		encoding = "8bit"
	}
	b.WriteString("--" + boundary + "\r\n")
	writeHeader(&b, "Content-Type", "text/plain; charset=utf-8")
	writeHeader(&b, "Content-Transfer-Encoding", encoding)
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	if !m.Attachment.IsZero() {
		name, data, err := m.Attachment.Resolve(m.Filename)
		if err != nil {
			return nil, fmt.Errorf("mailer: prepare attachment: %w", err)
		}
		b.WriteString("--" + boundary + "\r\n")
		writeHeader(&b, "Content-Type", `application/octet-stream; name="`+name+`"`)
		writeHeader(&b, "Content-Disposition", `attachment; filename="`+name+`"`)
		writeHeader(&b, "Content-Transfer-Encoding", "base64")
		b.WriteString("\r\n")
		b.WriteString(wrapBase64(data))
	}

	b.WriteString("--" + boundary + "--\r\n")
	return b.Bytes(), nil
}

func writeHeader(b *bytes.Buffer, name, value string) {
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

// messageID builds a unique Message-ID using the sender's domain.
func messageID(from string) string {
	domain := "localhost"
	if i := strings.LastIndexByte(from, '@'); i >= 0 && i+1 < len(from) {
		domain = from[i+1:]
	}
	return "<" + strings.ToLower(ulid.Make().String()) + "@" + domain + ">"
}

// encodeHeaderWord applies RFC 2047 Base64 word encoding when the value
// contains non-ASCII characters.
func encodeHeaderWord(s string) string {
	if !containsNonASCII(s) {
		return s
	}
	return "=?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(s)) + "?="
}

func containsNonASCII(s string) bool {
	for _, v := range s {
		if v >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// normalizeLineEndings converts all line endings to CRLF.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// wrapBase64 encodes data and folds it at 76 columns per RFC 2045.
func wrapBase64(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")
	return b.String()
}
