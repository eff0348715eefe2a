// Package attach normalizes attachment payloads into a (filename, bytes)
// pair. Sources are tagged at construction (Bytes, Text, Reader, Named)
// rather than probed at send time, so each delivery client resolves the
// payload exactly once at its boundary.
package attach

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
)

type kind int

const (
	kindNone kind = iota
	kindBytes
	kindText
	kindReader
)

// Attachment is a tagged attachment source. The zero value means "no
// attachment" and resolves to an error; use one of the constructors.
type Attachment struct {
	kind kind
	name string
	data []byte
	text string
	r    io.Reader
}

// Bytes wraps raw bytes. The content is used as-is.
func Bytes(data []byte) Attachment {
	return Attachment{kind: kindBytes, data: data}
}

// Text wraps a string. The content is UTF-8 encoded on resolution.
func Text(s string) Attachment {
	return Attachment{kind: kindText, text: s}
}

// Reader wraps a stream. If the reader also implements io.Seeker, its
// cursor is rewound to the start before reading.
func Reader(r io.Reader) Attachment {
	return Attachment{kind: kindReader, r: r}
}

// Named attaches an explicit filename to any source. The name takes
// precedence over both the resolver fallback and the generated default.
func Named(name string, a Attachment) Attachment {
	a.name = name
	return a
}

// IsZero reports whether the attachment carries no source.
func (a Attachment) IsZero() bool {
	return a.kind == kindNone
}

// Resolve produces the canonical (filename, bytes) pair. Filename
// precedence: the Named name, then fallback, then a random token. A zero
// attachment or a failed stream read returns an error.
func (a Attachment) Resolve(fallback string) (string, []byte, error) {
	name := a.name
	if name == "" {
		name = fallback
	}
	if name == "" {
		name = randomName()
	}

	switch a.kind {
	case kindBytes:
		return name, a.data, nil
	case kindText:
		return name, []byte(a.text), nil
	case kindReader:
		if s, ok := a.r.(io.Seeker); ok {
			if _, err := s.Seek(0, io.SeekStart); err != nil {
				return "", nil, fmt.Errorf("attach: rewind stream: %w", err)
			}
		}
		data, err := io.ReadAll(a.r)
		if err != nil {
			return "", nil, fmt.Errorf("attach: read stream: %w", err)
		}
		return name, data, nil
	default:
		return "", nil, fmt.Errorf("attach: empty attachment")
	}
}

// randomName returns a 128-bit random hex token, used when no filename was
// supplied anywhere.
func randomName() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
