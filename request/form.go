package request

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Form builds a multipart/form-data request body from scalar fields and
// file parts. Parts are emitted in insertion order, delimited by a random
// 128-bit boundary token, and the encoded output always terminates with a
// closing boundary marker.
type Form struct {
	boundary string
	fields   []formField
	files    []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	data     []byte
}

// NewForm creates an empty form with a fresh boundary.
func NewForm() *Form {
	u := uuid.New()
	return &Form{boundary: hex.EncodeToString(u[:])}
}

// Boundary returns the boundary token delimiting the parts.
func (f *Form) Boundary() string {
	return f.boundary
}

// ContentType returns the Content-Type header value for the encoded body.
func (f *Form) ContentType() string {
	return "multipart/form-data; boundary=" + f.boundary
}

// AddField appends a scalar field part.
func (f *Form) AddField(name, value string) {
	if name == "" {
		return
	}
	f.fields = append(f.fields, formField{name: name, value: value})
}

// AddFile appends a file part. Parts with an empty field name are skipped.
func (f *Form) AddFile(field, filename string, data []byte) {
	if field == "" {
		return
	}
	f.files = append(f.files, formFile{field: field, filename: filename, data: data})
}

// Encode serializes the form. Every field and file produces exactly one
// delimited part; the final line is the closing boundary marker.
func (f *Form) Encode() []byte {
	var b bytes.Buffer
	for _, fld := range f.fields {
		b.WriteString("--" + f.boundary + "\r\n")
		b.WriteString(`Content-Disposition: form-data; name="` + escapeQuotes(fld.name) + `"` + "\r\n")
		b.WriteString("\r\n")
		b.WriteString(fld.value)
		b.WriteString("\r\n")
	}
	for _, fp := range f.files {
		b.WriteString("--" + f.boundary + "\r\n")
		b.WriteString(`Content-Disposition: form-data; name="` + escapeQuotes(fp.field) +
			`"; filename="` + escapeQuotes(fp.filename) + `"` + "\r\n")
		b.WriteString("Content-Type: application/octet-stream\r\n")
		b.WriteString("\r\n")
		b.Write(fp.data)
		b.WriteString("\r\n")
	}
	b.WriteString("--" + f.boundary + "--\r\n")
	return b.Bytes()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
