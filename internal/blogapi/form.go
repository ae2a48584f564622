package blogapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/mmcdole/quill/internal/domain"
)

// Form accumulates multipart/form-data fields in insertion order
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	name   string
	upload *domain.Upload
}

// NewForm creates an empty form
func NewForm() *Form {
	return &Form{}
}

// Add appends a field; repeated names produce repeated parts
func (f *Form) Add(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// File attaches an upload; a nil upload is skipped
func (f *Form) File(name string, u *domain.Upload) *Form {
	if u != nil {
		f.files = append(f.files, formFile{name: name, upload: u})
	}
	return f
}

// Encode renders the body and its Content-Type header value
func (f *Form) Encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}

	for _, file := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(file.name), escapeQuotes(file.upload.FileName)))
		ct := file.upload.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.upload.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
