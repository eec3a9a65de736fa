package intake

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Rejection codes, one per acceptance rule.
const (
	CodeInvalidType = "file-invalid-type"
	CodeTooLarge    = "file-too-large"
	CodeTooMany     = "too-many-files"
)

// FallbackHint is shown for a rejection that carries no reason.
const FallbackHint = "Tente um .jpg, .png ou .webp"

// RejectionError is one rule a file failed.
type RejectionError struct {
	Code    string
	Message string
}

// Rejection is a file the policy refused, with every rule it failed in order.
type Rejection struct {
	File   *RawFile
	Errors []RejectionError
}

// Reason returns the first error message, or "" when there is none.
func (r Rejection) Reason() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Code returns the first error code, or "" when there is none.
func (r Rejection) Code() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Code
}

// Policy decides which dropped files are accepted.
type Policy struct {
	// Accept maps a MIME type to the extensions allowed for it.
	Accept map[string][]string

	// MaxFiles is the number of files one drop may carry (0 means 1).
	MaxFiles int

	// MaxSize is the per-file size limit in bytes (0 disables the check).
	MaxSize int64
}

// ImagePolicy accepts a single JPEG, PNG or WebP image up to maxSize bytes.
func ImagePolicy(maxSize int64) Policy {
	return Policy{
		Accept: map[string][]string{
			"image/jpeg": {".jpeg", ".jpg"},
			"image/png":  {".png"},
			"image/webp": {".webp"},
		},
		MaxFiles: 1,
		MaxSize:  maxSize,
	}
}

// Classify splits files into accepted and rejected. When a drop carries more
// files than MaxFiles every file is rejected, so the caller never sees a
// partial selection.
func (p Policy) Classify(files []*RawFile) (accepted []*RawFile, rejected []Rejection) {
	maxFiles := p.MaxFiles
	if maxFiles <= 0 {
		maxFiles = 1
	}
	tooMany := len(files) > maxFiles

	for _, f := range files {
		var errs []RejectionError

		if typ, ok := p.accepts(f); !ok {
			errs = append(errs, RejectionError{
				Code:    CodeInvalidType,
				Message: fmt.Sprintf("Tipo de arquivo não suportado (%s). %s", typ, FallbackHint),
			})
		}
		if p.MaxSize > 0 && f.Size > p.MaxSize {
			errs = append(errs, RejectionError{
				Code:    CodeTooLarge,
				Message: fmt.Sprintf("Arquivo maior que o limite de %s", formatBytes(p.MaxSize)),
			})
		}
		if tooMany {
			errs = append(errs, RejectionError{
				Code:    CodeTooMany,
				Message: fmt.Sprintf("Apenas %d imagem por vez", maxFiles),
			})
		}

		if len(errs) > 0 {
			rejected = append(rejected, Rejection{File: f, Errors: errs})
			continue
		}
		accepted = append(accepted, f)
	}

	return accepted, rejected
}

// accepts reports whether f's type and extension match one accepted entry.
// It returns the resolved type for messages.
func (p Policy) accepts(f *RawFile) (string, bool) {
	typ := resolveType(f)
	exts, ok := p.Accept[typ]
	if !ok {
		return typ, false
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	for _, e := range exts {
		if e == ext {
			return typ, true
		}
	}
	return typ, false
}

// resolveType prefers the declared content type and sniffs the bytes when the
// declaration is missing or generic.
func resolveType(f *RawFile) string {
	declared := ""
	if f.ContentType != "" {
		if mt, _, err := mime.ParseMediaType(f.ContentType); err == nil {
			declared = strings.ToLower(mt)
		}
	}

	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if len(f.Data) == 0 {
		if declared == "" {
			return "application/octet-stream"
		}
		return declared
	}

	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(f.Data))
	return sniffed
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.0f %cB", float64(n)/float64(div), "KMGT"[exp])
}
