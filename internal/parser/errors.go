package parser

import (
	"context"
	"errors"
	"os"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrExtraction        = errors.New("text extraction failed") // Wraps the underlying decoder error or panic
	ErrRead              = errors.New("failed to read source")
)

// Categorize maps an error to a short category for logs and job status.
func Categorize(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, os.ErrNotExist):
		return "not_found"
	case errors.Is(err, os.ErrPermission):
		return "permission"
	case errors.Is(err, ErrRead):
		return "read"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "unknown"
}
