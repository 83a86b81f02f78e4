package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"comicvault/internal/microservices/http-api/models"
	"comicvault/internal/microservices/http-api/repository"
)

// Error kinds surfaced to callers. Handlers map them to HTTP statuses;
// anything else is a store error.
var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrDuplicateIssue = errors.New("issue already exists")
	ErrCrawlFailed    = errors.New("crawl failed")
)

// ValidationError describes bad input. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// DuplicateIssueError names the issue identity that already exists in the
// target kind. It matches ErrDuplicateIssue.
type DuplicateIssueError struct {
	Kind       models.Kind
	SeriesName string
	IssueNo    float64
	Variant    string
}

func (e *DuplicateIssueError) Error() string {
	label := fmt.Sprintf("%s #%s", e.SeriesName, FormatIssueNo(e.IssueNo))
	if e.Variant != "" {
		label += fmt.Sprintf(" (%s)", e.Variant)
	}
	if e.Kind == "" {
		return label + " already exists"
	}
	return fmt.Sprintf("%s already exists in the %s", label, e.Kind)
}

func (e *DuplicateIssueError) Is(target error) bool {
	return target == ErrDuplicateIssue
}

// FormatIssueNo renders 1 as "1" and 2.5 as "2.5".
func FormatIssueNo(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ParseIssueNo accepts decimal issue numbers such as "12" or "0.5".
func ParseIssueNo(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "#"))
	if raw == "" {
		return 0, invalid("issueNo", "issue number is required")
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, invalid("issueNo", "invalid issue number %q", raw)
	}
	return n, nil
}

// mapStoreError converts repository sentinels to service error kinds.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrEmptyName):
		return &ValidationError{Message: err.Error()}
	default:
		return err
	}
}

func strPtr(s string) *string {
	return &s
}

// optional returns nil for a blank string.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
