package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds forming the fixed failure taxonomy. Every terminal
// outcome surfaced to callers wraps exactly one of these.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrNoCandidates      = errors.New("no candidates")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrQualityTooLow     = errors.New("quality too low")
	ErrAddFailed         = errors.New("add failed")
	ErrMissingIdentifier = errors.New("missing identifier")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided taxonomy marker. The marker should be one of the
// exported sentinel errors above; nil defaults to ErrAddFailed.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrAddFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorCode maps an error to its machine-readable code for the caller-facing
// result contract. Unclassified errors report as add_failed so front-ends
// always receive a code from the fixed set.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, ErrNoCandidates):
		return "no_candidates"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrQualityTooLow):
		return "quality_too_low"
	case errors.Is(err, ErrMissingIdentifier):
		return "missing_identifier"
	default:
		return "add_failed"
	}
}

// Recoverable reports whether an error should trigger fallback handling
// (another source, another agent) rather than terminating the batch.
func Recoverable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrNoCandidates)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
