package webhook

import (
	"errors"

	"github.com/autopay/backend/internal/api/validate"
)

var (
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrInvalidTimestamp   = errors.New("invalid webhook timestamp")
	ErrTimestampExpired   = errors.New("webhook timestamp too old")
	ErrTimestampFuture    = errors.New("webhook timestamp in the future")
	ErrMalformedPayload   = errors.New("malformed webhook payload")
	ErrStorageUnavailable = errors.New("transaction store unavailable")
)

// PayloadError carries per-field validation failures; it unwraps to
// ErrMalformedPayload so callers can match the category.
type PayloadError struct {
	Fields validate.Errs
}

func (e *PayloadError) Error() string {
	return "invalid webhook payload: " + e.Fields.Error()
}

func (e *PayloadError) Unwrap() error { return ErrMalformedPayload }
