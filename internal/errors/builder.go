package errors

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
)

// SafeDetailsPrefix tags the JSON payload carried in an error's safe details
// so the HTTP error handler can recover the structured fields.
const SafeDetailsPrefix = "__json__:"

// ErrorBuilder accumulates hints, reportable details and finally a sentinel
// mark before assembling the error. It is not itself an error; Mark finishes
// the chain and must be the last call.
type ErrorBuilder struct {
	base    error
	hints   []string
	details map[string]any
}

// NewError starts a chain from a fresh message.
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{base: errors.New(msg)}
}

// WithError starts a chain that wraps an existing error.
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{base: err}
}

// WithHint attaches a user-facing message. Hints surface in API responses;
// the underlying error text stays internal.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hints = append(b.hints, hint)
	return b
}

// WithHintf formats a user-facing message.
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	return b.WithHint(fmt.Sprintf(format, args...))
}

// WithReportableDetails merges structured fields that are safe to return to
// the caller alongside the hint.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	if b.details == nil {
		b.details = make(map[string]any, len(details))
	}
	for k, v := range details {
		b.details[k] = v
	}
	return b
}

// Mark assembles the accumulated hints and details onto the base error and
// ties the result to a sentinel, so errors.Is checks against the taxonomy in
// errors.go keep working on the returned error.
func (b *ErrorBuilder) Mark(reference error) error {
	err := b.base
	for _, hint := range b.hints {
		err = errors.WithHint(err, hint)
	}
	if len(b.details) > 0 {
		if payload, jsonErr := json.Marshal(b.details); jsonErr == nil {
			err = errors.WithSafeDetails(err, SafeDetailsPrefix+"%s", errors.Safe(string(payload)))
		}
	}
	return errors.Mark(err, reference)
}
