package errors

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_MarkTiesSentinel(t *testing.T) {
	err := NewError("contract has no rental meta").
		WithHint("contract is not billable").
		Mark(ErrValidation)

	assert.True(t, IsValidation(err))
	assert.Contains(t, errors.GetAllHints(err), "contract is not billable")
}

func TestBuilder_HintfAndDetails(t *testing.T) {
	err := NewError("invoice period is financially closed").
		WithHintf("the %d annual statement is finalized", 2025).
		WithReportableDetails(map[string]any{"closed_year": 2025}).
		WithReportableDetails(map[string]any{"invoice_id": "inv_1"}).
		Mark(ErrPeriodClosed)

	require.True(t, IsPeriodClosed(err))
	assert.Contains(t, errors.GetAllHints(err), "the 2025 annual statement is finalized")

	// Reportable details travel as a single prefixed JSON payload in the
	// safe details, merged across calls.
	var payload string
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, d := range sdp.SafeDetails {
			if strings.HasPrefix(d, SafeDetailsPrefix) {
				payload = d
			}
		}
	}
	require.NotEmpty(t, payload)
	assert.Contains(t, payload, `"closed_year":2025`)
	assert.Contains(t, payload, `"invoice_id":"inv_1"`)
}

func TestBuilder_WithErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WithError(cause).
		WithHint("failed to load invoices").
		Mark(ErrDatabase)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrDatabase))
}
