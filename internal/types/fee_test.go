package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeType_CascadeForms(t *testing.T) {
	unpaid, err := FeeTypeReminder.UnpaidForm()
	require.NoError(t, err)
	assert.Equal(t, FeeTypeUnpaidReminder, unpaid)

	// An already re-issued fee keeps cascading under the same unpaid form.
	unpaid, err = FeeTypeUnpaidReminder.UnpaidForm()
	require.NoError(t, err)
	assert.Equal(t, FeeTypeUnpaidReminder, unpaid)

	moveTo, err := FeeTypeUnpaidCollectionNotice.MoveToForm()
	require.NoError(t, err)
	assert.Equal(t, FeeTypeCollectionNoticeMoveTo, moveTo)

	// Move-to entries are terminal bookkeeping, never carried again.
	assert.False(t, FeeTypeReminderMoveTo.IsCascadable())
	assert.True(t, FeeTypeReminderMoveTo.IsMoveTo())
	_, err = FeeTypeReminderMoveTo.UnpaidForm()
	assert.Error(t, err)
}

func TestFeeType_Validate(t *testing.T) {
	assert.NoError(t, FeeTypeEvictionNotice.Validate())
	assert.NoError(t, FeeTypeUnpaidAdministrationEvictionNotice.Validate())
	assert.Error(t, FeeType("late_fee").Validate())
}
