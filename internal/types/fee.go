package types

import (
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/samber/lo"
)

// FeeType identifies a fee line on an invoice. Each cascadable base fee has
// two derived forms: the `unpaid_*` form re-issued on the next invoice, and
// the `*_fee_move_to` form posted with negative total on the invoice the fee
// was moved away from.
type FeeType string

const (
	FeeTypeReminder                     FeeType = "reminder"
	FeeTypeCollectionNotice             FeeType = "collection_notice"
	FeeTypeEvictionNotice               FeeType = "eviction_notice"
	FeeTypeAdministrationEvictionNotice FeeType = "administration_eviction_notice"

	FeeTypeUnpaidReminder                     FeeType = "unpaid_reminder"
	FeeTypeUnpaidCollectionNotice             FeeType = "unpaid_collection_notice"
	FeeTypeUnpaidEvictionNotice               FeeType = "unpaid_eviction_notice"
	FeeTypeUnpaidAdministrationEvictionNotice FeeType = "unpaid_administration_eviction_notice"

	FeeTypeReminderMoveTo                     FeeType = "reminder_fee_move_to"
	FeeTypeCollectionNoticeMoveTo             FeeType = "collection_notice_fee_move_to"
	FeeTypeEvictionNoticeMoveTo               FeeType = "eviction_notice_fee_move_to"
	FeeTypeAdministrationEvictionNoticeMoveTo FeeType = "administration_eviction_notice_fee_move_to"
)

func (t FeeType) String() string {
	return string(t)
}

func (t FeeType) Validate() error {
	allowed := []FeeType{
		FeeTypeReminder,
		FeeTypeCollectionNotice,
		FeeTypeEvictionNotice,
		FeeTypeAdministrationEvictionNotice,
		FeeTypeUnpaidReminder,
		FeeTypeUnpaidCollectionNotice,
		FeeTypeUnpaidEvictionNotice,
		FeeTypeUnpaidAdministrationEvictionNotice,
		FeeTypeReminderMoveTo,
		FeeTypeCollectionNoticeMoveTo,
		FeeTypeEvictionNoticeMoveTo,
		FeeTypeAdministrationEvictionNoticeMoveTo,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid fee type").
			WithHint("Please provide a valid fee type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// cascadeForms maps every cascadable fee type (base or already re-issued
// unpaid form) to the pair of types used when carrying it forward once more.
var cascadeForms = map[FeeType]struct {
	unpaid FeeType
	moveTo FeeType
}{
	FeeTypeReminder:                           {FeeTypeUnpaidReminder, FeeTypeReminderMoveTo},
	FeeTypeUnpaidReminder:                     {FeeTypeUnpaidReminder, FeeTypeReminderMoveTo},
	FeeTypeCollectionNotice:                   {FeeTypeUnpaidCollectionNotice, FeeTypeCollectionNoticeMoveTo},
	FeeTypeUnpaidCollectionNotice:             {FeeTypeUnpaidCollectionNotice, FeeTypeCollectionNoticeMoveTo},
	FeeTypeEvictionNotice:                     {FeeTypeUnpaidEvictionNotice, FeeTypeEvictionNoticeMoveTo},
	FeeTypeUnpaidEvictionNotice:               {FeeTypeUnpaidEvictionNotice, FeeTypeEvictionNoticeMoveTo},
	FeeTypeAdministrationEvictionNotice:       {FeeTypeUnpaidAdministrationEvictionNotice, FeeTypeAdministrationEvictionNoticeMoveTo},
	FeeTypeUnpaidAdministrationEvictionNotice: {FeeTypeUnpaidAdministrationEvictionNotice, FeeTypeAdministrationEvictionNoticeMoveTo},
}

// IsCascadable reports whether an unpaid fee of this type is carried forward
// to the next invoice of the contract.
func (t FeeType) IsCascadable() bool {
	_, ok := cascadeForms[t]
	return ok
}

// IsMoveTo reports whether this is a negative bookkeeping entry left behind
// on the invoice the fee was moved away from.
func (t FeeType) IsMoveTo() bool {
	switch t {
	case FeeTypeReminderMoveTo, FeeTypeCollectionNoticeMoveTo,
		FeeTypeEvictionNoticeMoveTo, FeeTypeAdministrationEvictionNoticeMoveTo:
		return true
	}
	return false
}

// UnpaidForm returns the fee type re-issued on the new invoice when a fee of
// this type is carried forward.
func (t FeeType) UnpaidForm() (FeeType, error) {
	forms, ok := cascadeForms[t]
	if !ok {
		return "", ierr.NewError("fee type cannot be carried forward").
			WithHintf("fee type %s has no unpaid form", t).
			Mark(ierr.ErrInvalidOperation)
	}
	return forms.unpaid, nil
}

// MoveToForm returns the negative bookkeeping fee type posted on the old
// invoice when a fee of this type is carried forward.
func (t FeeType) MoveToForm() (FeeType, error) {
	forms, ok := cascadeForms[t]
	if !ok {
		return "", ierr.NewError("fee type cannot be carried forward").
			WithHintf("fee type %s has no move-to form", t).
			Mark(ierr.ErrInvalidOperation)
	}
	return forms.moveTo, nil
}
