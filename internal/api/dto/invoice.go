package dto

import (
	"time"

	"github.com/hjemly/hjemly/internal/domain/invoice"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/service"
	"github.com/hjemly/hjemly/internal/types"
	"github.com/hjemly/hjemly/internal/validator"
)

// DateRange is an inclusive calendar-date window, YYYY-MM-DD.
type DateRange struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type GenerateInvoicesRequest struct {
	ContractID      string      `json:"contract_id" validate:"required"`
	PreferredRanges []DateRange `json:"preferred_ranges,omitempty"`
}

func (r *GenerateInvoicesRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *GenerateInvoicesRequest) ToServiceRequest() (service.GenerateRequest, error) {
	ranges, err := parseRanges(r.PreferredRanges)
	if err != nil {
		return service.GenerateRequest{}, err
	}
	return service.GenerateRequest{
		ContractID:      r.ContractID,
		PreferredRanges: ranges,
	}, nil
}

type PreviewInvoicesRequest struct {
	ContractID      string      `json:"contract_id" validate:"required"`
	PreferredRanges []DateRange `json:"preferred_ranges,omitempty"`
	Estimation      bool        `json:"estimation,omitempty"`
}

func (r *PreviewInvoicesRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *PreviewInvoicesRequest) ToServiceRequest() (service.PreviewRequest, error) {
	ranges, err := parseRanges(r.PreferredRanges)
	if err != nil {
		return service.PreviewRequest{}, err
	}
	return service.PreviewRequest{
		ContractID:      r.ContractID,
		PreferredRanges: ranges,
		Estimation:      r.Estimation,
	}, nil
}

type ListInvoicesResponse struct {
	Items []*invoice.Invoice `json:"items"`
	Total int                `json:"total"`
}

func parseRanges(ranges []DateRange) ([]service.DateRange, error) {
	out := make([]service.DateRange, 0, len(ranges))
	for _, r := range ranges {
		start, err := parseDate(r.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(r.End)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, ierr.NewError("invalid date range").
				WithHintf("range end %s precedes start %s", r.End, r.Start).
				Mark(ierr.ErrValidation)
		}
		out = append(out, service.DateRange{Start: start, End: end})
	}
	return out, nil
}

func parseDate(s string) (types.PartnerLocalDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return types.PartnerLocalDate{}, ierr.WithError(err).
			WithHintf("invalid date %q, expected YYYY-MM-DD", s).
			Mark(ierr.ErrValidation)
	}
	return types.NewPartnerLocalDate(t, time.UTC), nil
}
