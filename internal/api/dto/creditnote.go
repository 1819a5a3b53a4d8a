package dto

import (
	"github.com/hjemly/hjemly/internal/service"
	"github.com/hjemly/hjemly/internal/validator"
)

type CreateCreditNoteRequest struct {
	InvoiceID string `json:"invoice_id" validate:"required"`
	// TerminationDate limits a partial credit, YYYY-MM-DD.
	TerminationDate string `json:"termination_date,omitempty"`
	FullCredit      bool   `json:"full_credit,omitempty"`
}

func (r *CreateCreditNoteRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateCreditNoteRequest) ToServiceRequest() (service.CreateCreditNoteRequest, error) {
	req := service.CreateCreditNoteRequest{
		InvoiceID:  r.InvoiceID,
		FullCredit: r.FullCredit,
	}
	if r.TerminationDate != "" {
		d, err := parseDate(r.TerminationDate)
		if err != nil {
			return service.CreateCreditNoteRequest{}, err
		}
		t := d.UTCDay()
		req.TerminationDate = &t
	}
	return req, nil
}
