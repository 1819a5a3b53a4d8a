package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hjemly/hjemly/internal/api/dto"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/service"
)

type CreditNoteHandler struct {
	creditNoteService service.CreditNoteService
	logger            *logger.Logger
}

func NewCreditNoteHandler(creditNoteService service.CreditNoteService, logger *logger.Logger) *CreditNoteHandler {
	return &CreditNoteHandler{
		creditNoteService: creditNoteService,
		logger:            logger,
	}
}

// CreateCreditNote godoc
// @Summary Create a credit note for an invoice
// @Description Reverses an invoice fully, or partially from a termination date
// @Tags CreditNotes
// @Accept json
// @Produce json
// @Param request body dto.CreateCreditNoteRequest true "Credit note request"
// @Success 201 {object} invoice.Invoice
// @Failure 400 {object} middleware.ErrorResponse
// @Router /creditnotes [post]
func (h *CreditNoteHandler) CreateCreditNote(c *gin.Context) {
	var req dto.CreateCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	serviceReq, err := req.ToServiceRequest()
	if err != nil {
		c.Error(err)
		return
	}

	creditNote, err := h.creditNoteService.CreateCreditNote(c.Request.Context(), serviceReq)
	if err != nil {
		h.logger.Errorw("failed to create credit note", "error", err, "invoice_id", req.InvoiceID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, creditNote)
}
