package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hjemly/hjemly/internal/api/dto"
	ierr "github.com/hjemly/hjemly/internal/errors"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/service"
	"github.com/hjemly/hjemly/internal/types"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *logger.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// GenerateInvoices godoc
// @Summary Generate missing invoices for a contract
// @Description Creates one invoice per missing billing period, in order
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body dto.GenerateInvoicesRequest true "Generation request"
// @Success 201 {object} dto.ListInvoicesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices/generate [post]
func (h *InvoiceHandler) GenerateInvoices(c *gin.Context) {
	var req dto.GenerateInvoicesRequest
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

	invoices, err := h.invoiceService.GenerateInvoices(c.Request.Context(), serviceReq)
	if err != nil {
		h.logger.Errorw("failed to generate invoices", "error", err, "contract_id", req.ContractID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.ListInvoicesResponse{Items: invoices, Total: len(invoices)})
}

// PreviewInvoices godoc
// @Summary Preview missing invoices for a contract
// @Description Computes the missing invoices without persisting anything
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body dto.PreviewInvoicesRequest true "Preview request"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /invoices/preview [post]
func (h *InvoiceHandler) PreviewInvoices(c *gin.Context) {
	var req dto.PreviewInvoicesRequest
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

	invoices, err := h.invoiceService.PreviewInvoices(c.Request.Context(), serviceReq)
	if err != nil {
		h.logger.Errorw("failed to preview invoices", "error", err, "contract_id", req.ContractID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListInvoicesResponse{Items: invoices, Total: len(invoices)})
}

// GetInvoice godoc
// @Summary Get an invoice by ID
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} invoice.Invoice
// @Failure 404 {object} middleware.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid invoice id").Mark(ierr.ErrValidation))
		return
	}

	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

// ListInvoices godoc
// @Summary List invoices for a contract
// @Tags Invoices
// @Produce json
// @Param contract_id query string true "Contract ID"
// @Success 200 {object} dto.ListInvoicesResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	contractID := c.Query("contract_id")
	if contractID == "" {
		c.Error(ierr.NewError("contract_id is required").
			WithHint("pass contract_id as a query parameter").
			Mark(ierr.ErrValidation))
		return
	}

	filter := &types.InvoiceFilter{ContractID: contractID}
	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.ListInvoicesResponse{Items: invoices, Total: len(invoices)})
}
