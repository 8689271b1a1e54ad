package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinvoicing "github.com/nasrosoft/invoice-generator-saas/internal/application/invoicing"
)

// InvoiceHandler handles invoice requests
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appinvoicing.InvoiceService
	pdfService     *appinvoicing.PDFService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *appinvoicing.InvoiceService, pdfService *appinvoicing.PDFService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		pdfService:     pdfService,
	}
}

// Create creates a new invoice with an assigned number
func (h *InvoiceHandler) Create(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appinvoicing.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// List returns the owner's invoices, paginated
func (h *InvoiceHandler) List(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appinvoicing.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page == 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, invoices, total, page, pageSize)
}

// Get returns a single invoice with its line items
func (h *InvoiceHandler) Get(c *gin.Context) {
	h.withInvoice(c, func(ownerID, invoiceID uuid.UUID) (*appinvoicing.InvoiceResponse, error) {
		return h.invoiceService.GetByID(c.Request.Context(), ownerID, invoiceID)
	})
}

// Update updates a draft or sent invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoiceID, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req appinvoicing.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), ownerID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Delete removes an invoice and releases its quota slot
func (h *InvoiceHandler) Delete(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoiceID, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), ownerID, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Duplicate copies an invoice into a new draft with a fresh number
func (h *InvoiceHandler) Duplicate(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoiceID, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.Duplicate(c.Request.Context(), ownerID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// Send marks a draft invoice as sent
func (h *InvoiceHandler) Send(c *gin.Context) {
	h.withInvoice(c, func(ownerID, invoiceID uuid.UUID) (*appinvoicing.InvoiceResponse, error) {
		return h.invoiceService.Send(c.Request.Context(), ownerID, invoiceID)
	})
}

// Pay marks an invoice as paid
func (h *InvoiceHandler) Pay(c *gin.Context) {
	h.withInvoice(c, func(ownerID, invoiceID uuid.UUID) (*appinvoicing.InvoiceResponse, error) {
		return h.invoiceService.MarkPaid(c.Request.Context(), ownerID, invoiceID)
	})
}

// UpdateStatus transitions an invoice to a requested status
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoiceID, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req appinvoicing.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), ownerID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Summary returns invoice counts per status for the owner
func (h *InvoiceHandler) Summary(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	summary, err := h.invoiceService.StatusSummary(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// PDF renders an invoice to PDF and streams it to the client
func (h *InvoiceHandler) PDF(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoiceID, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	result, err := h.pdfService.Generate(c.Request.Context(), ownerID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	if result.ArchivedURL != "" {
		c.Header("X-Archived-URL", result.ArchivedURL)
	}
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

// withInvoice runs an owner-scoped invoice operation and renders the result
func (h *InvoiceHandler) withInvoice(c *gin.Context, op func(ownerID, invoiceID uuid.UUID) (*appinvoicing.InvoiceResponse, error)) {
	ownerID, err := currentUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoiceID, ok := bindUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := op(ownerID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}
