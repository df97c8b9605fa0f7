package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
	"github.com/AnuphapGBC/invoice-management-service/internal/model"
	"github.com/AnuphapGBC/invoice-management-service/internal/service"
)

// InvoiceHandler handles HTTP requests for invoices and their attachments.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	maxFileSize    int64
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(invoiceService service.InvoiceService, maxFileSize int64) *InvoiceHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	return &InvoiceHandler{
		invoiceService: invoiceService,
		maxFileSize:    maxFileSize,
	}
}

// RegisterRoutes registers the invoice routes on the given group.
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/invoices", h.CreateInvoice)
	rg.GET("/invoices", h.ListInvoices)
	rg.GET("/invoices/receipt-types", h.GetReceiptTypes)
	rg.GET("/invoices/:id", h.GetInvoice)
	rg.PUT("/invoices/:id", h.UpdateInvoice)
	rg.DELETE("/invoices/:id", h.DeleteInvoice)
	rg.POST("/invoices/:id/images", h.AddInvoiceImage)
	rg.GET("/invoices/:id/images", h.GetInvoiceImages)
	rg.DELETE("/invoices/images", h.DeleteInvoiceImage)
}

// CreateInvoice handles POST /invoices
// @Summary Create an invoice
// @Description Create an invoice with scalar fields and optional scanned receipt images
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param receiptNumber formData string true "Receipt number"
// @Param images formData file false "Receipt images (repeatable)"
// @Success 201 {object} model.InvoiceMutationResponse "Invoice created"
// @Failure 400 {object} model.ErrorResponse "Missing required field"
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	candidates, err := candidatesFromForm(c, "images", h.maxFileSize)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	fields := invoiceFieldsFromForm(c)
	result, err := h.invoiceService.CreateInvoice(c.Request.Context(), fields, candidates)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, toMutationResponse("Invoice created successfully", result))
}

// ListInvoices handles GET /invoices
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Success 200 {object} model.InvoiceListResponse "Invoices retrieved"
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.invoiceService.ListInvoices(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]model.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, toInvoiceResponse(&invoices[i]))
	}
	respondOK(c, model.InvoiceListResponse{
		Message:  "Invoices retrieved successfully",
		Invoices: out,
	})
}

// GetInvoice handles GET /invoices/:id
// @Summary Get one invoice with its images
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} model.InvoiceResponse "Invoice retrieved"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toInvoiceResponse(inv))
}

// UpdateInvoice handles PUT /invoices/:id
// @Summary Update an invoice
// @Description Overwrite the scalar fields and append any newly uploaded images
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Invoice ID"
// @Param receiptNumber formData string true "Receipt number"
// @Param images formData file false "Additional receipt images"
// @Success 200 {object} model.InvoiceMutationResponse "Invoice updated"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	candidates, err := candidatesFromForm(c, "images", h.maxFileSize)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	fields := invoiceFieldsFromForm(c)
	result, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, fields, candidates)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, toMutationResponse("Invoice updated successfully", result))
}

// DeleteInvoice handles DELETE /invoices/:id
// @Summary Delete an invoice and its attachments
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} model.InvoiceDeleteResponse "Invoice deleted"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.DeleteInvoice(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Invoice deleted successfully"
	if len(result.Residuals) > 0 {
		message = "Invoice deleted; some image files could not be removed"
	}
	respondOK(c, model.InvoiceDeleteResponse{
		Message:   message,
		Removed:   result.Removed,
		Residuals: result.Residuals,
	})
}

// AddInvoiceImage handles POST /invoices/:id/images
// @Summary Add one image to an invoice
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Invoice ID"
// @Param image formData file true "Receipt image"
// @Success 201 {object} model.AttachmentAddResponse "Image added"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Router /invoices/{id}/images [post]
func (h *InvoiceHandler) AddInvoiceImage(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	candidates, err := candidatesFromForm(c, "image", h.maxFileSize)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if len(candidates) == 0 {
		respondBadRequest(c, "Image file is missing", newErrorDetail("image", "an image file is required"))
		return
	}

	result, err := h.invoiceService.AddAttachment(c.Request.Context(), id, candidates[0])
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := model.AttachmentAddResponse{
		Message:   "Invoice image added successfully",
		InvoiceID: id,
		Reference: result.Reference,
	}
	if result.Warning != nil {
		resp.Warning = &model.AttachmentWarningResponse{
			Reference: result.Warning.Reference,
			Message:   result.Warning.Message,
		}
	}
	respondCreated(c, resp)
}

// GetInvoiceImages handles GET /invoices/:id/images
// @Summary List an invoice's images
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} model.AttachmentListResponse "Images retrieved"
// @Router /invoices/{id}/images [get]
func (h *InvoiceHandler) GetInvoiceImages(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	refs, err := h.invoiceService.ListAttachments(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, model.AttachmentListResponse{
		Message: "Invoice images retrieved successfully",
		Images:  refs,
	})
}

// DeleteInvoiceImage handles DELETE /invoices/images
// @Summary Remove one image by reference
// @Description Deletes the image's link row and makes a best-effort delete of the stored file
// @Tags invoices
// @Accept json
// @Produce json
// @Success 200 {object} model.AttachmentRemoveResponse "Image removed"
// @Failure 404 {object} model.ErrorResponse "Image not found"
// @Router /invoices/images [delete]
func (h *InvoiceHandler) DeleteInvoiceImage(c *gin.Context) {
	var req struct {
		ImageURL string `json:"imageUrl" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, "Image URL is required")
		return
	}

	result, err := h.invoiceService.RemoveAttachment(c.Request.Context(), req.ImageURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Image deleted successfully"
	if result.BlobMissing {
		message = "Image record deleted; stored file was already missing"
	}
	if result.Residual {
		message = "Image record deleted; stored file could not be removed"
	}
	respondOK(c, model.AttachmentRemoveResponse{
		Message:     message,
		Reference:   result.Reference,
		BlobMissing: result.BlobMissing,
		Residual:    result.Residual,
	})
}

// GetReceiptTypes handles GET /invoices/receipt-types
// @Summary List accepted receipt types
// @Tags invoices
// @Produce json
// @Success 200 {object} model.ReceiptTypesResponse "Receipt types"
// @Router /invoices/receipt-types [get]
func (h *InvoiceHandler) GetReceiptTypes(c *gin.Context) {
	types := domain.ReceiptTypes()
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	respondOK(c, model.ReceiptTypesResponse{ReceiptTypes: out})
}

func toInvoiceResponse(inv *domain.Invoice) model.InvoiceResponse {
	images := inv.Attachments
	if images == nil {
		images = []string{}
	}
	return model.InvoiceResponse{
		ID:            inv.ID,
		ReceiptNumber: inv.ReceiptNumber,
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.Date,
		Time:          inv.Time,
		ReceiptType:   string(inv.ReceiptType),
		Narrative:     inv.Narrative,
		Amount:        inv.Amount,
		Currency:      inv.Currency,
		CreatedBy:     inv.CreatedBy,
		Images:        images,
	}
}

func toMutationResponse(message string, result *service.InvoiceResult) model.InvoiceMutationResponse {
	resp := model.InvoiceMutationResponse{
		Message: message,
		Invoice: toInvoiceResponse(result.Invoice),
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, model.FileFailureResponse{File: f.File, Reason: f.Reason})
	}
	for _, w := range result.Warnings {
		resp.Warnings = append(resp.Warnings, model.AttachmentWarningResponse{Reference: w.Reference, Message: w.Message})
	}
	return resp
}
