package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AnuphapGBC/invoice-management-service/internal/model"
	"github.com/AnuphapGBC/invoice-management-service/internal/service"
)

// MailHandler handles outbound invoice mail requests.
type MailHandler struct {
	mailService service.MailService
}

// NewMailHandler creates a new mail handler.
func NewMailHandler(mailService service.MailService) *MailHandler {
	return &MailHandler{mailService: mailService}
}

// RegisterRoutes registers the mail routes on the given group.
func (h *MailHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/send-mail", h.SendMail)
}

// SendMail handles POST /send-mail
// @Summary Email an invoice's receipt images
// @Tags mail
// @Accept json
// @Produce json
// @Param mail body model.SendMailRequest true "Mail fields"
// @Success 200 {object} model.SendMailResponse "Mail sent"
// @Failure 404 {object} model.ErrorResponse "Invoice not found"
// @Router /send-mail [post]
func (h *MailHandler) SendMail(c *gin.Context) {
	var req model.SendMailRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, "All fields are required (from, to, subject, body, invoiceId)")
		return
	}

	result, err := h.mailService.SendInvoiceMail(c.Request.Context(), service.MailRequest{
		From:      req.From,
		To:        req.To,
		Subject:   req.Subject,
		Body:      req.Body,
		InvoiceID: req.InvoiceID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, model.SendMailResponse{
		Message:  "Email sent successfully",
		Attached: result.Attached,
		Skipped:  result.Skipped,
	})
}
