package model

// ErrorDetail pinpoints one field-level problem in a request.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error envelope for all endpoints.
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// FileFailureResponse names one uploaded file that was rejected or failed.
type FileFailureResponse struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// AttachmentWarningResponse flags a stored attachment with a non-fatal issue.
type AttachmentWarningResponse struct {
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

// InvoiceResponse represents one invoice in API responses.
type InvoiceResponse struct {
	ID            string   `json:"id"`
	ReceiptNumber string   `json:"receiptNumber"`
	InvoiceNumber string   `json:"invoiceNumber,omitempty"`
	Date          string   `json:"date,omitempty"`
	Time          string   `json:"time,omitempty"`
	ReceiptType   string   `json:"receiptType,omitempty"`
	Narrative     string   `json:"narrative,omitempty"`
	Amount        string   `json:"amount,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	CreatedBy     string   `json:"createdBy,omitempty"`
	Images        []string `json:"images"`
}

// InvoiceMutationResponse wraps an invoice together with the per-file
// outcomes of its attachment batch.
type InvoiceMutationResponse struct {
	Message  string                      `json:"message"`
	Invoice  InvoiceResponse             `json:"invoice"`
	Failures []FileFailureResponse       `json:"failures,omitempty"`
	Warnings []AttachmentWarningResponse `json:"warnings,omitempty"`
}

// InvoiceListResponse wraps the full invoice listing.
type InvoiceListResponse struct {
	Message  string            `json:"message"`
	Invoices []InvoiceResponse `json:"invoices"`
}

// InvoiceDeleteResponse reports an invoice deletion, including blobs that
// could not be removed from storage.
type InvoiceDeleteResponse struct {
	Message   string   `json:"message"`
	Removed   []string `json:"removed,omitempty"`
	Residuals []string `json:"residuals,omitempty"`
}

// AttachmentAddResponse reports a single added attachment.
type AttachmentAddResponse struct {
	Message   string                     `json:"message"`
	InvoiceID string                     `json:"invoiceId"`
	Reference string                     `json:"reference"`
	Warning   *AttachmentWarningResponse `json:"warning,omitempty"`
}

// AttachmentListResponse lists an invoice's attachment references.
type AttachmentListResponse struct {
	Message string   `json:"message"`
	Images  []string `json:"images"`
}

// AttachmentRemoveResponse reports an attachment removal.
type AttachmentRemoveResponse struct {
	Message     string `json:"message"`
	Reference   string `json:"reference"`
	BlobMissing bool   `json:"blobMissing,omitempty"`
	Residual    bool   `json:"residual,omitempty"`
}

// ReceiptTypesResponse lists the accepted receipt type values.
type ReceiptTypesResponse struct {
	ReceiptTypes []string `json:"receiptTypes"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserRequest is the create/update user payload.
type UserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

// SendMailRequest is the send-mail payload.
type SendMailRequest struct {
	From      string `json:"from" binding:"required"`
	To        string `json:"to" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	Body      string `json:"body" binding:"required"`
	InvoiceID string `json:"invoiceId" binding:"required"`
}

// SendMailResponse reports a sent mail and its attachment outcomes.
type SendMailResponse struct {
	Message  string   `json:"message"`
	Attached []string `json:"attached,omitempty"`
	Skipped  []string `json:"skipped,omitempty"`
}
