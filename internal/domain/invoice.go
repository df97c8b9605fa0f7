package domain

import (
	"strings"
	"time"
)

// ReceiptType classifies what kind of expense a receipt documents.
type ReceiptType string

const (
	ReceiptTypeInvoice        ReceiptType = "Invoice"
	ReceiptTypeGas            ReceiptType = "Gas"
	ReceiptTypeSupportOffice  ReceiptType = "Support Office"
	ReceiptTypeMeal           ReceiptType = "Meal Expense"
	ReceiptTypeRepresentation ReceiptType = "Representation Expense"
	ReceiptTypeOther          ReceiptType = "Other"
)

// ReceiptTypes lists the accepted receipt type values in display order.
func ReceiptTypes() []ReceiptType {
	return []ReceiptType{
		ReceiptTypeInvoice,
		ReceiptTypeGas,
		ReceiptTypeSupportOffice,
		ReceiptTypeMeal,
		ReceiptTypeRepresentation,
		ReceiptTypeOther,
	}
}

// Invoice is the core expense record. All scalar fields except ReceiptNumber
// are optional pass-through values; the service performs no semantic
// validation on them.
type Invoice struct {
	ID            string      `json:"id"`
	ReceiptNumber string      `json:"receiptNumber"`
	InvoiceNumber string      `json:"invoiceNumber,omitempty"`
	Date          string      `json:"date,omitempty"`
	Time          string      `json:"time,omitempty"`
	ReceiptType   ReceiptType `json:"receiptType,omitempty"`
	Narrative     string      `json:"narrative,omitempty"`
	Amount        string      `json:"amount,omitempty"`
	Currency      string      `json:"currency,omitempty"`
	CreatedBy     string      `json:"createdBy,omitempty"`
	Attachments   []string    `json:"images,omitempty"`
	CreatedAt     time.Time   `json:"createdAt,omitempty"`
	UpdatedAt     time.Time   `json:"updatedAt,omitempty"`
}

// InvoiceFields holds the mutable scalar fields of an invoice, as received
// from a create or update request.
type InvoiceFields struct {
	ReceiptNumber string
	InvoiceNumber string
	Date          string
	Time          string
	ReceiptType   ReceiptType
	Narrative     string
	Amount        string
	Currency      string
	CreatedBy     string
}

// Validate enforces the single invariant this core owns: the receipt number
// must be present and non-empty.
func (f *InvoiceFields) Validate() error {
	if strings.TrimSpace(f.ReceiptNumber) == "" {
		return &ValidationError{Field: "receiptNumber", Message: "receipt number is required"}
	}
	return nil
}

// Attachment binds one stored blob to one invoice. Reference is the canonical
// locator of the final-form blob and is unique across the whole store.
type Attachment struct {
	InvoiceID string `json:"invoiceId"`
	Reference string `json:"reference"`
}
