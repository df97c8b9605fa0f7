package repository

import (
	"context"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
)

// InvoiceRepository persists invoice scalar fields and the attachment link
// rows binding blob references to invoices. The service layer owns all
// sequencing across this interface and the blob store.
type InvoiceRepository interface {
	// Insert stores a new invoice and returns it with its assigned identity.
	Insert(ctx context.Context, fields domain.InvoiceFields) (*domain.Invoice, error)

	// UpdateScalars overwrites the scalar fields of an invoice and returns
	// the number of rows affected; zero means the invoice does not exist.
	UpdateScalars(ctx context.Context, id string, fields domain.InvoiceFields) (int64, error)

	// DeleteWithAttachments removes an invoice row together with all of its
	// link rows in one transaction, returning the removed references and the
	// number of invoice rows affected; zero means the invoice does not exist
	// and nothing was changed.
	DeleteWithAttachments(ctx context.Context, id string) ([]string, int64, error)

	// GetByID returns one invoice without its attachments.
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)

	// List returns all invoices, most recently created first.
	List(ctx context.Context) ([]domain.Invoice, error)

	// AddAttachments inserts one link row per reference for the invoice.
	AddAttachments(ctx context.Context, invoiceID string, refs []string) error

	// ListAttachments returns the invoice's references in insertion order.
	ListAttachments(ctx context.Context, invoiceID string) ([]string, error)

	// DeleteAttachmentByRef removes the link row matching the reference,
	// regardless of which invoice it belongs to, and returns rows affected.
	DeleteAttachmentByRef(ctx context.Context, ref string) (int64, error)
}
