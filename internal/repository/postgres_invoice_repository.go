package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AnuphapGBC/invoice-management-service/internal/database"
	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
)

// PostgresInvoiceRepository implements InvoiceRepository using PostgreSQL.
type PostgresInvoiceRepository struct {
	db   *database.PostgresDB
	pool *pgxpool.Pool
}

// NewPostgresInvoiceRepository creates a new PostgreSQL invoice repository.
func NewPostgresInvoiceRepository(db *database.PostgresDB) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{db: db, pool: db.GetPool()}
}

// Insert stores a new invoice and returns it with its assigned identity.
func (r *PostgresInvoiceRepository) Insert(ctx context.Context, fields domain.InvoiceFields) (*domain.Invoice, error) {
	inv := &domain.Invoice{
		ReceiptNumber: fields.ReceiptNumber,
		InvoiceNumber: fields.InvoiceNumber,
		Date:          fields.Date,
		Time:          fields.Time,
		ReceiptType:   fields.ReceiptType,
		Narrative:     fields.Narrative,
		Amount:        fields.Amount,
		Currency:      fields.Currency,
		CreatedBy:     fields.CreatedBy,
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO invoices (receipt_number, invoice_number, date, time, receipt_type, narrative, amount, currency, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, fields.ReceiptNumber, fields.InvoiceNumber, fields.Date, fields.Time, fields.ReceiptType,
		fields.Narrative, fields.Amount, fields.Currency, fields.CreatedBy,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	return inv, nil
}

// UpdateScalars overwrites the scalar fields of an invoice.
func (r *PostgresInvoiceRepository) UpdateScalars(ctx context.Context, id string, fields domain.InvoiceFields) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
		SET receipt_number = $1, invoice_number = $2, date = $3, time = $4, receipt_type = $5,
		    narrative = $6, amount = $7, currency = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $9
	`, fields.ReceiptNumber, fields.InvoiceNumber, fields.Date, fields.Time, fields.ReceiptType,
		fields.Narrative, fields.Amount, fields.Currency, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update invoice: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteWithAttachments removes the invoice row and all of its link rows in
// one transaction, so a failure partway through leaves both intact.
func (r *PostgresInvoiceRepository) DeleteWithAttachments(ctx context.Context, id string) ([]string, int64, error) {
	refs := []string{}
	var affected int64

	err := r.db.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			DELETE FROM invoice_attachments
			WHERE invoice_id = $1
			RETURNING reference
		`, id)
		if err != nil {
			return fmt.Errorf("failed to delete attachment links: %w", err)
		}
		for rows.Next() {
			var ref string
			if err := rows.Scan(&ref); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan deleted attachment: %w", err)
			}
			refs = append(refs, ref)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating deleted attachments: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return refs, affected, nil
}

// GetByID returns one invoice without its attachments.
func (r *PostgresInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.pool.QueryRow(ctx, `
		SELECT id, receipt_number, invoice_number, date, time, receipt_type, narrative, amount, currency, created_by, created_at, updated_at
		FROM invoices
		WHERE id = $1
	`, id).Scan(
		&inv.ID, &inv.ReceiptNumber, &inv.InvoiceNumber, &inv.Date, &inv.Time, &inv.ReceiptType,
		&inv.Narrative, &inv.Amount, &inv.Currency, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: "invoice", ID: id}
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &inv, nil
}

// List returns all invoices, most recently created first.
func (r *PostgresInvoiceRepository) List(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, receipt_number, invoice_number, date, time, receipt_type, narrative, amount, currency, created_by, created_at, updated_at
		FROM invoices
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.ReceiptNumber, &inv.InvoiceNumber, &inv.Date, &inv.Time, &inv.ReceiptType,
			&inv.Narrative, &inv.Amount, &inv.Currency, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}
	return invoices, nil
}

// AddAttachments inserts one link row per reference inside one transaction,
// so a multi-file bind is all-or-nothing at the metadata level.
func (r *PostgresInvoiceRepository) AddAttachments(ctx context.Context, invoiceID string, refs []string) error {
	if len(refs) == 0 {
		return nil
	}

	return r.db.ExecuteTransaction(ctx, func(tx pgx.Tx) error {
		for _, ref := range refs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO invoice_attachments (invoice_id, reference)
				VALUES ($1, $2)
			`, invoiceID, ref); err != nil {
				return fmt.Errorf("failed to insert attachment link: %w", err)
			}
		}
		return nil
	})
}

// ListAttachments returns the invoice's references in insertion order.
func (r *PostgresInvoiceRepository) ListAttachments(ctx context.Context, invoiceID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT reference
		FROM invoice_attachments
		WHERE invoice_id = $1
		ORDER BY seq
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	refs := []string{}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}
	return refs, nil
}

// DeleteAttachmentByRef removes the link row matching the reference.
func (r *PostgresInvoiceRepository) DeleteAttachmentByRef(ctx context.Context, ref string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoice_attachments WHERE reference = $1`, ref)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attachment link: %w", err)
	}
	return tag.RowsAffected(), nil
}
