package service

import (
	"context"
	"fmt"
	"log"

	"github.com/AnuphapGBC/invoice-management-service/internal/blobstore"
	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
	"github.com/AnuphapGBC/invoice-management-service/internal/ingest"
	"github.com/AnuphapGBC/invoice-management-service/internal/repository"
)

// FileFailure names one uploaded file that could not be turned into an
// attachment, and why.
type FileFailure struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// AttachmentWarning flags a non-fatal problem with an attachment that was
// nevertheless stored and linked.
type AttachmentWarning struct {
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

// InvoiceResult is the partial-success outcome of a create or update. The
// invoice exists with whichever attachments bound; Failures and Warnings
// enumerate everything that did not go cleanly.
type InvoiceResult struct {
	Invoice  *domain.Invoice     `json:"invoice"`
	Failures []FileFailure       `json:"failures,omitempty"`
	Warnings []AttachmentWarning `json:"warnings,omitempty"`
}

// DeleteResult reports the outcome of an invoice deletion. Residuals lists
// blobs whose bytes could not be removed; their link rows are gone.
type DeleteResult struct {
	Removed   []string `json:"removed,omitempty"`
	Residuals []string `json:"residuals,omitempty"`
}

// AttachmentResult reports a single-file attachment bind.
type AttachmentResult struct {
	Reference string             `json:"reference"`
	Warning   *AttachmentWarning `json:"warning,omitempty"`
}

// RemoveResult reports an attachment removal. BlobMissing is set when the
// link row existed but the blob was already gone from storage; Residual is
// set when the blob delete failed and the bytes may still be on disk.
type RemoveResult struct {
	Reference   string `json:"reference"`
	BlobMissing bool   `json:"blobMissing,omitempty"`
	Residual    bool   `json:"residual,omitempty"`
}

// InvoiceService owns the relation between an invoice and its attachments:
// it sequences every create, update and delete across the relational store
// and the blob store, and reports partial failures explicitly.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, fields domain.InvoiceFields, files []ingest.Candidate) (*InvoiceResult, error)
	UpdateInvoice(ctx context.Context, id string, fields domain.InvoiceFields, files []ingest.Candidate) (*InvoiceResult, error)
	DeleteInvoice(ctx context.Context, id string) (*DeleteResult, error)
	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context) ([]domain.Invoice, error)

	AddAttachment(ctx context.Context, invoiceID string, file ingest.Candidate) (*AttachmentResult, error)
	RemoveAttachment(ctx context.Context, ref string) (*RemoveResult, error)
	ListAttachments(ctx context.Context, invoiceID string) ([]string, error)
}

// InvoiceServiceImpl implements InvoiceService.
type InvoiceServiceImpl struct {
	repo     repository.InvoiceRepository
	store    blobstore.Store
	pipeline *ingest.Pipeline
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(repo repository.InvoiceRepository, store blobstore.Store, pipeline *ingest.Pipeline) InvoiceService {
	return &InvoiceServiceImpl{
		repo:     repo,
		store:    store,
		pipeline: pipeline,
	}
}

// CreateInvoice validates the scalar fields, persists the invoice row to
// obtain its identity, ingests the uploaded files and binds the survivors.
// Validation failure means nothing was written anywhere.
func (s *InvoiceServiceImpl) CreateInvoice(ctx context.Context, fields domain.InvoiceFields, files []ingest.Candidate) (*InvoiceResult, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.repo.Insert(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	result := &InvoiceResult{Invoice: inv}
	s.ingestAndBind(ctx, inv.ID, files, result)
	s.loadAttachments(ctx, inv, result)
	return result, nil
}

// UpdateInvoice overwrites the scalar fields (last writer wins) and appends
// any newly uploaded files to the existing attachment set. It never removes
// attachments; removal is a separate explicit operation.
func (s *InvoiceServiceImpl) UpdateInvoice(ctx context.Context, id string, fields domain.InvoiceFields, files []ingest.Candidate) (*InvoiceResult, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	affected, err := s.repo.UpdateScalars(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	if affected == 0 {
		return nil, &domain.NotFoundError{Resource: "invoice", ID: id}
	}

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &InvoiceResult{Invoice: inv}
	s.ingestAndBind(ctx, id, files, result)
	s.loadAttachments(ctx, inv, result)
	return result, nil
}

// DeleteInvoice removes the invoice, all of its link rows, and every
// referenced blob. The invoice row and its link rows go in one transaction,
// so a metadata failure leaves everything standing; blobs that resist
// deletion afterwards are reported as residuals in a degraded-success result
// rather than silently left behind.
func (s *InvoiceServiceImpl) DeleteInvoice(ctx context.Context, id string) (*DeleteResult, error) {
	refs, affected, err := s.repo.DeleteWithAttachments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete invoice: %w", err)
	}
	if affected == 0 {
		return nil, &domain.NotFoundError{Resource: "invoice", ID: id}
	}

	result := &DeleteResult{}
	for _, ref := range refs {
		if err := s.store.Delete(ctx, ref); err != nil {
			if domain.IsNotFound(err) {
				// Already gone; the invariant we want now holds.
				result.Removed = append(result.Removed, ref)
				continue
			}
			log.Printf("delete invoice %s: failed to remove blob %s: %v", id, ref, err)
			result.Residuals = append(result.Residuals, ref)
			continue
		}
		result.Removed = append(result.Removed, ref)
	}
	return result, nil
}

// GetInvoice returns one invoice together with its attachment references.
func (s *InvoiceServiceImpl) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Attachments, err = s.repo.ListAttachments(ctx, id)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ListInvoices returns all invoices without attachments.
func (s *InvoiceServiceImpl) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	return s.repo.List(ctx)
}

// AddAttachment ingests a single file and binds it to an existing invoice.
// The invoice must resolve first; no bytes are stored for an unknown id.
func (s *InvoiceServiceImpl) AddAttachment(ctx context.Context, invoiceID string, file ingest.Candidate) (*AttachmentResult, error) {
	if _, err := s.repo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}

	res := s.pipeline.IngestOne(ctx, file)
	if !res.OK() {
		return nil, res.Err
	}

	if err := s.repo.AddAttachments(ctx, invoiceID, []string{res.Reference}); err != nil {
		s.discardBlob(ctx, res.Reference)
		return nil, fmt.Errorf("failed to bind attachment: %w", err)
	}

	out := &AttachmentResult{Reference: res.Reference}
	if res.Warning != nil {
		out.Warning = &AttachmentWarning{Reference: res.Reference, Message: res.Warning.Error()}
	}
	return out, nil
}

// RemoveAttachment deletes exactly one link row by reference and then makes a
// best-effort attempt to delete the blob. A blob that is already absent is a
// warning, not a failure; only the metadata delete is load-bearing.
func (s *InvoiceServiceImpl) RemoveAttachment(ctx context.Context, ref string) (*RemoveResult, error) {
	affected, err := s.repo.DeleteAttachmentByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to delete attachment link: %w", err)
	}
	if affected == 0 {
		return nil, &domain.NotFoundError{Resource: "attachment", ID: ref}
	}

	result := &RemoveResult{Reference: ref}
	if err := s.store.Delete(ctx, ref); err != nil {
		if domain.IsNotFound(err) {
			log.Printf("remove attachment %s: blob already missing from storage", ref)
			result.BlobMissing = true
		} else {
			log.Printf("remove attachment %s: failed to delete blob: %v", ref, err)
			result.Residual = true
		}
	}
	return result, nil
}

// ListAttachments returns the references linked to an invoice in insertion
// order.
func (s *InvoiceServiceImpl) ListAttachments(ctx context.Context, invoiceID string) ([]string, error) {
	return s.repo.ListAttachments(ctx, invoiceID)
}

// ingestAndBind runs the pipeline over the batch, links every surviving
// reference to the invoice and folds per-file outcomes into result.
func (s *InvoiceServiceImpl) ingestAndBind(ctx context.Context, invoiceID string, files []ingest.Candidate, result *InvoiceResult) {
	if len(files) == 0 {
		return
	}

	outcomes := s.pipeline.Ingest(ctx, files)

	refs := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.OK() {
			result.Failures = append(result.Failures, FileFailure{File: o.OriginalName, Reason: o.Err.Error()})
			continue
		}
		refs = append(refs, o.Reference)
		if o.Warning != nil {
			result.Warnings = append(result.Warnings, AttachmentWarning{Reference: o.Reference, Message: o.Warning.Error()})
		}
	}

	if len(refs) == 0 {
		return
	}

	if err := s.repo.AddAttachments(ctx, invoiceID, refs); err != nil {
		// Link rows are all-or-nothing; orphaned blobs would break the
		// bidirectional existence invariant, so unwind them.
		for _, ref := range refs {
			s.discardBlob(ctx, ref)
		}
		for _, o := range outcomes {
			if o.OK() {
				result.Failures = append(result.Failures, FileFailure{
					File:   o.OriginalName,
					Reason: fmt.Sprintf("failed to bind attachment: %v", err),
				})
			}
		}
		result.Warnings = nil
	}
}

// loadAttachments refreshes the invoice's reference list after a bind. A
// failed re-read degrades to a warning instead of reporting the bound
// attachments as an error-free empty set.
func (s *InvoiceServiceImpl) loadAttachments(ctx context.Context, inv *domain.Invoice, result *InvoiceResult) {
	refs, err := s.repo.ListAttachments(ctx, inv.ID)
	if err != nil {
		log.Printf("list attachments for invoice %s: %v", inv.ID, err)
		result.Warnings = append(result.Warnings, AttachmentWarning{
			Message: fmt.Sprintf("failed to list attachments: %v", err),
		})
		return
	}
	inv.Attachments = refs
}

func (s *InvoiceServiceImpl) discardBlob(ctx context.Context, ref string) {
	if err := s.store.Delete(ctx, ref); err != nil && !domain.IsNotFound(err) {
		log.Printf("cleanup: failed to remove unbound blob %s: %v", ref, err)
	}
}
