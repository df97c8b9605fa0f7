package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
	"github.com/AnuphapGBC/invoice-management-service/internal/imageconv"
	"github.com/AnuphapGBC/invoice-management-service/internal/ingest"
)

// memStore is a concurrency-safe in-memory blob store.
type memStore struct {
	mu         sync.Mutex
	blobs      map[string][]byte
	failDelete map[string]bool
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}, failDelete: map[string]bool{}}
}

func (m *memStore) Write(ctx context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[name]; ok {
		return &domain.StorageError{Op: "write", Name: name, Err: errors.New("blob already exists")}
	}
	m.blobs[name] = data
	return nil
}

func (m *memStore) Read(ctx context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[name]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "blob", ID: name}
	}
	return data, nil
}

func (m *memStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete[name] {
		return &domain.StorageError{Op: "delete", Name: name, Err: errors.New("device busy")}
	}
	if _, ok := m.blobs[name]; !ok {
		return &domain.NotFoundError{Resource: "blob", ID: name}
	}
	delete(m.blobs, name)
	return nil
}

func (m *memStore) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[name]
	return ok, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// fakeInvoiceRepo is an in-memory InvoiceRepository.
type fakeInvoiceRepo struct {
	mu         sync.Mutex
	invoices   map[string]*domain.Invoice
	links      []domain.Attachment
	nextID     int
	failAdd    bool
	failList   bool
	failDelete bool
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[string]*domain.Invoice{}}
}

func (r *fakeInvoiceRepo) Insert(ctx context.Context, fields domain.InvoiceFields) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	inv := &domain.Invoice{
		ID:            fmt.Sprintf("inv-%d", r.nextID),
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
	r.invoices[inv.ID] = inv
	return inv, nil
}

func (r *fakeInvoiceRepo) UpdateScalars(ctx context.Context, id string, fields domain.InvoiceFields) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return 0, nil
	}
	inv.ReceiptNumber = fields.ReceiptNumber
	inv.Narrative = fields.Narrative
	return 1, nil
}

func (r *fakeInvoiceRepo) DeleteWithAttachments(ctx context.Context, id string) ([]string, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete {
		return nil, 0, errors.New("database unavailable")
	}
	if _, ok := r.invoices[id]; !ok {
		return nil, 0, nil
	}
	delete(r.invoices, id)

	refs := []string{}
	kept := r.links[:0]
	for _, l := range r.links {
		if l.InvoiceID == id {
			refs = append(refs, l.Reference)
		} else {
			kept = append(kept, l)
		}
	}
	r.links = kept
	return refs, 1, nil
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "invoice", ID: id}
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) List(ctx context.Context) ([]domain.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Invoice{}
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) AddAttachments(ctx context.Context, invoiceID string, refs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAdd {
		return errors.New("database unavailable")
	}
	for _, ref := range refs {
		r.links = append(r.links, domain.Attachment{InvoiceID: invoiceID, Reference: ref})
	}
	return nil
}

func (r *fakeInvoiceRepo) ListAttachments(ctx context.Context, invoiceID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failList {
		return nil, errors.New("connection reset")
	}
	refs := []string{}
	for _, l := range r.links {
		if l.InvoiceID == invoiceID {
			refs = append(refs, l.Reference)
		}
	}
	return refs, nil
}

func (r *fakeInvoiceRepo) DeleteAttachmentByRef(ctx context.Context, ref string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.links {
		if l.Reference == ref {
			r.links = append(r.links[:i], r.links[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type stubConverter struct {
	out []byte
	err error
}

func (s stubConverter) Convert(ctx context.Context, data []byte) ([]byte, error) {
	return s.out, s.err
}

func newTestService(repo *fakeInvoiceRepo, store *memStore) InvoiceService {
	pipeline := ingest.NewPipeline(store, imageconv.NewNormalizer(store, stubConverter{out: []byte("converted")}, 0, 0), ingest.Config{})
	return NewInvoiceService(repo, store, pipeline)
}

func jpegFile(name string) ingest.Candidate {
	return ingest.Candidate{OriginalName: name, ContentType: "image/jpeg", Data: []byte("jpeg bytes")}
}

func TestCreateInvoiceValidationWritesNothing(t *testing.T) {
	repo := newFakeInvoiceRepo()
	store := newMemStore()
	svc := newTestService(repo, store)

	_, err := svc.CreateInvoice(context.Background(), domain.InvoiceFields{}, []ingest.Candidate{jpegFile("a.jpg")})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	// Nothing reached the database or the blob store.
	assert.Empty(t, repo.invoices)
	assert.Equal(t, 0, store.count())
}

func TestCreateInvoiceWithAttachments(t *testing.T) {
	repo := newFakeInvoiceRepo()
	store := newMemStore()
	svc := newTestService(repo, store)

	fields := domain.InvoiceFields{ReceiptNumber: "R-100", ReceiptType: domain.ReceiptTypeGas}
	result, err := svc.CreateInvoice(context.Background(), fields, []ingest.Candidate{jpegFile("a.jpg"), jpegFile("b.jpg")})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Invoice.ID)
	assert.Empty(t, result.Failures)
	assert.Empty(t, result.Warnings)
	assert.Len(t, result.Invoice.Attachments, 2)
	assert.Equal(t, 2, store.count())
}

func TestCreateInvoicePartialFailure(t *testing.T) {
	repo := newFakeInvoiceRepo()
	store := newMemStore()
	svc := newTestService(repo, store)

	files := []ingest.Candidate{
		jpegFile("good.jpg"),
		{OriginalName: "notes.txt", ContentType: "text/plain", Data: []byte("hello")},
	}
	result, err := svc.CreateInvoice(context.Background(), domain.InvoiceFields{ReceiptNumber: "R-101"}, files)
	require.NoError(t, err)

	// The invoice exists with the surviving attachment; the bad file is
	// reported by name.
	assert.Len(t, result.Invoice.Attachments, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "notes.txt", result.Failures[0].File)
	assert.Equal(t, 1, store.count())
}

func TestCreateInvoiceListFailureBecomesWarning(t *testing.T) {
	repo := newFakeInvoiceRepo()
	store := newMemStore()
	svc := newTestService(repo, store)

	repo.failList = true
	result, err := svc.CreateInvoice(context.Background(), domain.InvoiceFields{ReceiptNumber: "R-110"}, []ingest.Candidate{jpegFile("a.jpg")})
	require.NoError(t, err)

	// The bind succeeded; a failed re-read must not masquerade as an
	// error-free empty attachment set.
	assert.Len(t, repo.links, 1)
	assert.Empty(t, result.Invoice.Attachments)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "failed to list attachments")
}

func TestCreateInvoiceBindFailureUnwindsBlobs(t *testing.T) {
	repo := newFakeInvoiceRepo()
	repo.failAdd = true
	store := newMemStore()
	svc := newTestService(repo, store)

	result, err := svc.CreateInvoice(context.Background(), domain.InvoiceFields{ReceiptNumber: "R-102"}, []ingest.Candidate{jpegFile("a.jpg")})
	require.NoError(t, err)

	// The invoice row stands, but no orphan blobs survive the failed bind.
	assert.Empty(t, result.Invoice.Attachments)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 0, store.count())
}

func TestUpdateInvoice(t *testing.T) {
	repo := newFakeInvoiceRepo()
	store := newMemStore()
	svc := newTestService(repo, store)

	created, err := svc.CreateInvoice(context.Background(), domain.InvoiceFields{ReceiptNumber: "R-103"}, []ingest.Candidate{jpegFile("a.jpg")})
	require.NoError(t, err)
	id := created.Invoice.ID

	t.Run("AppendsNewAttachments", func(t *testing.T) {
		fields := domain.InvoiceFields{ReceiptNumber: "R-103b", Narrative: "updated"}
		result, err := svc.UpdateInvoice(context.Background(), id, fields, []ingest.Candidate{jpegFile("b.jpg")})
		require.NoError(t, err)
		assert.Equal(t, "R-103b", result.Invoice.ReceiptNumber)
		assert.Len(t, result.Invoice.Attachments, 2)
	})

	t.Run("UnknownInvoice", func(t *testing.T) {
		_, err := svc.UpdateInvoice(context.Background(), "missing", domain.InvoiceFields{ReceiptNumber: "x"}, nil)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestDeleteInvoiceRemovesBlobs(t *testing.T) {
	repo := newFakeInvoiceRepo()
	store := newMemStore()
	svc := newTestService(repo, store)

	created, err := svc.CreateInvoice(context.Background(), domain.InvoiceFields{ReceiptNumber: "R-104"}, []ingest.Candidate{jpegFile("a.jpg"), jpegFile("b.jpg")})
	require.NoError(t, err)
	id := created.Invoice.ID

	result, err := svc.DeleteInvoice(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, result.Removed, 2)
	assert.Empty(t, result.Residuals)
	assert.Equal(t, 0, store.count())
	assert.Empty(t, repo.links)

	_, err = svc.DeleteInvoice(context.Background(), id)
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteInvoiceMetadataFailureChangesNothing(t *testing.T) {
	repo := newFakeInvoiceRepo()
	store := newMemStore()
	svc := newTestService(repo, store)

	created, err := svc.CreateInvoice(context.Background(), domain.InvoiceFields{ReceiptNumber: "R-108"}, []ingest.Candidate{jpegFile("a.jpg")})
	require.NoError(t, err)

	repo.failDelete = true
	_, err = svc.DeleteInvoice(context.Background(), created.Invoice.ID)
	require.Error(t, err)

	// The transactional delete failed whole; invoice, links and blobs all
	// still stand.
	assert.Len(t, repo.invoices, 1)
	assert.Len(t, repo.links, 1)
	assert.Equal(t, 1, store.count())
}

func TestDeleteInvoiceReportsResiduals(t *testing.T) {
	repo := newFakeInvoiceRepo()
	store := newMemStore()
	svc := newTestService(repo, store)

	created, err := svc.CreateInvoice(context.Background(), domain.InvoiceFields{ReceiptNumber: "R-105"}, []ingest.Candidate{jpegFile("a.jpg"), jpegFile("b.jpg")})
	require.NoError(t, err)

	stuck := created.Invoice.Attachments[0]
	store.failDelete[stuck] = true

	result, err := svc.DeleteInvoice(context.Background(), created.Invoice.ID)
	require.NoError(t, err)

	// Metadata is gone either way; the stuck blob is reported, not hidden.
	assert.Equal(t, []string{stuck}, result.Residuals)
	assert.Len(t, result.Removed, 1)
	assert.Empty(t, repo.links)
}

func TestAddAttachment(t *testing.T) {
	repo := newFakeInvoiceRepo()
	store := newMemStore()
	svc := newTestService(repo, store)

	created, err := svc.CreateInvoice(context.Background(), domain.InvoiceFields{ReceiptNumber: "R-106"}, nil)
	require.NoError(t, err)
	id := created.Invoice.ID

	t.Run("BindsAndLists", func(t *testing.T) {
		result, err := svc.AddAttachment(context.Background(), id, jpegFile("new.jpg"))
		require.NoError(t, err)
		assert.NotEmpty(t, result.Reference)

		refs, err := svc.ListAttachments(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, []string{result.Reference}, refs)
	})

	t.Run("UnknownInvoiceStoresNothing", func(t *testing.T) {
		before := store.count()
		_, err := svc.AddAttachment(context.Background(), "missing", jpegFile("x.jpg"))
		assert.True(t, domain.IsNotFound(err))
		assert.Equal(t, before, store.count())
	})
}

func TestRemoveAttachment(t *testing.T) {
	repo := newFakeInvoiceRepo()
	store := newMemStore()
	svc := newTestService(repo, store)

	created, err := svc.CreateInvoice(context.Background(), domain.InvoiceFields{ReceiptNumber: "R-107"}, []ingest.Candidate{jpegFile("a.jpg")})
	require.NoError(t, err)
	ref := created.Invoice.Attachments[0]

	t.Run("RemovesLinkAndBlob", func(t *testing.T) {
		result, err := svc.RemoveAttachment(context.Background(), ref)
		require.NoError(t, err)
		assert.False(t, result.BlobMissing)
		assert.False(t, result.Residual)
		assert.Equal(t, 0, store.count())
		assert.Empty(t, repo.links)
	})

	t.Run("UnknownReference", func(t *testing.T) {
		_, err := svc.RemoveAttachment(context.Background(), ref)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("MissingBlobIsAWarningNotAFailure", func(t *testing.T) {
		require.NoError(t, repo.AddAttachments(context.Background(), created.Invoice.ID, []string{"dangling.jpg"}))

		result, err := svc.RemoveAttachment(context.Background(), "dangling.jpg")
		require.NoError(t, err)
		assert.True(t, result.BlobMissing)
		assert.False(t, result.Residual)
		assert.Empty(t, repo.links)
	})

	t.Run("FailedBlobDeleteIsResidualNotMissing", func(t *testing.T) {
		result, err := svc.AddAttachment(context.Background(), created.Invoice.ID, jpegFile("stuck.jpg"))
		require.NoError(t, err)
		store.failDelete[result.Reference] = true

		removed, err := svc.RemoveAttachment(context.Background(), result.Reference)
		require.NoError(t, err)
		assert.True(t, removed.Residual)
		assert.False(t, removed.BlobMissing)
		// The bytes are genuinely still there.
		assert.Equal(t, 1, store.count())
		assert.Empty(t, repo.links)
	})
}
