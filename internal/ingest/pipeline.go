package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AnuphapGBC/invoice-management-service/internal/blobstore"
	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
	"github.com/AnuphapGBC/invoice-management-service/internal/imageconv"
)

// Candidate is one uploaded file awaiting ingestion.
type Candidate struct {
	OriginalName string
	ContentType  string
	Data         []byte
}

// Result reports the outcome of ingesting one candidate.
//
// Exactly one of the following holds:
//   - Reference set, Err and Warning nil: stored and normalized.
//   - Reference set, Warning set: stored, but normalization failed; the
//     original blob is kept and remains usable.
//   - Err set: rejected or failed, nothing usable was stored.
type Result struct {
	OriginalName string
	Reference    string
	Err          error
	Warning      error
}

// OK reports whether the candidate produced a usable attachment reference.
func (r Result) OK() bool { return r.Reference != "" }

// Config carries the ingestion policy knobs. It is passed in explicitly at
// construction; nothing here is read from ambient state.
type Config struct {
	// AcceptedTypes is the set of declared content types admitted at intake.
	AcceptedTypes []string
	// MaxFileSize rejects candidates larger than this many bytes. Zero
	// disables the check.
	MaxFileSize int64
	// MaxConcurrent bounds how many candidates of one batch are ingested in
	// parallel.
	MaxConcurrent int
	// MaxDimension bounds the longest side of stored images; larger uploads
	// are downscaled before storage.
	MaxDimension int
}

// DefaultAcceptedTypes lists the image content types admitted at intake,
// including the camera-native formats the normalizer converts.
func DefaultAcceptedTypes() []string {
	return []string{"image/jpeg", "image/png", "image/heic", "image/heif"}
}

// Pipeline validates, stores and normalizes uploaded files.
//
// Policy, applied uniformly at every entry point: invalid candidates are
// dropped with a per-file rejection and never abort their siblings; a failed
// conversion keeps the stored original and reports a per-file warning.
type Pipeline struct {
	store blobstore.Store
	norm  *imageconv.Normalizer
	cfg   Config
	now   func() time.Time
}

// NewPipeline creates a pipeline over the given store and normalizer.
func NewPipeline(store blobstore.Store, norm *imageconv.Normalizer, cfg Config) *Pipeline {
	if len(cfg.AcceptedTypes) == 0 {
		cfg.AcceptedTypes = DefaultAcceptedTypes()
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Pipeline{
		store: store,
		norm:  norm,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Ingest processes a batch of candidates and returns one Result per
// candidate, in input order. Batch members run concurrently; the
// store-then-normalize sequence of a single file is strictly ordered.
func (p *Pipeline) Ingest(ctx context.Context, candidates []Candidate) []Result {
	results := make([]Result, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(p.cfg.MaxConcurrent)

	for i, c := range candidates {
		results[i].OriginalName = c.OriginalName

		if err := p.validate(c); err != nil {
			results[i].Err = err
			continue
		}

		// Names are assigned before the goroutines start so concurrent batch
		// members can never race each other for a name.
		name := blobstore.NewName(c.OriginalName, p.now())

		i, c := i, c
		g.Go(func() error {
			results[i] = p.ingestOne(ctx, c, name)
			return nil
		})
	}

	g.Wait()
	return results
}

// IngestOne is the single-file variant used by the add-attachment operation.
func (p *Pipeline) IngestOne(ctx context.Context, c Candidate) Result {
	if err := p.validate(c); err != nil {
		return Result{OriginalName: c.OriginalName, Err: err}
	}
	return p.ingestOne(ctx, c, blobstore.NewName(c.OriginalName, p.now()))
}

func (p *Pipeline) validate(c Candidate) error {
	if !p.accepted(c.ContentType) {
		return &domain.ValidationError{
			Field:   c.OriginalName,
			Message: fmt.Sprintf("content type %q is not an accepted image type", c.ContentType),
		}
	}
	if p.cfg.MaxFileSize > 0 && int64(len(c.Data)) > p.cfg.MaxFileSize {
		return &domain.ValidationError{
			Field:   c.OriginalName,
			Message: fmt.Sprintf("file exceeds maximum size of %d bytes", p.cfg.MaxFileSize),
		}
	}
	return nil
}

func (p *Pipeline) accepted(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	for _, t := range p.cfg.AcceptedTypes {
		if contentType == t {
			return true
		}
	}
	return false
}

func (p *Pipeline) ingestOne(ctx context.Context, c Candidate, name string) Result {
	res := Result{OriginalName: c.OriginalName}

	data, err := imageconv.Downscale(c.Data, p.cfg.MaxDimension)
	if err != nil {
		res.Err = &domain.StorageError{Op: "prepare", Name: name, Err: err}
		return res
	}

	if err := p.store.Write(ctx, name, data); err != nil {
		res.Err = err
		return res
	}

	ref, err := p.norm.Normalize(ctx, name)
	if err != nil {
		// Keep the stored original; the attachment stays usable in its
		// intake encoding and the caller sees exactly which file failed.
		res.Reference = name
		res.Warning = err
		return res
	}

	res.Reference = ref
	return res
}
