package imageconv

import (
	"context"
	"log"
	"path"
	"strings"
	"time"

	"github.com/AnuphapGBC/invoice-management-service/internal/blobstore"
	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
)

// CanonicalExt is the extension given to converted blobs.
const CanonicalExt = ".jpg"

// IsCanonical reports whether a blob name carries a canonical (servable)
// image extension.
func IsCanonical(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// NeedsConversion reports whether a blob name carries a non-canonical but
// accepted-at-intake extension.
func NeedsConversion(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".heic", ".heif":
		return true
	}
	return false
}

// Normalizer converts stored blobs into the canonical encoding. The source
// blob is deleted only after the destination blob has been written, so a
// failed conversion never loses data.
type Normalizer struct {
	store   blobstore.Store
	conv    Converter
	timeout time.Duration
	maxDim  int
}

// NewNormalizer wires a converter backend to a blob store. timeout bounds a
// single conversion; zero means no bound. maxDim bounds the longest side of
// converted output, which only becomes decodable after conversion.
func NewNormalizer(store blobstore.Store, conv Converter, timeout time.Duration, maxDim int) *Normalizer {
	return &Normalizer{store: store, conv: conv, timeout: timeout, maxDim: maxDim}
}

// Normalize converts the blob at ref to the canonical encoding and returns
// the reference of the converted blob. A ref that is already canonical is
// returned unchanged with no store writes.
func (n *Normalizer) Normalize(ctx context.Context, ref string) (string, error) {
	if !NeedsConversion(ref) {
		return ref, nil
	}

	data, err := n.store.Read(ctx, ref)
	if err != nil {
		return "", &domain.ConversionError{Ref: ref, Err: err}
	}

	convCtx := ctx
	if n.timeout > 0 {
		var cancel context.CancelFunc
		convCtx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	converted, err := n.conv.Convert(convCtx, data)
	if err != nil {
		return "", &domain.ConversionError{Ref: ref, Err: err}
	}

	// The intake downscale cannot decode camera-native formats, so the size
	// bound is enforced again here on the decodable output.
	converted, err = Downscale(converted, n.maxDim)
	if err != nil {
		return "", &domain.ConversionError{Ref: ref, Err: err}
	}

	dst := strings.TrimSuffix(ref, path.Ext(ref)) + CanonicalExt
	if err := n.store.Write(ctx, dst, converted); err != nil {
		return "", err
	}

	// Destination is authoritative from here on. A leftover source blob is
	// harmless; losing the converted bytes would not be.
	if err := n.store.Delete(ctx, ref); err != nil && !domain.IsNotFound(err) {
		log.Printf("normalize: failed to remove source blob %s: %v", ref, err)
	}

	return dst, nil
}
