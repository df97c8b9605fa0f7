package imageconv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Converter transforms image bytes from a non-canonical encoding into the
// canonical one. It is a pure byte transformation; blob store interaction is
// the Normalizer's job.
type Converter interface {
	Convert(ctx context.Context, data []byte) ([]byte, error)
}

// ExecConverter runs an external command-line tool to convert an image. The
// argument list is a template where "{src}" and "{dst}" are replaced with
// temporary file paths, so any tool with a src/dst invocation works
// (heif-convert, magick, sips).
type ExecConverter struct {
	Tool   string
	Args   []string
	SrcExt string
	DstExt string
}

// NewHEIFConverter returns a converter invoking heif-convert, the default
// backend for camera-native HEIC/HEIF stills.
func NewHEIFConverter() *ExecConverter {
	return &ExecConverter{
		Tool:   "heif-convert",
		Args:   []string{"{src}", "{dst}"},
		SrcExt: ".heic",
		DstExt: ".jpg",
	}
}

// Convert writes data to a temp file, runs the tool, and returns the bytes of
// the output file. Both temp files are removed before returning.
func (c *ExecConverter) Convert(ctx context.Context, data []byte) ([]byte, error) {
	src, err := os.CreateTemp("", "imageconv-src-*"+c.SrcExt)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp source file: %w", err)
	}
	defer os.Remove(src.Name())

	if _, err := src.Write(data); err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to write temp source file: %w", err)
	}
	if err := src.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp source file: %w", err)
	}

	dst, err := os.CreateTemp("", "imageconv-dst-*"+c.DstExt)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp destination file: %w", err)
	}
	dstPath := dst.Name()
	dst.Close()
	defer os.Remove(dstPath)

	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		a = strings.ReplaceAll(a, "{src}", src.Name())
		a = strings.ReplaceAll(a, "{dst}", dstPath)
		args[i] = a
	}

	cmd := exec.CommandContext(ctx, c.Tool, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s failed: %w (%s)", c.Tool, err, strings.TrimSpace(string(out)))
	}

	converted, err := os.ReadFile(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read converted output: %w", err)
	}
	if len(converted) == 0 {
		return nil, fmt.Errorf("%s produced empty output", c.Tool)
	}
	return converted, nil
}
