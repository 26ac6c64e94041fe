package port

import (
	"io"

	"github.com/opustools/opustools-go/internal/model"
)

// ImageOptions carries the optional parameters of an image job.
type ImageOptions struct {
	Quality      *int
	Width        *int
	Height       *int
	TargetFormat *model.ImageFormat
}

// ImageProcessor decodes, resizes and re-encodes images.
type ImageProcessor interface {
	Process(r io.Reader, opts ImageOptions) ([]byte, model.ImageFormat, error)
}

// PdfProcessor covers the PDF operations run by the worker.
type PdfProcessor interface {
	Compress(rs io.ReadSeeker, level model.CompressionLevel) ([]byte, error)
	Merge(rs []io.ReadSeeker) ([]byte, error)
	PageCount(ra io.ReaderAt, size int64) (int, error)
	ExtractPages(rs io.ReadSeeker, start, end int) ([]byte, error)
}
