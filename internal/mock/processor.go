package mock

import (
	"fmt"
	"io"

	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
)

// ImageProcessor implements port.ImageProcessor for tests.
type ImageProcessor struct {
	Out    []byte
	Format model.ImageFormat
	Err    error

	Called bool
	Opts   port.ImageOptions
	Input  []byte
}

func (p *ImageProcessor) Process(r io.Reader, opts port.ImageOptions) ([]byte, model.ImageFormat, error) {
	p.Called = true
	p.Opts = opts
	p.Input, _ = io.ReadAll(r)
	if p.Err != nil {
		return nil, "", p.Err
	}
	return p.Out, p.Format, nil
}

// PdfProcessor implements port.PdfProcessor for tests. Outputs are derived
// from the inputs so tests can tell which file went where.
type PdfProcessor struct {
	Pages int

	CompressErr  error
	MergeErr     error
	PageCountErr error
	ExtractErr   error

	Levels    []model.CompressionLevel
	Merged    []string
	Extracted [][2]int
}

func (p *PdfProcessor) Compress(rs io.ReadSeeker, level model.CompressionLevel) ([]byte, error) {
	p.Levels = append(p.Levels, level)
	if p.CompressErr != nil {
		return nil, p.CompressErr
	}
	data, err := io.ReadAll(rs)
	if err != nil {
		return nil, err
	}
	return append([]byte("compressed:"), data...), nil
}

func (p *PdfProcessor) Merge(rs []io.ReadSeeker) ([]byte, error) {
	if p.MergeErr != nil {
		return nil, p.MergeErr
	}
	var out []byte
	for _, r := range rs {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		p.Merged = append(p.Merged, string(data))
		out = append(out, data...)
	}
	return out, nil
}

func (p *PdfProcessor) PageCount(ra io.ReaderAt, size int64) (int, error) {
	if p.PageCountErr != nil {
		return 0, p.PageCountErr
	}
	return p.Pages, nil
}

func (p *PdfProcessor) ExtractPages(rs io.ReadSeeker, start, end int) ([]byte, error) {
	p.Extracted = append(p.Extracted, [2]int{start, end})
	if p.ExtractErr != nil {
		return nil, p.ExtractErr
	}
	return []byte(fmt.Sprintf("pages %d-%d", start, end)), nil
}
