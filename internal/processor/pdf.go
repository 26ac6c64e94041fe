package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type PdfProcessor struct {
	engine PDFEngine
}

var _ port.PdfProcessor = (*PdfProcessor)(nil)

func NewPdfProcessor(engine PDFEngine) *PdfProcessor {
	logger.Info(context.Background(), "initialising pdf processor...")
	return &PdfProcessor{engine: engine}
}

// baseConfig writes a classic xref table so the output stays readable by
// simple parsers.
func baseConfig() *pdfmodel.Configuration {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// compressionConfig returns the optimisation settings for level. Each level
// includes everything the one below it does.
func compressionConfig(level model.CompressionLevel) *pdfmodel.Configuration {
	conf := baseConfig()
	conf.Optimize = true
	conf.OptimizeResourceDicts = false
	conf.OptimizeDuplicateContentStreams = false

	switch level {
	case model.CompressionHigh:
		conf.WriteObjectStream = true
		conf.WriteXRefStream = true
		fallthrough
	case model.CompressionMedium:
		conf.OptimizeResourceDicts = true
		conf.OptimizeDuplicateContentStreams = true
	}
	return conf
}

func (p *PdfProcessor) Compress(rs io.ReadSeeker, level model.CompressionLevel) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := p.engine.Optimize(rs, buf, compressionConfig(level)); err != nil {
		return nil, fmt.Errorf("processor: pdf optimisation failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Merge concatenates rs in the given order.
func (p *PdfProcessor) Merge(rs []io.ReadSeeker) ([]byte, error) {
	if len(rs) == 0 {
		return nil, fmt.Errorf("processor: nothing to merge")
	}
	buf := &bytes.Buffer{}
	if err := p.engine.Merge(rs, buf, baseConfig()); err != nil {
		return nil, fmt.Errorf("processor: pdf merge failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *PdfProcessor) PageCount(ra io.ReaderAt, size int64) (int, error) {
	n, err := p.engine.PageCount(ra, size)
	if err != nil {
		return 0, fmt.Errorf("processor: failed to read pdf: %w", err)
	}
	return n, nil
}

// ExtractPages keeps the 1-based inclusive page range start..end.
func (p *PdfProcessor) ExtractPages(rs io.ReadSeeker, start, end int) ([]byte, error) {
	if start < 1 || end < start {
		return nil, fmt.Errorf("processor: invalid page range %d-%d", start, end)
	}
	sel := fmt.Sprintf("%d-%d", start, end)
	if start == end {
		sel = fmt.Sprintf("%d", start)
	}
	buf := &bytes.Buffer{}
	if err := p.engine.Trim(rs, buf, []string{sel}, baseConfig()); err != nil {
		return nil, fmt.Errorf("processor: failed to extract pages %s: %w", sel, err)
	}
	return buf.Bytes(), nil
}
