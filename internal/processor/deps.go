package processor

import (
	"image"
	"io"

	"github.com/chai2010/webp"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type WebPEncoder interface {
	Encode(w io.Writer, img image.Image, quality int) error
}

// PDFEngine is the set of PDF primitives the processor is built on.
type PDFEngine interface {
	Optimize(rs io.ReadSeeker, w io.Writer, conf *pdfmodel.Configuration) error
	Merge(rs []io.ReadSeeker, w io.Writer, conf *pdfmodel.Configuration) error
	Trim(rs io.ReadSeeker, w io.Writer, pages []string, conf *pdfmodel.Configuration) error
	PageCount(ra io.ReaderAt, size int64) (int, error)
}

type chaiWebPEncoder struct{}

// NewWebPEncoder returns a lossy libwebp encoder.
func NewWebPEncoder() WebPEncoder {
	return chaiWebPEncoder{}
}

func (chaiWebPEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
}

type pdfcpuEngine struct{}

// NewPDFEngine returns the pdfcpu backed engine. Page counting goes through
// ledongthuc/pdf, which only needs the cross-reference table.
func NewPDFEngine() PDFEngine {
	api.DisableConfigDir()
	return pdfcpuEngine{}
}

func (pdfcpuEngine) Optimize(rs io.ReadSeeker, w io.Writer, conf *pdfmodel.Configuration) error {
	return api.Optimize(rs, w, conf)
}

func (pdfcpuEngine) Merge(rs []io.ReadSeeker, w io.Writer, conf *pdfmodel.Configuration) error {
	return api.MergeRaw(rs, w, false, conf)
}

func (pdfcpuEngine) Trim(rs io.ReadSeeker, w io.Writer, pages []string, conf *pdfmodel.Configuration) error {
	return api.Trim(rs, w, pages, conf)
}

func (pdfcpuEngine) PageCount(ra io.ReaderAt, size int64) (int, error) {
	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}
