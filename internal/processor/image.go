package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const defaultQuality = 85

// DefaultMaxPixels bounds decoded and resized canvases, about 340 MiB as NRGBA.
const DefaultMaxPixels = 89478485

var ErrTooManyPixels = errors.New("image exceeds the pixel budget")

type ImageProcessor struct {
	webpEnc   WebPEncoder
	maxPixels int
}

var _ port.ImageProcessor = (*ImageProcessor)(nil)

// NewImageProcessor returns a processor refusing to decode or allocate any
// canvas larger than maxPixels. A non-positive maxPixels means DefaultMaxPixels.
func NewImageProcessor(webpEnc WebPEncoder, maxPixels int) *ImageProcessor {
	logger.Info(context.Background(), "initialising image processor...")
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &ImageProcessor{webpEnc: webpEnc, maxPixels: maxPixels}
}

// Process decodes r, applies the optional resize and re-encodes the result.
// The returned format is the one actually written.
func (p *ImageProcessor) Process(r io.Reader, opts port.ImageOptions) ([]byte, model.ImageFormat, error) {
	// the header is read twice: once for the size check, once to decode
	head := &bytes.Buffer{}
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, head))
	if err != nil {
		return nil, "", fmt.Errorf("processor: failed to decode image: %w", err)
	}
	if err := p.fits(cfg.Width, cfg.Height); err != nil {
		return nil, "", fmt.Errorf("processor: source is %dx%d: %w", cfg.Width, cfg.Height, err)
	}

	img, srcName, err := image.Decode(io.MultiReader(head, r))
	if err != nil {
		return nil, "", fmt.Errorf("processor: failed to decode image: %w", err)
	}

	if b := img.Bounds(); (opts.Width != nil || opts.Height != nil) && b.Dx() > 0 && b.Dy() > 0 {
		w, h := targetSize(b.Dx(), b.Dy(), opts.Width, opts.Height)
		if err := p.fits(w, h); err != nil {
			return nil, "", fmt.Errorf("processor: resize to %dx%d: %w", w, h, err)
		}
		img = resize(img, w, h)
	}

	format := outputFormat(srcName, opts.TargetFormat)
	if format == model.FormatJPEG || format == model.FormatBMP {
		img = flatten(img)
	}

	buf := &bytes.Buffer{}
	if err := p.encode(buf, img, format, opts.Quality); err != nil {
		return nil, "", fmt.Errorf("processor: failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), format, nil
}

func (p *ImageProcessor) encode(w io.Writer, img image.Image, format model.ImageFormat, quality *int) error {
	switch format {
	case model.FormatPNG:
		enc := &png.Encoder{CompressionLevel: pngLevel(quality)}
		return enc.Encode(w, img)
	case model.FormatWEBP:
		return p.webpEnc.Encode(w, img, qualityOr(quality, defaultQuality))
	case model.FormatGIF:
		return encodeGIF(w, img)
	case model.FormatBMP:
		return bmp.Encode(w, img)
	case model.FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: qualityOr(quality, defaultQuality)})
	}
}

// outputFormat picks the target when set, else the decoded source format.
// Anything unknown ends up as JPEG.
func outputFormat(srcName string, target *model.ImageFormat) model.ImageFormat {
	if target != nil {
		if f, ok := model.ParseImageFormat(string(*target)); ok {
			return f
		}
		return model.FormatJPEG
	}
	if f, ok := model.ParseImageFormat(srcName); ok {
		return f
	}
	return model.FormatJPEG
}

// targetSize returns the output dimensions, keeping the aspect ratio when only
// one side is given.
func targetSize(origW, origH int, width, height *int) (int, int) {
	w, h := origW, origH
	switch {
	case width != nil && height != nil:
		w, h = *width, *height
	case width != nil:
		w = *width
		h = origH * *width / origW
	case height != nil:
		h = *height
		w = origW * *height / origH
	}
	return max(w, 1), max(h, 1)
}

// fits reports whether a w×h canvas stays within the pixel budget.
func (p *ImageProcessor) fits(w, h int) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if int64(w) > int64(p.maxPixels)/int64(h) {
		return ErrTooManyPixels
	}
	return nil
}

func resize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// flatten composes img over an opaque white background.
func flatten(img image.Image) image.Image {
	if isOpaque(img) {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

func encodeGIF(w io.Writer, img image.Image) error {
	if isOpaque(img) {
		return gif.Encode(w, img, &gif.Options{NumColors: 256, Drawer: draw.FloydSteinberg})
	}
	// index 0 is reserved for fully transparent pixels
	pal := make(color.Palette, 0, 256)
	pal = append(pal, color.Transparent)
	pal = append(pal, palette.Plan9[:255]...)

	b := img.Bounds()
	dst := image.NewPaletted(b, pal)
	draw.FloydSteinberg.Draw(dst, b, img, b.Min)
	return gif.Encode(w, dst, nil)
}

// pngLevel maps a 0..100 quality to zlib effort: 9 - round(q/100*9),
// bucketed onto the levels image/png exposes.
func pngLevel(quality *int) png.CompressionLevel {
	if quality == nil {
		return png.DefaultCompression
	}
	lvl := 9 - int(math.Round(float64(*quality)/100*9))
	switch {
	case lvl <= 0:
		return png.NoCompression
	case lvl <= 3:
		return png.BestSpeed
	case lvl <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

func qualityOr(q *int, def int) int {
	if q == nil {
		return def
	}
	return *q
}
