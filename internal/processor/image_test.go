package processor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type fakeWebP struct {
	quality int
	err     error
}

func (f *fakeWebP) Encode(w io.Writer, img image.Image, quality int) error {
	f.quality = quality
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("webp"))
	return err
}

func intPtr(i int) *int { return &i }

func fmtPtr(f model.ImageFormat) *model.ImageFormat { return &f }

// generatePNG returns a w×h PNG; when transparent is set the left half is fully transparent.
func generatePNG(t *testing.T, w, h int, transparent bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			c := color.NRGBA{R: 200, G: 30, B: 30, A: 255}
			if transparent && x < w/2 {
				c = color.NRGBA{}
			}
			img.Set(x, y, c)
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func generateJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{G: 255, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         *int
		wantW, wantH int
	}{
		{"both", intPtr(50), intPtr(10), 50, 10},
		{"width only", intPtr(200), nil, 200, 100},
		{"height only", nil, intPtr(25), 50, 25},
		{"clamped to one", intPtr(1), nil, 1, 1},
		{"none", nil, nil, 400, 200},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := targetSize(400, 200, tc.w, tc.h)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestPngLevel(t *testing.T) {
	tests := []struct {
		quality *int
		want    png.CompressionLevel
	}{
		{nil, png.DefaultCompression},
		{intPtr(100), png.NoCompression},
		{intPtr(80), png.BestSpeed},
		{intPtr(50), png.DefaultCompression},
		{intPtr(0), png.BestCompression},
		{intPtr(20), png.BestCompression},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, pngLevel(tc.quality))
	}
}

func TestOutputFormat(t *testing.T) {
	assert.Equal(t, model.FormatPNG, outputFormat("png", nil))
	assert.Equal(t, model.FormatWEBP, outputFormat("jpeg", fmtPtr(model.FormatWEBP)))
	assert.Equal(t, model.FormatJPEG, outputFormat("ico", nil))
	assert.Equal(t, model.FormatJPEG, outputFormat("png", fmtPtr("XCF")))
}

func TestProcess_ResizeKeepsSourceFormat(t *testing.T) {
	p := NewImageProcessor(&fakeWebP{}, 0)
	out, format, err := p.Process(bytes.NewReader(generatePNG(t, 40, 20, false)), port.ImageOptions{Width: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, model.FormatPNG, format)

	img, name, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", name)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestProcess_JPEGFlattensOntoWhite(t *testing.T) {
	p := NewImageProcessor(&fakeWebP{}, 0)
	opts := port.ImageOptions{TargetFormat: fmtPtr(model.FormatJPEG), Quality: intPtr(95)}
	out, format, err := p.Process(bytes.NewReader(generatePNG(t, 16, 16, true)), opts)
	require.NoError(t, err)
	assert.Equal(t, model.FormatJPEG, format)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	r, g, b, _ := img.At(2, 8).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestProcess_GIFKeepsTransparency(t *testing.T) {
	p := NewImageProcessor(&fakeWebP{}, 0)
	opts := port.ImageOptions{TargetFormat: fmtPtr(model.FormatGIF)}
	out, format, err := p.Process(bytes.NewReader(generatePNG(t, 16, 16, true)), opts)
	require.NoError(t, err)
	assert.Equal(t, model.FormatGIF, format)

	img, err := gif.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	_, _, _, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0), a)
	_, _, _, a = img.At(14, 1).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestProcess_OtherEncoders(t *testing.T) {
	p := NewImageProcessor(&fakeWebP{}, 0)
	src := generateJPEG(t, 8, 8)

	t.Run("bmp", func(t *testing.T) {
		out, _, err := p.Process(bytes.NewReader(src), port.ImageOptions{TargetFormat: fmtPtr(model.FormatBMP)})
		require.NoError(t, err)
		_, err = bmp.Decode(bytes.NewReader(out))
		assert.NoError(t, err)
	})

	t.Run("tiff", func(t *testing.T) {
		out, _, err := p.Process(bytes.NewReader(src), port.ImageOptions{TargetFormat: fmtPtr(model.FormatTIFF)})
		require.NoError(t, err)
		img, err := tiff.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 8, img.Bounds().Dx())
	})

	t.Run("jpeg source stays jpeg", func(t *testing.T) {
		_, format, err := p.Process(bytes.NewReader(src), port.ImageOptions{Quality: intPtr(40)})
		require.NoError(t, err)
		assert.Equal(t, model.FormatJPEG, format)
	})
}

func TestProcess_WebPQuality(t *testing.T) {
	enc := &fakeWebP{}
	p := NewImageProcessor(enc, 0)

	out, format, err := p.Process(bytes.NewReader(generateJPEG(t, 4, 4)), port.ImageOptions{TargetFormat: fmtPtr(model.FormatWEBP)})
	require.NoError(t, err)
	assert.Equal(t, model.FormatWEBP, format)
	assert.Equal(t, "webp", string(out))
	assert.Equal(t, defaultQuality, enc.quality)

	_, _, err = p.Process(bytes.NewReader(generateJPEG(t, 4, 4)), port.ImageOptions{TargetFormat: fmtPtr(model.FormatWEBP), Quality: intPtr(30)})
	require.NoError(t, err)
	assert.Equal(t, 30, enc.quality)
}

func TestProcess_Errors(t *testing.T) {
	t.Run("undecodable", func(t *testing.T) {
		p := NewImageProcessor(&fakeWebP{}, 0)
		_, _, err := p.Process(bytes.NewReader([]byte("plain text")), port.ImageOptions{})
		assert.Error(t, err)
	})

	t.Run("encoder failure", func(t *testing.T) {
		boom := errors.New("boom")
		p := NewImageProcessor(&fakeWebP{err: boom}, 0)
		_, _, err := p.Process(bytes.NewReader(generateJPEG(t, 4, 4)), port.ImageOptions{TargetFormat: fmtPtr(model.FormatWEBP)})
		assert.ErrorIs(t, err, boom)
	})
}

func TestChaiWebPEncoder_RoundTrip(t *testing.T) {
	p := NewImageProcessor(NewWebPEncoder(), 0)
	out, format, err := p.Process(bytes.NewReader(generatePNG(t, 8, 8, false)), port.ImageOptions{TargetFormat: fmtPtr(model.FormatWEBP)})
	require.NoError(t, err)
	assert.Equal(t, model.FormatWEBP, format)

	_, name, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "webp", name)

	// RIFF header, then the first chunk: "VP8 " is lossy, "VP8L" lossless
	require.Greater(t, len(out), 16)
	assert.Equal(t, "VP8 ", string(out[12:16]))
}

func TestProcess_PixelBudget(t *testing.T) {
	t.Run("resize target above budget is refused before allocating", func(t *testing.T) {
		p := NewImageProcessor(&fakeWebP{}, 0)
		huge := 1 << 20
		_, _, err := p.Process(bytes.NewReader(generatePNG(t, 4, 4, false)), port.ImageOptions{Width: &huge, Height: &huge})
		assert.ErrorIs(t, err, ErrTooManyPixels)
	})

	t.Run("width only resize derives a height over budget", func(t *testing.T) {
		p := NewImageProcessor(&fakeWebP{}, 1000)
		_, _, err := p.Process(bytes.NewReader(generatePNG(t, 10, 100, false)), port.ImageOptions{Width: intPtr(50)})
		assert.ErrorIs(t, err, ErrTooManyPixels)
	})

	t.Run("source above budget is refused before decoding", func(t *testing.T) {
		p := NewImageProcessor(&fakeWebP{}, 100)
		_, _, err := p.Process(bytes.NewReader(generatePNG(t, 20, 20, false)), port.ImageOptions{})
		assert.ErrorIs(t, err, ErrTooManyPixels)
	})

	t.Run("canvas at the budget is accepted", func(t *testing.T) {
		p := NewImageProcessor(&fakeWebP{}, 400)
		out, _, err := p.Process(bytes.NewReader(generatePNG(t, 10, 10, false)), port.ImageOptions{Width: intPtr(20), Height: intPtr(20)})
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 20, img.Bounds().Dx())
	})
}
