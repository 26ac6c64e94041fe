package model

import (
	"strings"
	"time"

	"github.com/opustools/opustools-go/internal/uuid"
)

type ImageToolType string

const (
	ImageCompressor ImageToolType = "image_compressor"
	ImageResizer    ImageToolType = "image_resizer"
	ImageConverter  ImageToolType = "image_converter"
)

type ImageFormat string

const (
	FormatJPEG ImageFormat = "JPEG"
	FormatPNG  ImageFormat = "PNG"
	FormatWEBP ImageFormat = "WEBP"
	FormatGIF  ImageFormat = "GIF"
	FormatBMP  ImageFormat = "BMP"
	FormatTIFF ImageFormat = "TIFF"
)

var ImageFormats = []ImageFormat{FormatJPEG, FormatPNG, FormatWEBP, FormatGIF, FormatBMP, FormatTIFF}

// ParseImageFormat normalises s and reports whether it names a supported format.
// "JPG" and "TIF" are accepted as aliases.
func ParseImageFormat(s string) (ImageFormat, bool) {
	up := strings.ToUpper(strings.TrimSpace(s))
	switch up {
	case "JPG":
		up = string(FormatJPEG)
	case "TIF":
		up = string(FormatTIFF)
	}
	for _, f := range ImageFormats {
		if string(f) == up {
			return f, true
		}
	}
	return "", false
}

// Extension returns the lower-case file extension for f, without the dot.
func (f ImageFormat) Extension() string {
	return strings.ToLower(string(f))
}

// MimeType returns the Content-Type written for f.
func (f ImageFormat) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWEBP:
		return "image/webp"
	case FormatGIF:
		return "image/gif"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// ImageJob is one compress/resize/convert request on a single uploaded image.
type ImageJob struct {
	ID           uuid.UUID
	UserID       *uuid.UUID
	UploadedFile UploadedFile
	ToolType     ImageToolType
	Quality      *int
	Width        *int
	Height       *int
	TargetFormat *ImageFormat
	Status       JobStatus
	OutputKey    *string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
