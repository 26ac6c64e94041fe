package imagetool

import "time"

const (
	uploadPrefix    = "image_tool_uploads"
	processedPrefix = "image_tool_processed"
)

// Config holds the limits shared by the image tool use cases.
type Config struct {
	MaxUploadSize  int64
	DownloadURLTTL time.Duration
	// MaxDimension bounds the requested width and height. Zero disables the check.
	MaxDimension int
}

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"image/bmp":  {},
	"image/tiff": {},
}

func isAllowedMimeType(mt string) bool {
	_, ok := allowedMimeTypes[mt]
	return ok
}
