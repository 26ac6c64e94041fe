package pdftool

import "time"

const (
	uploadPrefix    = "pdf_tool_uploads"
	processedPrefix = "pdf_tool_processed"
	pdfMimeType     = "application/pdf"
	zipMimeType     = "application/zip"
)

// Config holds the limits shared by the PDF tool use cases.
type Config struct {
	MaxUploadSize  int64
	DownloadURLTTL time.Duration
}
