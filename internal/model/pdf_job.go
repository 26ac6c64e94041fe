package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opustools/opustools-go/internal/uuid"
)

type PdfToolType string

const (
	PdfCompressor PdfToolType = "file_compressor"
	PdfMerger     PdfToolType = "pdf_merger"
	PdfSplitter   PdfToolType = "pdf_splitter"
)

type CompressionLevel string

const (
	CompressionHigh   CompressionLevel = "high"
	CompressionMedium CompressionLevel = "medium"
	CompressionLow    CompressionLevel = "low"
)

// MergeOrder is the ordered list of original filenames a merge job follows.
type MergeOrder []string

func (m MergeOrder) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(m))
	if err != nil {
		return nil, fmt.Errorf("marshal MergeOrder: %w", err)
	}
	return b, nil
}

func (m *MergeOrder) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("MergeOrder.Scan: expected []byte, got %T", src)
	}
	if err := json.Unmarshal(data, (*[]string)(m)); err != nil {
		return fmt.Errorf("unmarshal MergeOrder: %w", err)
	}
	return nil
}

// PdfJob is one compress/merge/split request over one or more uploaded PDFs.
type PdfJob struct {
	ID               uuid.UUID
	UserID           *uuid.UUID
	ToolType         PdfToolType
	CompressionLevel *CompressionLevel
	PageRanges       *string
	MergeOrder       MergeOrder
	Status           JobStatus
	OutputKey        *string
	ErrorMessage     *string
	UploadedFiles    []UploadedFile
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
