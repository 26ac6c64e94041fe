package pdftool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/validation"
)

type jobCreatorSrv struct {
	uploads port.UploadedFileRepository
	jobs    port.PdfJobRepository
	strg    port.Storage
	tasks   port.TaskDispatcher
	cache   port.Cache
	uuidGen port.UUIDGen
	cfg     Config
}

func NewJobCreator(
	uploads port.UploadedFileRepository,
	jobs port.PdfJobRepository,
	strg port.Storage,
	tasks port.TaskDispatcher,
	cache port.Cache,
	uuidGen port.UUIDGen,
	cfg Config,
) port.PdfJobCreator {
	return &jobCreatorSrv{uploads, jobs, strg, tasks, cache, uuidGen, cfg}
}

type jobParams struct {
	toolType   model.PdfToolType
	level      *model.CompressionLevel
	pageRanges *string
	mergeOrder model.MergeOrder
}

func (s *jobCreatorSrv) CreatePdfJob(ctx context.Context, in port.CreatePdfJobInput) (port.PdfJobOutput, error) {
	params, err := s.validate(in)
	if err != nil {
		return port.PdfJobOutput{}, err
	}

	now := time.Now().UTC()
	files := make([]model.UploadedFile, 0, len(in.Files))
	var stored []string
	for _, f := range in.Files {
		upload := model.UploadedFile{
			ID:               s.uuidGen(),
			OriginalFilename: safeFilename(f.Filename),
			MimeType:         f.MimeType,
			SizeBytes:        f.Size,
			UploadedAt:       now,
		}
		upload.ObjectKey = fmt.Sprintf("%s/%s/%s", uploadPrefix, upload.ID, upload.OriginalFilename)

		if err := s.strg.SaveFile(ctx, upload.ObjectKey, f.Content, f.Size, map[string]string{
			"Content-Type": pdfMimeType,
		}); err != nil {
			s.removeUploads(ctx, stored)
			return port.PdfJobOutput{}, fmt.Errorf("failed to store upload %q: %w", upload.ObjectKey, err)
		}
		stored = append(stored, upload.ObjectKey)

		if err := s.uploads.Create(ctx, &upload); err != nil {
			s.removeUploads(ctx, stored)
			return port.PdfJobOutput{}, fmt.Errorf("failed to record upload %q: %w", upload.ObjectKey, err)
		}
		files = append(files, upload)
	}

	job := &model.PdfJob{
		ID:               s.uuidGen(),
		UserID:           in.UserID,
		ToolType:         params.toolType,
		CompressionLevel: params.level,
		PageRanges:       params.pageRanges,
		MergeOrder:       params.mergeOrder,
		Status:           model.JobStatusPending,
		UploadedFiles:    files,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return port.PdfJobOutput{}, fmt.Errorf("failed to create pdf job: %w", err)
	}

	if err := s.tasks.EnqueueProcessPdf(ctx, job.ID); err != nil {
		msg := fmt.Sprintf("Failed to queue job: %v", err)
		job.Status = model.JobStatusFailed
		job.ErrorMessage = &msg
		if uErr := s.jobs.UpdateStatus(ctx, job); uErr != nil {
			logger.Errorf(ctx, "failed to mark pdf job #%s as failed: %v", job.ID, uErr)
		}
		invalidate(ctx, s.cache, job.ID)
		return port.PdfJobOutput{}, fmt.Errorf("%w: %v", ErrEnqueue, err)
	}

	logger.Infof(ctx, "pdf job #%s (%s, %d files) queued", job.ID, job.ToolType, len(files))
	return toOutput(ctx, s.strg, s.cfg.DownloadURLTTL, job), nil
}

func (s *jobCreatorSrv) removeUploads(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.strg.RemoveFile(ctx, key); err != nil {
			logger.Warnf(ctx, "failed to remove orphan upload %q: %v", key, err)
		}
	}
}

func (s *jobCreatorSrv) validate(in port.CreatePdfJobInput) (jobParams, error) {
	var p jobParams

	p.toolType = model.PdfToolType(strings.TrimSpace(in.ToolType))
	switch p.toolType {
	case model.PdfCompressor, model.PdfMerger:
		if len(in.Files) == 0 {
			return p, validation.NewError("error", "No files provided for this operation.")
		}
	case model.PdfSplitter:
		if len(in.Files) == 0 {
			return p, validation.NewError("error", "No file provided for this operation.")
		}
		if len(in.Files) > 1 {
			return p, validation.NewError("file", "Upload a single PDF file for splitting.")
		}
	default:
		return p, validation.NewError("error",
			"tool_type is required and must be 'file_compressor', 'pdf_merger', or 'pdf_splitter'.")
	}

	for _, f := range in.Files {
		if f == nil {
			return p, validation.NewError("files", "No file was submitted.")
		}
		if s.cfg.MaxUploadSize > 0 && f.Size > s.cfg.MaxUploadSize {
			return p, validation.NewError("files", fmt.Sprintf("File too large. Maximum size is %d bytes.", s.cfg.MaxUploadSize))
		}
		if f.MimeType != pdfMimeType {
			return p, validation.NewError("files", fmt.Sprintf("%s is not a valid PDF file.", safeFilename(f.Filename)))
		}
	}

	switch p.toolType {
	case model.PdfCompressor:
		lvl := model.CompressionLevel(strings.ToLower(strings.TrimSpace(in.CompressionLevel)))
		switch lvl {
		case "":
			return p, validation.NewError("compression_level", "This field is required for file compression.")
		case model.CompressionHigh, model.CompressionMedium, model.CompressionLow:
			p.level = &lvl
		default:
			return p, validation.NewError("compression_level", fmt.Sprintf("%q is not a valid choice.", in.CompressionLevel))
		}
	case model.PdfMerger:
		if len(in.Files) < 2 {
			return p, validation.NewError("files", "Merging requires at least two PDF files.")
		}
		raw := strings.TrimSpace(in.MergeOrder)
		if raw == "" {
			return p, validation.NewError("merge_order", "This field is required for PDF merging.")
		}
		var order []string
		if err := json.Unmarshal([]byte(raw), &order); err != nil {
			return p, validation.NewError("merge_order", "Invalid JSON format.")
		}
		p.mergeOrder = order
	case model.PdfSplitter:
		ranges := strings.TrimSpace(in.PageRanges)
		if ranges == "" {
			return p, validation.NewError("page_ranges", "This field is required for PDF splitting.")
		}
		p.pageRanges = &ranges
	}
	return p, nil
}
