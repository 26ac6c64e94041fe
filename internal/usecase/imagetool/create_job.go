package imagetool

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/validation"
)

type jobCreatorSrv struct {
	uploads port.UploadedFileRepository
	jobs    port.ImageJobRepository
	strg    port.Storage
	tasks   port.TaskDispatcher
	cache   port.Cache
	uuidGen port.UUIDGen
	cfg     Config
}

func NewJobCreator(
	uploads port.UploadedFileRepository,
	jobs port.ImageJobRepository,
	strg port.Storage,
	tasks port.TaskDispatcher,
	cache port.Cache,
	uuidGen port.UUIDGen,
	cfg Config,
) port.ImageJobCreator {
	return &jobCreatorSrv{uploads, jobs, strg, tasks, cache, uuidGen, cfg}
}

type jobParams struct {
	toolType     model.ImageToolType
	quality      *int
	width        *int
	height       *int
	targetFormat *model.ImageFormat
}

func (s *jobCreatorSrv) CreateImageJob(ctx context.Context, in port.CreateImageJobInput) (port.ImageJobOutput, error) {
	params, err := s.validate(in)
	if err != nil {
		return port.ImageJobOutput{}, err
	}

	now := time.Now().UTC()
	upload := &model.UploadedFile{
		ID:               s.uuidGen(),
		OriginalFilename: safeFilename(in.File.Filename),
		MimeType:         in.File.MimeType,
		SizeBytes:        in.File.Size,
		UploadedAt:       now,
	}
	upload.ObjectKey = fmt.Sprintf("%s/%s/%s", uploadPrefix, upload.ID, upload.OriginalFilename)

	if err := s.strg.SaveFile(ctx, upload.ObjectKey, in.File.Content, in.File.Size, map[string]string{
		"Content-Type": upload.MimeType,
	}); err != nil {
		return port.ImageJobOutput{}, fmt.Errorf("failed to store upload %q: %w", upload.ObjectKey, err)
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		s.removeUpload(ctx, upload.ObjectKey)
		return port.ImageJobOutput{}, fmt.Errorf("failed to record upload %q: %w", upload.ObjectKey, err)
	}

	job := &model.ImageJob{
		ID:           s.uuidGen(),
		UserID:       in.UserID,
		UploadedFile: *upload,
		ToolType:     params.toolType,
		Quality:      params.quality,
		Width:        params.width,
		Height:       params.height,
		TargetFormat: params.targetFormat,
		Status:       model.JobStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return port.ImageJobOutput{}, fmt.Errorf("failed to create image job: %w", err)
	}

	if err := s.tasks.EnqueueProcessImage(ctx, job.ID); err != nil {
		msg := fmt.Sprintf("Failed to queue job: %v", err)
		job.Status = model.JobStatusFailed
		job.ErrorMessage = &msg
		if uErr := s.jobs.UpdateStatus(ctx, job); uErr != nil {
			logger.Errorf(ctx, "failed to mark image job #%s as failed: %v", job.ID, uErr)
		}
		invalidate(ctx, s.cache, job.ID)
		return port.ImageJobOutput{}, fmt.Errorf("%w: %v", ErrEnqueue, err)
	}

	logger.Infof(ctx, "image job #%s (%s) queued", job.ID, job.ToolType)
	return toOutput(ctx, s.strg, s.cfg.DownloadURLTTL, job), nil
}

func (s *jobCreatorSrv) removeUpload(ctx context.Context, key string) {
	if err := s.strg.RemoveFile(ctx, key); err != nil {
		logger.Warnf(ctx, "failed to remove orphan upload %q: %v", key, err)
	}
}

// validate checks the form in the order a client sees the messages: file,
// tool type, tool specific requirements, then the remaining optional fields.
func (s *jobCreatorSrv) validate(in port.CreateImageJobInput) (jobParams, error) {
	var p jobParams

	if in.File == nil {
		return p, validation.NewError("file", "No file provided.")
	}
	if s.cfg.MaxUploadSize > 0 && in.File.Size > s.cfg.MaxUploadSize {
		return p, validation.NewError("file", fmt.Sprintf("File too large. Maximum size is %d bytes.", s.cfg.MaxUploadSize))
	}
	if !isAllowedMimeType(in.File.MimeType) {
		return p, validation.NewError("file", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	tool := strings.TrimSpace(in.ToolType)
	if tool == "" {
		return p, validation.NewError("tool_type", "This field is required.")
	}
	p.toolType = model.ImageToolType(tool)

	switch p.toolType {
	case model.ImageResizer:
		if strings.TrimSpace(in.Width) == "" && strings.TrimSpace(in.Height) == "" {
			return p, validation.NewError("width", "At least one of 'width' or 'height' is required for image resizing.")
		}
	case model.ImageCompressor:
	case model.ImageConverter:
		if strings.TrimSpace(in.TargetFormat) == "" {
			return p, validation.NewError("target_format", "This field is required for format conversion.")
		}
	default:
		return p, validation.NewError("tool_type", fmt.Sprintf(
			"Invalid tool type: %s. Choices are 'image_resizer', 'image_compressor', 'image_converter'.", tool))
	}

	var (
		ok  bool
		err error
	)
	if p.quality, ok = optionalInt(in.Quality, 0, 100); !ok {
		return p, validation.NewError("quality", "Quality must be an integer between 0 and 100.")
	}
	if p.width, err = s.dimension("width", "Width", in.Width); err != nil {
		return p, err
	}
	if p.height, err = s.dimension("height", "Height", in.Height); err != nil {
		return p, err
	}
	if tf := strings.TrimSpace(in.TargetFormat); tf != "" {
		f, valid := model.ParseImageFormat(tf)
		if !valid {
			return p, validation.NewError("target_format", fmt.Sprintf("%q is not a valid choice.", tf))
		}
		p.targetFormat = &f
	}
	return p, nil
}

// dimension parses an optional resize side, capped at cfg.MaxDimension.
func (s *jobCreatorSrv) dimension(field, label, raw string) (*int, error) {
	n, ok := optionalInt(raw, 1, -1)
	if !ok {
		return nil, validation.NewError(field, label+" must be an integer.")
	}
	if n != nil && s.cfg.MaxDimension > 0 && *n > s.cfg.MaxDimension {
		return nil, validation.NewError(field, fmt.Sprintf("%s must not exceed %d pixels.", label, s.cfg.MaxDimension))
	}
	return n, nil
}

// optionalInt parses s when non-empty. hi < 0 means unbounded.
func optionalInt(s string, lo, hi int) (*int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || (hi >= 0 && n > hi) {
		return nil, false
	}
	return &n, true
}
