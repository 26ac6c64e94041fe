package pdftool

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/opustools/opustools-go/internal/archive"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/pagerange"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

// jobFailure carries a message meant for the job's error_message as is.
type jobFailure struct {
	msg string
}

func (f *jobFailure) Error() string { return f.msg }

func failure(format string, args ...any) error {
	return &jobFailure{msg: fmt.Sprintf(format, args...)}
}

type result struct {
	name        string
	contentType string
	data        []byte
}

type jobProcessorSrv struct {
	jobs  port.PdfJobRepository
	strg  port.Storage
	proc  port.PdfProcessor
	cache port.Cache
}

func NewJobProcessor(jobs port.PdfJobRepository, strg port.Storage, proc port.PdfProcessor, cache port.Cache) port.PdfJobProcessor {
	return &jobProcessorSrv{jobs, strg, proc, cache}
}

// ProcessPdfJob runs job id to completion. Failures are stored on the job;
// only a missing job or a failed status write is returned.
func (s *jobProcessorSrv) ProcessPdfJob(ctx context.Context, id uuid.UUID) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrJobNotFound
		}
		return err
	}
	if job.Status.IsFinal() {
		logger.Warnf(ctx, "pdf job #%s already %s, skipping", job.ID, job.Status)
		return nil
	}

	if err := s.setStatus(ctx, job, model.JobStatusProcessing, nil, nil); err != nil {
		return err
	}

	var res result
	switch job.ToolType {
	case model.PdfCompressor:
		res, err = s.compress(ctx, job)
	case model.PdfMerger:
		res, err = s.merge(ctx, job)
	case model.PdfSplitter:
		res, err = s.split(ctx, job)
	default:
		err = failure("Unsupported tool type: %s", job.ToolType)
	}
	if err != nil {
		var f *jobFailure
		if errors.As(err, &f) {
			return s.fail(ctx, job, f.msg)
		}
		return s.fail(ctx, job, internalError(err))
	}

	key := fmt.Sprintf("%s/%s/%s", processedPrefix, job.ID, res.name)
	if err := s.strg.SaveFile(ctx, key, bytes.NewReader(res.data), int64(len(res.data)), map[string]string{
		"Content-Type": res.contentType,
	}); err != nil {
		return s.fail(ctx, job, internalError(err))
	}

	if err := s.setStatus(ctx, job, model.JobStatusCompleted, &key, nil); err != nil {
		return err
	}
	logger.Infof(ctx, "pdf job #%s completed: %s", job.ID, key)
	return nil
}

func (s *jobProcessorSrv) compress(ctx context.Context, job *model.PdfJob) (result, error) {
	if len(job.UploadedFiles) == 0 {
		return result{}, failure("No files provided for PDF compression.")
	}
	if job.CompressionLevel == nil {
		return result{}, failure("No compression level specified for the job.")
	}

	names := uniqueNames{}
	entries := make([]archive.Entry, 0, len(job.UploadedFiles))
	for _, f := range job.UploadedFiles {
		src, err := s.load(ctx, f)
		if err != nil {
			return result{}, err
		}
		out, err := s.proc.Compress(bytes.NewReader(src), *job.CompressionLevel)
		if err != nil {
			return result{}, err
		}
		entries = append(entries, archive.Entry{
			Name: names.next(fmt.Sprintf("compressed_%s.pdf", baseName(f))),
			Data: out,
		})
	}

	if len(entries) == 1 {
		return result{name: entries[0].Name, contentType: pdfMimeType, data: entries[0].Data}, nil
	}
	zipped, err := archive.Zip(entries)
	if err != nil {
		return result{}, err
	}
	return result{name: "compressed_files.zip", contentType: zipMimeType, data: zipped}, nil
}

func (s *jobProcessorSrv) merge(ctx context.Context, job *model.PdfJob) (result, error) {
	if len(job.UploadedFiles) < 2 {
		return result{}, failure("Merging requires at least two PDF files.")
	}
	if len(job.MergeOrder) == 0 {
		return result{}, failure("Merge order is required for PDF merging jobs.")
	}

	byName := make(map[string]model.UploadedFile, len(job.UploadedFiles))
	for _, f := range job.UploadedFiles {
		byName[f.OriginalFilename] = f
	}

	var inputs []io.ReadSeeker
	for _, name := range job.MergeOrder {
		f, ok := byName[name]
		if !ok {
			logger.Warnf(ctx, "pdf job #%s: file %q not found in the uploaded files, skipping", job.ID, name)
			continue
		}
		src, err := s.load(ctx, f)
		if err != nil {
			return result{}, err
		}
		inputs = append(inputs, bytes.NewReader(src))
	}
	if len(inputs) == 0 {
		return result{}, failure("No files from merge order matched the uploaded files.")
	}

	out, err := s.proc.Merge(inputs)
	if err != nil {
		return result{}, err
	}
	return result{name: "merged_document.pdf", contentType: pdfMimeType, data: out}, nil
}

func (s *jobProcessorSrv) split(ctx context.Context, job *model.PdfJob) (result, error) {
	if len(job.UploadedFiles) != 1 {
		return result{}, failure("Splitting requires exactly one PDF file.")
	}
	if job.PageRanges == nil || *job.PageRanges == "" {
		return result{}, failure("Page ranges are required for PDF splitting jobs.")
	}

	f := job.UploadedFiles[0]
	src, err := s.load(ctx, f)
	if err != nil {
		return result{}, err
	}

	numPages, err := s.proc.PageCount(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return result{}, err
	}
	ranges, err := pagerange.Parse(*job.PageRanges, numPages)
	if err != nil {
		return result{}, failure("Invalid page range format: %v", err)
	}

	base := baseName(f)
	names := uniqueNames{}
	entries := make([]archive.Entry, 0, len(ranges))
	for _, r := range ranges {
		out, err := s.proc.ExtractPages(bytes.NewReader(src), r.Start, r.End)
		if err != nil {
			return result{}, err
		}
		name := fmt.Sprintf("%s_pages_%d-%d.pdf", base, r.Start, r.End)
		if r.Single() {
			name = fmt.Sprintf("%s_page_%d.pdf", base, r.Start)
		}
		entries = append(entries, archive.Entry{Name: names.next(name), Data: out})
	}

	zipped, err := archive.Zip(entries)
	if err != nil {
		return result{}, err
	}
	return result{name: fmt.Sprintf("split_%s.zip", base), contentType: zipMimeType, data: zipped}, nil
}

// load reads the stored upload f fully into memory.
func (s *jobProcessorSrv) load(ctx context.Context, f model.UploadedFile) ([]byte, error) {
	rc, err := s.strg.GetFile(ctx, f.ObjectKey)
	if err != nil {
		return nil, failure("Processing failed: Source file not found. Error: %v", err)
	}
	defer func(rc io.ReadCloser) {
		_ = rc.Close()
	}(rc)

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, failure("Processing failed: Source file not found. Error: %v", err)
	}
	return data, nil
}

func (s *jobProcessorSrv) fail(ctx context.Context, job *model.PdfJob, msg string) error {
	logger.Errorf(ctx, "pdf job #%s failed: %s", job.ID, msg)
	return s.setStatus(ctx, job, model.JobStatusFailed, nil, &msg)
}

func (s *jobProcessorSrv) setStatus(ctx context.Context, job *model.PdfJob, status model.JobStatus, key, msg *string) error {
	job.Status = status
	job.OutputKey = key
	job.ErrorMessage = msg
	if err := s.jobs.UpdateStatus(ctx, job); err != nil {
		return fmt.Errorf("failed to set pdf job #%s to %s: %w", job.ID, status, err)
	}
	invalidate(ctx, s.cache, job.ID)
	return nil
}

func internalError(err error) string {
	return fmt.Sprintf("Processing failed due to an internal error: %v", err)
}
