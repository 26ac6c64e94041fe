package mariadb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

type PdfJobRepository struct {
	db *sql.DB
}

var _ port.PdfJobRepository = (*PdfJobRepository)(nil)

func NewPdfJobRepository(db *sql.DB) *PdfJobRepository {
	return &PdfJobRepository{db: db}
}

// Create inserts the job and links its uploaded files in slice order, in one
// transaction.
func (r *PdfJobRepository) Create(ctx context.Context, job *model.PdfJob) (err error) {
	logger.Debugf(ctx, "creating database record for pdf job #%s with %d file(s)...", job.ID, len(job.UploadedFiles))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const jobQuery = `
      INSERT INTO pdf_jobs
        (id, user_id, tool_type, compression_level, page_ranges, merge_order, status, created_at, updated_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	if _, err = tx.ExecContext(ctx, jobQuery,
		job.ID, job.UserID, job.ToolType, job.CompressionLevel, job.PageRanges,
		job.MergeOrder, job.Status, job.CreatedAt, job.UpdatedAt,
	); err != nil {
		return mapErr(err)
	}

	const linkQuery = `INSERT INTO pdf_job_files (job_id, uploaded_file_id, position) VALUES (?, ?, ?)`
	for i, f := range job.UploadedFiles {
		if _, err = tx.ExecContext(ctx, linkQuery, job.ID, f.ID, i); err != nil {
			return mapErr(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PdfJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PdfJob, error) {
	logger.Debugf(ctx, "fetching pdf job #%s from the database...", id)

	const jobQuery = `
      SELECT id, user_id, tool_type, compression_level, page_ranges, merge_order,
             status, output_key, error_message, created_at, updated_at
      FROM pdf_jobs
      WHERE id = ?
    `
	var job model.PdfJob
	if err := r.db.QueryRowContext(ctx, jobQuery, id).Scan(
		&job.ID, &job.UserID, &job.ToolType, &job.CompressionLevel, &job.PageRanges, &job.MergeOrder,
		&job.Status, &job.OutputKey, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
	); err != nil {
		return nil, err
	}

	const filesQuery = `
      SELECT f.id, f.object_key, f.original_filename, f.mime_type, f.size_bytes, f.uploaded_at
      FROM pdf_job_files jf
      JOIN uploaded_files f ON f.id = jf.uploaded_file_id
      WHERE jf.job_id = ?
      ORDER BY jf.position
    `
	rows, err := r.db.QueryContext(ctx, filesQuery, id)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var f model.UploadedFile
		if err := rows.Scan(&f.ID, &f.ObjectKey, &f.OriginalFilename, &f.MimeType, &f.SizeBytes, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		job.UploadedFiles = append(job.UploadedFiles, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return &job, nil
}

func (r *PdfJobRepository) UpdateStatus(ctx context.Context, job *model.PdfJob) error {
	logger.Debugf(ctx, "updating pdf job #%s to status %q...", job.ID, job.Status)

	const query = `
      UPDATE pdf_jobs
      SET
        status        = ?,
        output_key    = ?,
        error_message = ?
      WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		job.Status, job.OutputKey, job.ErrorMessage,
		job.ID, // WHERE clause
	)
	return err
}
