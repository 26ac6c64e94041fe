package mariadb

import (
	"context"
	"database/sql"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

type ImageJobRepository struct {
	db *sql.DB
}

var _ port.ImageJobRepository = (*ImageJobRepository)(nil)

func NewImageJobRepository(db *sql.DB) *ImageJobRepository {
	return &ImageJobRepository{db: db}
}

// Create inserts the job row. The uploaded file must already exist.
func (r *ImageJobRepository) Create(ctx context.Context, job *model.ImageJob) error {
	logger.Debugf(ctx, "creating database record for image job #%s, at status %q...", job.ID, job.Status)

	const query = `
      INSERT INTO image_jobs
        (id, user_id, uploaded_file_id, tool_type, quality, width, height, target_format, status, created_at, updated_at)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.UserID, job.UploadedFile.ID,
		job.ToolType, job.Quality, job.Width, job.Height, job.TargetFormat,
		job.Status, job.CreatedAt, job.UpdatedAt,
	)
	return mapErr(err)
}

func (r *ImageJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ImageJob, error) {
	logger.Debugf(ctx, "fetching image job #%s from the database...", id)

	const query = `
      SELECT j.id, j.user_id, j.tool_type, j.quality, j.width, j.height, j.target_format,
             j.status, j.output_key, j.error_message, j.created_at, j.updated_at,
             f.id, f.object_key, f.original_filename, f.mime_type, f.size_bytes, f.uploaded_at
      FROM image_jobs j
      JOIN uploaded_files f ON f.id = j.uploaded_file_id
      WHERE j.id = ?
    `
	var job model.ImageJob
	f := &job.UploadedFile
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.UserID, &job.ToolType, &job.Quality, &job.Width, &job.Height, &job.TargetFormat,
		&job.Status, &job.OutputKey, &job.ErrorMessage, &job.CreatedAt, &job.UpdatedAt,
		&f.ID, &f.ObjectKey, &f.OriginalFilename, &f.MimeType, &f.SizeBytes, &f.UploadedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *ImageJobRepository) UpdateStatus(ctx context.Context, job *model.ImageJob) error {
	logger.Debugf(ctx, "updating image job #%s to status %q...", job.ID, job.Status)

	const query = `
      UPDATE image_jobs
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
