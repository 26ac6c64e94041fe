package mariadb

import (
	"context"
	"database/sql"

	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
)

type UploadedFileRepository struct {
	db *sql.DB
}

var _ port.UploadedFileRepository = (*UploadedFileRepository)(nil)

func NewUploadedFileRepository(db *sql.DB) *UploadedFileRepository {
	return &UploadedFileRepository{db: db}
}

func (r *UploadedFileRepository) Create(ctx context.Context, f *model.UploadedFile) error {
	logger.Debugf(ctx, "creating database record for upload #%s (%s)...", f.ID, f.OriginalFilename)

	const query = `
      INSERT INTO uploaded_files
        (id, object_key, original_filename, mime_type, size_bytes, uploaded_at)
      VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.ObjectKey, f.OriginalFilename, f.MimeType, f.SizeBytes, f.UploadedAt,
	)
	return mapErr(err)
}
