package integration

import (
	"bytes"
	"context"
	"image"
	_ "image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/opustools/opustools-go/internal/cache"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/repository/mariadb"
	"github.com/opustools/opustools-go/internal/storage"
	"github.com/opustools/opustools-go/internal/task"
	"github.com/opustools/opustools-go/internal/usecase/imagetool"
	"github.com/opustools/opustools-go/internal/uuid"
	"github.com/opustools/opustools-go/test/testutil"
)

type imageEnv struct {
	creator    port.ImageJobCreator
	uploads    *mariadb.UploadedFileRepository
	jobs       *mariadb.ImageJobRepository
	strg       *storage.MinioStorage
	dispatcher *task.Dispatcher
}

func setupImageWorker(t *testing.T) imageEnv {
	t.Helper()

	dbConn := newTestDB(t).DB
	strg := newStorage(t)
	dispatcher := task.NewDispatcher(RedisAddr, "")
	t.Cleanup(func() { _ = dispatcher.Close() })

	uploads := mariadb.NewUploadedFileRepository(dbConn)
	jobs := mariadb.NewImageJobRepository(dbConn)
	creator := imagetool.NewJobCreator(
		uploads, jobs, strg, dispatcher,
		cache.NewCache(RedisAddr, ""), uuid.NewUUID,
		imagetool.Config{MaxUploadSize: 10 << 20, DownloadURLTTL: time.Minute},
	)

	stop := testutil.StartWorker(dbConn, strg, RedisAddr)
	t.Cleanup(stop)

	return imageEnv{creator: creator, uploads: uploads, jobs: jobs, strg: strg, dispatcher: dispatcher}
}

func waitImageJob(t *testing.T, repo *mariadb.ImageJobRepository, id uuid.UUID) *model.ImageJob {
	t.Helper()
	deadline := time.Now().Add(15 * time.Second)
	for {
		job, err := repo.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if job.Status.IsFinal() {
			return job
		}
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for image job %s (status %s)", id, job.Status)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func pngUpload(t *testing.T, name string, w, h int) *port.Upload {
	content := testutil.GeneratePNG(t, w, h)
	return &port.Upload{Filename: name, MimeType: "image/png", Size: int64(len(content)), Content: bytes.NewReader(content)}
}

func TestImageTaskIntegration_ConvertToWebP(t *testing.T) {
	ctx := context.Background()
	env := setupImageWorker(t)

	out, err := env.creator.CreateImageJob(ctx, port.CreateImageJobInput{
		File:         pngUpload(t, "holiday.photo.png", 64, 32),
		ToolType:     string(model.ImageConverter),
		TargetFormat: "webp",
	})
	if err != nil {
		t.Fatalf("CreateImageJob: %v", err)
	}
	if out.Status != model.JobStatusPending {
		t.Errorf("initial status = %s; want PENDING", out.Status)
	}

	job := waitImageJob(t, env.jobs, out.ID)
	if job.Status != model.JobStatusCompleted {
		t.Fatalf("status = %s (%v); want COMPLETED", job.Status, job.ErrorMessage)
	}
	wantKey := "image_tool_processed/" + out.ID.String() + "/processed_holiday.photo.webp"
	if job.OutputKey == nil || *job.OutputKey != wantKey {
		t.Fatalf("OutputKey = %v; want %s", job.OutputKey, wantKey)
	}

	info, err := env.strg.StatFile(ctx, wantKey)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.ContentType != "image/webp" {
		t.Errorf("ContentType = %q; want image/webp", info.ContentType)
	}

	// the upload is kept until the daily cleanup
	if _, err := env.strg.StatFile(ctx, job.UploadedFile.ObjectKey); err != nil {
		t.Errorf("upload should still exist: %v", err)
	}
}

func TestImageTaskIntegration_ResizeKeepsAspectRatio(t *testing.T) {
	ctx := context.Background()
	env := setupImageWorker(t)

	out, err := env.creator.CreateImageJob(ctx, port.CreateImageJobInput{
		File:     pngUpload(t, "wide.png", 200, 100),
		ToolType: string(model.ImageResizer),
		Width:    "50",
	})
	if err != nil {
		t.Fatalf("CreateImageJob: %v", err)
	}

	job := waitImageJob(t, env.jobs, out.ID)
	if job.Status != model.JobStatusCompleted {
		t.Fatalf("status = %s (%v); want COMPLETED", job.Status, job.ErrorMessage)
	}
	if !strings.HasSuffix(*job.OutputKey, "/processed_wide.png") {
		t.Errorf("resizing must keep the source format, got %s", *job.OutputKey)
	}

	rc, err := env.strg.GetFile(ctx, *job.OutputKey)
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	defer func(rc io.ReadCloser) { _ = rc.Close() }(rc)
	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 50 || cfg.Height != 25 {
		t.Errorf("output dims = %dx%d; want 50x25", cfg.Width, cfg.Height)
	}
}

func TestImageTaskIntegration_MissingSourceFails(t *testing.T) {
	ctx := context.Background()
	env := setupImageWorker(t)

	// recorded upload whose object never reached the bucket
	upload := model.UploadedFile{
		ID:               uuid.NewUUID(),
		OriginalFilename: "gone.png",
		MimeType:         "image/png",
		SizeBytes:        10,
		UploadedAt:       time.Now().UTC(),
	}
	upload.ObjectKey = "image_tool_uploads/" + upload.ID.String() + "/gone.png"
	if err := env.uploads.Create(ctx, &upload); err != nil {
		t.Fatalf("create upload: %v", err)
	}
	job := &model.ImageJob{
		ID:           uuid.NewUUID(),
		UploadedFile: upload,
		ToolType:     model.ImageCompressor,
		Quality:      ptrInt(50),
		Status:       model.JobStatusPending,
	}
	if err := env.jobs.Create(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := env.dispatcher.EnqueueProcessImage(ctx, job.ID); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got := waitImageJob(t, env.jobs, job.ID)
	if got.Status != model.JobStatusFailed {
		t.Fatalf("status = %s; want FAILED", got.Status)
	}
	if got.ErrorMessage == nil || !strings.HasPrefix(*got.ErrorMessage, "Processing failed: Source file not found or accessible.") {
		t.Errorf("unexpected error message %v", got.ErrorMessage)
	}
	if got.OutputKey != nil {
		t.Errorf("failed job must not carry an output key, got %s", *got.OutputKey)
	}
}
