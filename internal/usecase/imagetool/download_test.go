package imagetool

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/opustools/opustools-go/internal/mock"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
)

func TestDownloadImageJob_Errors(t *testing.T) {
	key := "image_tool_processed/x/processed_a.png"
	tests := []struct {
		name string
		job  *model.ImageJob
		strg *mock.Storage
		want error
	}{
		{"not found", nil, &mock.Storage{}, ErrJobNotFound},
		{"pending", &model.ImageJob{Status: model.JobStatusPending}, &mock.Storage{}, ErrFileNotReady},
		{"failed", &model.ImageJob{Status: model.JobStatusFailed, ErrorMessage: strPtr("x")}, &mock.Storage{}, ErrFileNotReady},
		{"completed without key", &model.ImageJob{Status: model.JobStatusCompleted}, &mock.Storage{}, ErrFileNotReady},
		{"object gone", &model.ImageJob{Status: model.JobStatusCompleted, OutputKey: &key}, &mock.Storage{StatErr: port.ErrObjectNotFound}, ErrOutputMissing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewDownloader(&mock.ImageJobRepo{Job: tc.job}, tc.strg)
			if _, err := svc.DownloadImageJob(context.Background(), jobID); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDownloadImageJob_Success(t *testing.T) {
	key := "image_tool_processed/x/processed_a.png"
	strg := &mock.Storage{
		StatInfoOut: port.FileInfo{SizeBytes: 7, ContentType: "image/png"},
		Files:       map[string][]byte{key: []byte("pngdata")},
	}
	repo := &mock.ImageJobRepo{Job: &model.ImageJob{ID: jobID, Status: model.JobStatusCompleted, OutputKey: &key}}
	svc := NewDownloader(repo, strg)

	out, err := svc.DownloadImageJob(context.Background(), jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer out.Content.Close()

	if out.Filename != "processed_a.png" {
		t.Errorf("expected filename processed_a.png, got %q", out.Filename)
	}
	if out.SizeBytes != 7 {
		t.Errorf("expected size 7, got %d", out.SizeBytes)
	}
	data, _ := io.ReadAll(out.Content)
	if string(data) != "pngdata" {
		t.Errorf("unexpected content %q", data)
	}
}
