package pdftool

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/opustools/opustools-go/internal/mock"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
)

func TestDownloadPdfJob_Errors(t *testing.T) {
	key := "pdf_tool_processed/x/split_a.zip"
	tests := []struct {
		name string
		repo *mock.PdfJobRepo
		strg *mock.Storage
		want error
	}{
		{"not found", &mock.PdfJobRepo{}, &mock.Storage{}, ErrJobNotFound},
		{"lookup fails", &mock.PdfJobRepo{GetErr: sql.ErrConnDone}, &mock.Storage{}, sql.ErrConnDone},
		{"processing", &mock.PdfJobRepo{Job: &model.PdfJob{Status: model.JobStatusProcessing}}, &mock.Storage{}, ErrFileNotReady},
		{"failed", &mock.PdfJobRepo{Job: &model.PdfJob{Status: model.JobStatusFailed, OutputKey: strPtr("")}}, &mock.Storage{}, ErrFileNotReady},
		{"completed without key", &mock.PdfJobRepo{Job: &model.PdfJob{Status: model.JobStatusCompleted}}, &mock.Storage{}, ErrFileNotReady},
		{"object gone", &mock.PdfJobRepo{Job: &model.PdfJob{Status: model.JobStatusCompleted, OutputKey: &key}}, &mock.Storage{StatErr: port.ErrObjectNotFound}, ErrOutputMissing},
		{"object gone between stat and get", &mock.PdfJobRepo{Job: &model.PdfJob{Status: model.JobStatusCompleted, OutputKey: &key}}, &mock.Storage{GetErr: port.ErrObjectNotFound}, ErrOutputMissing},
		{"storage unavailable", &mock.PdfJobRepo{Job: &model.PdfJob{Status: model.JobStatusCompleted, OutputKey: &key}}, &mock.Storage{StatErr: port.ErrInternal}, port.ErrInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewDownloader(tc.repo, tc.strg)
			if _, err := svc.DownloadPdfJob(context.Background(), jobID); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDownloadPdfJob_Success(t *testing.T) {
	key := "pdf_tool_processed/x/merged_document.pdf"
	strg := &mock.Storage{
		StatInfoOut: port.FileInfo{SizeBytes: 8, ContentType: "application/pdf"},
		Files:       map[string][]byte{key: []byte("%PDF-1.4")},
	}
	repo := &mock.PdfJobRepo{Job: &model.PdfJob{ID: jobID, Status: model.JobStatusCompleted, OutputKey: &key}}
	svc := NewDownloader(repo, strg)

	out, err := svc.DownloadPdfJob(context.Background(), jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer out.Content.Close()

	if out.Filename != "merged_document.pdf" {
		t.Errorf("expected filename merged_document.pdf, got %q", out.Filename)
	}
	if out.SizeBytes != 8 {
		t.Errorf("expected size 8, got %d", out.SizeBytes)
	}
	if strg.ObjectKey != key {
		t.Errorf("expected %q to be opened, got %q", key, strg.ObjectKey)
	}
	data, _ := io.ReadAll(out.Content)
	if string(data) != "%PDF-1.4" {
		t.Errorf("unexpected content %q", data)
	}
}
