package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opustools/opustools-go/internal/mock"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/usecase/imagetool"
	"github.com/opustools/opustools-go/internal/validation"
)

func TestCreateImageJobHandler_Success(t *testing.T) {
	svc := &mock.ImageJobCreator{Out: port.ImageJobOutput{ID: jobID, ToolType: model.ImageResizer, Status: model.JobStatusPending}}
	req := multipartRequest(t, "/api/image/convert",
		map[string]string{"tool_type": "image_resizer", "width": "100", "quality": "80"},
		filePart{"file", "cat.png", pngBytes})
	req = withAuth(req)
	rec := httptest.NewRecorder()

	CreateImageJobHandler(svc)(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d; want %d (body=%q)", rec.Code, http.StatusAccepted, rec.Body.String())
	}
	in := svc.In
	if in.File == nil {
		t.Fatal("expected file to be passed to the use case")
	}
	if in.File.Filename != "cat.png" || in.File.MimeType != "image/png" || in.File.Size != int64(len(pngBytes)) {
		t.Errorf("unexpected upload: %+v", in.File)
	}
	content, err := io.ReadAll(in.File.Content)
	if err != nil || !bytes.Equal(content, pngBytes) {
		t.Errorf("upload content was not rewound after sniffing (err=%v)", err)
	}
	if in.ToolType != "image_resizer" || in.Width != "100" || in.Quality != "80" || in.Height != "" {
		t.Errorf("unexpected form values: %+v", in)
	}
	if in.UserID == nil || *in.UserID != userID {
		t.Errorf("UserID = %v; want %s", in.UserID, userID)
	}

	var out port.ImageJobOutput
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != jobID {
		t.Errorf("ID = %s; want %s", out.ID, jobID)
	}
}

func TestCreateImageJobHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{"validation", validation.NewError("tool_type", "This field is required."), http.StatusBadRequest, `"tool_type":"This field is required."`},
		{"enqueue", fmt.Errorf("%w: redis down", imagetool.ErrEnqueue), http.StatusInternalServerError, "Failed to queue image job."},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "Could not create image job"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mock.ImageJobCreator{Err: tc.svcErr}
			req := multipartRequest(t, "/api/image/convert", nil, filePart{"file", "a.png", pngBytes})
			rec := httptest.NewRecorder()

			CreateImageJobHandler(svc)(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Errorf("body = %q; want to contain %q", rec.Body.String(), tc.wantBody)
			}
			if svc.In.UserID != nil {
				t.Error("anonymous request should not carry a user")
			}
		})
	}
}

func TestCreateImageJobHandler_NoFileStillReachesUseCase(t *testing.T) {
	svc := &mock.ImageJobCreator{Err: validation.NewError("file", "No file provided.")}
	req := multipartRequest(t, "/api/image/convert", map[string]string{"tool_type": "image_compressor"})
	rec := httptest.NewRecorder()

	CreateImageJobHandler(svc)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadRequest)
	}
	if !svc.Called || svc.In.File != nil {
		t.Errorf("called=%v file=%v", svc.Called, svc.In.File)
	}
}

func TestCreateImageJobHandler_NotMultipart(t *testing.T) {
	svc := &mock.ImageJobCreator{}
	req := httptest.NewRequest(http.MethodPost, "/api/image/convert", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	CreateImageJobHandler(svc)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusBadRequest)
	}
	if svc.Called {
		t.Error("use case should not be called")
	}
}

func TestGetImageJobStatusHandler(t *testing.T) {
	tests := []struct {
		name        string
		withID      bool
		ifNoneMatch string
		renderErr   error
		wantStatus  int
		wantBody    string
	}{
		{"ok", true, "", nil, http.StatusOK, `{"id":"x"}`},
		{"not modified", true, `"abc"`, nil, http.StatusNotModified, ""},
		{"stale etag", true, `"old"`, nil, http.StatusOK, `{"id":"x"}`},
		{"not found", true, "", imagetool.ErrJobNotFound, http.StatusNotFound, "Job not found."},
		{"internal", true, "", errors.New("boom"), http.StatusInternalServerError, "Could not get job status"},
		{"missing id", false, "", nil, http.StatusBadRequest, "Job id is required."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rnd := &mock.HTTPRenderer{Out: []byte(`{"id":"x"}`), Etag: `"abc"`, Err: tc.renderErr}
			req := httptest.NewRequest(http.MethodGet, "/api/image/jobs/"+jobID.String()+"/status", nil)
			if tc.withID {
				req = withJobID(req, jobID)
			}
			if tc.ifNoneMatch != "" {
				req.Header.Set("If-None-Match", tc.ifNoneMatch)
			}
			rec := httptest.NewRecorder()

			GetImageJobStatusHandler(rnd, &mock.ImageJobStatusGetter{})(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantBody != "" && !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Errorf("body = %q; want to contain %q", rec.Body.String(), tc.wantBody)
			}
			if tc.wantStatus == http.StatusOK || tc.wantStatus == http.StatusNotModified {
				if et := rec.Header().Get("ETag"); et != `"abc"` {
					t.Errorf("ETag = %q", et)
				}
				if rnd.GotID != jobID || rnd.GotKind != port.ImageJobKind {
					t.Errorf("renderer got id=%s kind=%s", rnd.GotID, rnd.GotKind)
				}
			}
		})
	}
}

func TestDownloadImageJobHandler(t *testing.T) {
	t.Run("streams the output", func(t *testing.T) {
		content := &readSeekCloser{Reader: bytes.NewReader([]byte("JPEGDATA"))}
		svc := &mock.ImageJobDownloader{Out: port.DownloadOutput{Filename: "processed_cat.jpeg", SizeBytes: 8, Content: content}}
		req := withJobID(httptest.NewRequest(http.MethodGet, "/api/image/jobs/x/download", nil), jobID)
		rec := httptest.NewRecorder()

		DownloadImageJobHandler(svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("Content-Type = %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="processed_cat.jpeg"` {
			t.Errorf("Content-Disposition = %q", cd)
		}
		if rec.Body.String() != "JPEGDATA" {
			t.Errorf("body = %q", rec.Body.String())
		}
		if !content.closed {
			t.Error("content should be closed")
		}
		if svc.ID != jobID {
			t.Errorf("service got id %s", svc.ID)
		}
	})

	tests := []struct {
		err      error
		wantCode int
		wantBody string
	}{
		{imagetool.ErrJobNotFound, http.StatusNotFound, "Job not found."},
		{imagetool.ErrFileNotReady, http.StatusNotFound, "File not ready for download or conversion failed."},
		{imagetool.ErrOutputMissing, http.StatusNotFound, "Converted file not found on server."},
		{errors.New("boom"), http.StatusInternalServerError, "Could not download job output"},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			req := withJobID(httptest.NewRequest(http.MethodGet, "/api/image/jobs/x/download", nil), jobID)
			rec := httptest.NewRecorder()
			DownloadImageJobHandler(&mock.ImageJobDownloader{Err: tc.err})(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Errorf("body = %q; want to contain %q", rec.Body.String(), tc.wantBody)
			}
		})
	}
}
