package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/opustools/opustools-go/internal/api_context"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/uuid"
)

const jobNotFound = "Job not found."

// optionalUserID returns the authenticated user, if any.
func optionalUserID(r *http.Request) *uuid.UUID {
	id, ok := api_context.AuthUserIDFromContext(r.Context())
	if !ok {
		return nil
	}
	return &id
}

// writeJobStatus answers a rendered status body with its ETag, or 304 when the
// client already holds it.
func writeJobStatus(w http.ResponseWriter, r *http.Request, id uuid.UUID, raw []byte, etag string) {
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		logger.Debugf(r.Context(), "✅  Returning cached status for job #%s", id)
		return
	}

	RespondRawJSON(w, http.StatusOK, raw)
	logger.Debugf(r.Context(), "✅  Successfully returned status for job #%s", id)
}

// serveDownload streams a job output as an attachment.
func serveDownload(w http.ResponseWriter, r *http.Request, id uuid.UUID, out port.DownloadOutput) {
	defer func() { _ = out.Content.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	if out.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(out.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, out.Content); err != nil {
		logger.Errorf(r.Context(), "❌  Failed to stream output of job #%s: %v", id, err)
		return
	}
	logger.Infof(r.Context(), "✅  Served output of job #%s (%s)", id, out.Filename)
}

// downloadError maps downloader sentinels to their 404 messages.
func downloadError(w http.ResponseWriter, err error, notFound, notReady, missing error, notReadyMsg, missingMsg string) {
	switch {
	case errors.Is(err, notFound):
		WriteError(w, http.StatusNotFound, jobNotFound, nil)
	case errors.Is(err, notReady):
		WriteError(w, http.StatusNotFound, notReadyMsg, nil)
	case errors.Is(err, missing):
		WriteError(w, http.StatusNotFound, missingMsg, nil)
	default:
		WriteError(w, http.StatusInternalServerError, "Could not download job output", err)
	}
}
