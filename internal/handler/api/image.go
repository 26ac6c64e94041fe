package api

import (
	"errors"
	"net/http"

	"github.com/opustools/opustools-go/internal/api_context"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/usecase/imagetool"
)

func CreateImageJobHandler(svc port.ImageJobCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseMultipart(w, r) {
			return
		}
		uploads, closeAll, err := openUploads(r, "file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Could not read uploaded file.", err)
			return
		}
		defer closeAll()

		in := port.CreateImageJobInput{
			UserID:       optionalUserID(r),
			ToolType:     r.FormValue("tool_type"),
			Quality:      r.FormValue("quality"),
			Width:        r.FormValue("width"),
			Height:       r.FormValue("height"),
			TargetFormat: r.FormValue("target_format"),
		}
		if len(uploads) > 0 {
			in.File = uploads[0]
		}

		out, err := svc.CreateImageJob(r.Context(), in)
		if err != nil {
			if errors.Is(err, imagetool.ErrEnqueue) {
				WriteError(w, http.StatusInternalServerError, "Failed to queue image job.", err)
				return
			}
			writeUseCaseError(w, err, "Could not create image job")
			return
		}

		RespondJSON(w, http.StatusAccepted, out)
		logger.Infof(r.Context(), "✅  Accepted image job #%s", out.ID)
	}
}

func GetImageJobStatusHandler(renderer port.HTTPRenderer, svc port.ImageJobStatusGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "Job id is required.", nil)
			return
		}

		raw, etag, err := renderer.RenderImageJobStatus(r.Context(), svc, id)
		if err != nil {
			if errors.Is(err, imagetool.ErrJobNotFound) {
				WriteError(w, http.StatusNotFound, jobNotFound, nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not get job status", err)
			return
		}
		writeJobStatus(w, r, id, raw, etag)
	}
}

func DownloadImageJobHandler(svc port.ImageJobDownloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "Job id is required.", nil)
			return
		}

		out, err := svc.DownloadImageJob(r.Context(), id)
		if err != nil {
			downloadError(w, err, imagetool.ErrJobNotFound, imagetool.ErrFileNotReady, imagetool.ErrOutputMissing,
				"File not ready for download or conversion failed.", "Converted file not found on server.")
			return
		}
		serveDownload(w, r, id, out)
	}
}
