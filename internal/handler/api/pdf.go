package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/opustools/opustools-go/internal/api_context"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/model"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/usecase/pdftool"
)

func CreatePdfJobHandler(svc port.PdfJobCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseMultipart(w, r) {
			return
		}

		tool := strings.TrimSpace(r.FormValue("tool_type"))
		field := "files"
		if model.PdfToolType(tool) == model.PdfSplitter {
			field = "file"
		}
		uploads, closeAll, err := openUploads(r, field)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Could not read uploaded files.", err)
			return
		}
		defer closeAll()

		out, err := svc.CreatePdfJob(r.Context(), port.CreatePdfJobInput{
			UserID:           optionalUserID(r),
			ToolType:         tool,
			Files:            uploads,
			CompressionLevel: r.FormValue("compression_level"),
			PageRanges:       r.FormValue("page_ranges"),
			MergeOrder:       r.FormValue("merge_order"),
		})
		if err != nil {
			if errors.Is(err, pdftool.ErrEnqueue) {
				WriteError(w, http.StatusInternalServerError, "Failed to queue PDF job.", err)
				return
			}
			writeUseCaseError(w, err, "Could not create PDF job")
			return
		}

		RespondJSON(w, http.StatusAccepted, out)
		logger.Infof(r.Context(), "✅  Accepted pdf job #%s (%s)", out.ID, out.ToolType)
	}
}

func GetPdfJobStatusHandler(renderer port.HTTPRenderer, svc port.PdfJobStatusGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "Job id is required.", nil)
			return
		}

		raw, etag, err := renderer.RenderPdfJobStatus(r.Context(), svc, id)
		if err != nil {
			if errors.Is(err, pdftool.ErrJobNotFound) {
				WriteError(w, http.StatusNotFound, jobNotFound, nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not get job status", err)
			return
		}
		writeJobStatus(w, r, id, raw, etag)
	}
}

func DownloadPdfJobHandler(svc port.PdfJobDownloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "Job id is required.", nil)
			return
		}

		out, err := svc.DownloadPdfJob(r.Context(), id)
		if err != nil {
			downloadError(w, err, pdftool.ErrJobNotFound, pdftool.ErrFileNotReady, pdftool.ErrOutputMissing,
				"File not ready for download or job failed.", "Processed file not found on server.")
			return
		}
		serveDownload(w, r, id, out)
	}
}
