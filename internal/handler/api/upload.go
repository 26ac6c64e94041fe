package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/opustools/opustools-go/internal/port"
)

const multipartMemory = 32 << 20

// parseMultipart parses the form and answers the error itself when it fails.
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large.", nil)
			return false
		}
		WriteError(w, http.StatusBadRequest, "Invalid multipart form.", err)
		return false
	}
	return true
}

// openUploads opens every part under field and sniffs its MIME type. The
// returned closer releases all of them.
func openUploads(r *http.Request, field string) ([]*port.Upload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	if r.MultipartForm == nil {
		return nil, closeAll, nil
	}

	headers := r.MultipartForm.File[field]
	uploads := make([]*port.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("open %q: %w", fh.Filename, err)
		}
		files = append(files, f)

		mt, err := sniff(f)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("sniff %q: %w", fh.Filename, err)
		}
		uploads = append(uploads, &port.Upload{
			Filename: fh.Filename,
			MimeType: mt,
			Size:     fh.Size,
			Content:  f,
		})
	}
	return uploads, closeAll, nil
}

// sniff detects the content type of f from its leading bytes and rewinds it.
func sniff(f io.ReadSeeker) (string, error) {
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	base, _, _ := strings.Cut(mt.String(), ";")
	return strings.TrimSpace(base), nil
}
