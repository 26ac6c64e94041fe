// Package archive bundles several outputs of one job into a single download.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
)

type Entry struct {
	Name string
	Data []byte
}

// Zip writes entries in order into a deflate-compressed archive.
// Duplicate names are rejected.
func Zip(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Name]; dup {
			_ = zw.Close()
			return nil, fmt.Errorf("archive: duplicate entry %q", e.Name)
		}
		seen[e.Name] = struct{}{}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate})
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("archive: create entry %q: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("archive: write entry %q: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: finalise: %w", err)
	}
	return buf.Bytes(), nil
}
