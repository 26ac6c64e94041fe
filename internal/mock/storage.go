package mock

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/opustools/opustools-go/internal/port"
)

// memObject is an in-memory object body; Close is a no-op.
type memObject struct{ io.ReadSeeker }

func (memObject) Close() error { return nil }

// Storage implements port.Storage for tests.
type Storage struct {
	// stored values
	StatInfoOut port.FileInfo
	GetOut      io.ReadSeeker
	Files       map[string][]byte
	ListOut     []port.ObjectInfo

	// captured inputs
	ObjectKey  string
	TTL        time.Duration
	Saved      map[string][]byte
	SavedTypes map[string]string
	Removed    []string

	// errors
	InitBucketErr           error
	GenerateDownloadLinkErr error
	StatErr                 error
	RemoveErr               error
	RemoveErrs              map[string]error
	GetErr                  error
	SaveErr                 error
	ListErr                 error

	// call flags
	InitBucketCalled           bool
	GenerateDownloadLinkCalled bool
	StatCalled                 bool
	RemoveCalled               bool
	GetCalled                  bool
	SaveCalled                 bool
	ListCalled                 bool
}

func (m *Storage) InitBucket(ctx context.Context) error {
	m.InitBucketCalled = true
	return m.InitBucketErr
}

func (m *Storage) GeneratePresignedDownloadURL(ctx context.Context, fileKey string, expiry time.Duration) (string, error) {
	m.GenerateDownloadLinkCalled = true
	m.ObjectKey = fileKey
	m.TTL = expiry
	if m.GenerateDownloadLinkErr != nil {
		return "", m.GenerateDownloadLinkErr
	}
	return "https://example.com/download/" + fileKey, nil
}

func (m *Storage) StatFile(ctx context.Context, fileKey string) (port.FileInfo, error) {
	m.StatCalled = true
	m.ObjectKey = fileKey
	if m.StatErr != nil {
		return port.FileInfo{}, m.StatErr
	}
	return m.StatInfoOut, nil
}

func (m *Storage) RemoveFile(ctx context.Context, fileKey string) error {
	m.RemoveCalled = true
	if err := m.RemoveErrs[fileKey]; err != nil {
		return err
	}
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.Removed = append(m.Removed, fileKey)
	return nil
}

// GetFile serves Files[fileKey] when set, then GetOut, then a dummy payload.
func (m *Storage) GetFile(ctx context.Context, fileKey string) (io.ReadSeekCloser, error) {
	m.GetCalled = true
	m.ObjectKey = fileKey
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if data, ok := m.Files[fileKey]; ok {
		return memObject{bytes.NewReader(data)}, nil
	}
	if m.GetOut != nil {
		return memObject{m.GetOut}, nil
	}
	return memObject{bytes.NewReader([]byte("dummy"))}, nil
}

func (m *Storage) SaveFile(ctx context.Context, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	m.SaveCalled = true
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if m.Saved == nil {
		m.Saved = map[string][]byte{}
		m.SavedTypes = map[string]string{}
	}
	m.Saved[fileKey] = data
	m.SavedTypes[fileKey] = opts["Content-Type"]
	return nil
}

func (m *Storage) ListFiles(ctx context.Context) ([]port.ObjectInfo, error) {
	m.ListCalled = true
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.ListOut, nil
}
