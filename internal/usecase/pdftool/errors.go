package pdftool

import "errors"

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrFileNotReady  = errors.New("file not ready for download or job failed")
	ErrOutputMissing = errors.New("processed file not found on server")
	ErrEnqueue       = errors.New("failed to queue job")
)
