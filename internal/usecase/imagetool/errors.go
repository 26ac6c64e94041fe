package imagetool

import "errors"

var (
	ErrJobNotFound   = errors.New("image job not found")
	ErrFileNotReady  = errors.New("image job output not ready")
	ErrOutputMissing = errors.New("image job output missing from storage")
	ErrEnqueue       = errors.New("image job could not be queued")
)
