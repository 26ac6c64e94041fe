package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/opustools/opustools-go/internal/mock"
)

func TestCleanupMediaHandler(t *testing.T) {
	svc := &mock.MediaCleaner{Deleted: 3}
	if err := CleanupMediaHandler(context.Background(), svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.Called {
		t.Error("service not called")
	}

	svcErr := errors.New("list failed")
	if err := CleanupMediaHandler(context.Background(), &mock.MediaCleaner{Err: svcErr}); !errors.Is(err, svcErr) {
		t.Fatalf("got error %v; want %v", err, svcErr)
	}
}
