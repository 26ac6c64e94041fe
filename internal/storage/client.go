package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/opustools/opustools-go/internal/port"
)

// minioClient is the slice of *minio.Client the media bucket uses.
type minioClient interface {
	// bucket bootstrap
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error

	// uploads, outputs and their download links
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error)

	// daily cleanup
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

// s3Codes maps S3 error codes onto the port sentinels. Anything not listed
// is wrapped in port.ErrInternal.
var s3Codes = map[string]error{
	"NoSuchKey":             port.ErrObjectNotFound,
	"NoSuchBucket":          port.ErrBucketNotFound,
	"AccessDenied":          port.ErrUnauthorized,
	"InvalidAccessKeyId":    port.ErrUnauthorized,
	"SignatureDoesNotMatch": port.ErrUnauthorized,
}

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}
	if sentinel, ok := s3Codes[minio.ToErrorResponse(err).Code]; ok {
		return sentinel
	}
	return fmt.Errorf("%w: %v", port.ErrInternal, err)
}
