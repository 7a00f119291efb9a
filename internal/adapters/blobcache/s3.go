package blobcache

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"go.trai.ch/buildcache/internal/adapters/archive"
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheService = (*S3)(nil)

// S3API is the subset of the S3 client used by the cache.
type S3API interface {
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3 implements ports.CacheService in an S3-compatible bucket.
//
// Each entry is the object "<prefix><key>.tar.zst". Saves use a conditional
// put, so the first job to upload a key wins and later uploads are rejected by
// the bucket itself.
type S3 struct {
	client S3API
	bucket string
	prefix string
}

// NewS3 creates an S3 cache storing objects in bucket below prefix.
func NewS3(client S3API, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// Available reports whether the bucket is configured and reachable.
func (s *S3) Available(ctx context.Context) bool {
	if s.bucket == "" {
		return false
	}
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err == nil
}

// Restore downloads the object for key, or the newest object matching a
// fallback prefix, and extracts it into paths.
func (s *S3) Restore(ctx context.Context, paths []string, key string, fallbackPrefixes []string) (string, error) {
	restored, err := s.download(ctx, s.objectKey(key), paths)
	if err != nil {
		return "", err
	}
	if restored {
		return key, nil
	}

	for _, prefix := range fallbackPrefixes {
		objKey, err := s.newestWithPrefix(ctx, s.prefix+prefix)
		if err != nil {
			return "", err
		}
		if objKey == "" {
			continue
		}

		restored, err := s.download(ctx, objKey, paths)
		if err != nil {
			return "", err
		}
		if restored {
			return s.cacheKey(objKey), nil
		}
	}

	return "", nil
}

// Save uploads paths under key. An existing object is left untouched.
func (s *S3) Save(ctx context.Context, paths []string, key string) (domain.SaveResult, error) {
	objKey := s.objectKey(key)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(objKey)})
	if err == nil {
		return domain.SaveResultAlreadyExists, nil
	}
	if !isNotFound(err) {
		return domain.SaveResultError, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "object", objKey)
	}

	tmp, err := os.CreateTemp("", "buildcache-*"+archive.Extension)
	if err != nil {
		return domain.SaveResultError, zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := archive.Pack(tmp, paths); err != nil {
		return domain.SaveResultError, err
	}

	size, err := tmp.Seek(0, io.SeekCurrent)
	if err != nil {
		return domain.SaveResultError, zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return domain.SaveResultError, zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objKey),
		Body:          tmp,
		ContentLength: aws.Int64(size),
		IfNoneMatch:   aws.String("*"),
	})
	if err != nil {
		if isAlreadyExists(err) {
			return domain.SaveResultAlreadyExists, nil
		}
		return domain.SaveResultError, zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "object", objKey)
	}

	return domain.SaveResultSaved, nil
}

// download extracts objKey into paths. It reports false if the object does not exist.
func (s *S3) download(ctx context.Context, objKey string, paths []string) (bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(objKey)})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "object", objKey)
	}
	defer out.Body.Close() //nolint:errcheck // Best effort close in defer

	if err := archive.Unpack(out.Body, paths); err != nil {
		return false, zerr.With(err, "object", objKey)
	}
	return true, nil
}

// newestWithPrefix returns the most recently modified archive below prefix, or "".
func (s *S3) newestWithPrefix(ctx context.Context, prefix string) (string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var newest *types.Object
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "prefix", prefix)
		}
		for i := range page.Contents {
			obj := &page.Contents[i]
			if !strings.HasSuffix(aws.ToString(obj.Key), archive.Extension) {
				continue
			}
			if newest == nil || aws.ToTime(obj.LastModified).After(aws.ToTime(newest.LastModified)) {
				newest = obj
			}
		}
	}

	if newest == nil {
		return "", nil
	}
	return aws.ToString(newest.Key), nil
}

func (s *S3) objectKey(key string) string {
	return s.prefix + key + archive.Extension
}

func (s *S3) cacheKey(objKey string) string {
	return strings.TrimSuffix(strings.TrimPrefix(objKey, s.prefix), archive.Extension)
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return httpStatus(err) == http.StatusNotFound
}

// isAlreadyExists reports whether a conditional put lost against an existing
// or concurrently written object.
func isAlreadyExists(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	status := httpStatus(err)
	return status == http.StatusPreconditionFailed || status == http.StatusConflict
}

func httpStatus(err error) int {
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
