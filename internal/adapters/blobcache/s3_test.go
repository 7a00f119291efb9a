package blobcache_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/buildcache/internal/adapters/blobcache"
	"go.trai.ch/buildcache/internal/core/domain"
)

type fakeObject struct {
	data     []byte
	modified time.Time
}

// fakeS3 is an in-memory bucket honoring conditional puts.
// Listings are served two objects per page.
type fakeS3 struct {
	mu        sync.Mutex
	objects   map[string]fakeObject
	clock     time.Time
	headErr   error
	getErr    error
	beforePut func()
	puts      int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects: make(map[string]fakeObject),
		clock:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.beforePut != nil {
		f.beforePut()
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	key := aws.ToString(in.Key)
	if _, exists := f.objects[key]; exists && aws.ToString(in.IfNoneMatch) == "*" {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
	}
	if in.ContentLength != nil && *in.ContentLength != int64(len(data)) {
		return nil, errors.New("content length mismatch")
	}
	f.put(key, data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+2, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			LastModified: aws.Time(f.objects[key].modified),
		})
	}
	return out, nil
}

// put stores data with a modification time after every earlier object. The caller holds mu.
func (f *fakeS3) put(key string, data []byte) {
	f.clock = f.clock.Add(time.Minute)
	f.objects[key] = fakeObject{data: data, modified: f.clock}
}

func TestS3_Available(t *testing.T) {
	client := newFakeS3()

	assert.True(t, blobcache.NewS3(client, "ci-cache", "").Available(t.Context()))
	assert.False(t, blobcache.NewS3(client, "", "").Available(t.Context()), "no bucket configured")

	client.headErr = errors.New("forbidden")
	assert.False(t, blobcache.NewS3(client, "ci-cache", "").Available(t.Context()))
}

func TestS3_SaveAndRestoreExact(t *testing.T) {
	client := newFakeS3()
	cache := blobcache.NewS3(client, "ci-cache", "shop/")
	ctx := t.Context()

	result, err := cache.Save(ctx, []string{populate(t, "v1")}, "composer-linux-aaa")
	require.NoError(t, err)
	assert.Equal(t, domain.SaveResultSaved, result)
	assert.Contains(t, client.objects, "shop/composer-linux-aaa.tar.zst")

	target := filepath.Join(t.TempDir(), "composer")
	matched, err := cache.Restore(ctx, []string{target}, "composer-linux-aaa", []string{"composer-linux-"})
	require.NoError(t, err)
	assert.Equal(t, "composer-linux-aaa", matched)
	assert.Equal(t, "v1", readPackage(t, target))
}

func TestS3_SaveExistingKey(t *testing.T) {
	client := newFakeS3()
	cache := blobcache.NewS3(client, "ci-cache", "")
	ctx := t.Context()

	_, err := cache.Save(ctx, []string{populate(t, "first")}, "composer-linux-aaa")
	require.NoError(t, err)

	result, err := cache.Save(ctx, []string{populate(t, "second")}, "composer-linux-aaa")
	require.NoError(t, err)
	assert.Equal(t, domain.SaveResultAlreadyExists, result)
	assert.Equal(t, 1, client.puts, "an existing object is detected before uploading")
}

func TestS3_SaveLosesRace(t *testing.T) {
	client := newFakeS3()
	cache := blobcache.NewS3(client, "ci-cache", "")

	// Another job uploads the same key between the existence check and the put.
	client.beforePut = func() {
		client.mu.Lock()
		defer client.mu.Unlock()
		client.put("composer-linux-aaa.tar.zst", []byte("other job"))
	}

	result, err := cache.Save(t.Context(), []string{populate(t, "mine")}, "composer-linux-aaa")
	require.NoError(t, err)
	assert.Equal(t, domain.SaveResultAlreadyExists, result)
	assert.Equal(t, []byte("other job"), client.objects["composer-linux-aaa.tar.zst"].data)
}

func TestS3_RestoreFallbackPicksNewest(t *testing.T) {
	client := newFakeS3()
	cache := blobcache.NewS3(client, "ci-cache", "shop/")
	ctx := t.Context()

	for _, key := range []string{"composer-linux-a", "composer-linux-b", "composer-linux-c"} {
		_, err := cache.Save(ctx, []string{populate(t, key)}, key)
		require.NoError(t, err)
	}
	_, err := cache.Save(ctx, []string{populate(t, "darwin")}, "composer-darwin-z")
	require.NoError(t, err)

	target := t.TempDir()
	matched, err := cache.Restore(ctx, []string{target}, "composer-linux-missing", []string{"composer-linux-"})
	require.NoError(t, err)
	assert.Equal(t, "composer-linux-c", matched, "the newest object across pages wins")
	assert.Equal(t, "composer-linux-c", readPackage(t, target))
}

func TestS3_RestoreMiss(t *testing.T) {
	cache := blobcache.NewS3(newFakeS3(), "ci-cache", "")

	matched, err := cache.Restore(t.Context(), []string{t.TempDir()}, "composer-linux-aaa", []string{"composer-linux-"})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestS3_RestoreServiceError(t *testing.T) {
	client := newFakeS3()
	client.getErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}
	cache := blobcache.NewS3(client, "ci-cache", "")

	_, err := cache.Restore(t.Context(), []string{t.TempDir()}, "composer-linux-aaa", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrCacheReadFailed.Error())
}
