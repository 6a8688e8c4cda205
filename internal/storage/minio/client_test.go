package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error

	putKey         string
	putContentType string
	putErr         error

	getRC  io.ReadCloser
	getErr error

	removeErr error

	statErr error
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, key string, _ io.Reader, _ int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	f.putKey = key
	f.putContentType = opts.ContentType
	return minioLib.UploadInfo{}, f.putErr
}
func (f *fakeMinio) GetObject(_ context.Context, _ string, _ string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	return f.getRC, f.getErr
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, _ string, _ minioLib.RemoveObjectOptions) error {
	return f.removeErr
}
func (f *fakeMinio) StatObject(_ context.Context, _ string, _ string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	return minioLib.ObjectInfo{}, f.statErr
}

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "images")
	require.NoError(t, err)
	assert.Equal(t, "images", c.bucket)
}

func TestNewClientWithAPI_CreateBucket(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: false}
	c, err := NewClientWithAPI(ctx, api, "images")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestNewClientWithAPI_BucketExistsError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExistsErr: errors.New("boom")}
	c, err := NewClientWithAPI(ctx, api, "images")
	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestClient_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("success sets jpeg content type", func(t *testing.T) {
		api := &fakeMinio{bucketExists: true}
		c, err := NewClientWithAPI(ctx, api, "images")
		require.NoError(t, err)

		require.NoError(t, c.Upload(ctx, "alee.jpg", bytes.NewReader([]byte{0xFF, 0xD8})))
		assert.Equal(t, "alee.jpg", api.putKey)
		assert.Equal(t, imageContentType, api.putContentType)
	})

	t.Run("error", func(t *testing.T) {
		api := &fakeMinio{bucketExists: true, putErr: errors.New("boom")}
		c, err := NewClientWithAPI(ctx, api, "images")
		require.NoError(t, err)

		assert.Error(t, c.Upload(ctx, "alee.jpg", bytes.NewReader(nil)))
	})
}

func TestClient_Download(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true, getRC: io.NopCloser(bytes.NewReader([]byte("img")))}
	c, err := NewClientWithAPI(ctx, api, "images")
	require.NoError(t, err)

	rc, err := c.Download(ctx, "alee.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("img"), data)
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true, removeErr: errors.New("boom")}
	c, err := NewClientWithAPI(ctx, api, "images")
	require.NoError(t, err)

	assert.Error(t, c.Delete(ctx, "alee.jpg"))
}

func TestClient_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("missing object", func(t *testing.T) {
		api := &fakeMinio{bucketExists: true, statErr: minioLib.ErrorResponse{Code: "NoSuchKey"}}
		c, err := NewClientWithAPI(ctx, api, "images")
		require.NoError(t, err)

		exists, err := c.Exists(ctx, "ghost.jpg")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("present object", func(t *testing.T) {
		api := &fakeMinio{bucketExists: true}
		c, err := NewClientWithAPI(ctx, api, "images")
		require.NoError(t, err)

		exists, err := c.Exists(ctx, "alee.jpg")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}
