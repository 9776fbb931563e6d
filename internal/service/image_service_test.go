package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodgram/internal/config"
	"foodgram/internal/models"
	"foodgram/internal/testutil"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImageDataURI(t *testing.T) {
	t.Parallel()

	payload := []byte("not really an image")
	encoded := base64.StdEncoding.EncodeToString(payload)

	got, err := DecodeImageDataURI("data:image/png;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	got, err = DecodeImageDataURI(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	for _, bad := range []string{"", "data:text/plain;base64," + encoded, "data:image/png," + encoded, "data:image/png;base64,@@@"} {
		_, err := DecodeImageDataURI(bad)
		assert.True(t, models.HasCode(err, models.CodeValidation), "input %q", bad)
	}
}

func TestLocalImageStore_SaveNormalizesAndDedupes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewLocalImageStore(dir, "/media/", 10)
	content := testutil.TinyPNG(t, 1600, 800)

	ref, err := store.Save(context.Background(), content)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/media/recipes/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".webp"), ref)

	path := filepath.Join(dir, strings.TrimPrefix(ref, "/media/"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	decoded, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, MaxImageEdge, 640), decoded.Bounds())

	again, err := store.Save(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, ref, again)
}

func TestLocalImageStore_RejectsNonImages(t *testing.T) {
	t.Parallel()

	store := NewLocalImageStore(t.TempDir(), "/media", 1)

	_, err := store.Save(context.Background(), []byte("plain text, definitely not a picture"))
	assertFieldError(t, err, models.ReasonInvalidField, "image")

	_, err = store.Save(context.Background(), bytes.Repeat([]byte{0x89}, 2*1024*1024))
	assertFieldError(t, err, models.ReasonInvalidField, "image")
}

type s3PutStub struct {
	input *s3.PutObjectInput
	err   error
}

func (s *s3PutStub) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.input = in
	if s.err != nil {
		return nil, s.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3ImageStore_Save(t *testing.T) {
	t.Parallel()

	client := &s3PutStub{}
	store := NewS3ImageStore(client, "recipes-bucket", "https://cdn.example.com/", 1)

	ref, err := store.Save(context.Background(), testutil.TinyPNG(t, 40, 20))
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "recipes-bucket", aws.ToString(client.input.Bucket))
	assert.Equal(t, "image/webp", aws.ToString(client.input.ContentType))
	assert.Equal(t, "https://cdn.example.com/"+aws.ToString(client.input.Key), ref)

	client.err = errors.New("access denied")
	_, err = store.Save(context.Background(), testutil.TinyPNG(t, 40, 21))
	assert.True(t, models.HasCode(err, models.CodeInternal))
}

func TestNewImageStore(t *testing.T) {
	t.Parallel()

	store, err := NewImageStore(context.Background(), &config.Config{ImageStore: "local", MediaDir: t.TempDir(), MediaURLPrefix: "/media"})
	require.NoError(t, err)
	assert.IsType(t, &LocalImageStore{}, store)

	store, err = NewImageStore(context.Background(), &config.Config{
		ImageStore:        "s3",
		S3Bucket:          "bucket",
		S3Region:          "us-east-1",
		S3Endpoint:        "http://127.0.0.1:9000",
		S3AccessKeyID:     "key",
		S3SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	assert.IsType(t, &S3ImageStore{}, store)

	_, err = NewImageStore(context.Background(), &config.Config{ImageStore: "ftp"})
	assert.Error(t, err)
}
