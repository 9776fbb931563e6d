package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"foodgram/internal/config"
	"foodgram/internal/middleware"
	"foodgram/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 10
	MaxImageEdge                = 1280
	WebPQuality                 = 80
)

// ImageStore persists a recipe picture and returns a stable reference to it.
type ImageStore interface {
	Save(ctx context.Context, data []byte) (string, error)
}

// DecodeImageDataURI extracts the payload of a "data:image/<type>;base64,<data>"
// string. A bare base64 string is accepted as well.
func DecodeImageDataURI(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		header, body, ok := strings.Cut(raw, ",")
		if !ok || !strings.HasSuffix(header, ";base64") || !strings.HasPrefix(header, "data:image/") {
			return nil, models.NewFieldError("image", models.ReasonInvalidField, "Image must be a base64 encoded data URI")
		}
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, models.NewFieldError("image", models.ReasonInvalidField, "Image must be a base64 encoded data URI")
	}
	return data, nil
}

// processedImage is a normalized picture ready to be written somewhere.
type processedImage struct {
	Key  string
	Data []byte
}

type imagePipeline struct {
	maxBytes int64
}

func newImagePipeline(maxUploadSizeMB int) imagePipeline {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = DefaultImageMaxUploadSizeMB
	}
	return imagePipeline{maxBytes: int64(maxUploadSizeMB) * 1024 * 1024}
}

// process sniffs, decodes, downsizes and re-encodes data as WebP. The key is
// derived from the submitted bytes, so identical uploads share one blob.
func (p imagePipeline) process(data []byte) (*processedImage, error) {
	if len(data) == 0 {
		return nil, models.NewFieldError("image", models.ReasonInvalidField, "Image is empty")
	}
	if int64(len(data)) > p.maxBytes {
		return nil, models.NewFieldError("image", models.ReasonInvalidField,
			fmt.Sprintf("Image too large (max %dMB)", p.maxBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(data)) {
		return nil, models.NewFieldError("image", models.ReasonInvalidField, "Unsupported image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewFieldError("image", models.ReasonInvalidField, "Invalid image file")
	}

	encoded, err := encodeWebP(resizeToFit(decoded, MaxImageEdge, MaxImageEdge), WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	sum := sha256.Sum256(data)
	return &processedImage{
		Key:  "recipes/" + hex.EncodeToString(sum[:]) + ".webp",
		Data: encoded,
	}, nil
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LocalImageStore writes images under a media directory that the HTTP server
// exposes at urlPrefix.
type LocalImageStore struct {
	pipeline  imagePipeline
	mediaDir  string
	urlPrefix string
}

func NewLocalImageStore(mediaDir, urlPrefix string, maxUploadSizeMB int) *LocalImageStore {
	return &LocalImageStore{
		pipeline:  newImagePipeline(maxUploadSizeMB),
		mediaDir:  mediaDir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}
}

func (s *LocalImageStore) Save(_ context.Context, data []byte) (string, error) {
	img, err := s.pipeline.process(data)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.mediaDir, filepath.FromSlash(img.Key))
	if _, statErr := os.Stat(path); statErr != nil {
		if err := writeBytesToFile(path, img.Data); err != nil {
			return "", models.NewInternalError(err)
		}
	}
	return s.urlPrefix + "/" + img.Key, nil
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// S3PutObjectAPI is the slice of the S3 client the image store needs.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore uploads images to a bucket and returns their public URL.
type S3ImageStore struct {
	pipeline  imagePipeline
	client    S3PutObjectAPI
	bucket    string
	publicURL string
}

func NewS3ImageStore(client S3PutObjectAPI, bucket, publicURL string, maxUploadSizeMB int) *S3ImageStore {
	return &S3ImageStore{
		pipeline:  newImagePipeline(maxUploadSizeMB),
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *S3ImageStore) Save(ctx context.Context, data []byte) (string, error) {
	img, err := s.pipeline.process(data)
	if err != nil {
		return "", err
	}

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(img.Key),
		Body:         bytes.NewReader(img.Data),
		ContentType:  aws.String("image/webp"),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}); err != nil {
		middleware.Logger.ErrorContext(ctx, "s3 upload failed", "bucket", s.bucket, "key", img.Key, "error", err)
		return "", models.NewInternalError(err)
	}

	if s.publicURL != "" {
		return s.publicURL + "/" + img.Key, nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, img.Key), nil
}

// NewImageStore builds the store selected by IMAGE_STORE.
func NewImageStore(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.ImageStore {
	case "", "local":
		return NewLocalImageStore(cfg.MediaDir, cfg.MediaURLPrefix, cfg.ImageMaxUploadSizeMB), nil
	case "s3":
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3ImageStore(client, cfg.S3Bucket, cfg.S3PublicURL, cfg.ImageMaxUploadSizeMB), nil
	default:
		return nil, fmt.Errorf("unsupported image store %q", cfg.ImageStore)
	}
}

func newS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
