package siteconfig

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MediaStorage uploads oversized inline-encoded media to MinIO/S3 so the
// stored document can reference it by URL instead of losing it to the
// payload filter.
type MediaStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMediaStorageFromEnv initialises MediaStorage using MINIO_* environment
// variables. Returns (nil, nil) when the variables are absent; offload is
// optional and the write path behaves exactly as without it.
func NewMediaStorageFromEnv() (*MediaStorage, error) {
	endpoint := strings.TrimSpace(os.Getenv("MINIO_ENDPOINT"))
	accessKey := strings.TrimSpace(os.Getenv("MINIO_ACCESS_KEY"))
	secretKey := strings.TrimSpace(os.Getenv("MINIO_SECRET_KEY"))
	bucket := strings.TrimSpace(os.Getenv("MINIO_BUCKET"))
	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, nil
	}

	useSSL := strings.EqualFold(strings.TrimSpace(os.Getenv("MINIO_USE_SSL")), "true")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	publicURL := strings.TrimSpace(os.Getenv("MINIO_PUBLIC_URL"))
	if publicURL == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, endpoint)
	}

	return &MediaStorage{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// OffloadInlineMedia rewrites every inline-encoded media field that the
// payload filter would strip into a public URL backed by object storage.
// Best-effort per field: a failed upload leaves the value in place for the
// filter and the device-local cache to deal with. No-op when storage is
// not configured.
func (s *MediaStorage) OffloadInlineMedia(ctx context.Context, doc map[string]any) map[string]any {
	if s == nil || s.client == nil || doc == nil {
		return doc
	}

	out := make(map[string]any, len(doc))
	for key, value := range doc {
		out[key] = value
	}

	for _, field := range blobFields {
		str, ok := out[field].(string)
		if !ok || !IsInlineData(str) {
			continue
		}
		limit := maxInlineFieldLen
		if field == avatarField {
			limit = maxInlineAvatarLen
		}
		if len(str) <= limit {
			continue
		}

		url, err := s.uploadDataURI(ctx, field, str)
		if err != nil {
			log.Printf("siteconfig: offload %s failed: %v", field, err)
			continue
		}
		out[field] = url
	}
	return out
}

// uploadDataURI decodes a data: URI and stores its payload beneath
// media/<field>/<uuid>.<ext>, returning the public URL.
func (s *MediaStorage) uploadDataURI(ctx context.Context, field, dataURI string) (string, error) {
	contentType, payload, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	objectName := path.Join("media", field, fmt.Sprintf("%s%s", uuid.NewString(), extensionFor(contentType)))

	uploadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	reader := bytes.NewReader(payload)
	_, err = s.client.PutObject(uploadCtx, s.bucket, objectName, reader, int64(len(payload)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=604800",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", field, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), nil
}

// decodeDataURI splits data:<media-type>;base64,<payload> into its content
// type and decoded bytes.
func decodeDataURI(raw string) (string, []byte, error) {
	trimmed := strings.TrimPrefix(raw, inlineDataPrefix)
	meta, encoded, found := strings.Cut(trimmed, ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URI")
	}

	contentType := meta
	base64Encoded := false
	if strings.HasSuffix(meta, ";base64") {
		contentType = strings.TrimSuffix(meta, ";base64")
		base64Encoded = true
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if !base64Encoded {
		return contentType, []byte(encoded), nil
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decode payload: %w", err)
	}
	return contentType, payload, nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png", "image/x-png":
		return ".png"
	case "image/jpeg", "image/pjpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ".bin"
	}
}
