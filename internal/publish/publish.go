// Package publish uploads the outputs of a production build to
// S3-compatible object storage.
package publish

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/vk/fxbuild/internal/config"
	"github.com/vk/fxbuild/internal/ctxlog"
)

const contentType = "text/x-lua"

// objectPutter is the subset of *minio.Client used for uploads.
type objectPutter interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Publisher uploads build outputs under a key prefix.
type Publisher struct {
	client objectPutter
	bucket string
	prefix string
	root   string
}

// New creates a publisher for the given settings. Object keys are derived
// from each file's path relative to root.
func New(cfg config.Publish, root string) (*Publisher, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client for %s: %w", cfg.Endpoint, err)
	}
	return newPublisher(client, cfg, root), nil
}

func newPublisher(client objectPutter, cfg config.Publish, root string) *Publisher {
	return &Publisher{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		root:   root,
	}
}

// ObjectKey returns the storage key for file.
func (p *Publisher) ObjectKey(file string) (string, error) {
	rel, err := filepath.Rel(p.root, file)
	if err != nil {
		return "", fmt.Errorf("failed to relate %s to %s: %w", file, p.root, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("file %s is outside the resource root", file)
	}
	if p.prefix == "" {
		return rel, nil
	}
	return path.Join(p.prefix, rel), nil
}

// Publish uploads files in order and stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, files []string) error {
	logger := ctxlog.FromContext(ctx).With("bucket", p.bucket)

	for _, f := range files {
		key, err := p.ObjectKey(f)
		if err != nil {
			return err
		}
		info, err := p.client.FPutObject(ctx, p.bucket, key, f, minio.PutObjectOptions{ContentType: contentType})
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}
		logger.Debug("Uploaded build output.", "key", key, "size", info.Size, "etag", info.ETag)
	}

	logger.Info("☁️ Build outputs published.", "files", len(files), "prefix", p.prefix)
	return nil
}
