package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/jobboard/backend/config"
	"github.com/jobboard/backend/models"
)

// MaxLogoBytes caps company logo uploads
const MaxLogoBytes = 2 << 20

// LogoStore uploads company logos
type LogoStore interface {
	UploadLogo(ctx context.Context, company, filename, contentType string, r io.Reader) (string, error)
	DeleteLogo(ctx context.Context, url string) error
}

// CloudStorageClient wraps Google Cloud Storage operations
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

// NewCloudStorageClient creates a new Cloud Storage client
func NewCloudStorageClient(ctx context.Context, cfg *config.Config) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud Storage client: %w", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: cfg.LogoBucketName,
	}, nil
}

// Close closes the Cloud Storage client
func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

// UploadLogo stores a company logo and returns its public URL
func (c *CloudStorageClient) UploadLogo(ctx context.Context, company, filename, contentType string, r io.Reader) (string, error) {
	objectName := LogoObjectName(company, filename, time.Now())

	wc := c.client.Bucket(c.bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if wc.ContentType == "" {
		wc.ContentType = getContentType(filepath.Ext(filename))
	}
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, io.LimitReader(r, MaxLogoBytes)); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectName), nil
}

// DeleteLogo deletes a logo previously returned by UploadLogo
func (c *CloudStorageClient) DeleteLogo(ctx context.Context, url string) error {
	prefix := fmt.Sprintf("https://storage.googleapis.com/%s/", c.bucketName)
	if !strings.HasPrefix(url, prefix) {
		return fmt.Errorf("invalid logo URL format")
	}

	obj := c.client.Bucket(c.bucketName).Object(strings.TrimPrefix(url, prefix))
	if err := obj.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete logo: %w", err)
	}

	return nil
}

// LogoObjectName is logos/<company-slug>/<unix><ext>
func LogoObjectName(company, filename string, now time.Time) string {
	slug := models.Slugify(company)
	if slug == "" {
		slug = "company"
	}
	return fmt.Sprintf("logos/%s/%d%s", slug, now.Unix(), strings.ToLower(filepath.Ext(filename)))
}

// IsAllowedLogoType reports whether ext is an accepted image extension
func IsAllowedLogoType(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg", ".svg", ".webp", ".gif":
		return true
	}
	return false
}

func getContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
