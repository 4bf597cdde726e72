// internal/adapters/storage/s3.go
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// ArchiveStore persists generated export files (stock snapshots, movement
// dumps) so they survive past the HTTP response that produced them.
type ArchiveStore interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
	GetPresignedURL(ctx context.Context, key string, duration time.Duration) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// ExportKey builds the archive key for a generated export, grouping files
// by year/month so retention sweeps can prune whole prefixes.
func ExportKey(kind, extension string, at time.Time) string {
	return fmt.Sprintf("exports/%04d/%02d/%s_%s.%s",
		at.Year(), at.Month(), kind, at.Format("20060102_150405"), extension)
}

// S3Store implements ArchiveStore using AWS S3
type S3Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	region     string
	logger     *slog.Logger
}

// S3Config holds S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // For MinIO/LocalStack
	UsePathStyle    bool   // For MinIO/LocalStack
}

// NewS3Store creates a new S3-backed archive store
func NewS3Store(ctx context.Context, cfg *S3Config, logger *slog.Logger) (*S3Store, error) {
	awsCfg, err := buildAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.EndpointResolver = s3.EndpointResolverFromURL(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	store := &S3Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		logger:     logger.With(slog.String("storage", "s3")),
	}

	if err := store.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket: %w", err)
	}

	logger.Info("S3 archive store initialized",
		slog.String("bucket", cfg.Bucket),
		slog.String("region", cfg.Region))

	return store, nil
}

func buildAWSConfig(ctx context.Context, cfg *S3Config) (aws.Config, error) {
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		return config.LoadDefaultConfig(ctx,
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretAccessKey,
					"",
				),
			),
		)
	}

	// Otherwise use default credential chain
	return config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})

	if err != nil {
		_, createErr := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(s.bucket),
			CreateBucketConfiguration: &types.CreateBucketConfiguration{
				LocationConstraint: types.BucketLocationConstraint(s.region),
			},
		})

		if createErr != nil {
			return fmt.Errorf("bucket %s does not exist and could not be created: %w", s.bucket, createErr)
		}

		s.logger.Info("created S3 bucket", slog.String("bucket", s.bucket))
	}

	return nil
}

// Upload archives a generated export file
func (s *S3Store) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(key))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"uploaded-at": time.Now().Format(time.RFC3339),
			"upload-id":   uuid.New().String(),
		},
	}

	result, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	s.logger.InfoContext(ctx, "export archived",
		slog.String("key", key),
		slog.String("location", result.Location))

	return result.Location, nil
}

// Download retrieves an archived export
func (s *S3Store) Download(ctx context.Context, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer([]byte{})

	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	s.logger.DebugContext(ctx, "export downloaded",
		slog.String("key", key),
		slog.Int("size", len(buf.Bytes())))

	return buf.Bytes(), nil
}

// Delete removes archived exports, batching into a single call
func (s *S3Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{
			Key: aws.String(key),
		})
	}

	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   *aws.Bool(true),
		},
	})

	if err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}

	s.logger.InfoContext(ctx, "archived exports deleted", slog.Int("count", len(keys)))
	return nil
}

// GetPresignedURL generates a pre-signed URL for downloading an archive
func (s *S3Store) GetPresignedURL(ctx context.Context, key string, duration time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)

	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = duration
	})

	if err != nil {
		return "", fmt.Errorf("failed to create presigned URL: %w", err)
	}

	return request.URL, nil
}

// List lists archived exports under a prefix
func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}

	s.logger.DebugContext(ctx, "listed archives",
		slog.String("prefix", prefix),
		slog.Int("count", len(keys)))

	return keys, nil
}

// Exists checks whether an archive key is present
func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		if strings.Contains(err.Error(), "404") || strings.Contains(err.Error(), "NotFound") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}

	return true, nil
}

// LocalStore implements ArchiveStore on the local filesystem, for
// development environments without S3 credentials.
type LocalStore struct {
	basePath string
	logger   *slog.Logger
}

// NewLocalStore creates a filesystem-backed archive store rooted at basePath
func NewLocalStore(basePath string, logger *slog.Logger) *LocalStore {
	return &LocalStore{
		basePath: basePath,
		logger:   logger.With(slog.String("storage", "local")),
	}
}

func (l *LocalStore) path(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

// Upload writes the export under basePath, creating parent directories
func (l *LocalStore) Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	path := l.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}

	l.logger.InfoContext(ctx, "export archived locally", slog.String("path", path))
	return path, nil
}

// Download reads an archived export back
func (l *LocalStore) Download(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read archive file: %w", err)
	}
	return data, nil
}

// Delete removes archived exports
func (l *LocalStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := os.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete archive file: %w", err)
		}
	}
	return nil
}

// GetPresignedURL returns a file URL; local archives need no signing
func (l *LocalStore) GetPresignedURL(ctx context.Context, key string, duration time.Duration) (string, error) {
	return "file://" + l.path(key), nil
}

// List walks basePath collecting keys under the prefix
func (l *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := filepath.WalkDir(l.basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}

	return keys, nil
}

// Exists checks whether an archive key is present
func (l *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
