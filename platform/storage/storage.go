package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go_procure_backend/config"
	"go_procure_backend/pkg/logging"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Service archives uploaded request spreadsheets so a task's inputs can
// be re-inspected later. Archiving is best effort; the pipeline never
// fails because the bucket is unreachable.
type Service struct {
	Client      *minio.Client
	Bucket      string
	Region      string
	StorageType string
}

func InitStorageService(cfg *config.Config) (*Service, error) {
	if cfg.StorageType != "minio" && cfg.StorageType != "s3" {
		return nil, fmt.Errorf("unsupported storage type %q", cfg.StorageType)
	}
	client, err := minio.New(cfg.BucketEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.BucketAccessID, cfg.BucketAccessKey, ""),
		Secure: cfg.UseSSL || cfg.StorageType == "s3",
		Region: cfg.BucketRegion,
	})
	if err != nil {
		return nil, err
	}
	ss := &Service{
		Client:      client,
		Bucket:      cfg.BucketName,
		Region:      cfg.BucketRegion,
		StorageType: cfg.StorageType,
	}
	if err := ss.ensureBucketExists(); err != nil {
		return nil, err
	}
	logging.Logger.Info("Storage service initialized",
		"type", cfg.StorageType,
		"bucket", cfg.BucketName,
	)
	return ss, nil
}

func (ss *Service) ensureBucketExists() error {
	ctx := context.Background()
	exists, err := ss.Client.BucketExists(ctx, ss.Bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = ss.Client.MakeBucket(ctx, ss.Bucket, minio.MakeBucketOptions{Region: ss.Region})
	if err != nil && ss.StorageType == "s3" {
		// the bucket may exist under another account, or creation may be
		// forbidden; uploads will tell
		logging.Logger.Warn("could not create S3 bucket", "bucket", ss.Bucket, "error", err)
		return nil
	}
	return err
}

// ArchiveUpload stores the raw bytes of one uploaded file and returns
// the object key.
func (ss *Service) ArchiveUpload(ctx context.Context, filename string, data []byte) (string, error) {
	key := ss.uploadKey(filename)
	_, err := ss.Client.PutObject(ctx, ss.Bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"})
	if err != nil {
		return "", err
	}
	return key, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)

// uploadKey builds a date-partitioned object key:
// requests/2026/08/31/<short-uuid>_<cleaned-name>.
func (ss *Service) uploadKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = unsafeKeyChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_-.")
	if base == "" {
		base = "request"
	}
	if r := []rune(base); len(r) > 50 {
		base = string(r[:50])
	}
	now := time.Now()
	return fmt.Sprintf("requests/%s/%s_%s%s",
		now.Format("2006/01/02"), uuid.New().String()[:8], base, ext)
}
