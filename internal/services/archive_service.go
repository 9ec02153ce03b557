// internal/services/archive_service.go
package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/sensorgrid/ipflow-backend/internal/config"
	"github.com/sensorgrid/ipflow-backend/internal/models"
)

// ArchiveService keeps a durable copy of raw sensor payloads in S3. The
// archive is a convenience for operators; registration and hashing never read
// from it, they work on the payload carried in the record itself.
type ArchiveService struct {
	s3Client *s3.S3
	cfg      *config.Config
}

type ArchiveResult struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

func NewArchiveService(cfg *config.Config) (*ArchiveService, error) {
	if cfg.Archive.AccessKeyID == "" {
		// No credentials configured; archival becomes a no-op.
		return &ArchiveService{cfg: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Archive.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.Archive.AccessKeyID,
			cfg.Archive.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &ArchiveService{
		s3Client: s3.New(sess),
		cfg:      cfg,
	}, nil
}

// Enabled reports whether an S3 backend is configured.
func (s *ArchiveService) Enabled() bool {
	return s.s3Client != nil
}

// ArchiveRecord stores the record's raw payload under a key derived from the
// record id and capture date.
func (s *ArchiveService) ArchiveRecord(record *models.SensorRecord) (*ArchiveResult, error) {
	if s.s3Client == nil {
		return nil, fmt.Errorf("archive storage is not configured")
	}
	if record.ID == uuid.Nil {
		return nil, fmt.Errorf("record must be saved before archival")
	}

	payload := []byte(record.RawPayload)
	key := s.archiveKey(record)

	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Archive.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(payload))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to archive sensor payload: %w", err)
	}

	return &ArchiveResult{
		URL:  fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Archive.S3Bucket, s.cfg.Archive.Region, key),
		Key:  key,
		Size: int64(len(payload)),
	}, nil
}

func (s *ArchiveService) archiveKey(record *models.SensorRecord) string {
	return fmt.Sprintf("sensor-exports/%s/%s/%s.json",
		record.RecordedAt.UTC().Format("2006/01/02"),
		record.SensorType,
		record.ID.String())
}

// PresignedDownloadURL returns a short-lived download link for an archived
// payload.
func (s *ArchiveService) PresignedDownloadURL(key string, expiry time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("archive storage is not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Archive.S3Bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign download URL: %w", err)
	}
	return url, nil
}
