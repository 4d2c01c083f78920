package s3store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pettracker/app/config"
)

// urlTTL bounds how long a signed photo URL stays usable.
const urlTTL = 15 * time.Minute

// objectAPI is the subset of the S3 client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store implements port.ObjectStore over the user-files bucket.
type Store struct {
	api     objectAPI
	presign *s3.PresignClient
	bucket  string
	logger  *slog.Logger
}

// New creates an object store over the configured bucket.
func New(cfg *config.Config, client *s3.Client, logger *slog.Logger) *Store {
	return &Store{
		api:     client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.UserFilesBucket,
		logger:  logger.With("component", "s3store"),
	}
}

// PutObject uploads an object under the given key.
func (s *Store) PutObject(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to store object %q: %w", key, err)
	}

	s.logger.Debug("object stored", "key", key)
	return nil
}

// ObjectURL returns a time-limited signed URL for the key.
func (s *Store) ObjectURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(urlTTL))
	if err != nil {
		return "", fmt.Errorf("failed to sign url for %q: %w", key, err)
	}
	return req.URL, nil
}
