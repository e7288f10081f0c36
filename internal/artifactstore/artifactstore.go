// Package artifactstore optionally mirrors a project's exported
// artifacts (final.mp4, the narration mix, the SRT script) to an
// S3-compatible bucket alongside the local disk layout, grounded on the
// teacher's own mcpserver/storage.go upload helper.
package artifactstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

// Store mirrors local export files into S3 under a per-project prefix.
// A nil *Store is valid and every method on it is a no-op, so callers
// can unconditionally invoke Mirror without branching on whether S3 is
// configured.
type Store struct {
	client *s3.Client
	bucket string
}

// New returns a Store backed by cfg.S3Bucket, or (nil, nil) if no bucket
// is configured — mirroring is an optional ambient concern, per spec.md's
// "Non-goals" treatment of external delivery surfaces.
func New(ctx context.Context, cfg config.Config) (*Store, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)
	return &Store{client: s3.NewFromConfig(awsCfg), bucket: cfg.S3Bucket}, nil
}

// contentTypeFor maps the export file extensions spec.md §6's persisted
// layout lists to their MIME type.
func contentTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".mp4":
		return "video/mp4"
	case ".wav":
		return "audio/wav"
	case ".srt":
		return "application/x-subrip"
	default:
		return "application/octet-stream"
	}
}

// Mirror uploads localPath to "<projectID>/<filepath.Base(localPath)>" in
// the configured bucket and returns the object key. A nil Store returns
// an empty key and no error.
func (s *Store) Mirror(ctx context.Context, projectID, localPath string) (key string, err error) {
	if s == nil {
		return "", nil
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening %s for mirroring: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", localPath, err)
	}

	key = projectID + "/" + filepath.Base(localPath)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentType:   aws.String(contentTypeFor(localPath)),
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s to s3://%s/%s: %w", localPath, s.bucket, key, err)
	}
	return key, nil
}

// MirrorExports uploads every non-empty path in exports, continuing past
// individual failures and returning the first error encountered (if any)
// after attempting them all, so one failed upload doesn't block the
// others.
func (s *Store) MirrorExports(ctx context.Context, projectID string, exports map[string]string) (keys map[string]string, err error) {
	if s == nil {
		return nil, nil
	}
	keys = make(map[string]string, len(exports))
	for name, path := range exports {
		if path == "" {
			continue
		}
		key, uploadErr := s.Mirror(ctx, projectID, path)
		if uploadErr != nil {
			if err == nil {
				err = uploadErr
			}
			continue
		}
		keys[name] = key
	}
	return keys, err
}
