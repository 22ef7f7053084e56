package services

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/logging"
	"github.com/synesthesie/augment/internal/config"
)

type S3Service struct {
	backupClient *s3.Client
	cfg          *config.Config
}

func NewS3Service(ctx context.Context, cfg *config.Config) (*S3Service, error) {
	backup, err := buildClient(ctx, cfg.BackupS3Endpoint, cfg.BackupS3Region, cfg.BackupS3AccessKeyID, cfg.BackupS3SecretAccessKey, cfg.BackupS3UsePathStyle)
	if err != nil {
		return nil, err
	}
	return &S3Service{backupClient: backup, cfg: cfg}, nil
}

func buildClient(ctx context.Context, endpoint, region, key, secret string, pathStyle bool) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithLogger(logging.Nop{}),
	}
	// fall back to the default credential chain when no static keys are set
	if key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return client, nil
}

// UploadBackup stores body under key in the backup bucket.
func (s *S3Service) UploadBackup(ctx context.Context, key string, body io.Reader, ctype string, metadata map[string]string) error {
	if s.backupClient == nil {
		return fmt.Errorf("backup S3 client not configured")
	}
	uploader := manager.NewUploader(s.backupClient)
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.BackupBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(ctype),
		Metadata:    metadata,
		ACL:         s3types.ObjectCannedACLPrivate,
	}
	_, err := uploader.Upload(ctx, in, func(u *manager.Uploader) { u.PartSize = 10 * 1024 * 1024 })
	return err
}
