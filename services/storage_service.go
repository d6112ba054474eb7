package services

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// StorageService uploads finished videos to S3. Upload failures never fail
// the job that produced the video; the caller falls back to a local URL.
type StorageService struct {
	client *s3.Client
	bucket string
	region string
	log    *zap.Logger
}

// StorageConfig carries the S3 settings
type StorageConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// NewStorageService creates a storage service; it is disabled (Enabled
// returns false) when no bucket is configured
func NewStorageService(ctx context.Context, cfg StorageConfig, log *zap.Logger) (*StorageService, error) {
	ss := &StorageService{bucket: cfg.Bucket, region: cfg.Region, log: log}
	if cfg.Bucket == "" {
		return ss, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	ss.client = s3.NewFromConfig(awsCfg)
	return ss, nil
}

// Enabled reports whether cloud upload is configured
func (ss *StorageService) Enabled() bool {
	return ss.client != nil
}

// UploadVideo stores a finished video and returns its public URL
func (ss *StorageService) UploadVideo(ctx context.Context, localPath, videoID, subjectName string) (string, error) {
	if !ss.Enabled() {
		return "", fmt.Errorf("cloud storage is not configured")
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("video file not found at local path: %w", err)
	}
	defer file.Close()

	cleanName := nonAlphanumeric.ReplaceAllString(subjectName, "")
	key := fmt.Sprintf("videos/santa-video-%s-%s.mp4", cleanName, videoID)

	_, err = ss.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(ss.bucket),
		Key:                aws.String(key),
		Body:               file,
		ContentType:        aws.String("video/mp4"),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", "SantaVideo-"+cleanName+".mp4")),
		ACL:                types.ObjectCannedACLPublicRead,
		Metadata: map[string]string{
			"child-name": subjectName,
			"video-id":   videoID,
			"file-type":  "santa-video",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", ss.bucket, ss.region, key)
	ss.log.Info("video uploaded to cloud",
		zap.String("video_id", videoID),
		zap.String("url", url))
	return url, nil
}
