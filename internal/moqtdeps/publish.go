package moqtdeps

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BucketClient wraps the S3 client for the artifact bucket (an
// S3-compatible endpoint such as Cloudflare R2).
type BucketClient struct {
	Client *s3.Client
	Bucket string
}

// NewBucketClient initializes the client from configuration values.
func NewBucketClient(cfg *Config) (*BucketClient, error) {
	accountID := cfg.Values["MOQTDEPS_S3_ACCOUNT_ID"]
	accessKey := cfg.Values["MOQTDEPS_S3_ACCESS_KEY_ID"]
	secretKey := cfg.Values["MOQTDEPS_S3_SECRET_ACCESS_KEY"]
	bucket := cfg.Values["MOQTDEPS_S3_BUCKET"]

	if accountID == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("%w: bucket credentials (MOQTDEPS_S3_ACCOUNT_ID, MOQTDEPS_S3_ACCESS_KEY_ID, MOQTDEPS_S3_SECRET_ACCESS_KEY, MOQTDEPS_S3_BUCKET)", ErrConfigMissing)
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
		}, nil
	})

	options := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithRegion("auto"),
	}
	if cfg.Debug {
		options = append(options, awsconfig.WithClientLogMode(aws.LogRequest|aws.LogResponse|aws.LogRetries))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load bucket config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return &BucketClient{Client: client, Bucket: bucket}, nil
}

// UploadLocalFile uploads a file from disk under the given key.
func (b *BucketClient) UploadLocalFile(ctx context.Context, key, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	contentType := "application/octet-stream"
	if strings.HasSuffix(key, ".zst") {
		contentType = "application/zstd"
	} else if strings.HasSuffix(key, ".b3") {
		contentType = "text/plain"
	}

	_, err = b.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.Bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(stat.Size()),
		ContentType:   aws.String(contentType),
	})
	return err
}

// PublishDist uploads every packaged artifact (and its checksum file)
// from the dist directory, prefixing keys with keyPrefix when set.
func PublishDist(ctx context.Context, cfg *Config, keyPrefix string) error {
	client, err := NewBucketClient(cfg)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(cfg.DistDir())
	if err != nil {
		return fmt.Errorf("no packaged artifacts at %s: %w", cfg.DistDir(), err)
	}

	uploaded := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".tar.zst") && !strings.HasSuffix(name, ".b3") {
			continue
		}
		key := name
		if keyPrefix != "" {
			key = path.Join(keyPrefix, name)
		}
		colArrow.Print("-> ")
		colSuccess.Printf("Uploading %s\n", key)
		if err := client.UploadLocalFile(ctx, key, filepath.Join(cfg.DistDir(), name)); err != nil {
			return fmt.Errorf("upload of %s failed: %w", name, err)
		}
		uploaded++
	}
	if uploaded == 0 {
		return fmt.Errorf("nothing to publish in %s", cfg.DistDir())
	}
	colArrow.Print("-> ")
	colSuccess.Printf("Published %d artifacts\n", uploaded)
	return nil
}
