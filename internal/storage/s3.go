package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/bizdir-ops/internal/cors"
	"github.com/minio/minio-go/v7"
	mcors "github.com/minio/minio-go/v7/pkg/cors"
	mcreds "github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config encapsulates the connection info for S3-compatible storage.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// S3Store implements BucketStore for S3-compatible services via minio-go.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store builds a new S3Store. Static keys win; otherwise credentials are
// taken from AWS_* then MINIO_* environment variables.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be provided")
	}

	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "http://"), false
	}
	endpoint = strings.TrimSuffix(strings.TrimPrefix(endpoint, "//"), "/")

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	providers := []mcreds.Provider{}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		providers = append(providers, &mcreds.Static{Value: mcreds.Value{
			AccessKeyID:     cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
			SignerType:      mcreds.SignatureV4,
		}})
	}
	providers = append(providers, &mcreds.EnvAWS{}, &mcreds.EnvMinio{})

	client, err := minio.New(endpoint, &minio.Options{
		Creds:        mcreds.NewChainCredentials(providers),
		Secure:       secure,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create s3 client: %w", err)
	}

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) Bucket() string { return s.bucket }

// SetCORS replaces the bucket CORS configuration. responseHeader maps onto
// S3's ExposeHeader. An empty policy removes the configuration.
func (s *S3Store) SetCORS(ctx context.Context, policy cors.Policy) error {
	var cfg *mcors.Config
	if len(policy) > 0 {
		cfg = mcors.NewConfig(toS3Rules(policy))
	}
	err := s.client.SetBucketCors(ctx, s.bucket, cfg)
	return classify(fmt.Sprintf("set cors on s3://%s", s.bucket), err)
}

// Metadata reads the bucket location and CORS configuration.
func (s *S3Store) Metadata(ctx context.Context) (*BucketMetadata, error) {
	op := fmt.Sprintf("get metadata for s3://%s", s.bucket)

	location, err := s.client.GetBucketLocation(ctx, s.bucket)
	if err != nil {
		return nil, classify(op, err)
	}

	cfg, err := s.client.GetBucketCors(ctx, s.bucket)
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchCORSConfiguration" {
		return nil, classify(op, err)
	}

	meta := &BucketMetadata{
		Name:     s.bucket,
		Location: location,
		CORS:     cors.Policy{},
	}
	if cfg != nil {
		meta.CORS = fromS3Rules(cfg.CORSRules)
	}
	return meta, nil
}

// UploadObject streams r to key. size may be -1 when unknown.
func (s *S3Store) UploadObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return classify(fmt.Sprintf("upload s3://%s/%s", s.bucket, key), err)
}

var _ BucketStore = (*S3Store)(nil)

func toS3Rules(policy cors.Policy) []mcors.Rule {
	rules := make([]mcors.Rule, 0, len(policy))
	for _, r := range policy {
		rules = append(rules, mcors.Rule{
			AllowedOrigin: r.Origins,
			AllowedMethod: r.Methods,
			ExposeHeader:  r.ResponseHeaders,
			MaxAgeSeconds: r.MaxAgeSeconds,
		})
	}
	return rules
}

func fromS3Rules(rules []mcors.Rule) cors.Policy {
	policy := make(cors.Policy, 0, len(rules))
	for _, r := range rules {
		policy = append(policy, cors.Rule{
			Origins:         r.AllowedOrigin,
			Methods:         r.AllowedMethod,
			ResponseHeaders: r.ExposeHeader,
			MaxAgeSeconds:   r.MaxAgeSeconds,
		})
	}
	return policy
}
