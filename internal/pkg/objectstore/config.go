package objectstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aquaroute/aquaroute-api/internal/pkg/env"
)

// Config holds S3 configuration for report photos
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	PublicBaseURL   string // Optional CDN or public bucket URL
	Enabled         bool
}

// LoadConfig loads S3 configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-east-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     strings.TrimRight(env.GetEnv("S3_ENDPOINT_URL", ""), "/"),
		PublicBaseURL:   strings.TrimRight(env.GetEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		Enabled:         env.GetEnv("S3_ENABLED", "false") == "true",
	}

	// Validate required fields if S3 is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when S3 is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when S3 is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when S3 is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if S3 uploads are enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey generates a standardized S3 object key for a report photo
func ObjectKey(id, fileExtension string, at time.Time) string {
	// Format: reports/YYYY/MM/UUID.ext
	return fmt.Sprintf("reports/%04d/%02d/%s%s", at.Year(), int(at.Month()), id, fileExtension)
}

// PublicURL returns the URL clients use to fetch objectKey.
func (c *Config) PublicURL(objectKey string) string {
	switch {
	case c.PublicBaseURL != "":
		return c.PublicBaseURL + "/" + objectKey
	case c.EndpointURL != "":
		// path-style, matching the client options for custom endpoints
		return fmt.Sprintf("%s/%s/%s", c.EndpointURL, c.BucketName, objectKey)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.BucketName, c.Region, objectKey)
	}
}
