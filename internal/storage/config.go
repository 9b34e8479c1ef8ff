package storage

import (
	"context"
	"fmt"
)

// Config holds storage configuration
type Config struct {
	Type     string // "local" or "s3"
	LocalDir string // Directory for local storage
	BaseURL  string // Server base URL for local download links

	Bucket          string
	Region          string
	Endpoint        string // optional, for S3-compatible services
	AccessKeyID     string
	SecretAccessKey string
}

// New builds the store selected by cfg.Type.
func New(ctx context.Context, cfg Config) (DocumentStore, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStore(cfg.BaseURL, cfg.LocalDir)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
