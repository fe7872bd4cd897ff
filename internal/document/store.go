package document

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alfredjeanlab/gantt/internal/config"
)

// NewStore builds the store selected by cfg.Store. Stores holding a
// connection also implement io.Closer.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store {
	case config.StoreFile:
		s, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreS3:
		s, err := NewS3Store(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region, cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreGit:
		repo, err := filepath.Abs(cfg.GitRepo)
		if err != nil {
			return nil, fmt.Errorf("git repo: %w", err)
		}
		return NewGitStore(repo, "", cfg.GitBranch), nil
	case config.StorePostgres:
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
