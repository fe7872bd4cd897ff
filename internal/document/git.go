package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// GitStore keeps documents as files in a local git clone. Every write that
// changes a file is committed and pushed to the configured branch.
type GitStore struct {
	repo   string // path to the local clone
	dir    string // directory within the repo
	branch string // branch to commit and push to
}

// NewGitStore creates a git store. repo is the path to an existing local
// clone; documents are kept under dir inside it.
func NewGitStore(repo, dir, branch string) *GitStore {
	return &GitStore{
		repo:   repo,
		dir:    dir,
		branch: branch,
	}
}

func (s *GitStore) rel(name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Write writes data to the named file, commits and pushes.
func (s *GitStore) Write(ctx context.Context, name string, data []byte) error {
	rel, err := s.rel(name)
	if err != nil {
		return err
	}
	if err := s.git(ctx, "checkout", s.branch); err != nil {
		return fmt.Errorf("git checkout: %w", err)
	}

	// The remote might not have the branch yet.
	_ = s.git(ctx, "pull", "--ff-only", "origin", s.branch)

	full := filepath.Join(s.repo, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	if err := s.git(ctx, "add", rel); err != nil {
		return fmt.Errorf("git add: %w", err)
	}

	// Nothing staged means the document is unchanged.
	if err := s.git(ctx, "diff", "--cached", "--quiet"); err == nil {
		return nil
	}

	if err := s.git(ctx, "commit", "-m", "gantt: update "+name); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	if err := s.git(ctx, "push", "origin", s.branch); err != nil {
		return fmt.Errorf("git push: %w", err)
	}
	return nil
}

// Read returns the named file from the working copy.
func (s *GitStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel, err := s.rel(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.repo, rel))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotExist)
	}
	return data, err
}

// List returns the *.json documents in the working copy.
func (s *GitStore) List(ctx context.Context) ([]string, error) {
	return (&FileStore{Dir: filepath.Join(s.repo, s.dir)}).List(ctx)
}

func (s *GitStore) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.repo
	cmd.Stdout = os.Stderr // visible in logs, keeps stdout for command output
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
