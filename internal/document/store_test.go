package document

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alfredjeanlab/gantt/internal/config"
)

func TestNewStore(t *testing.T) {
	cfg := config.Default()
	cfg.Dir = filepath.Join(t.TempDir(), "plans")

	s, err := NewStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewStore(file): %v", err)
	}
	if fs, ok := s.(*FileStore); !ok || fs.Dir != cfg.Dir {
		t.Errorf("NewStore(file) = %#v", s)
	}

	cfg.Store = config.StoreGit
	cfg.GitRepo = t.TempDir()
	s, err = NewStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewStore(git): %v", err)
	}
	if _, ok := s.(*GitStore); !ok {
		t.Errorf("NewStore(git) = %T", s)
	}

	cfg.Store = "ftp"
	if _, err := NewStore(context.Background(), cfg); err == nil {
		t.Error("NewStore accepted an unknown store")
	}
}
