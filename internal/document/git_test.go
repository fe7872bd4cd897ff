package document

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// newTestClone creates a bare remote plus a clone of it with one commit on
// main, and returns the clone's path.
func newTestClone(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}

	remoteDir := t.TempDir()
	run(t, remoteDir, "git", "init", "--bare")

	workDir := t.TempDir()
	run(t, workDir, "git", "clone", remoteDir, "repo")
	repoDir := filepath.Join(workDir, "repo")

	run(t, repoDir, "git", "config", "user.email", "test@test.com")
	run(t, repoDir, "git", "config", "user.name", "Test")
	run(t, repoDir, "git", "symbolic-ref", "HEAD", "refs/heads/main")

	if err := os.WriteFile(filepath.Join(repoDir, ".gitkeep"), nil, 0o644); err != nil {
		t.Fatalf("write .gitkeep: %v", err)
	}
	run(t, repoDir, "git", "add", ".")
	run(t, repoDir, "git", "commit", "-m", "init")
	run(t, repoDir, "git", "push", "origin", "main")
	return repoDir
}

func commitCount(t *testing.T, repo string) int {
	t.Helper()
	out, err := exec.Command("git", "-C", repo, "rev-list", "--count", "HEAD").Output()
	if err != nil {
		t.Fatalf("rev-list: %v", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		t.Fatalf("parse commit count %q: %v", out, err)
	}
	return n
}

func TestGitStore(t *testing.T) {
	repoDir := newTestClone(t)
	s := NewGitStore(repoDir, "plans", "main")
	ctx := context.Background()

	data1 := []byte(`{"startDate":"2024-01-01"}` + "\n")
	if err := s.Write(ctx, "q1.json", data1); err != nil {
		t.Fatalf("first write: %v", err)
	}
	got, err := s.Read(ctx, "q1.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(data1) {
		t.Fatalf("content mismatch: got %q", got)
	}
	if n := commitCount(t, repoDir); n != 2 {
		t.Fatalf("commits = %d after first write, want 2", n)
	}

	// Unchanged content must not produce a commit.
	if err := s.Write(ctx, "q1.json", data1); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if n := commitCount(t, repoDir); n != 2 {
		t.Fatalf("commits = %d after no-op write, want 2", n)
	}

	data2 := []byte(`{"startDate":"2024-02-01"}` + "\n")
	if err := s.Write(ctx, "q1.json", data2); err != nil {
		t.Fatalf("third write: %v", err)
	}
	if n := commitCount(t, repoDir); n != 3 {
		t.Fatalf("commits = %d after changed write, want 3", n)
	}

	out, err := exec.Command("git", "-C", repoDir, "log", "-1", "--format=%s").Output()
	if err != nil {
		t.Fatalf("git log: %v", err)
	}
	if msg := strings.TrimSpace(string(out)); msg != "gantt: update q1.json" {
		t.Errorf("commit message = %q", msg)
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "q1.json" {
		t.Errorf("List = %v, want [q1.json]", names)
	}
}

func TestGitStore_ReadMissing(t *testing.T) {
	s := NewGitStore(t.TempDir(), "", "main")
	if _, err := s.Read(context.Background(), "none.json"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("error = %v, want ErrNotExist", err)
	}
}

func TestGitStore_RejectsPaths(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "clone")
	if err := os.MkdirAll(repo, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "x.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewGitStore(repo, "plans", "main")

	for _, name := range []string{"../../x.json", "../x.json", "..", "a/b.json", ""} {
		if _, err := s.Read(context.Background(), name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Read(%q) error = %v, want ErrInvalidName", name, err)
		}
		if err := s.Write(context.Background(), name, []byte("{}")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Write(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
	if data, err := os.ReadFile(filepath.Join(root, "x.json")); err != nil || string(data) != "{}" {
		t.Errorf("file outside the clone changed: %q, %v", data, err)
	}
}

func TestGitStore_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
	s := NewGitStore(t.TempDir(), "", "main")
	if err := s.Write(context.Background(), "a.json", []byte("{}")); err == nil {
		t.Fatal("expected error writing outside a git repository")
	}
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("%s %v failed: %v", name, args, err)
	}
}
