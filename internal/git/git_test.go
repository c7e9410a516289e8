package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// createWorkspace writes a small project tree that is not yet a repository.
func createWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range map[string]string{
		"README.md":             "# demo\n",
		"docs/PRD.md":           "prd\n",
		"frontend/package.json": "{}\n",
	} {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestInitialCommit(t *testing.T) {
	dir := createWorkspace(t)

	result, err := InitialCommit(dir, "https://example.com/demo.git", Options{})
	if err != nil {
		t.Fatalf("InitialCommit() unexpected error: %v", err)
	}
	if result.Hash == "" {
		t.Error("InitialCommit() Hash is empty")
	}
	if result.Branch != DefaultBranch {
		t.Errorf("Branch = %q, want %q", result.Branch, DefaultBranch)
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("Failed to open repo: %v", err)
	}

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Failed to get HEAD: %v", err)
	}
	if head.Name() != plumbing.NewBranchReferenceName(DefaultBranch) {
		t.Errorf("HEAD = %s, want refs/heads/%s", head.Name(), DefaultBranch)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("Failed to get commit: %v", err)
	}
	if commit.Message != DefaultMessage {
		t.Errorf("Commit message = %q, want %q", commit.Message, DefaultMessage)
	}
	if commit.Author.Name != DefaultAuthorName || commit.Author.Email != DefaultAuthorEmail {
		t.Errorf("Author = %s <%s>", commit.Author.Name, commit.Author.Email)
	}

	tree, err := commit.Tree()
	if err != nil {
		t.Fatal(err)
	}
	var files []string
	tree.Files().ForEach(func(f *object.File) error {
		files = append(files, f.Name)
		return nil
	})
	if len(files) != 3 {
		t.Errorf("committed files = %v, want 3", files)
	}

	remote, err := repo.Remote(DefaultRemote)
	if err != nil {
		t.Fatalf("origin remote missing: %v", err)
	}
	if urls := remote.Config().URLs; len(urls) != 1 || urls[0] != "https://example.com/demo.git" {
		t.Errorf("origin URLs = %v", urls)
	}
}

func TestInitialCommit_CustomOptions(t *testing.T) {
	dir := createWorkspace(t)

	_, err := InitialCommit(dir, "https://example.com/x.git", Options{
		AuthorName:  "Builder",
		AuthorEmail: "builder@example.com",
		Branch:      "trunk",
		Message:     "scaffold",
	})
	if err != nil {
		t.Fatalf("InitialCommit() unexpected error: %v", err)
	}

	repo, _ := git.PlainOpen(dir)
	head, _ := repo.Head()
	if head.Name().Short() != "trunk" {
		t.Errorf("branch = %s, want trunk", head.Name().Short())
	}
	commit, _ := repo.CommitObject(head.Hash())
	if commit.Message != "scaffold" || commit.Author.Name != "Builder" {
		t.Errorf("commit = %q by %s", commit.Message, commit.Author.Name)
	}
}

func TestInitialCommit_EmptyWorkspace(t *testing.T) {
	_, err := InitialCommit(t.TempDir(), "https://example.com/x.git", Options{})
	if !errors.Is(err, ErrNoChanges) {
		t.Errorf("err = %v, want ErrNoChanges", err)
	}
}

func TestInitialCommit_RemoteAlreadyExists(t *testing.T) {
	dir := createWorkspace(t)
	if _, err := InitialCommit(dir, "https://example.com/x.git", Options{}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "extra.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := InitialCommit(dir, "https://example.com/x.git", Options{})
	if err == nil || !strings.Contains(err.Error(), "failed to add remote") {
		t.Errorf("err = %v, want add remote failure", err)
	}
}

func TestPushArgs(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "without token", opts: Options{Branch: "main"}},
		{name: "with token", opts: Options{Branch: "main", Token: "secret"}},
	}

	want := []string{"-C", "/tmp/demo", "push", "-u", "origin", "main"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := pushArgs("/tmp/demo", tt.opts)
			if strings.Join(args, " ") != strings.Join(want, " ") {
				t.Errorf("pushArgs() = %v, want %v", args, want)
			}
		})
	}
}

func TestPushEnv(t *testing.T) {
	env := pushEnv(Options{Branch: "main"})
	if len(env) != 1 || env[0] != "GIT_TERMINAL_PROMPT=0" {
		t.Errorf("pushEnv() without token = %v", env)
	}

	env = pushEnv(Options{Branch: "main", Token: "secret"})
	joined := strings.Join(env, "\n")
	for _, want := range []string{
		"GIT_CONFIG_COUNT=1",
		"GIT_CONFIG_KEY_0=http.extraHeader",
		"GIT_CONFIG_VALUE_0=Authorization: Basic ",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("pushEnv() missing %q in %v", want, env)
		}
	}
	if strings.Contains(joined, "secret") {
		t.Error("token must not appear in plain text")
	}
}

func TestCommitAndPush_LocalRemote(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git CLI not found, skipping push test")
	}

	remoteDir := t.TempDir()
	if _, err := git.PlainInit(remoteDir, true); err != nil {
		t.Fatalf("Failed to init bare remote: %v", err)
	}

	dir := createWorkspace(t)
	c := &Committer{}
	if err := c.CommitAndPush(context.Background(), dir, remoteDir); err != nil {
		t.Fatalf("CommitAndPush() unexpected error: %v", err)
	}

	remote, err := git.PlainOpen(remoteDir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := remote.Reference(plumbing.NewBranchReferenceName(DefaultBranch), true); err != nil {
		t.Errorf("remote has no %s branch: %v", DefaultBranch, err)
	}
}

func TestPush_Failure(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git CLI not found, skipping push test")
	}

	err := Push(context.Background(), t.TempDir(), Options{})
	if err == nil || !strings.Contains(err.Error(), "failed to push") {
		t.Errorf("err = %v, want push failure", err)
	}
}
