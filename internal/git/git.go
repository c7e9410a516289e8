// Package git turns a generated workspace into a repository with a single
// initial commit and pushes it to a remote.
package git

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Defaults for the initial commit.
const (
	DefaultAuthorName  = "Telegram Bot"
	DefaultAuthorEmail = "bot@example.com"
	DefaultBranch      = "main"
	DefaultMessage     = "Initial commit"
	DefaultRemote      = "origin"
)

// ErrNoChanges is returned when the workspace has nothing to commit.
var ErrNoChanges = errors.New("no changes to commit")

// Options controls the initial commit and push.
type Options struct {
	AuthorName  string
	AuthorEmail string
	Branch      string
	Message     string
	// Token authenticates the push over HTTPS. Empty means the git
	// credential configuration of the host is used.
	Token string
}

func (o Options) withDefaults() Options {
	if o.AuthorName == "" {
		o.AuthorName = DefaultAuthorName
	}
	if o.AuthorEmail == "" {
		o.AuthorEmail = DefaultAuthorEmail
	}
	if o.Branch == "" {
		o.Branch = DefaultBranch
	}
	if o.Message == "" {
		o.Message = DefaultMessage
	}
	return o
}

// CommitResult represents the outcome of InitialCommit.
type CommitResult struct {
	Hash   string
	Branch string
}

// InitialCommit initializes a repository in dir (or opens an existing one),
// points HEAD at opts.Branch, stages every file, commits, and registers
// remoteURL as origin.
func InitialCommit(dir, remoteURL string, opts Options) (*CommitResult, error) {
	opts = opts.withDefaults()

	repo, err := git.PlainInit(dir, false)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		repo, err = git.PlainOpen(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init repository: %w", err)
	}

	// Equivalent of `git branch -M <branch>` before the first commit.
	branchRef := plumbing.NewBranchReferenceName(opts.Branch)
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branchRef)); err != nil {
		return nil, fmt.Errorf("failed to set branch %s: %w", opts.Branch, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, fmt.Errorf("failed to stage changes: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	if status.IsClean() {
		return nil, ErrNoChanges
	}

	hash, err := worktree.Commit(opts.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  opts.AuthorName,
			Email: opts.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: DefaultRemote,
		URLs: []string{remoteURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add remote: %w", err)
	}

	return &CommitResult{Hash: hash.String(), Branch: opts.Branch}, nil
}

// Push runs `git push -u origin <branch>` in dir. A token, when set, is sent
// as an HTTP basic auth header through the environment, so it appears
// neither in the remote URL nor on the command line.
func Push(ctx context.Context, dir string, opts Options) error {
	opts = opts.withDefaults()

	cmd := exec.CommandContext(ctx, "git", pushArgs(dir, opts)...)
	cmd.Env = append(os.Environ(), pushEnv(opts)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to push branch %q: %w (stderr: %s)", opts.Branch, err, stderr.String())
	}
	return nil
}

func pushArgs(dir string, opts Options) []string {
	return []string{"-C", dir, "push", "-u", DefaultRemote, opts.Branch}
}

// pushEnv returns the variables added to the push environment. The auth
// header uses git's GIT_CONFIG_COUNT/KEY/VALUE mechanism.
func pushEnv(opts Options) []string {
	env := []string{"GIT_TERMINAL_PROMPT=0"}
	if opts.Token == "" {
		return env
	}
	cred := base64.StdEncoding.EncodeToString([]byte("x-access-token:" + opts.Token))
	return append(env,
		"GIT_CONFIG_COUNT=1",
		"GIT_CONFIG_KEY_0=http.extraHeader",
		"GIT_CONFIG_VALUE_0=Authorization: Basic "+cred,
	)
}

// Committer runs InitialCommit followed by Push.
type Committer struct {
	Options Options
}

// CommitAndPush publishes dir to remoteURL as a single initial commit.
func (c *Committer) CommitAndPush(ctx context.Context, dir, remoteURL string) error {
	if _, err := InitialCommit(dir, remoteURL, c.Options); err != nil {
		return err
	}
	return Push(ctx, dir, c.Options)
}
