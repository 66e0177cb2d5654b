// Package gitsync wraps the go-git operations the lifecycle manager needs:
// cloning a repository into its install directory and pulling an existing
// clone. Outcomes are reported as a small closed status set the core can
// branch on.
package gitsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"

	"github.com/tman-org/tman/internal/fileutil"
)

// Status is the outcome of a sync operation.
type Status int

const (
	// StatusOK means the clone or pull succeeded and changed the working tree.
	StatusOK Status = iota
	// StatusUpToDate means a pull found nothing new.
	StatusUpToDate
	// StatusDestinationExists means a clone target directory already exists.
	StatusDestinationExists
	// StatusFailed covers every other sync failure; the wrapped error has
	// the detail but the core does not branch on it further.
	StatusFailed
)

// String returns the status name for log output.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUpToDate:
		return "up-to-date"
	case StatusDestinationExists:
		return "destination-exists"
	default:
		return "failed"
	}
}

// Client performs version-control sync operations.
type Client interface {
	// Clone clones url into dir. Returns StatusDestinationExists without
	// touching the filesystem when dir already exists.
	Clone(ctx context.Context, url, dir string) (Status, error)

	// Pull fetches and merges the origin remote of the clone at dir.
	Pull(ctx context.Context, dir string) (Status, error)

	// RemoteURL returns the origin remote URL of the clone at dir.
	RemoteURL(dir string) (string, error)
}

type gitClient struct{}

// New returns a go-git backed client.
func New() Client {
	return &gitClient{}
}

// Clone implements Client.
func (c *gitClient) Clone(ctx context.Context, url, dir string) (Status, error) {
	if fileutil.IsDir(dir) {
		return StatusDestinationExists, nil
	}
	if _, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: url}); err != nil {
		return StatusFailed, fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return StatusOK, nil
}

// Pull implements Client.
func (c *gitClient) Pull(ctx context.Context, dir string) (Status, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return StatusFailed, fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return StatusFailed, fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: git.DefaultRemoteName})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return StatusUpToDate, nil
	}
	if err != nil {
		return StatusFailed, fmt.Errorf("failed to pull %s: %w", dir, err)
	}
	return StatusOK, nil
}

// RemoteURL implements Client.
func (c *gitClient) RemoteURL(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}
	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return "", fmt.Errorf("no origin remote at %s: %w", dir, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("origin remote at %s has no URL", dir)
	}
	return urls[0], nil
}
