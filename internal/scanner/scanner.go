// Package scanner discovers git clones under a directory tree so they can
// be offered for registration. The walk runs in a background goroutine and
// streams candidates over a channel, stopping early on context cancellation.
package scanner

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/gitsync"
	"github.com/tman-org/tman/internal/logger"
)

// Candidate is a git clone found on disk: its working directory and the
// URL of its origin remote.
type Candidate struct {
	Directory string
	URL       string
}

// Scanner walks directory trees looking for git clones.
type Scanner struct {
	sync gitsync.Client
}

// New creates a scanner that resolves remotes through the given client.
func New(sync gitsync.Client) *Scanner {
	return &Scanner{sync: sync}
}

// Scan walks root in a background goroutine and sends one Candidate per git
// clone found. The walk does not descend into a clone once found, so nested
// repositories are reported only at their outermost level. Both channels are
// closed when the walk finishes; the error channel carries at most one walk
// error. Cancel the context to stop a long scan.
func (s *Scanner) Scan(ctx context.Context, root string) (<-chan Candidate, <-chan error) {
	found := make(chan Candidate)
	errc := make(chan error, 1)

	go func() {
		defer close(found)
		defer close(errc)

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped, not fatal.
				logger.Debug(ctx, "Skipping unreadable path", "path", path, "err", err)
				return fs.SkipDir
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !d.IsDir() || !fileutil.IsDir(filepath.Join(path, ".git")) {
				return nil
			}

			url, err := s.sync.RemoteURL(path)
			if err != nil {
				logger.Debug(ctx, "Skipping clone without origin", "dir", path, "err", err)
				return fs.SkipDir
			}

			select {
			case found <- Candidate{Directory: path, URL: url}:
			case <-ctx.Done():
				return ctx.Err()
			}
			// Do not walk the repository internals.
			return fs.SkipDir
		})
		if err != nil && err != ctx.Err() {
			errc <- err
		}
	}()

	return found, errc
}
