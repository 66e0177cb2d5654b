package scanner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tman-org/tman/internal/gitsync"
	"github.com/tman-org/tman/internal/scanner"
)

// fakeRemotes resolves origin URLs from a fixed map; directories not in the
// map count as clones without an origin remote.
type fakeRemotes map[string]string

func (f fakeRemotes) Clone(context.Context, string, string) (gitsync.Status, error) {
	return gitsync.StatusFailed, errors.New("not supported")
}

func (f fakeRemotes) Pull(context.Context, string) (gitsync.Status, error) {
	return gitsync.StatusFailed, errors.New("not supported")
}

func (f fakeRemotes) RemoteURL(dir string) (string, error) {
	url, ok := f[dir]
	if !ok {
		return "", errors.New("remote not found")
	}
	return url, nil
}

func mkClone(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(path, ".git"), 0750))
}

func collect(t *testing.T, found <-chan scanner.Candidate, errc <-chan error) []scanner.Candidate {
	t.Helper()
	var candidates []scanner.Candidate
	for c := range found {
		candidates = append(candidates, c)
	}
	require.NoError(t, <-errc)
	return candidates
}

func TestScan(t *testing.T) {
	t.Parallel()

	t.Run("FindsClones", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		widget := filepath.Join(root, "src", "widget")
		gadget := filepath.Join(root, "gadget")
		mkClone(t, widget)
		mkClone(t, gadget)
		require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-repo"), 0750))

		remotes := fakeRemotes{
			widget: "https://github.com/acme/widget.git",
			gadget: "https://github.com/acme/gadget.git",
		}
		found, errc := scanner.New(remotes).Scan(context.Background(), root)
		candidates := collect(t, found, errc)

		dirs := make([]string, 0, len(candidates))
		for _, c := range candidates {
			dirs = append(dirs, c.Directory)
		}
		sort.Strings(dirs)
		assert.Equal(t, []string{gadget, widget}, dirs)
	})

	t.Run("DoesNotDescendIntoClones", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		outer := filepath.Join(root, "outer")
		mkClone(t, outer)
		mkClone(t, filepath.Join(outer, "vendored"))

		remotes := fakeRemotes{outer: "https://github.com/acme/outer.git"}
		found, errc := scanner.New(remotes).Scan(context.Background(), root)
		candidates := collect(t, found, errc)

		require.Len(t, candidates, 1)
		assert.Equal(t, outer, candidates[0].Directory)
		assert.Equal(t, "https://github.com/acme/outer.git", candidates[0].URL)
	})

	t.Run("SkipsClonesWithoutOrigin", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		mkClone(t, filepath.Join(root, "detached"))

		found, errc := scanner.New(fakeRemotes{}).Scan(context.Background(), root)
		assert.Empty(t, collect(t, found, errc))
	})

	t.Run("Cancellation", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		for _, name := range []string{"a", "b", "c"} {
			mkClone(t, filepath.Join(root, name))
		}
		remotes := fakeRemotes{
			filepath.Join(root, "a"): "https://github.com/acme/a.git",
			filepath.Join(root, "b"): "https://github.com/acme/b.git",
			filepath.Join(root, "c"): "https://github.com/acme/c.git",
		}

		ctx, cancel := context.WithCancel(context.Background())
		found, errc := scanner.New(remotes).Scan(ctx, root)

		<-found
		cancel()
		for range found {
		}
		// Cancellation is not reported as a walk error.
		assert.NoError(t, <-errc)
	})
}
