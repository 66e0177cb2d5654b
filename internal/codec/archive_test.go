package codec_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tman-org/tman/internal/codec"
	"github.com/tman-org/tman/internal/tool"
)

func TestArchiveRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	src := t.TempDir()
	toolDir := filepath.Join(src, "widget")
	require.NoError(t, os.MkdirAll(toolDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(toolDir, "README.md"), []byte("hello"), 0600))

	out := filepath.Join(t.TempDir(), "export.zip")
	conf := []byte("default_installation_directory-/opt,automatic_install-False\n")
	widget := tool.NewRepository("https://github.com/acme/widget", toolDir)

	require.NoError(t, codec.WriteArchive(ctx, out, conf, []*tool.Tool{widget}))

	dest := t.TempDir()
	names, err := codec.ExtractArchive(ctx, out, dest)
	require.NoError(t, err)
	assert.Equal(t, []string{"widget"}, names)

	got, err := os.ReadFile(filepath.Join(dest, codec.ConfFileName))
	require.NoError(t, err)
	assert.Equal(t, conf, got)

	readme, err := os.ReadFile(filepath.Join(dest, "widget", "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(readme))
}

func TestExtractArchiveWithoutConf(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Build an archive bypassing WriteArchive: a bare tool dir, no conf.
	src := t.TempDir()
	toolDir := filepath.Join(src, "widget")
	require.NoError(t, os.MkdirAll(toolDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(toolDir, "main.go"), []byte("package main"), 0600))

	out := filepath.Join(t.TempDir(), "plain.zip")
	require.NoError(t, writeBareZip(t, out, toolDir))

	_, err := codec.ExtractArchive(ctx, out, t.TempDir())
	assert.ErrorIs(t, err, codec.ErrNoConfEntry)
}

// writeBareZip zips the given directory under its base name without adding
// a configuration entry.
func writeBareZip(t *testing.T, outPath, dir string) error {
	t.Helper()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	base := filepath.Base(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		w, err := zw.Create(base + "/" + entry.Name())
		if err != nil {
			return err
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return out.Close()
}
