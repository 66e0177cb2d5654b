package codec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/tool"
)

// ErrNoConfEntry is returned when an import archive does not contain the
// conf.tman configuration entry.
var ErrNoConfEntry = errors.New("codec: no configuration entry in archive")

// WriteArchive creates a ZIP archive at outPath containing the conf.tman
// entry with the given content plus, for each tool whose directory exists
// on disk, a top-level directory with a full recursive copy of the tool's
// tree.
func WriteArchive(ctx context.Context, outPath string, conf []byte, tools []*tool.Tool) error {
	confTmp, err := os.CreateTemp("", "tman-conf-*.tman")
	if err != nil {
		return fmt.Errorf("codec: failed to create temp conf: %w", err)
	}
	defer func() { _ = os.Remove(confTmp.Name()) }()

	if _, err := confTmp.Write(conf); err != nil {
		_ = confTmp.Close()
		return fmt.Errorf("codec: failed to write temp conf: %w", err)
	}
	if err := confTmp.Close(); err != nil {
		return err
	}

	sources := map[string]string{confTmp.Name(): ConfFileName}
	for _, t := range tools {
		if fileutil.FileExists(t.Directory) {
			sources[t.Directory] = fileutil.BaseName(t.Directory)
		}
	}

	files, err := archives.FilesFromDisk(ctx, nil, sources)
	if err != nil {
		return fmt.Errorf("codec: failed to collect files: %w", err)
	}

	out, err := os.Create(outPath) //nolint:gosec // outPath was validated by the caller
	if err != nil {
		return fmt.Errorf("codec: failed to create %s: %w", outPath, err)
	}

	format := archives.Zip{}
	if err := format.Archive(ctx, out, files); err != nil {
		_ = out.Close()
		return fmt.Errorf("codec: failed to archive: %w", err)
	}
	return out.Close()
}

// ExtractArchive extracts the export archive at inPath into destDir and
// returns the names of the top-level tool directories it contained. The
// archive must hold a conf.tman entry or ErrNoConfEntry is returned.
func ExtractArchive(ctx context.Context, inPath, destDir string) ([]string, error) {
	srcFile, err := os.Open(inPath) //nolint:gosec // inPath is user input, validated by the caller
	if err != nil {
		return nil, fmt.Errorf("codec: failed to open archive: %w", err)
	}
	defer func() { _ = srcFile.Close() }()

	format, _, err := archives.Identify(ctx, filepath.Base(inPath), srcFile)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to identify archive format: %w", err)
	}
	if _, err := srcFile.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("codec: failed to reset file position: %w", err)
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return nil, fmt.Errorf("codec: format does not support extraction")
	}

	var hasConf bool
	topLevel := make(map[string]bool)

	err = extractor.Extract(ctx, srcFile, func(_ context.Context, f archives.FileInfo) error {
		name := filepath.Clean(f.NameInArchive)
		if strings.HasPrefix(name, "..") {
			return fmt.Errorf("invalid path in archive: %s", f.NameInArchive)
		}

		if name == ConfFileName {
			hasConf = true
		} else {
			topLevel[strings.SplitN(name, string(filepath.Separator), 2)[0]] = true
		}

		targetPath := filepath.Join(destDir, name)
		if f.IsDir() {
			return os.MkdirAll(targetPath, 0750)
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0750); err != nil {
			return err
		}

		src, err := f.Open()
		if err != nil {
			return err
		}
		dst, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, f.Mode()) //nolint:gosec // targetPath is under destDir, a temp directory
		if err != nil {
			_ = src.Close()
			return err
		}
		_, copyErr := io.Copy(dst, src)
		_ = src.Close()
		_ = dst.Close()
		return copyErr
	})
	if err != nil {
		return nil, fmt.Errorf("codec: failed to extract: %w", err)
	}

	if !hasConf {
		return nil, ErrNoConfEntry
	}

	names := make([]string, 0, len(topLevel))
	for name := range topLevel {
		names = append(names, name)
	}
	return names, nil
}
