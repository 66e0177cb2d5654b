// Package codec implements the line-oriented export/import serialization of
// the registry and its ZIP archive container. The textual format is
// deliberately lossy: add/install/last-update dates are dropped on export.
package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tman-org/tman/internal/registry"
	"github.com/tman-org/tman/internal/stringutil"
	"github.com/tman-org/tman/internal/tool"
)

// ConfFileName is the single configuration entry inside an export archive.
const ConfFileName = "conf.tman"

const tagsMarker = "tags-["

// Snapshot is the decoded form of an exported configuration.
type Snapshot struct {
	DefaultInstallDir string
	AutoInstall       bool
	Tools             []*tool.Tool
}

// Encode renders the settings plus the selected tools in the line-oriented
// format: line 1 carries the scalar settings as key-value pairs; each tool
// contributes one line with name, url, tags (bracketed comma list), type
// and directory. Date fields are intentionally omitted.
func Encode(w io.Writer, reg *registry.Registry, tools []*tool.Tool) error {
	settings := fmt.Sprintf("default_installation_directory-%s,automatic_install-%s",
		reg.DefaultInstallDir, pythonBool(reg.AutoInstall))
	if _, err := fmt.Fprintln(w, settings); err != nil {
		return err
	}

	for _, t := range tools {
		line := fmt.Sprintf("name-%s,url-%s,tags-[%s],type-%s,directory-%s",
			t.Name, t.URL, strings.Join(t.Tags, ","), t.Kind, t.Directory)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Decode parses the line-oriented format back into a snapshot. Tools whose
// url is the "-" sentinel come back as local files, everything else as
// repositories. Timestamps are left unset; importers stamp the add date.
func Decode(r io.Reader) (*Snapshot, error) {
	snap := &Snapshot{}
	scanner := bufio.NewScanner(r)

	first := true
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if first {
			first = false
			if err := decodeSettings(line, snap); err != nil {
				return nil, fmt.Errorf("codec: line %d: %w", lineNo, err)
			}
			continue
		}

		t, err := decodeTool(line)
		if err != nil {
			return nil, fmt.Errorf("codec: line %d: %w", lineNo, err)
		}
		snap.Tools = append(snap.Tools, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("codec: read: %w", err)
	}
	return snap, nil
}

func decodeSettings(line string, snap *Snapshot) error {
	for _, pair := range strings.Split(line, ",") {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "-")
		if !ok {
			return fmt.Errorf("malformed settings pair %q", pair)
		}
		switch key {
		case "default_installation_directory":
			snap.DefaultInstallDir = value
		case "automatic_install":
			snap.AutoInstall = value == "True" || value == "true"
		}
	}
	return nil
}

func decodeTool(line string) (*tool.Tool, error) {
	rest, tags, err := cutTags(line)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	for _, pair := range strings.Split(rest, ",") {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "-")
		if !ok {
			return nil, fmt.Errorf("malformed tool field %q", pair)
		}
		fields[key] = value
	}

	directory := fields["directory"]
	if directory == "" {
		return nil, fmt.Errorf("tool line missing directory")
	}

	if fields["url"] == tool.LocalURL {
		return tool.NewLocalFile(directory, tool.WithTags(tags)), nil
	}
	url := fields["url"]
	if url == "" {
		return nil, fmt.Errorf("tool line missing url")
	}
	var opts []tool.Option
	if name := fields["name"]; name != "" {
		opts = append(opts, tool.WithName(name))
	}
	opts = append(opts, tool.WithTags(tags))
	return tool.NewRepository(url, directory, opts...), nil
}

// cutTags locates the tags-[...] segment, parses it into a tag list and
// returns the line with the segment removed. The bracketed list is the
// legacy on-disk encoding; individual tokens may carry surrounding quotes.
func cutTags(line string) (string, []string, error) {
	start := strings.Index(line, tagsMarker)
	if start < 0 {
		return line, nil, nil
	}
	end := strings.Index(line[start:], "]")
	if end < 0 {
		return "", nil, fmt.Errorf("unterminated tag list in %q", line)
	}
	end += start

	var tags []string
	inner := line[start+len(tagsMarker) : end]
	for _, raw := range strings.Split(inner, ",") {
		t := stringutil.RemoveQuotes(strings.TrimSpace(raw))
		if t != "" {
			tags = append(tags, t)
		}
	}

	rest := line[:start] + line[end+1:]
	rest = strings.ReplaceAll(rest, ",,", ",")
	rest = strings.Trim(rest, ",")
	return rest, tags, nil
}

func pythonBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
