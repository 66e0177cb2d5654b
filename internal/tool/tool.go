// Package tool defines the managed-item model shared by the registry,
// the query engine and the lifecycle manager. A tool is either a git
// repository or an arbitrary local file/directory.
package tool

import (
	"fmt"
	"strings"
	"time"

	"github.com/tman-org/tman/internal/fileutil"
)

// Kind discriminates the two tool variants.
type Kind string

const (
	KindGit   Kind = "git"
	KindLocal Kind = "local"
)

// ValidKinds lists the accepted kind names.
var ValidKinds = []Kind{KindGit, KindLocal}

// LocalURL is the URL sentinel stored for local-file tools.
const LocalURL = "-"

// Tool is a managed item. Two tools are equal iff their names are equal;
// the registry enforces name uniqueness.
type Tool struct {
	Name      string
	URL       string
	Directory string
	Kind      Kind
	Tags      []string

	// Epoch seconds; InstallDate and LastUpdateDate stay nil until the
	// tool is actually installed/updated.
	AddDate        *int64
	InstallDate    *int64
	LastUpdateDate *int64
}

// Option mutates a tool under construction.
type Option func(*Tool)

// WithName overrides the derived name.
func WithName(name string) Option {
	return func(t *Tool) { t.Name = name }
}

// WithTags sets the initial tag list.
func WithTags(tags []string) Option {
	return func(t *Tool) { t.Tags = tags }
}

// WithAddDate sets the add timestamp.
func WithAddDate(sec int64) Option {
	return func(t *Tool) { t.AddDate = &sec }
}

// WithDates sets all three timestamps at once. Used by the registry when
// rehydrating stored records and by scan when registering an existing clone.
func WithDates(add, install, lastUpdate *int64) Option {
	return func(t *Tool) {
		t.AddDate = add
		t.InstallDate = install
		t.LastUpdateDate = lastUpdate
	}
}

// NewRepository builds a git-backed tool from a remote URL and a base
// installation directory. The URL is stripped of trailing slashes and
// suffixed with ".git"; the name defaults to the last URL segment minus
// ".git"; the directory is forced to end with the name segment.
func NewRepository(url, directory string, opts ...Option) *Tool {
	url = strings.TrimRight(url, "/")
	if !strings.HasSuffix(url, ".git") {
		url += ".git"
	}

	t := &Tool{URL: url, Kind: KindGit}
	for _, opt := range opts {
		opt(t)
	}

	if t.Name == "" {
		segments := strings.Split(url, "/")
		t.Name = strings.TrimSuffix(segments[len(segments)-1], ".git")
	}

	if !strings.HasSuffix(directory, t.Name) {
		directory = strings.TrimRight(directory, "/") + "/" + t.Name
	}
	t.Directory = directory

	return t
}

// NewLocalFile builds a local-file tool from a filesystem path. The name is
// the final path component and the URL is the "-" sentinel.
func NewLocalFile(path string, opts ...Option) *Tool {
	path = strings.TrimRight(path, "/")

	t := &Tool{
		URL:       LocalURL,
		Kind:      KindLocal,
		Directory: path,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.Name == "" {
		t.Name = fileutil.BaseName(path)
	}

	return t
}

// IsRepository returns true for git-backed tools.
func (t *Tool) IsRepository() bool { return t.Kind == KindGit }

// IsLocalFile returns true for local-file tools.
func (t *Tool) IsLocalFile() bool { return t.Kind == KindLocal }

// IsInstalled reports whether the tool is materialized on disk.
func (t *Tool) IsInstalled() bool {
	return fileutil.FileExists(t.Directory)
}

// SetDirectory moves the tool under a new base directory, re-applying the
// directory-ends-with-name rule.
func (t *Tool) SetDirectory(base string) {
	t.Directory = strings.TrimRight(base, "/") + "/" + t.Name
}

// MarkInstalled stamps both the install date and the last update date.
func (t *Tool) MarkInstalled(now time.Time) {
	sec := now.Unix()
	t.InstallDate = &sec
	t.LastUpdateDate = &sec
}

// MarkUpdated stamps the last update date, and the install date too when it
// was never set (update-in-place on a fresh tool counts as the install).
func (t *Tool) MarkUpdated(now time.Time) {
	sec := now.Unix()
	if t.InstallDate == nil {
		t.InstallDate = &sec
	}
	t.LastUpdateDate = &sec
}

// HasTag reports whether the tool carries the exact tag.
func (t *Tool) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// String renders the short human-readable form used by find listings.
func (t *Tool) String() string {
	return fmt.Sprintf("name: %s, type: %s, directory: %s, tags: [%s]",
		t.Name, t.Kind, t.Directory, strings.Join(t.Tags, ","))
}
