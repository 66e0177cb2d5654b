// Package registry implements the persistent collection of managed tools
// plus the two global settings, backed by a single JSON file rewritten in
// full at each save point.
package registry

import (
	"strings"

	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/tool"
)

// Registry is the in-memory form of the persisted configuration: the two
// scalar settings and the ordered tool list. Insertion order is registry
// order and is used for index-based selection in interactive flows.
type Registry struct {
	DefaultInstallDir string
	AutoInstall       bool
	Tools             []*tool.Tool
}

// DefaultDir returns the default installation directory with a trailing
// slash when it points at an existing directory.
func (r *Registry) DefaultDir() string {
	dir := r.DefaultInstallDir
	if fileutil.IsDir(dir) && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}

// List returns the tools in registry order. With repoOnly set, local-file
// entries are filtered out.
func (r *Registry) List(repoOnly bool) []*tool.Tool {
	if !repoOnly {
		return r.Tools
	}
	var repos []*tool.Tool
	for _, t := range r.Tools {
		if t.IsRepository() {
			repos = append(repos, t)
		}
	}
	return repos
}

// HasTool reports whether a tool with the given name is registered.
func (r *Registry) HasTool(name string) bool {
	return r.Tool(name) != nil
}

// Tool returns the registered tool with the given name, or nil.
func (r *Registry) Tool(name string) *tool.Tool {
	for _, t := range r.Tools {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// AlreadyManaged reports whether the candidate conflicts with an existing
// entry: same name, or its directory is a string-prefix of an existing
// tool's directory that really exists on disk. The prefix comparison is
// deliberately not path-segment aware, matching the historical behavior.
func (r *Registry) AlreadyManaged(candidate *tool.Tool) bool {
	for _, t := range r.Tools {
		if candidate.Name == t.Name {
			return true
		}
		if fileutil.IsDir(t.Directory) && strings.HasPrefix(candidate.Directory, t.Directory) {
			return true
		}
	}
	return false
}

// Add appends the tool. Uniqueness is not enforced here; callers check
// AlreadyManaged first.
func (r *Registry) Add(t *tool.Tool) {
	r.Tools = append(r.Tools, t)
}

// Update replaces the entry with the same name: the old record is removed
// and the new value appended, which moves the tool to the end of the
// registry order. The reordering is long-standing behavior that interactive
// index selection depends on, so it is kept as is.
func (r *Registry) Update(t *tool.Tool) {
	for _, existing := range r.Tools {
		if existing.Name == t.Name {
			r.Remove(existing)
			r.Add(t)
			return
		}
	}
}

// Remove deletes the entry with the same name. Returns true when an entry
// was removed.
func (r *Registry) Remove(t *tool.Tool) bool {
	for i, existing := range r.Tools {
		if existing.Name == t.Name {
			r.Tools = append(r.Tools[:i], r.Tools[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll clears the tool list, leaving settings untouched, and returns
// the number of entries removed.
func (r *Registry) RemoveAll() int {
	n := len(r.Tools)
	r.Tools = nil
	return n
}
