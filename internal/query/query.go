// Package query implements the multi-criteria tool matcher shared by
// find, delete, update and export selection.
package query

import (
	"strings"

	"github.com/tman-org/tman/internal/tool"
)

// Criteria is a sparse record of optional match fields. A tool matches when
// it satisfies every criterion that was actually supplied; unsupplied
// criteria are vacuously true.
type Criteria struct {
	// URL matches exactly against the ".git"-normalized query URL.
	URL string

	// Tags must be a subset of the tool's tags, case-insensitively.
	Tags []string

	// Names matches the tool name against any supplied name. In strict
	// mode the match is exact; with FlexibleName set, a case-insensitive
	// substring match also counts.
	Names        []string
	FlexibleName bool

	// Kinds matches the tool kind against any supplied kind.
	Kinds []tool.Kind

	// UpdatedAfter requires a non-nil last-update date >= the threshold
	// (epoch seconds).
	UpdatedAfter *int64
}

// IsZero reports whether no criterion was supplied.
func (c Criteria) IsZero() bool {
	return c.URL == "" && len(c.Tags) == 0 && len(c.Names) == 0 &&
		len(c.Kinds) == 0 && c.UpdatedAfter == nil
}

// Find returns the tools matching the criteria, in input (registry) order.
func Find(tools []*tool.Tool, c Criteria) []*tool.Tool {
	url := c.URL
	if url != "" && !strings.HasSuffix(url, ".git") {
		url += ".git"
	}

	var found []*tool.Tool
	for _, t := range tools {
		if url != "" && t.URL != url {
			continue
		}
		if len(c.Tags) > 0 && !tagsSubset(c.Tags, t.Tags) {
			continue
		}
		if len(c.Names) > 0 && !nameMatch(t.Name, c.Names, c.FlexibleName) {
			continue
		}
		if len(c.Kinds) > 0 && !kindMatch(t.Kind, c.Kinds) {
			continue
		}
		if c.UpdatedAfter != nil &&
			(t.LastUpdateDate == nil || *t.LastUpdateDate < *c.UpdatedAfter) {
			continue
		}
		found = append(found, t)
	}
	return found
}

func tagsSubset(want, have []string) bool {
	for _, w := range want {
		matched := false
		for _, h := range have {
			if strings.EqualFold(w, h) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func nameMatch(name string, names []string, flexible bool) bool {
	for _, n := range names {
		if flexible {
			if strings.Contains(strings.ToLower(name), strings.ToLower(n)) {
				return true
			}
			continue
		}
		if name == n {
			return true
		}
	}
	return false
}

func kindMatch(kind tool.Kind, kinds []tool.Kind) bool {
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// ParseKinds filters a comma-separated type string down to the valid,
// deduplicated kinds.
func ParseKinds(types string) []tool.Kind {
	var kinds []tool.Kind
	seen := make(map[tool.Kind]bool)
	for _, raw := range strings.Split(types, ",") {
		k := tool.Kind(strings.TrimSpace(raw))
		for _, valid := range tool.ValidKinds {
			if k == valid && !seen[k] {
				seen[k] = true
				kinds = append(kinds, k)
			}
		}
	}
	return kinds
}
