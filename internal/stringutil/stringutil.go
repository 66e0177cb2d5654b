package stringutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateFormats accepted by ParseDate, tried in order.
var dateFormats = []string{"02-01-2006", "02/01/2006"}

// FormatEpoch renders an epoch-seconds timestamp in a human-readable local
// form. Returns an empty string for a nil timestamp.
func FormatEpoch(sec *int64) string {
	if sec == nil {
		return ""
	}
	return time.Unix(*sec, 0).Format("Mon Jan _2 15:04:05 2006")
}

// ParseDate converts a dd-mm-yyyy (or dd/mm/yyyy) date string to epoch
// seconds at local midnight.
func ParseDate(val string) (int64, error) {
	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, val, time.Local); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("bad date format %q, it must be dd-mm-yyyy", val)
}

// SanitizeTags splits a comma-separated tag string, removes all whitespace
// inside each tag and drops empty entries. The result may be empty.
func SanitizeTags(tags string) []string {
	var valid []string
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.ReplaceAll(strings.TrimSpace(tag), " ", "")
		if tag != "" {
			valid = append(valid, tag)
		}
	}
	return valid
}

// SanitizeList trims each entry and drops empties, preserving order.
func SanitizeList(items []string) []string {
	var valid []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			valid = append(valid, item)
		}
	}
	return valid
}

// SanitizeIndexes parses a comma-separated list of 1-based indexes entered
// by the user and returns the unique valid 0-based indexes, in input order.
func SanitizeIndexes(max int, input string) []int {
	var res []int
	seen := make(map[int]bool)
	for _, field := range strings.Split(input, ",") {
		field = strings.TrimSpace(field)
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 || n > max {
			continue
		}
		if !seen[n-1] {
			seen[n-1] = true
			res = append(res, n-1)
		}
	}
	return res
}

// RemoveQuotes strips a single pair of surrounding single or double quotes.
func RemoveQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// ContainsFold reports whether any element of list equals s,
// case-insensitively.
func ContainsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
