// Package classifier tags each parsed file with a role used to decide
// whether its content may source card text and whether it may anchor
// graph edges.
package classifier

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Role is the file-role tag assigned to a file.
type Role string

const (
	RoleDomain        Role = "domain"
	RoleSharedUtility Role = "shared_utility"
	RoleTest          Role = "test"
	RoleConfig        Role = "config"
	RoleEntryPoint    Role = "entry_point"
)

// entryPointBasenames are exact basename matches that classify as entry_point.
var entryPointBasenames = map[string]bool{
	"index.ts": true,
	"main.ts":  true,
	"app.rb":   true,
	"manage.py": true,
}

var (
	testPathRe   = regexp.MustCompile(`/spec/|/test/|_spec\.|_test\.|\.test\.|\.stories\.`)
	configPathRe = regexp.MustCompile(`/config/|settings[^/]*\.py$|/initializers/`)
	entryPathRe  = regexp.MustCompile(`^root\.`)
	sharedPathRe = regexp.MustCompile(`/concerns/|/utils/|/shared/`)
)

// Override is a caller-supplied path-regex rule that takes priority over
// the built-in decision table (the "skills" hook in spec.md §4.2).
type Override struct {
	Pattern *regexp.Regexp
	Role    Role
}

// Classify assigns a Role to path based on the first-match-wins decision
// table in spec.md §4.2. overrides, if non-nil, are checked first in order.
func Classify(path string, overrides []Override) Role {
	norm := filepath.ToSlash(path)
	base := filepath.Base(norm)
	// Directory patterns are written as "/dir/"; a leading slash lets them
	// match a top-level directory such as "config/database.yml" too.
	match := "/" + strings.TrimPrefix(norm, "/")

	for _, o := range overrides {
		if o.Pattern.MatchString(norm) {
			return o.Role
		}
	}

	switch {
	case testPathRe.MatchString(match):
		return RoleTest
	case configPathRe.MatchString(match):
		return RoleConfig
	case entryPointBasenames[base] || entryPathRe.MatchString(base):
		return RoleEntryPoint
	case sharedPathRe.MatchString(match):
		return RoleSharedUtility
	default:
		return RoleDomain
	}
}

// ClassifyEntryPoint marks a file as entry_point when a framework extractor
// has already identified it as such (e.g. a Rails config/routes.rb driver
// or an Express app bootstrap file), overriding the path-based table.
func ClassifyEntryPoint(path string, overrides []Override, extractorSaysEntryPoint bool) Role {
	if extractorSaysEntryPoint {
		return RoleEntryPoint
	}
	return Classify(path, overrides)
}

// IsDomainRelevant reports whether files with this role may source card
// content. Only domain and shared_utility files qualify.
func IsDomainRelevant(role Role) bool {
	return role == RoleDomain || role == RoleSharedUtility
}

// IsEmittingRole reports whether a file with this role may anchor a graph
// edge. test, config, and entry_point are non-emitting per spec.md §3.
func IsEmittingRole(role Role) bool {
	return role != RoleTest && role != RoleConfig && role != RoleEntryPoint
}

// NormalizeForDisplay strips a leading slash for presentation purposes,
// matching the "shortened path" requirement of card source_files lists.
func NormalizeForDisplay(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(path), "/")
}
