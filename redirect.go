package jobboard

import "strings"

// DefaultDashboardPath is the fallback target for rejected redirect values
const DefaultDashboardPath = "/dashboard"

// IsValidInternalPath reports whether a redirect target is a same-origin
// path. It rejects protocol-relative values ("//host", "/\host") and any
// path with traversal sequences. Pure and total: any input yields a verdict.
func IsValidInternalPath(path string) bool {
	if path == "" {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, `/\`) {
		return false
	}
	if strings.Contains(path, "..") || strings.Contains(path, `.\`) {
		return false
	}
	return true
}

// SafeRedirectPath returns the candidate when it validates, otherwise the
// fallback. An invalid fallback degrades to the dashboard.
func SafeRedirectPath(candidate string, fallback ...string) string {
	if IsValidInternalPath(candidate) {
		return candidate
	}
	for _, f := range fallback {
		if IsValidInternalPath(f) {
			return f
		}
	}
	return DefaultDashboardPath
}
