package glob

import "strings"

// HasWildcard reports whether s contains any glob wildcard token: '*', '?',
// or '**'.
func HasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// Match reports whether candidate matches pattern, where pattern may use '*'
// (any run of characters within one path segment), '?' (exactly one
// character within a segment), and '**' (zero or more path segments). This
// is the in-memory matcher Include's exclusion test and Remove's path-based
// matching use once a glob fragment has already been parsed; real
// directory-tree enumeration for a glob Include fragment is the external
// FilesystemCollaborator's job, not this matcher's.
func Match(pattern, candidate string) bool {
	pattern = filepathSlashes(pattern)
	candidate = filepathSlashes(candidate)
	pSegs := strings.Split(pattern, "/")
	cSegs := strings.Split(candidate, "/")
	return matchSegments(pSegs, cSegs)
}

func filepathSlashes(s string) string {
	return strings.ReplaceAll(s, "\\", "/")
}

func matchSegments(pattern, candidate []string) bool {
	if len(pattern) == 0 {
		return len(candidate) == 0
	}
	if pattern[0] == "**" {
		if len(pattern) == 1 {
			return true
		}
		for i := 0; i <= len(candidate); i++ {
			if matchSegments(pattern[1:], candidate[i:]) {
				return true
			}
		}
		return false
	}
	if len(candidate) == 0 {
		return false
	}
	if !matchSegment(pattern[0], candidate[0]) {
		return false
	}
	return matchSegments(pattern[1:], candidate[1:])
}

// matchSegment matches a single path segment containing '*' and/or '?'
// against a single candidate segment, via a small DP over (pattern index,
// candidate index) — equivalent to classic shell glob matching.
func matchSegment(pattern, candidate string) bool {
	dp := make([][]bool, len(pattern)+1)
	for i := range dp {
		dp[i] = make([]bool, len(candidate)+1)
	}
	dp[0][0] = true
	for i := 1; i <= len(pattern); i++ {
		if pattern[i-1] == '*' {
			dp[i][0] = dp[i-1][0]
		}
	}
	for i := 1; i <= len(pattern); i++ {
		for j := 1; j <= len(candidate); j++ {
			switch pattern[i-1] {
			case '*':
				dp[i][j] = dp[i-1][j] || dp[i][j-1]
			case '?':
				dp[i][j] = dp[i-1][j-1]
			default:
				dp[i][j] = dp[i-1][j-1] && pattern[i-1] == candidate[j-1]
			}
		}
	}
	return dp[len(pattern)][len(candidate)]
}
