package eval

import "github.com/mitchellh/hashstructure"

// GlobSet is a reference-typed wrapper over an immutable slice of glob
// strings making up a globs-to-ignore set. Its cache-key contract is
// reference identity, not value equality: two *GlobSet instances with
// identical patterns are deliberately NOT interchangeable as a
// snapshot-cache key, because the backward Remove-propagation algorithm in
// eval/opexec is the only thing allowed to mint a new *GlobSet. Never add an
// Equal method that callers might be tempted to use for interning; the
// diagnostic helper below hashes content for logging purposes only, and
// explicitly does not feed that hash back into any cache key.
//
// It lives in the base eval package (rather than eval/glob, which holds the
// pure pattern-matching code) so that both eval/plan and eval/opexec can
// depend on the type without a package cycle between them.
type GlobSet struct {
	Patterns []string
}

// EmptyGlobSet is the shared zero-pattern set used when an operation list is
// evaluated with no inherited ignore set. It is still a single, stable
// reference, so cache entries keyed against it behave correctly.
var EmptyGlobSet = &GlobSet{}

// UnionGlobs returns a new GlobSet containing s's patterns (if any) followed
// by extra, minting a fresh reference per the identity contract above. When
// extra is empty it mints nothing and returns s itself (EmptyGlobSet for a
// nil s); the propagation algorithm only calls it with a non-empty extra.
func UnionGlobs(s *GlobSet, extra []string) *GlobSet {
	if s == nil {
		s = EmptyGlobSet
	}
	if len(extra) == 0 {
		return s
	}
	patterns := make([]string, 0, len(s.Patterns)+len(extra))
	patterns = append(patterns, s.Patterns...)
	patterns = append(patterns, extra...)
	return &GlobSet{Patterns: patterns}
}

// globSetContentHash computes a structural hash of a GlobSet's patterns,
// used only by the diagnostic helper below — never as a cache key.
func globSetContentHash(s *GlobSet) (uint64, error) {
	if s == nil {
		return hashstructure.Hash([]string{}, nil)
	}
	return hashstructure.Hash(s.Patterns, nil)
}

// WarnIfGlobSetsValueEqualButDistinct logs a low-importance diagnostic when
// a and b are different *GlobSet references that happen to carry identical
// patterns. This is purely observational: distinct instances with equal
// content are never interned or treated as interchangeable, so this helper
// exists only to surface a possible avoidable cache miss to an integrator
// via diag, never to change behavior.
func WarnIfGlobSetsValueEqualButDistinct(diag Diagnostic, loc Location, a, b *GlobSet) {
	if a == b || a == nil || b == nil || diag == nil {
		return
	}
	ha, err := globSetContentHash(a)
	if err != nil {
		return
	}
	hb, err := globSetContentHash(b)
	if err != nil {
		return
	}
	if ha == hb {
		diag.LogComment(ImportanceLow, loc,
			"DistinctGlobSetsWithEqualContent",
			"two distinct globs-to-ignore sets carry identical patterns; this is a cache-missing opportunity, not a correctness issue")
	}
}
