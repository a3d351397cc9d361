package audit

import (
	"net/url"
	"strings"

	"visualaudit/internal/domain"
)

// Substrings that mark a reference as iconography rather than product
// imagery. Matched case-insensitively against the raw reference.
var iconPatterns = []string{"icon", "logo", "favicon", "sprite"}

// ResolveCandidates turns raw references into absolute, deduplicated URLs
// that pass the inclusion policy, capped at max entries. Order is the
// first-seen order of the input. Returns ErrNoCandidateAssets when nothing
// survives; that is terminal for the audit.
func ResolveCandidates(candidates []domain.Candidate, base *url.URL, max int) ([]string, error) {
	seenRaw := make(map[string]struct{}, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	var resolved []string

	for _, c := range candidates {
		if len(resolved) >= max {
			break
		}
		if _, ok := seenRaw[c.Ref]; ok {
			continue
		}
		seenRaw[c.Ref] = struct{}{}

		if isVectorRef(c.Ref) || isIconRef(c.Ref) {
			continue
		}

		ref, err := url.Parse(strings.TrimSpace(c.Ref))
		if err != nil {
			continue // unparsable references are dropped silently
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}

		key := abs.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		resolved = append(resolved, key)
	}

	if len(resolved) == 0 {
		return nil, domain.ErrNoCandidateAssets
	}
	return resolved, nil
}

// isVectorRef reports whether a reference points at a vector image, by
// extension, query string, or data-URI media type. Vector formats are
// excluded outright because the analysis engine rejects them.
func isVectorRef(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	if strings.HasPrefix(lower, "data:") {
		return strings.HasPrefix(lower, "data:image/svg")
	}
	if u, err := url.Parse(lower); err == nil {
		if strings.HasSuffix(u.Path, ".svg") || strings.Contains(u.RawQuery, "svg") {
			return true
		}
	}
	return strings.Contains(lower, ".svg")
}

func isIconRef(ref string) bool {
	lower := strings.ToLower(ref)
	for _, pattern := range iconPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
