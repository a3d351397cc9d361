package audit

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"

	"visualaudit/internal/domain"
)

// Attributes checked, in order, when an <img> has no src. Sites using
// lazy-load libraries park the real URL in one of these.
var lazySrcAttrs = []string{"data-src", "data-lazy-src", "data-original"}

// ExtractCandidates performs a single-pass traversal of the page markup and
// returns every raw image reference worth auditing, in priority order: the
// page-level og:image first, then every <source srcset>, then every <img>.
// References are returned exactly as written; resolution and filtering are
// the resolver's job.
func ExtractCandidates(body io.Reader) ([]domain.Candidate, error) {
	var metaRefs, srcsetRefs, imgRefs []domain.Candidate

	z := html.NewTokenizer(body)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				out := make([]domain.Candidate, 0, len(metaRefs)+len(srcsetRefs)+len(imgRefs))
				out = append(out, metaRefs...)
				out = append(out, srcsetRefs...)
				out = append(out, imgRefs...)
				return out, nil
			}
			return nil, z.Err()

		case html.StartTagToken, html.SelfClosingTagToken:
			token := z.Token()
			switch token.Data {
			case "meta":
				if len(metaRefs) > 0 {
					continue
				}
				prop := attrVal(token, "property")
				if prop == "" {
					prop = attrVal(token, "name")
				}
				if strings.EqualFold(prop, "og:image") {
					if content := strings.TrimSpace(attrVal(token, "content")); content != "" {
						metaRefs = append(metaRefs, domain.Candidate{Ref: content, Source: domain.SourceMetaTag})
					}
				}
			case "source":
				if ref := lastSrcSetEntry(attrVal(token, "srcset")); ref != "" {
					srcsetRefs = append(srcsetRefs, domain.Candidate{Ref: ref, Source: domain.SourceSrcSet})
				}
			case "img":
				if c, ok := imgCandidate(token); ok {
					imgRefs = append(imgRefs, c)
				}
			}
		}
	}
}

func imgCandidate(token html.Token) (domain.Candidate, bool) {
	ref := strings.TrimSpace(attrVal(token, "src"))
	source := domain.SourceImgTag

	if ref == "" {
		for _, attr := range lazySrcAttrs {
			if v := strings.TrimSpace(attrVal(token, attr)); v != "" {
				ref, source = v, domain.SourceLazyAttr
				break
			}
		}
	}

	// An element-level srcset wins over src: its last entry is taken.
	if v := lastSrcSetEntry(attrVal(token, "srcset")); v != "" {
		ref, source = v, domain.SourceSrcSet
	}

	if ref == "" {
		return domain.Candidate{}, false
	}
	return domain.Candidate{Ref: ref, Source: source}, true
}

// lastSrcSetEntry returns the URL of the last candidate in a srcset
// attribute. The last entry is assumed to be the highest resolution; that is
// a heuristic carried over from the srcset convention, not something the
// format guarantees.
func lastSrcSetEntry(srcset string) string {
	srcset = strings.TrimSpace(srcset)
	if srcset == "" {
		return ""
	}
	entries := strings.Split(srcset, ",")
	last := strings.TrimSpace(entries[len(entries)-1])
	if last == "" {
		return ""
	}
	return strings.Fields(last)[0]
}

func attrVal(token html.Token, name string) string {
	for _, attr := range token.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
