package assets

import (
	"regexp"
	"strings"
)

// retrievalPrefix is the URL path every rewritten reference points at.
const retrievalPrefix = "api/images/"

var (
	// markdownImagePattern matches ![alt](images/name.ext) and
	// ![alt](api/images/name.ext) references emitted by the parse service.
	markdownImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\((?:\./)?(?:api/images/|images/)([^)\s]+)\)`)

	// htmlImageTagPattern matches rendered <img ...> tags.
	htmlImageTagPattern = regexp.MustCompile(`(?is)<img\s+[^>]*>`)
	htmlSrcAttrPattern  = regexp.MustCompile(`(?i)(src\s*=\s*")([^"]*)(")`)
)

// RewriteMarkdown rewrites plain-text embedded image references so they
// carry the full (identity, filename) key. Rewriting already-rewritten text
// is a no-op.
func RewriteMarkdown(identity, text string) string {
	return markdownImagePattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := markdownImagePattern.FindStringSubmatch(match)
		alt, name := groups[1], groups[2]
		if strings.HasPrefix(name, identity+"_") {
			name = strings.TrimPrefix(name, identity+"_")
		}
		return "![" + alt + "](" + retrievalPrefix + identity + "_" + name + ")"
	})
}

// RewriteHTML rewrites <img src> attributes in rendered markup, replacing
// only the trailing filename segment with the identity-qualified form. A
// src that already carries the identity prefix is left untouched.
func RewriteHTML(identity, html string) string {
	return htmlImageTagPattern.ReplaceAllStringFunc(html, func(tag string) string {
		return htmlSrcAttrPattern.ReplaceAllStringFunc(tag, func(attr string) string {
			groups := htmlSrcAttrPattern.FindStringSubmatch(attr)
			prefix, src, suffix := groups[1], groups[2], groups[3]

			name := src
			if idx := strings.LastIndex(src, "/"); idx >= 0 {
				name = src[idx+1:]
			}
			if name == "" {
				return attr
			}
			if strings.HasPrefix(name, identity+"_") {
				return attr
			}
			return prefix + retrievalPrefix + identity + "_" + name + suffix
		})
	})
}

// SplitRef recovers the (identity, filename) pair from an addressable
// reference. Identities may themselves contain underscores, so the split
// happens at the last one: the final segment is the filename and
// everything before it is the identity.
func SplitRef(ref string) (identity, filename string, ok bool) {
	idx := strings.LastIndex(ref, "_")
	if idx <= 0 || idx == len(ref)-1 {
		return "", "", false
	}
	return ref[:idx], ref[idx+1:], true
}
