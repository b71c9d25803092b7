package scrape

import (
	"net/url"
	"path"
	"strings"
)

// defaultLinkExcludes skip documents, media and feeds when following links.
var defaultLinkExcludes = []string{
	"*.pdf",
	"*.doc",
	"*.docx",
	"*.jpg",
	"*.jpeg",
	"*.png",
	"*.gif",
	"*.mp4",
	"*.zip",
	"/feed/*",
	"/wp-content/*",
	"/wp-json/*",
}

// PathMatcher filters URLs based on glob-style path patterns. Patterns with
// a leading "/" match the path from the root ("/feed/*" also matches deeper
// paths); patterns without one match the last path segment ("*.pdf").
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a PathMatcher from glob patterns. Falls back to the
// default link excludes if none are provided.
func NewPathMatcher(patterns []string) *PathMatcher {
	if len(patterns) == 0 {
		patterns = defaultLinkExcludes
	}
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}
	return &PathMatcher{patterns: lowered}
}

// IsExcluded reports whether a URL is unparseable or matches any pattern.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	urlPath := strings.ToLower(u.Path)
	base := path.Base(urlPath)
	for _, pattern := range m.patterns {
		if !strings.HasPrefix(pattern, "/") {
			if ok, _ := path.Match(pattern, base); ok {
				return true
			}
			continue
		}
		if matchSegmented(pattern, urlPath) {
			return true
		}
	}
	return false
}

// matchSegmented performs glob matching where "/feed/*" matches both
// "/feed/x" and "/feed/a/b/c".
func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}
	return false
}
