package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

var wikilinkPattern = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// RewriteWikiLinks replaces `[[Page Name]]` references with anchor tags
// pointing at `{baseURL}/note/{slug}/`. The target slug uses the shared
// Slugify rule so links resolve to the slug the referenced document derives
// for itself.
//
// This pass must run before Markdown rendering; the renderer passes raw HTML
// through untouched, so the produced anchors survive unescaped.
func RewriteWikiLinks(body string, baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	return wikilinkPattern.ReplaceAllStringFunc(body, func(match string) string {
		text := wikilinkPattern.FindStringSubmatch(match)[1]
		return fmt.Sprintf(`<a href="%s/note/%s/" class="wiki-link">%s</a>`, baseURL, Slugify(text), text)
	})
}
