package markdown

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	slug "github.com/goliatone/go-slug"
)

var (
	slugStripPattern    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugCollapsePattern = regexp.MustCompile(`[\s_]+`)
	headingPattern      = regexp.MustCompile(`^#\s+(.+)$`)
)

// NormalizedDocument is the reconciled metadata record the ingestion pipeline
// persists. Dates are canonical `YYYY-MM-DD HH:MM:SS` strings except where a
// free-text frontmatter value was kept verbatim.
type NormalizedDocument struct {
	Title  string
	Slug   string
	Topics []string

	// CreatedFS derives from filesystem metadata. CreatedApprox reports that
	// the platform exposed no birth time and the value degraded to the
	// modification time.
	CreatedFS     string
	CreatedApprox bool

	// ModifiedFS is the file modification time unless the frontmatter carried
	// an explicit modified/updated value, which wins.
	ModifiedFS string

	// CreatedFM is the explicit frontmatter created/date value. Never
	// synthesized; empty means absent.
	CreatedFM string
}

// Normalize reconciles frontmatter, body text, and filesystem stat info into
// a single record, applying the title, slug, topic, and date resolution
// rules.
func Normalize(path string, fm FrontMatter, body []byte, info os.FileInfo) NormalizedDocument {
	title := resolveTitle(fm.Title, body, path)

	created, exact := creationTime(info)
	createdFS := created.Format(timestampLayout)

	modifiedFS := info.ModTime().Format(timestampLayout)
	if fm.Modified != "" {
		modifiedFS = fm.Modified
	}

	return NormalizedDocument{
		Title:         title,
		Slug:          resolveSlug(fm.Slug, title),
		Topics:        trimTopics(fm.Topics),
		CreatedFS:     createdFS,
		CreatedApprox: !exact,
		ModifiedFS:    modifiedFS,
		CreatedFM:     fm.Created,
	}
}

// resolveTitle applies the fallback chain: explicit frontmatter title, first
// level-1 heading in the body, then the filename.
func resolveTitle(explicit string, body []byte, path string) string {
	if title := strings.TrimSpace(explicit); title != "" {
		return title
	}

	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		if match := headingPattern.FindStringSubmatch(line); match != nil {
			return strings.TrimSpace(match[1])
		}
	}

	return titleFromFilename(path)
}

// titleFromFilename turns "my-first_note.md" into "My First Note".
func titleFromFilename(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.ReplaceAll(stem, "-", " ")
	stem = strings.ReplaceAll(stem, "_", " ")

	words := strings.Fields(stem)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// resolveSlug prefers an explicit frontmatter slug when it passes the shared
// slug rules, otherwise derives one from the resolved title.
func resolveSlug(explicit, title string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if slug.IsValid(explicit) {
			return explicit
		}
		if normalized, err := slug.Normalize(explicit); err == nil && normalized != "" {
			return normalized
		}
	}
	return Slugify(title)
}

// Slugify derives a URL-safe slug: lowercase, strip everything but letters,
// digits, underscores, whitespace, and hyphens (any script, not just ASCII),
// collapse whitespace and underscores into single hyphens, trim leading and
// trailing hyphens.
//
// Wikilink targets use the same rule so `[[Page Name]]` resolves to the slug
// a document titled "Page Name" would receive.
func Slugify(value string) string {
	s := strings.ToLower(value)
	s = slugStripPattern.ReplaceAllString(s, "")
	s = slugCollapsePattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func trimTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, topic := range topics {
		if topic = strings.TrimSpace(topic); topic != "" {
			out = append(out, topic)
		}
	}
	return out
}
