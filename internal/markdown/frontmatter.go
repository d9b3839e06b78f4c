package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
)

// timestampLayout is the canonical representation for every date the engine
// stores. Lexicographic order of this layout matches chronological order,
// which the store relies on when sorting by effective creation date.
const timestampLayout = "2006-01-02 15:04:05"

// FrontMatter holds the metadata block of a source document after type
// coercion. Date fields are either formatted timestamps, verbatim free-text
// values from the source, or empty when the field was absent.
type FrontMatter struct {
	Title    string
	Slug     string
	Topics   []string
	Created  string
	Modified string
}

// frontMatterEnvelope matches the raw metadata keys a document may carry.
// Topics and the date fields accept more than one YAML shape (a bare string
// vs. a list, a structured date vs. free text), so they decode into `any`
// and are coerced afterwards.
type frontMatterEnvelope struct {
	Title    string `yaml:"title"`
	Slug     string `yaml:"slug"`
	Topics   any    `yaml:"topics"`
	Created  any    `yaml:"created"`
	Date     any    `yaml:"date"`
	Modified any    `yaml:"modified"`
	Updated  any    `yaml:"updated"`
}

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. A document without a metadata block yields an empty
// FrontMatter and the full source as body. A malformed metadata block returns
// an error so the caller can skip the document.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var env frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &env)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(env), body, nil
}

func envelopeToFrontMatter(env frontMatterEnvelope) FrontMatter {
	return FrontMatter{
		Title:    env.Title,
		Slug:     env.Slug,
		Topics:   coerceTopics(env.Topics),
		Created:  firstDateValue(env.Created, env.Date),
		Modified: firstDateValue(env.Modified, env.Updated),
	}
}

// coerceTopics accepts a bare string, a list of scalars, or nothing.
func coerceTopics(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []any:
		topics := make([]string, 0, len(v))
		for _, item := range v {
			topics = append(topics, fmt.Sprint(item))
		}
		return topics
	case []string:
		return append([]string(nil), v...)
	default:
		return []string{fmt.Sprint(v)}
	}
}

func firstDateValue(values ...any) string {
	for _, value := range values {
		if formatted := formatDateValue(value); formatted != "" {
			return formatted
		}
	}
	return ""
}

// formatDateValue normalizes structured dates to the canonical layout and
// keeps free-text values verbatim.
func formatDateValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format(timestampLayout)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
