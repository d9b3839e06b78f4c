package store

import (
	"regexp"
	"strings"
)

// PreviewBudget is the plain-text preview length in characters.
const PreviewBudget = 200

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Preview derives a plain-text preview from the raw Markdown body, falling
// back to the rendered HTML stripped of tags. Whitespace collapses to single
// spaces. Text longer than the budget truncates at the last word boundary at
// or before the budget, unless that boundary falls within the first 70% of
// the budget, in which case it hard-truncates. An ellipsis marks any
// truncation.
func Preview(rawBody, renderedHTML string, budget int) string {
	if budget <= 0 {
		budget = PreviewBudget
	}

	text := strings.TrimSpace(rawBody)
	if text == "" {
		text = strings.TrimSpace(tagPattern.ReplaceAllString(renderedHTML, ""))
	}
	if text == "" {
		return ""
	}

	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}

	truncated := runes[:budget]
	boundary := budget * 70 / 100
	for i := len(truncated) - 1; i > boundary; i-- {
		if truncated[i] == ' ' {
			return string(truncated[:i]) + "..."
		}
	}
	return string(truncated) + "..."
}

// WasModified reports whether a document was edited after creation,
// comparing only the date portion of the effective creation and
// modification timestamps.
func WasModified(effectiveCreated, modified string) bool {
	if modified == "" {
		return false
	}
	return datePortion(modified) != datePortion(effectiveCreated)
}

func datePortion(timestamp string) string {
	if len(timestamp) < 10 {
		return timestamp
	}
	return timestamp[:10]
}
