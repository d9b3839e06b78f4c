package store

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// ErrDocumentNotFound reports a slug lookup that matched no document.
	ErrDocumentNotFound = errors.New("store: document not found")
	// ErrTopicNotFound reports a topic name that was never created. It is
	// distinct from an empty result page for a known topic.
	ErrTopicNotFound = errors.New("store: topic not found")
)

const searchQueryInvalidCode = "SEARCH_QUERY_INVALID"

// NotFoundError carries the resource and key of a failed lookup so the
// presentation layer can render a 404 equivalent.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Resource {
	case "topic":
		return ErrTopicNotFound
	default:
		return ErrDocumentNotFound
	}
}

// wrapSearchError classifies FTS errors. Malformed match syntax is a
// user-correctable validation failure, not a system fault.
func wrapSearchError(err error, query string) error {
	if err == nil {
		return nil
	}
	if isSearchSyntaxError(err) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("invalid search query %q", query)).
			WithTextCode(searchQueryInvalidCode)
	}
	return fmt.Errorf("store: search %q: %w", query, err)
}

// IsSearchQueryError reports whether err came from malformed search syntax.
func IsSearchQueryError(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

func isSearchSyntaxError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "fts5: syntax error") ||
		strings.Contains(msg, "malformed MATCH") ||
		strings.Contains(msg, "unterminated string") ||
		strings.Contains(msg, "no such column") ||
		strings.Contains(msg, "unknown special query")
}
