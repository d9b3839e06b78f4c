package til

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
)

const feedTimestampLayout = "2006-01-02 15:04:05"

// Feed renders the most recent documents as an Atom feed. It is a pure
// function of query results; entry links point at `{BaseURL}/note/{slug}`.
func (s *Service) Feed(ctx context.Context) (string, error) {
	limit := s.cfg.Feed.Limit
	if limit <= 0 {
		limit = 20
	}

	docs, err := s.queries.Recent(ctx, limit)
	if err != nil {
		return "", err
	}

	base := strings.TrimRight(s.cfg.BaseURL, "/")
	feed := &feeds.Feed{
		Title:       s.cfg.Feed.Title,
		Description: s.cfg.Feed.Description,
		Link:        &feeds.Link{Href: base + "/"},
		Author: &feeds.Author{
			Name:  s.cfg.Feed.AuthorName,
			Email: s.cfg.Feed.AuthorEmail,
		},
		Updated: time.Now(),
	}

	for _, doc := range docs {
		url := fmt.Sprintf("%s/note/%s", base, doc.Slug)
		item := &feeds.Item{
			Id:      url,
			Title:   doc.Title,
			Link:    &feeds.Link{Href: url},
			Content: doc.RenderedHTML,
		}
		// Free-text frontmatter dates fall back to the feed's own updated
		// time rather than failing the whole feed.
		if created, err := time.Parse(feedTimestampLayout, doc.EffectiveCreated()); err == nil {
			item.Created = created
			item.Updated = created
		}
		feed.Items = append(feed.Items, item)
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return "", fmt.Errorf("til: render feed: %w", err)
	}
	return atom, nil
}
