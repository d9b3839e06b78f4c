package markdown

import (
	"os"
	"path/filepath"
	"testing"
)

func statFixture(t *testing.T, content string) os.FileInfo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat fixture: %v", err)
	}
	return info
}

func TestResolveTitleChain(t *testing.T) {
	cases := []struct {
		name     string
		explicit string
		body     string
		path     string
		want     string
	}{
		{"frontmatter wins", "Explicit Title", "# Heading Title\n\nbody", "some-file.md", "Explicit Title"},
		{"heading fallback", "", "# Heading Title\n\nbody", "some-file.md", "Heading Title"},
		{"heading not first line", "", "intro paragraph\n\n# Later Heading\n", "some-file.md", "Later Heading"},
		{"filename fallback", "", "plain body with no heading", "my-first_note.md", "My First Note"},
		{"nested path filename", "", "body", "sub/dir/go-tips.md", "Go Tips"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveTitle(tc.explicit, []byte(tc.body), tc.path)
			if got != tc.want {
				t.Fatalf("resolveTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Great Page", "my-great-page"},
		{"Hello, World!", "hello-world"},
		{"under_scored title", "under-scored-title"},
		{"  spaced   out  ", "spaced-out"},
		{"--edges--", "edges"},
		{"C'est l'été", "cest-lété"},
		{"Über Größe", "über-größe"},
		{"日本語 メモ", "日本語-メモ"},
	}

	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeExplicitSlugWins(t *testing.T) {
	info := statFixture(t, "body")

	doc := Normalize("anything.md", FrontMatter{Title: "Some Title", Slug: "custom-slug"}, []byte("body"), info)
	if doc.Slug != "custom-slug" {
		t.Fatalf("expected explicit slug, got %q", doc.Slug)
	}
}

func TestNormalizeDerivedSlug(t *testing.T) {
	info := statFixture(t, "body")

	doc := Normalize("anything.md", FrontMatter{Title: "My Great Page"}, []byte("body"), info)
	if doc.Slug != "my-great-page" {
		t.Fatalf("expected derived slug, got %q", doc.Slug)
	}
}

func TestNormalizeDatePrecedence(t *testing.T) {
	info := statFixture(t, "body")

	doc := Normalize("a.md", FrontMatter{Title: "A", Created: "2020-05-05 12:00:00"}, []byte("body"), info)
	if doc.CreatedFM != "2020-05-05 12:00:00" {
		t.Fatalf("expected frontmatter created preserved, got %q", doc.CreatedFM)
	}
	if doc.CreatedFS == "" {
		t.Fatalf("filesystem created must always be populated")
	}
	if doc.ModifiedFS == "" {
		t.Fatalf("modified must always be populated")
	}
}

func TestNormalizeCreatedNeverSynthesized(t *testing.T) {
	info := statFixture(t, "body")

	doc := Normalize("a.md", FrontMatter{Title: "A"}, []byte("body"), info)
	if doc.CreatedFM != "" {
		t.Fatalf("created_fm must stay empty when frontmatter has no date, got %q", doc.CreatedFM)
	}
}

func TestNormalizeModifiedOverride(t *testing.T) {
	info := statFixture(t, "body")

	doc := Normalize("a.md", FrontMatter{Title: "A", Modified: "2021-01-01 00:00:00"}, []byte("body"), info)
	if doc.ModifiedFS != "2021-01-01 00:00:00" {
		t.Fatalf("expected frontmatter modified to override, got %q", doc.ModifiedFS)
	}
}

func TestNormalizeTopicsTrimmed(t *testing.T) {
	info := statFixture(t, "body")

	doc := Normalize("a.md", FrontMatter{Title: "A", Topics: []string{" go ", "", "sqlite"}}, []byte("body"), info)
	if len(doc.Topics) != 2 || doc.Topics[0] != "go" || doc.Topics[1] != "sqlite" {
		t.Fatalf("topics not trimmed: %#v", doc.Topics)
	}
}
