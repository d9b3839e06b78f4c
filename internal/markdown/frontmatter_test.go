package markdown

import (
	"strings"
	"testing"
)

func TestParseFrontMatter(t *testing.T) {
	source := []byte(`---
title: Sample Note
slug: sample-note
topics:
  - go
  - sqlite
created: 2024-03-01 10:00:00
---

# Sample Note

Body text.
`)

	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Sample Note" {
		t.Fatalf("title mismatch, got %q", fm.Title)
	}
	if fm.Slug != "sample-note" {
		t.Fatalf("slug mismatch, got %q", fm.Slug)
	}
	if len(fm.Topics) != 2 || fm.Topics[0] != "go" || fm.Topics[1] != "sqlite" {
		t.Fatalf("topics mismatch: %#v", fm.Topics)
	}
	if fm.Created == "" {
		t.Fatalf("expected created to be set")
	}
	if !strings.Contains(string(body), "# Sample Note") {
		t.Fatalf("body not returned correctly: %q", string(body))
	}
	if strings.Contains(string(body), "title:") {
		t.Fatalf("frontmatter delimiters leaked into body: %q", string(body))
	}
}

func TestParseFrontMatterBareStringTopic(t *testing.T) {
	source := []byte("---\ntopics: general\n---\nbody")

	fm, _, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if len(fm.Topics) != 1 || fm.Topics[0] != "general" {
		t.Fatalf("expected bare string wrapped as single topic, got %#v", fm.Topics)
	}
}

func TestParseFrontMatterFreeTextDates(t *testing.T) {
	source := []byte("---\nmodified: sometime last week\n---\nbody")

	fm, _, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Modified != "sometime last week" {
		t.Fatalf("expected free-text modified kept verbatim, got %q", fm.Modified)
	}
}

func TestParseFrontMatterDateAlias(t *testing.T) {
	source := []byte("---\ndate: 2023-06-15 08:30:00\n---\nbody")

	fm, _, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Created == "" {
		t.Fatalf("expected date alias to populate created")
	}
}

func TestParseFrontMatterAbsent(t *testing.T) {
	source := []byte("# Just a document\n\nNo metadata block at all.\n")

	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" || fm.Slug != "" || len(fm.Topics) != 0 {
		t.Fatalf("expected empty frontmatter, got %#v", fm)
	}
	if !strings.Contains(string(body), "Just a document") {
		t.Fatalf("expected full source as body, got %q", string(body))
	}
}

func TestParseFrontMatterMalformed(t *testing.T) {
	source := []byte("---\ntitle: [unclosed\n  bad yaml\n---\nbody")

	if _, _, err := ParseFrontMatter(source); err == nil {
		t.Fatalf("expected malformed frontmatter to error")
	}
}
