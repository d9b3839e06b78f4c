package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Source carries a parsed document plus the filesystem metadata the
// normalizer reconciles against.
type Source struct {
	Path        string
	FrontMatter FrontMatter
	Body        []byte
	Info        fs.FileInfo
}

// Loader discovers and parses Markdown files beneath a content root.
type Loader struct {
	fs      fs.FS
	pattern string
}

// NewLoader constructs a Loader over the supplied filesystem. Pattern
// defaults to "*.md" and matches against the base name of each file.
func NewLoader(filesystem fs.FS, pattern string) *Loader {
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}
	return &Loader{fs: filesystem, pattern: pattern}
}

// Discover recursively enumerates matching files and returns their paths in
// sorted traversal order. An unreadable root is an error; an empty result is
// not.
func (l *Loader) Discover(ctx context.Context) ([]string, error) {
	var paths []string

	err := fs.WalkDir(l.fs, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		match, err := filepath.Match(l.pattern, filepath.Base(path))
		if err != nil {
			return fmt.Errorf("markdown loader pattern %q: %w", l.pattern, err)
		}
		if match {
			paths = append(paths, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("markdown loader discover: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Load reads and parses a single document. Every failure here is a per-file
// condition; callers skip the document and continue.
func (l *Loader) Load(ctx context.Context, path string) (*Source, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := fs.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", path, err)
	}

	info, err := fs.Stat(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", path, err)
	}

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("markdown loader parse %s: %w", path, err)
	}

	return &Source{
		Path:        path,
		FrontMatter: fm,
		Body:        body,
		Info:        info,
	}, nil
}
