package scanner

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/stackvity/datescan/pkg/collect"
)

// ignoreMatcher applies gitignore-style patterns to paths relative to the scan root.
type ignoreMatcher struct {
	matcher gitignore.Matcher
	count   int
}

// newIgnoreMatcher combines the patterns of the root's ignore file with the configured ones.
// Configured patterns come last and so take precedence.
func newIgnoreMatcher(fsys collect.FileSystem, root string, configPatterns []string) (*ignoreMatcher, error) {
	var lines []string
	content, err := fsys.ReadFile(filepath.Join(root, IgnoreFileName))
	switch {
	case err == nil:
		lines, err = patternLines(content)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", IgnoreFileName, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, collect.Classify(filepath.Join(root, IgnoreFileName), err)
	}
	lines = append(lines, configPatterns...)

	patterns := make([]gitignore.Pattern, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return &ignoreMatcher{matcher: gitignore.NewMatcher(patterns), count: len(patterns)}, nil
}

func patternLines(content []byte) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Match reports whether the path, given as components relative to the root, is ignored.
func (m *ignoreMatcher) Match(parts []string, isDir bool) bool {
	if m == nil || m.count == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}
