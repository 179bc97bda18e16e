// SPDX-License-Identifier: MPL-2.0

package project

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFileName is the per-directory ignore file honored for generic projects.
const IgnoreFileName = ".gitignore"

// defaultExcludes are never archived, whatever the ignore file says.
// VCS metadata and dependency trees are rebuilt by the consumer.
var defaultExcludes = []string{
	"**/.git",
	"**/.hg",
	"**/.svn",
	"**/node_modules",
	"**/.next/cache",
}

// ignoreSet combines the built-in exclude globs, caller-supplied globs and
// the gitignore patterns collected while walking.
type ignoreSet struct {
	globs    []string
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

// DefaultExcludes returns a copy of the built-in exclude patterns.
func DefaultExcludes() []string {
	out := make([]string, len(defaultExcludes))
	copy(out, defaultExcludes)
	return out
}

func newIgnoreSet(extra []string) (*ignoreSet, error) {
	globs := make([]string, 0, len(defaultExcludes)+len(extra))
	globs = append(globs, defaultExcludes...)
	for _, pat := range extra {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pat)
		}
		globs = append(globs, pat)
	}
	s := &ignoreSet{globs: globs}
	s.matcher = gitignore.NewMatcher(nil)
	return s, nil
}

// load reads the ignore file of dir (slash-separated, relative to the root,
// "" for the root itself) and scopes its patterns to that directory.
func (s *ignoreSet) load(root, dir string) error {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(dir), IgnoreFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}

	var domain []string
	if dir != "" {
		domain = strings.Split(dir, "/")
	}

	added := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		s.patterns = append(s.patterns, gitignore.ParsePattern(line, domain))
		added++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", IgnoreFileName, err)
	}

	if added > 0 {
		s.matcher = gitignore.NewMatcher(s.patterns)
	}
	return nil
}

// excluded reports whether rel (slash-separated, relative to the root) must be
// left out of the archive.
func (s *ignoreSet) excluded(rel string, isDir bool) bool {
	for _, pat := range s.globs {
		if matched, matchErr := doublestar.Match(pat, rel); matchErr == nil && matched {
			return true
		}
	}
	return s.matcher.Match(strings.Split(rel, "/"), isDir)
}
