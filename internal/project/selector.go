// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrMissingRequiredFiles is the sentinel error wrapped by MissingRequiredFilesError.
	ErrMissingRequiredFiles = errors.New("missing required files")

	// requiredNextFiles must exist in a framework-specific project.
	requiredNextFiles = []string{"package.json", ".next"}
	// optionalNextFiles are archived when present.
	optionalNextFiles = []string{
		"package-lock.json",
		"bun.lockb",
		"next.config.js",
		"next.config.mjs",
		"next.config.ts",
	}
)

type (
	// Entry is one file or directory of the archive.
	Entry struct {
		// SourcePath is the absolute path on disk.
		SourcePath string
		// ArchiveName is the slash-separated path inside the archive.
		ArchiveName string
		// IsDir marks directory entries.
		IsDir bool
	}

	// FileSet is the ordered list of archive entries, sorted by ArchiveName.
	FileSet []Entry

	// SelectOptions tunes file selection.
	SelectOptions struct {
		// ExcludePaths are absolute paths that are never selected, typically
		// the destination archive itself.
		ExcludePaths []string
		// ExtraExcludes are additional doublestar patterns matched against the
		// slash-separated path relative to the root.
		ExtraExcludes []string
	}

	// MissingRequiredFilesError names every required entry that is absent
	// from a framework-specific project.
	MissingRequiredFilesError struct {
		Missing []string
	}
)

// Error implements the error interface for MissingRequiredFilesError.
func (e *MissingRequiredFilesError) Error() string {
	return fmt.Sprintf("missing required files: %s", strings.Join(e.Missing, ", "))
}

// Unwrap returns ErrMissingRequiredFiles for errors.Is() compatibility.
func (e *MissingRequiredFilesError) Unwrap() error { return ErrMissingRequiredFiles }

// Names returns the archive names in order.
func (s FileSet) Names() []string {
	names := make([]string, len(s))
	for i, e := range s {
		names[i] = e.ArchiveName
	}
	return names
}

// Contains reports whether name is part of the set.
func (s FileSet) Contains(name string) bool {
	_, found := slices.BinarySearchFunc(s, name, func(e Entry, n string) int {
		return strings.Compare(e.ArchiveName, n)
	})
	return found
}

// FileCount returns the number of non-directory entries.
func (s FileSet) FileCount() int {
	n := 0
	for _, e := range s {
		if !e.IsDir {
			n++
		}
	}
	return n
}

// Select lists the entries to archive for the given classification.
func Select(root string, c Classification, opts SelectOptions) (FileSet, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	ignores, err := newIgnoreSet(opts.ExtraExcludes)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]bool, len(opts.ExcludePaths))
	for _, p := range opts.ExcludePaths {
		if abs, absErr := filepath.Abs(p); absErr == nil {
			skip[abs] = true
		}
	}

	sel := &selector{root: absRoot, ignores: ignores, skip: skip}

	switch c {
	case FrameworkSpecific:
		err = sel.selectFramework()
	case Generic:
		err = sel.selectGeneric()
	default:
		err = fmt.Errorf("unknown classification %s", c)
	}
	if err != nil {
		return nil, err
	}

	slices.SortFunc(sel.out, func(a, b Entry) int {
		return strings.Compare(a.ArchiveName, b.ArchiveName)
	})
	return sel.out, nil
}

type selector struct {
	root    string
	ignores *ignoreSet
	skip    map[string]bool
	out     FileSet
}

func (s *selector) selectGeneric() error {
	if err := s.ignores.load(s.root, ""); err != nil {
		return err
	}
	return s.walk(s.root, true)
}

func (s *selector) selectFramework() error {
	var missing []string
	for _, name := range requiredNextFiles {
		if _, err := os.Lstat(filepath.Join(s.root, name)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing = append(missing, name)
				continue
			}
			return fmt.Errorf("failed to check %s: %w", name, err)
		}
	}
	if len(missing) > 0 {
		return &MissingRequiredFilesError{Missing: missing}
	}

	names := make([]string, 0, len(requiredNextFiles)+len(optionalNextFiles))
	names = append(names, requiredNextFiles...)
	names = append(names, optionalNextFiles...)

	for _, name := range names {
		path := filepath.Join(s.root, name)
		info, err := os.Lstat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to check %s: %w", name, err)
		}
		switch {
		case info.IsDir():
			// Framework outputs ignore .gitignore; only the built-in excludes apply.
			if err := s.walk(path, false); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			s.add(path, name, false)
		}
	}
	return nil
}

// walk visits dir recursively. withIgnoreFiles enables nested ignore files.
func (s *selector) walk(dir string, withIgnoreFiles bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if path == s.root {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		rel = filepath.ToSlash(rel)

		if d.Type()&fs.ModeSymlink != 0 || s.skip[path] {
			return nil
		}

		if s.ignores.excluded(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			s.add(path, rel, true)
			if withIgnoreFiles {
				return s.ignores.load(s.root, rel)
			}
			return nil
		}

		if d.Type().IsRegular() {
			s.add(path, rel, false)
		}
		return nil
	})
}

func (s *selector) add(path, rel string, isDir bool) {
	s.out = append(s.out, Entry{SourcePath: path, ArchiveName: rel, IsDir: isDir})
}
