// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/pipestore/pipectl/internal/testutil"
	"github.com/pipestore/pipectl/pkg/platform"
)

func TestSelect_Generic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"package.json":                   `{"name":"x","version":"1.0.0"}`,
		"README.md":                      "# x",
		"index.js":                       "",
		".env.example":                   "",
		".gitignore":                     "*.log\ndist/\n/secret.txt\n!keep.log\n# comment\n",
		"app.log":                        "",
		"keep.log":                       "",
		"dist/bundle.js":                 "",
		"secret.txt":                     "",
		"src/secret.txt":                 "",
		"src/lib/util.js":                "",
		"src/debug.log":                  "",
		"empty/":                         "",
		".git/HEAD":                      "",
		"node_modules/left-pad/index.js": "",
		"packages/a/node_modules/b.js":   "",
		"packages/a/.git":                "gitdir: ../..",
		".next/cache/x":                  "",
		".next/server/page.js":           "",
	})

	got, err := Select(root, Generic, SelectOptions{})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	want := []string{
		".env.example",
		".gitignore",
		".next",
		".next/server",
		".next/server/page.js",
		"README.md",
		"empty",
		"index.js",
		"keep.log",
		"package.json",
		"packages",
		"packages/a",
		"src",
		"src/lib",
		"src/lib/util.js",
		"src/secret.txt",
	}
	if names := got.Names(); !slices.Equal(names, want) {
		t.Errorf("Select() names =\n  %v\nwant\n  %v", names, want)
	}

	for _, e := range got {
		if !filepath.IsAbs(e.SourcePath) {
			t.Errorf("SourcePath %q is not absolute", e.SourcePath)
		}
	}
	if !got.Contains("empty") || got.Contains("app.log") {
		t.Error("Contains() disagrees with Names()")
	}
}

// No generic selection may contain VCS, dependency or ignore-matched paths.
func TestSelect_GenericNeverContainsExcluded(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		".gitignore":               "build\n*.tmp\n",
		"a/.hg/store":              "",
		"a/b/.svn/entries":         "",
		"a/b/c/node_modules/x.js":  "",
		"a/build/out.bin":          "",
		"a/b/x.tmp":                "",
		"a/b/c/ok.js":              "",
		"web/.next/cache/webpack/": "",
	})

	got, err := Select(root, Generic, SelectOptions{})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range got.Names() {
		for _, seg := range strings.Split(name, "/") {
			switch seg {
			case ".git", ".hg", ".svn", "node_modules", "build":
				t.Errorf("excluded path selected: %s", name)
			}
		}
		if strings.HasSuffix(name, ".tmp") || strings.Contains(name, ".next/cache") {
			t.Errorf("excluded path selected: %s", name)
		}
	}
	if !got.Contains("a/b/c/ok.js") {
		t.Errorf("expected a/b/c/ok.js in %v", got.Names())
	}
}

func TestSelect_NestedIgnoreFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"sub/.gitignore": "*.gen.js\n",
		"sub/a.gen.js":   "",
		"sub/a.js":       "",
		"b.gen.js":       "",
	})

	got, err := Select(root, Generic, SelectOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Contains("sub/a.gen.js") {
		t.Error("nested ignore file not applied")
	}
	if !got.Contains("b.gen.js") {
		t.Error("nested ignore file leaked outside its directory")
	}
	if !got.Contains("sub/a.js") {
		t.Error("sub/a.js missing")
	}
}

func TestSelect_ExcludePathsAndExtraExcludes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"x-1.0.0.zip": "",
		"a.js":        "",
		"docs/a.md":   "",
	})

	got, err := Select(root, Generic, SelectOptions{
		ExcludePaths:  []string{filepath.Join(root, "x-1.0.0.zip")},
		ExtraExcludes: []string{"docs"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if names := got.Names(); !slices.Equal(names, []string{"a.js"}) {
		t.Errorf("Select() = %v", names)
	}
}

func TestSelect_InvalidExtraExclude(t *testing.T) {
	t.Parallel()

	if _, err := Select(t.TempDir(), Generic, SelectOptions{ExtraExcludes: []string{"[a-"}}); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestSelect_SkipsSymlinks(t *testing.T) {
	t.Parallel()

	if platform.IsWindows(runtime.GOOS) {
		t.Skip("symlinks need privileges on Windows")
	}

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"real.js": ""})
	if err := os.Symlink(filepath.Join(root, "real.js"), filepath.Join(root, "link.js")); err != nil {
		t.Fatal(err)
	}

	got, err := Select(root, Generic, SelectOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Contains("link.js") {
		t.Error("symlink selected")
	}
}

func TestSelect_Framework(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"package.json":         "{}",
		"next.config.mjs":      "",
		"bun.lockb":            "",
		".next/BUILD_ID":       "abc",
		".next/static/app.js":  "",
		".next/cache/big.pack": "",
		"src/page.tsx":         "",
		".gitignore":           ".next\n",
		"README.md":            "# x",
	})

	got, err := Select(root, FrameworkSpecific, SelectOptions{})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	want := []string{
		".next",
		".next/BUILD_ID",
		".next/static",
		".next/static/app.js",
		"bun.lockb",
		"next.config.mjs",
		"package.json",
	}
	if names := got.Names(); !slices.Equal(names, want) {
		t.Errorf("Select() names =\n  %v\nwant\n  %v", names, want)
	}
	if got.FileCount() != 5 {
		t.Errorf("FileCount() = %d, want 5", got.FileCount())
	}
}

func TestSelect_FrameworkMissingRequired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files map[string]string
		want  []string
	}{
		{"nothing", map[string]string{"next.config.js": ""}, []string{"package.json", ".next"}},
		{"no build output", map[string]string{"next.config.js": "", "package.json": "{}"}, []string{".next"}},
		{"no manifest", map[string]string{"next.config.js": "", ".next/BUILD_ID": ""}, []string{"package.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			testutil.WriteTree(t, root, tt.files)

			_, err := Select(root, FrameworkSpecific, SelectOptions{})
			var missingErr *MissingRequiredFilesError
			if !errors.As(err, &missingErr) {
				t.Fatalf("expected MissingRequiredFilesError, got %v", err)
			}
			if !slices.Equal(missingErr.Missing, tt.want) {
				t.Errorf("Missing = %v, want %v", missingErr.Missing, tt.want)
			}
			if !errors.Is(err, ErrMissingRequiredFiles) {
				t.Error("expected errors.Is(err, ErrMissingRequiredFiles)")
			}
		})
	}
}
