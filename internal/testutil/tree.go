// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree creates files under root. Keys are slash-separated paths relative
// to root; keys ending in "/" create (empty) directories.
// The test fails immediately if any write fails.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if strings.HasSuffix(name, "/") {
			MustMkdirAll(t, path)
			continue
		}
		MustMkdirAll(t, filepath.Dir(path))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// TempTree writes files into a fresh t.TempDir and returns its path.
func TempTree(t testing.TB, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	WriteTree(t, root, files)
	return root
}

// MustMkdirAll creates dir and any missing parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}
}

// RandomBytes returns n bytes of deterministic, incompressible data so that a
// deflated archive stays about as large as its input.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	x := uint32(2463534242)
	for i := range b {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		b[i] = byte(x)
	}
	return b
}
