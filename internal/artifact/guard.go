// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Guard owns the temporary archive and deletes it on Release.
type Guard struct {
	path string

	mu       sync.Mutex
	released bool
}

func newGuard(path string) *Guard {
	return &Guard{path: path}
}

// Path returns the archive location.
func (g *Guard) Path() string { return g.path }

// Release deletes the archive. It is idempotent and a file that is already
// gone counts as success.
func (g *Guard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.released {
		return nil
	}

	if err := os.Remove(g.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove temporary archive %s: %w", g.path, err)
	}
	g.released = true
	slog.Debug("temporary archive removed", "path", g.path)
	return nil
}
