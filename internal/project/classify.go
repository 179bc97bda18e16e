// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Generic projects are archived as a whole, minus ignored paths.
	Generic Classification = iota
	// FrameworkSpecific projects ship a fixed set of build outputs.
	FrameworkSpecific
)

// frameworkMarkers are the config files that mark a Next.js project.
var frameworkMarkers = []string{"next.config.js", "next.config.mjs", "next.config.ts"}

// Classification decides which file selection strategy applies.
type Classification int

// String returns the string representation of the Classification.
func (c Classification) String() string {
	switch c {
	case Generic:
		return "generic"
	case FrameworkSpecific:
		return "nextjs"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// Classify reports FrameworkSpecific when any framework marker exists as a
// regular file in root, Generic otherwise.
func Classify(root string) (Classification, error) {
	for _, marker := range frameworkMarkers {
		info, err := os.Stat(filepath.Join(root, marker))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Generic, fmt.Errorf("failed to check %s: %w", marker, err)
		}
		if info.Mode().IsRegular() {
			return FrameworkSpecific, nil
		}
	}
	return Generic, nil
}
