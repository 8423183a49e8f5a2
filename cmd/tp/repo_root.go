package main

import (
	"os"
	"path/filepath"

	"github.com/amonks/taskprompt/internal/config"
)

// repoRootMarkers identify a project root, checked in order in each directory.
var repoRootMarkers = []string{config.FileName, ".taskprompt", ".git", ".jj"}

// resolveRepoRoot walks up from path to the nearest directory holding a
// project marker. Without one, path itself is the root.
func resolveRepoRoot(path string) string {
	path = filepath.Clean(path)
	for dir := path; ; {
		for _, marker := range repoRootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return path
		}
		dir = parent
	}
}
