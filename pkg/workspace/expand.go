package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/Sumatoshi-tech/tsedit/pkg/tsast"
)

// Expand resolves roots into the sorted list of files to edit. A directory
// root is walked and each file is kept when it has a TypeScript or
// JavaScript extension and its slash-separated path relative to the root
// matches an include pattern and no exclude pattern.
// Excluded directories are not descended into. A file root is kept unless
// excluded.
func (w *Workspace) Expand(roots, include, exclude []string) ([]string, error) {
	seen := make(map[string]struct{})

	for _, root := range roots {
		info, err := w.fs.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			if !matchAny(exclude, filepath.ToSlash(root)) {
				seen[filepath.Clean(root)] = struct{}{}
			}

			continue
		}

		if err := w.walk(root, include, exclude, seen); err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}

	slices.Sort(out)

	return out, nil
}

func (w *Workspace) walk(root string, include, exclude []string, seen map[string]struct{}) error {
	walkErr := afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		if rel == "." {
			return nil
		}

		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if matchAny(exclude, rel) {
				return fs.SkipDir
			}

			return nil
		}

		if info.Mode().IsRegular() && tsast.IsSupported(rel) && matchAny(include, rel) && !matchAny(exclude, rel) {
			seen[path] = struct{}{}
		}

		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walk %s: %w", root, walkErr)
	}

	return nil
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}

	return false
}
