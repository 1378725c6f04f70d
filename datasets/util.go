package datasets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// WalkOptions controls FilesByExtension.
type WalkOptions struct {
	// Recursive descends into subdirectories.
	Recursive bool
	// FollowLinks descends into symlinked directories and reports symlinked
	// files.
	FollowLinks bool
}

// FilesByExtension returns every file below root whose name ends with ext
// (case sensitive, e.g. ".json"). The result is flat and ordered by a
// depth-first walk visiting entries in lexicographic order. A missing root
// yields an empty list.
func FilesByExtension(fsys afero.Fs, root, ext string, opts WalkOptions) ([]string, error) {
	info, err := fsys.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	w := &walker{fsys: fsys, ext: ext, opts: opts}
	if err := w.walk(root, []os.FileInfo{info}); err != nil {
		return nil, err
	}
	return w.files, nil
}

type walker struct {
	fsys  afero.Fs
	ext   string
	opts  WalkOptions
	files []string
}

// walk visits dir. ancestors holds the infos of dir and its parents and is
// used to detect symlink cycles.
func (w *walker) walk(dir string, ancestors []os.FileInfo) error {
	// afero.ReadDir sorts by name
	entries, err := afero.ReadDir(w.fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.Mode()&os.ModeSymlink != 0 {
			if !w.opts.FollowLinks {
				continue
			}
			target, err := w.fsys.Stat(path)
			if err != nil {
				// dangling link
				continue
			}
			entry = target
		}

		if entry.IsDir() {
			if !w.opts.Recursive || inCycle(entry, ancestors) {
				continue
			}
			if err := w.walk(path, append(ancestors, entry)); err != nil {
				return err
			}
			continue
		}

		if strings.HasSuffix(entry.Name(), w.ext) {
			w.files = append(w.files, path)
		}
	}
	return nil
}

func inCycle(dir os.FileInfo, ancestors []os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(a, dir) {
			return true
		}
	}
	return false
}

// listDirs returns the names of the directories (or links to directories)
// directly below dir, sorted ascending.
func listDirs(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Mode()&os.ModeSymlink != 0 {
			target, err := fsys.Stat(filepath.Join(dir, entry.Name()))
			if err != nil {
				continue
			}
			if target.IsDir() {
				names = append(names, entry.Name())
			}
			continue
		}
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
