package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// PathUsage is the on-disk footprint of one named data location.
type PathUsage struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// sqliteSidecars are the files SQLite and bbolt keep next to a database file.
var sqliteSidecars = []string{"-wal", "-shm", "-journal", ".lock"}

// MeasurePaths sizes each named location and returns them sorted by name with the total.
// Empty or missing paths report zero bytes.
func MeasurePaths(paths map[string]string) ([]PathUsage, int64, error) {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		out   []PathUsage
		total int64
	)
	for _, name := range names {
		n, err := pathSize(paths[name])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, PathUsage{Name: name, Path: paths[name], Bytes: n})
		total += n
	}
	return out, total, nil
}

// pathSize sums a directory recursively, or a database file together with its sidecars.
func pathSize(p string) (int64, error) {
	if p == "" || p == ":memory:" {
		return 0, nil
	}
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return dirSize(p)
	}

	total := info.Size()
	for _, suffix := range sqliteSidecars {
		if side, err := os.Stat(p + suffix); err == nil && !side.IsDir() {
			total += side.Size()
		}
	}
	return total, nil
}

func dirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
