package system

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"
)

// FileEntry is a file found by a directory scan.
type FileEntry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// ListFiles returns regular files in dir with one of the extensions,
// newest first. An empty extension list matches everything.
func ListFiles(dir string, extensions ...string) ([]FileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []FileEntry
	for _, e := range entries {
		if e.IsDir() || !hasExt(e.Name(), extensions) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, FileEntry{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ModTime.After(out[j].ModTime)
	})
	return out, nil
}

// PruneOlderThan deletes files in dir last modified before now-maxAge,
// skipping the names in keep. It returns the removed paths.
func PruneOlderThan(dir string, maxAge time.Duration, now time.Time, keep ...string) ([]string, error) {
	files, err := ListFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cutoff := now.Add(-maxAge)
	var removed []string
	for _, f := range files {
		if !f.ModTime.Before(cutoff) || slices.Contains(keep, f.Name) {
			continue
		}
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed = append(removed, f.Path)
	}
	return removed, nil
}

func hasExt(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
