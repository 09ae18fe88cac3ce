package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/mediaconv/internal/media"
)

// Discover expands inputs into sources. Files are taken as given, in
// argument order, whatever their extension. Directories contribute their
// supported media files sorted lexicographically; subdirectories are
// walked only when recursive. Hidden entries (dot-prefixed, which includes
// in-progress temporary outputs) are ignored inside directories. A path
// listed twice is kept once.
func Discover(inputs []string, recursive bool) ([]media.Source, error) {
	var sources []media.Source
	seen := make(map[string]bool)
	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		sources = append(sources, media.NewSource(path))
	}

	for _, in := range inputs {
		fi, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in, err)
		}
		if !fi.IsDir() {
			add(filepath.Clean(in))
			continue
		}
		files, err := discoverDir(in, recursive)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return sources, nil
}

// discoverDir collects supported files under dir, sorted.
func discoverDir(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := path != dir && strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if path != dir && (!recursive || hidden) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !d.Type().IsRegular() {
			return nil
		}
		if media.Supported(strings.ToLower(filepath.Ext(path))) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ContainsVideo reports whether any source has a video extension.
func ContainsVideo(sources []media.Source) bool {
	for _, s := range sources {
		if s.IsVideo() {
			return true
		}
	}
	return false
}
