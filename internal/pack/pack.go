package pack

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"
)

// IgnoreFileName is the per-project exclusion list, one glob per line.
const IgnoreFileName = ".vafignore"

// DefaultPatterns is the exclusion set applied when no ignore-file exists.
func DefaultPatterns() []string {
	return []string{".git", "*.log", ".env*", ".DS_Store"}
}

// ParsePatterns reads glob patterns from r, skipping blank lines and comments.
func ParsePatterns(r io.Reader) ([]string, error) {
	var patterns []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ignore patterns: %w", err)
	}
	return patterns, nil
}

// LoadPatterns returns the exclusion patterns for dir: the parsed ignore-file
// when one exists, the built-in defaults otherwise.
func LoadPatterns(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPatterns(), nil
		}
		return nil, fmt.Errorf("open %s: %w", IgnoreFileName, err)
	}
	defer f.Close()
	return ParsePatterns(f)
}

// Zip archives the contents of dir into dest. Paths inside the archive are
// relative to dir, with prefix prepended when non-empty. Entries matching any
// exclusion pattern are skipped. Returns the archive size in bytes.
func Zip(dir, dest, prefix string, excludes []string) (int64, error) {
	pm, err := patternmatcher.New(excludes)
	if err != nil {
		return 0, fmt.Errorf("compile exclusion patterns: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		matched, err := pm.MatchesOrParentMatches(rel)
		if err != nil {
			return fmt.Errorf("match %s: %w", rel, err)
		}
		if matched {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		name := rel
		if prefix != "" {
			name = prefix + "/" + rel
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name
		header.Method = zip.Deflate
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
	if walkErr != nil {
		zw.Close()
		return 0, fmt.Errorf("archive %s: %w", dir, walkErr)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalize archive: %w", err)
	}
	if err := out.Sync(); err != nil {
		return 0, fmt.Errorf("flush archive: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return 0, fmt.Errorf("stat archive: %w", err)
	}
	return info.Size(), nil
}
