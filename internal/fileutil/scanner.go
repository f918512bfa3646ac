package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Extensions is a list of file extensions to include (e.g., ".txt"), matched case-insensitively
	Extensions []string
	// Recursive enables recursive directory scanning
	Recursive bool
	// ExcludeDirs is a list of directory names to exclude (e.g., ".git", "processing-results")
	ExcludeDirs []string
	// SkipHidden skips directories whose name starts with "."
	SkipHidden bool
	// MaxDepth limits recursion depth (0 = unlimited, 1 = current dir only)
	MaxDepth int
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files contains the paths of all matched files, rooted at the scanned directory, in walk order
	Files []string
	// Errors contains non-fatal errors for entries that could not be visited
	Errors []error
}

// ScanDirectory scans a directory for files matching the provided options.
// Files are returned in filepath.WalkDir order, which is lexical within each
// directory and therefore stable for an unchanged tree.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	// Validate directory exists
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	// The root itself must be listable; unreadable subdirectories are only reported
	if _, err := os.ReadDir(dir); err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	extMap := NormalizeExtensions(opts.Extensions)

	excludeMap := make(map[string]bool)
	for _, name := range opts.ExcludeDirs {
		excludeMap[name] = true
	}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil // Continue walking
		}

		// Skip the root directory itself
		if path == dir {
			return nil
		}

		if d.IsDir() {
			if excludeMap[d.Name()] || (opts.SkipHidden && strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}

			if !opts.Recursive {
				return filepath.SkipDir
			}

			if opts.MaxDepth > 0 {
				relPath, _ := filepath.Rel(dir, path)
				depth := strings.Count(relPath, string(filepath.Separator)) + 1
				if depth >= opts.MaxDepth {
					return filepath.SkipDir
				}
			}

			return nil
		}

		if len(extMap) > 0 && !extMap[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		result.Files = append(result.Files, path)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return result, nil
}

// NormalizeExtensions lowercases extensions and ensures each has a leading dot.
// Empty entries are ignored.
func NormalizeExtensions(exts []string) map[string]bool {
	extMap := make(map[string]bool)
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[ext] = true
	}
	return extMap
}
