// Package batch discovers OCR text inputs for bulk processing runs.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// defaultIncludePatterns are used when the caller supplies none; directories
// are scanned for plain OCR text dumps.
var defaultIncludePatterns = []string{"*.txt", "*.ocr"}

// DiscoverFiles expands a mix of files and directories into a sorted list of
// input files. Explicitly named files bypass the include patterns; files
// found by directory scan must match one.
func DiscoverFiles(args []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	if len(includePatterns) == 0 {
		includePatterns = defaultIncludePatterns
	}

	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			files, err := discoverInDirectory(arg, recursive, includePatterns, excludePatterns)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, files...)
		} else if !matchesAnyPattern(arg, excludePatterns) {
			inputs = append(inputs, arg)
		}
	}

	sort.Strings(inputs)
	return inputs, nil
}

func discoverInDirectory(dir string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if shouldIncludeFile(path, includePatterns, excludePatterns) {
			files = append(files, path)
		}

		return nil
	}

	return files, filepath.Walk(dir, walkFn)
}

// shouldIncludeFile applies exclude patterns first, then include patterns.
func shouldIncludeFile(path string, includePatterns, excludePatterns []string) bool {
	if matchesAnyPattern(path, excludePatterns) {
		return false
	}
	return matchesAnyPattern(path, includePatterns)
}

func matchesAnyPattern(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
