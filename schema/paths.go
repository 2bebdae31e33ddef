package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveFiles expands glob patterns to concrete schema files.
// Supports both single-level wildcards (*) and recursive wildcards (**).
//
// Examples:
//   - "./schemas/*.yaml" → ["./schemas/shop.yaml", ...]
//   - "./shop.yaml" → ["./shop.yaml"]
//   - "./**/*.yaml" → all YAML files recursively
//
// Returns only regular files, not directories.
func ResolveFiles(patterns []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, nil
}

// resolvePattern expands a single glob pattern to files.
func resolvePattern(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			return nil, fmt.Errorf("path is a directory, not a schema file: %s", absPath)
		}

		return []string{absPath}, nil
	}

	absPattern, err := makeAbsolutePattern(pattern)
	if err != nil {
		return nil, err
	}

	// Use doublestar for ** support
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			files = append(files, match)
		}
	}

	return files, nil
}

// containsGlob reports whether the pattern has glob metacharacters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// makeAbsolutePattern anchors a relative glob pattern at the working
// directory without disturbing its metacharacters.
func makeAbsolutePattern(pattern string) (string, error) {
	if filepath.IsAbs(pattern) {
		return pattern, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, pattern), nil
}
