package mcp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrAccessDenied is returned for paths outside the allowed directories
var ErrAccessDenied = errors.New("access denied: path outside allowed directories")

// ValidateFilePath resolves requestedPath and ensures it lies within one of
// allowed. An empty allow-list means the current working directory.
func ValidateFilePath(requestedPath string, allowed []string) (string, error) {
	if requestedPath == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}

	absPath, err := filepath.Abs(requestedPath)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	// symlinks are resolved so they cannot point outside
	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %s", requestedPath)
		}
		return "", fmt.Errorf("cannot resolve path: %w", err)
	}

	return within(realPath, allowed)
}

// ValidateOutputPath checks a path that may not exist yet: its parent
// directory must exist inside the allowed directories.
func ValidateOutputPath(requestedPath string, allowed []string) (string, error) {
	if requestedPath == "" {
		return "", fmt.Errorf("output path cannot be empty")
	}

	absPath, err := filepath.Abs(requestedPath)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(absPath), ".xlsx") {
		return "", fmt.Errorf("output path must end in .xlsx: %s", requestedPath)
	}

	dir, err := filepath.EvalSymlinks(filepath.Dir(absPath))
	if err != nil {
		return "", fmt.Errorf("cannot resolve output directory: %w", err)
	}
	target := filepath.Join(dir, filepath.Base(absPath))

	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("%w: %s is a symlink", ErrAccessDenied, requestedPath)
	}
	return within(target, allowed)
}

func within(realPath string, allowed []string) (string, error) {
	basePaths := allowed
	if len(basePaths) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("cannot determine working directory: %w", err)
		}
		basePaths = []string{cwd}
	}

	for _, base := range basePaths {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		realBase, err := filepath.EvalSymlinks(absBase)
		if err != nil {
			continue
		}
		if strings.HasPrefix(realPath, realBase+string(os.PathSeparator)) || realPath == realBase {
			return realPath, nil
		}
	}

	return "", ErrAccessDenied
}
