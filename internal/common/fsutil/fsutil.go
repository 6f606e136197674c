package fsutil

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// ~/.lmstudio/bin/lms
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists reports whether path exists. Permission errors count as existing.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// ResolveExecutable turns a configured binary into a runnable path. Bare names
// are searched on PATH; anything with a separator must name a regular file with
// an execute bit.
func ResolveExecutable(bin string) (string, error) {
	bin = strings.TrimSpace(bin)
	if bin == "" {
		return "", errors.New("binary not configured")
	}
	if !strings.ContainsRune(bin, os.PathSeparator) && !strings.ContainsRune(bin, '/') {
		return exec.LookPath(bin)
	}
	expanded, err := ExpandHome(bin)
	if err != nil {
		return bin, err
	}
	if !PathExists(expanded) {
		return expanded, fmt.Errorf("%s: %w", expanded, os.ErrNotExist)
	}
	fi, err := os.Stat(expanded)
	if err != nil {
		return expanded, err
	}
	if fi.IsDir() {
		return expanded, fmt.Errorf("%s is a directory", expanded)
	}
	if fi.Mode().Perm()&0o111 == 0 {
		return expanded, fmt.Errorf("%s is not executable", expanded)
	}
	return expanded, nil
}
