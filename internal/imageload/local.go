package imageload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// resolveLocalPath maps requested onto a regular file inside root. Relative
// paths are taken relative to root; absolute paths must already point inside
// it.
func resolveLocalPath(root string, requested string) (string, error) {
	if strings.TrimSpace(requested) == "" {
		return "", errors.New("local path is empty")
	}

	rootAbs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", err
	}

	cleanRequested := filepath.Clean(filepath.FromSlash(requested))
	if !filepath.IsAbs(cleanRequested) {
		cleanRequested = filepath.Join(rootAbs, cleanRequested)
	}

	resolvedPath, err := filepath.Abs(cleanRequested)
	if err != nil {
		return "", err
	}

	relativeToRoot, err := filepath.Rel(rootAbs, resolvedPath)
	if err != nil {
		return "", err
	}

	if relativeToRoot == ".." || strings.HasPrefix(relativeToRoot, ".."+string(os.PathSeparator)) || filepath.IsAbs(relativeToRoot) {
		return "", errors.New("requested path is outside thumbnail dir")
	}

	info, err := os.Stat(resolvedPath)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		return "", errors.New("requested path is a directory")
	}

	return resolvedPath, nil
}
