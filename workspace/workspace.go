// Package workspace locates the project root the editor is working in,
// so the registry has a single root path to initialize clients against.
package workspace

import (
	"os"
	"path/filepath"
)

// DetectRoot finds the workspace root: the nearest ancestor directory
// containing a .git directory, or the current working directory if none
// is found.
func DetectRoot() (string, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	if root := findGitRoot(pwd); root != "" {
		return root, nil
	}
	return pwd, nil
}

// findGitRoot walks up the directory tree looking for a .git directory.
func findGitRoot(startPath string) string {
	currentPath := startPath

	for {
		gitPath := filepath.Join(currentPath, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			return currentPath
		}

		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			break
		}
		currentPath = parentPath
	}

	return ""
}
