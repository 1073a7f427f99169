package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// StateDirName is the per-project directory holding config and the index store.
const StateDirName = ".symgraph"

// StateDir returns <root>/.symgraph.
func StateDir(root string) string {
	return filepath.Join(root, StateDirName)
}

// ConfigPath returns <root>/.symgraph/config.json.
func ConfigPath(root string) string {
	return filepath.Join(StateDir(root), "config.json")
}

// LogsDir returns <root>/.symgraph/logs.
func LogsDir(root string) string {
	return filepath.Join(StateDir(root), "logs")
}

// EnsureStateDir creates the state directory if needed and returns it.
func EnsureStateDir(root string) (string, error) {
	dir := StateDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// FindProjectRoot walks up from start looking for a .symgraph directory and
// returns start itself when none is found.
func FindProjectRoot(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	for dir := abs; ; {
		if info, err := os.Stat(StateDir(dir)); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		dir = parent
	}
}

// CanonicalizePath converts an absolute path to a root-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to root
// - Converts backslashes to forward slashes
func CanonicalizePath(absolutePath string, root string) (string, error) {
	resolved, err := evalSymlinks(absolutePath)
	if err != nil {
		return "", err
	}
	rootResolved, err := evalSymlinks(root)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// evalSymlinks returns the path unchanged when it does not exist yet.
func evalSymlinks(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return "", err
	}
	return resolved, nil
}

// IsWithinProject checks if a path is within the project root
func IsWithinProject(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// JoinProjectPath joins a root with a canonical (slash-separated) path. Absolute
// inputs are returned cleaned.
func JoinProjectPath(root string, canonicalPath string) string {
	normalized := strings.ReplaceAll(canonicalPath, "\\", "/")
	if strings.HasPrefix(normalized, "/") || filepath.IsAbs(canonicalPath) {
		return filepath.Clean(canonicalPath)
	}
	parts := strings.Split(normalized, "/")
	return filepath.Join(append([]string{root}, parts...)...)
}
