package security

import (
	"os"
	"path/filepath"
	"strings"
)

// PathAccessChecker checks path access permissions.
type PathAccessChecker struct {
	restricted []string
	readonly   []string
}

// NewPathAccessChecker creates a new path checker.
func NewPathAccessChecker(policy *SecurityPolicy) *PathAccessChecker {
	return &PathAccessChecker{
		restricted: policy.RestrictedPaths,
		readonly:   policy.ReadOnlyPaths,
	}
}

// IsRestricted checks if a path is restricted.
func (pc *PathAccessChecker) IsRestricted(checkPath string) bool {
	return pc.under(checkPath, pc.restricted)
}

// IsReadOnly checks if a path is readonly (for write operations).
func (pc *PathAccessChecker) IsReadOnly(checkPath string, write bool) bool {
	return write && pc.under(checkPath, pc.readonly)
}

func (pc *PathAccessChecker) under(checkPath string, roots []string) bool {
	if len(roots) == 0 {
		return false
	}

	canonicalPath, err := canonicalizePath(checkPath)
	if err != nil {
		return false
	}

	for _, root := range roots {
		canonicalRoot, err := canonicalizePath(root)
		if err != nil {
			continue
		}
		if canonicalPath == canonicalRoot ||
			strings.HasPrefix(canonicalPath, canonicalRoot+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

// ExtractPaths returns the arguments that look like file paths.
// Values of --flag=value options are considered too.
func (pc *PathAccessChecker) ExtractPaths(argv []string) []string {
	var paths []string

	for _, arg := range argv {
		if strings.HasPrefix(arg, "-") {
			_, value, ok := strings.Cut(arg, "=")
			if !ok {
				continue
			}
			arg = value
		}
		arg = strings.Trim(arg, "<>\"'")

		if strings.Contains(arg, "/") || strings.HasPrefix(arg, "~") {
			paths = append(paths, arg)
		}
	}

	return paths
}

// canonicalizePath expands home directory, converts to absolute path,
// and resolves symlinks so a link cannot be used to reach a protected path.
func canonicalizePath(path string) (string, error) {
	expandedPath := path
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		expandedPath = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	absPath, err := filepath.Abs(expandedPath)
	if err != nil {
		return "", err
	}

	return resolveExisting(absPath), nil
}

// resolveExisting resolves symlinks in the longest existing prefix of path
// and re-attaches the missing tail.
func resolveExisting(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return filepath.Join(resolveExisting(parent), filepath.Base(path))
}
