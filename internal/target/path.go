package target

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

var percentVar = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_()]*)%`)

// ExpandVars expands $VAR, ${VAR} and %VAR% references. Unknown %VAR%
// references are left as they are, the way cmd.exe does.
func ExpandVars(s string) string {
	s = percentVar.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return m
	})
	return os.Expand(s, func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return "$" + name
	})
}

// ResolvePath turns a user supplied path into a clean absolute one
func ResolvePath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("empty path")
	}
	abs, err := filepath.Abs(ExpandVars(raw))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", raw, err)
	}
	return abs, nil
}

// CanonicalKey identifies the file behind an absolute path, so a symlink
// back to an ancestor maps onto the ancestor's key
func CanonicalKey(abs string) string {
	key := filepath.Clean(abs)
	if real, err := filepath.EvalSymlinks(key); err == nil {
		key = real
	}
	if runtime.GOOS == "windows" {
		key = strings.ToLower(key)
	}
	return key
}
