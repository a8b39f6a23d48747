// Package downloads turns finished downloads into notifications.
package downloads

import (
	"strings"
)

// Extension returns the case-folded extension of the file named by path:
// the text after the last dot of the final path element, which may be
// separated by '/' or '\'. A name without a dot has the empty extension.
func Extension(path string) string {
	name := path[strings.LastIndexAny(path, `/\`)+1:]
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 {
		return ""
	}
	return strings.ToLower(name[dot+1:])
}

// ShouldNotify reports whether a finished download at path deserves an
// alert. It is false only when the file's extension matches one of the
// exclusions (case-insensitive, surrounding whitespace ignored).
func ShouldNotify(path string, exclusions []string) bool {
	if len(exclusions) == 0 {
		return true
	}
	ext := Extension(path)
	for _, e := range exclusions {
		if strings.ToLower(strings.TrimSpace(e)) == ext {
			return false
		}
	}
	return true
}
