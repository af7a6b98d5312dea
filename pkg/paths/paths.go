package paths

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

// Join assembles a directory and file name into the path handed to
// syscalls. An empty or "." directory and absolute file names
// short-circuit to the file name itself. No further normalisation.
func Join(dir, file string) string {
	if dir == "" || dir == "." || strings.HasPrefix(file, "/") {
		return file
	}
	return dir + "/" + file
}

// Compile compiles exclude patterns for use with IsIgnored.
func Compile(patterns []string) ([]*regexp2.Regexp, error) {
	compiled := make([]*regexp2.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			return nil, errors.Wrapf(err, "compile exclude pattern %q", p)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// IsIgnored reports whether path matches any of the given patterns.
func IsIgnored(path string, patterns []*regexp2.Regexp) bool {
	for _, re := range patterns {
		if ok, err := re.MatchString(path); err == nil && ok {
			return true
		}
	}
	return false
}
