package diskusage

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// compileExcludes compiles the exclusion patterns.
func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	excludes := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludes = append(excludes, re)
	}

	return excludes, nil
}

// excludedBy returns the first pattern matching the slash-separated path, or nil.
func excludedBy(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}
