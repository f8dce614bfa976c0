package common

import (
	"fmt"
	"regexp"
	"strings"
)

// CompileCaseInsensitive compiles pattern with the (?i) flag added when missing.
func CompileCaseInsensitive(pattern string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}
