package policy

import (
	"fmt"
	"regexp"
	"strings"
)

// ExclusionPolicy drops uninteresting package names early during extraction.
// It is constructed once from configuration and read-only for the run.
type ExclusionPolicy struct {
	prefixes      []string
	names         map[string]bool
	patterns      []*regexp.Regexp
	caseSensitive bool
}

// NewExclusionPolicy compiles an exclusion policy from configured prefixes,
// exact names and regex patterns. When caseSensitive is false, prefixes and
// names are matched after lowercasing and patterns are compiled with (?i).
func NewExclusionPolicy(prefixes, names, patterns []string, caseSensitive bool) (*ExclusionPolicy, error) {
	p := &ExclusionPolicy{
		names:         make(map[string]bool, len(names)),
		caseSensitive: caseSensitive,
	}

	for _, prefix := range prefixes {
		if !caseSensitive {
			prefix = strings.ToLower(prefix)
		}
		p.prefixes = append(p.prefixes, prefix)
	}

	for _, name := range names {
		if !caseSensitive {
			name = strings.ToLower(name)
		}
		p.names[name] = true
	}

	for _, pattern := range patterns {
		if !caseSensitive && !strings.HasPrefix(pattern, "(?i)") {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion pattern %q: %w", pattern, err)
		}
		p.patterns = append(p.patterns, re)
	}

	return p, nil
}

// IsExcluded reports whether a package name matches any configured exclusion.
func (p *ExclusionPolicy) IsExcluded(name string) bool {
	if p == nil {
		return false
	}

	probe := name
	if !p.caseSensitive {
		probe = strings.ToLower(name)
	}

	if p.names[probe] {
		return true
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(probe, prefix) {
			return true
		}
	}
	for _, re := range p.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
