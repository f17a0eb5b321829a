package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rvalk/depscan/internal/gateway"
	"github.com/rvalk/depscan/internal/models"
)

// Override documents are looked up at the repository root in this order.
var overrideDocumentPaths = []string{
	"/renovate.json",
	"/.renovaterc.json",
	"/renovate.yaml",
	"/renovate.yml",
}

// OverridePolicy is a repository-supplied list of packages the
// dependency-automation tooling is told to leave alone. Name matching is
// always case-insensitive: NuGet package ids are case-insensitive and the
// Renovate config format matches them the same way, so the policy does not
// inherit the exclusion policy's case-sensitivity flag.
type OverridePolicy struct {
	IgnoredNames  map[string]bool
	DisabledNames map[string]bool
	Rules         []*regexp.Regexp
}

type overrideDocument struct {
	IgnoreDeps   []string `json:"ignoreDeps" yaml:"ignoreDeps"`
	PackageRules []struct {
		Enabled              *bool    `json:"enabled" yaml:"enabled"`
		MatchPackageNames    []string `json:"matchPackageNames" yaml:"matchPackageNames"`
		MatchPackagePatterns []string `json:"matchPackagePatterns" yaml:"matchPackagePatterns"`
	} `json:"packageRules" yaml:"packageRules"`
}

// ReadOverridePolicy fetches and parses a repository's override document.
// It returns nil when no document exists. Parse and fetch failures are
// returned so the caller can decide to continue without a policy.
func ReadOverridePolicy(ctx context.Context, gw gateway.Gateway, repo models.Repository) (*OverridePolicy, error) {
	for _, docPath := range overrideDocumentPaths {
		content, err := gw.FetchContent(ctx, repo, docPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read override document %s: %w", docPath, err)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		logrus.Debugf("Repository %s: override document %s", repo.Name, docPath)
		return parseOverrideDocument(docPath, content)
	}
	return nil, nil
}

func parseOverrideDocument(docPath, content string) (*OverridePolicy, error) {
	var doc overrideDocument
	var err error
	if strings.HasSuffix(docPath, ".yaml") || strings.HasSuffix(docPath, ".yml") {
		err = yaml.Unmarshal([]byte(content), &doc)
	} else {
		err = json.Unmarshal([]byte(content), &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid override document %s: %w", docPath, err)
	}

	p := &OverridePolicy{
		IgnoredNames:  make(map[string]bool),
		DisabledNames: make(map[string]bool),
	}
	for _, name := range doc.IgnoreDeps {
		p.IgnoredNames[strings.ToLower(name)] = true
	}
	for _, rule := range doc.PackageRules {
		// Only rules that disable a package affect the inventory
		if rule.Enabled == nil || *rule.Enabled {
			continue
		}
		for _, name := range rule.MatchPackageNames {
			p.DisabledNames[strings.ToLower(name)] = true
		}
		for _, pattern := range rule.MatchPackagePatterns {
			re, reErr := regexp.Compile("(?i)" + pattern)
			if reErr != nil {
				return nil, fmt.Errorf("invalid override pattern %q: %w", pattern, reErr)
			}
			p.Rules = append(p.Rules, re)
		}
	}
	return p, nil
}

// IsExcluded reports whether the policy marks a package name as ignored or disabled
func (p *OverridePolicy) IsExcluded(name string) bool {
	if p == nil {
		return false
	}
	lower := strings.ToLower(name)
	if p.IgnoredNames[lower] || p.DisabledNames[lower] {
		return true
	}
	for _, re := range p.Rules {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
