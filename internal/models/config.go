package models

// PinnedPackage is a configuration-supplied version pin. A nil Version means
// "pin to whatever version is currently in use".
type PinnedPackage struct {
	Name    string  `mapstructure:"name" yaml:"name"`
	Version *string `mapstructure:"version" yaml:"version"`
}

// ScanConfig contains configuration for one scan run
type ScanConfig struct {
	// Source control
	Workspace    string `mapstructure:"workspace"`    // local/afs workspace root (filesystem gateway)
	Organization string `mapstructure:"organization"` // Azure DevOps organization (REST gateway)
	Project      string `mapstructure:"project"`
	Token        string `mapstructure:"token"`

	// Exclusion policy
	ExcludePrefixes []string `mapstructure:"exclude-prefixes"`
	ExcludeNames    []string `mapstructure:"exclude-names"`
	ExcludePatterns []string `mapstructure:"exclude-patterns"`
	CaseSensitive   bool     `mapstructure:"case-sensitive"`

	// Pipeline toggles
	IncludeLegacyFiles   bool `mapstructure:"include-legacy-files"`
	ReadOverridePolicies bool `mapstructure:"read-override-policies"`
	ResolveRegistry      bool `mapstructure:"resolve-registry"`

	// Registry
	RegistryURL string `mapstructure:"registry-url"`

	// Pins applied by downstream tooling; later duplicates win
	Pinned []PinnedPackage `mapstructure:"pinned"`

	// Concurrency is the worker limit across repositories; 1 = sequential
	Concurrency int `mapstructure:"concurrency"`

	// Export
	Output string `mapstructure:"output"`
	Format string `mapstructure:"format"` // json, csv
}
