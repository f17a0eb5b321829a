package scan

import "fmt"

// OutcomeKind tags a diagnostic raised while processing one repository or file.
type OutcomeKind int

const (
	// OutcomeSkipped marks an expected-absence condition: no project files,
	// no co-located project for a legacy file, empty content.
	OutcomeSkipped OutcomeKind = iota
	// OutcomeFailed marks a recoverable failure that cost the scope its
	// contribution: a file that would not parse, a repository that errored.
	OutcomeFailed
)

// String returns the string representation of OutcomeKind
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Diagnostic records one skip or failure without coupling the pipeline to a
// console: outcomes stay assertable in tests and reportable after the run.
type Diagnostic struct {
	Kind       OutcomeKind
	Repository string
	Path       string // empty for repository-scoped diagnostics
	Reason     string
}

func (d Diagnostic) String() string {
	subject := d.Repository
	if d.Path != "" {
		subject = d.Repository + ":" + d.Path
	}
	return fmt.Sprintf("%s %s: %s", d.Kind, subject, d.Reason)
}
