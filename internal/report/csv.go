package report

import (
	"encoding/csv"
	"io"

	"github.com/rvalk/depscan/internal/scan"
)

// CSVWriter exports the inventory as CSV, one row per declaration
type CSVWriter struct{}

// Write implements Writer
func (w *CSVWriter) Write(out io.Writer, result *scan.ScanResult) error {
	cw := csv.NewWriter(out)

	header := []string{"repository", "projectPath", "package", "version", "latestVersion", "deprecated"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, decl := range result.Declarations {
		latest := ""
		deprecated := "false"
		if decl.Metadata != nil {
			latest = decl.Metadata.LatestVersion
			if decl.Metadata.Deprecated {
				deprecated = "true"
			}
		}
		row := []string{decl.Repository, decl.ProjectPath, decl.Name, decl.Version, latest, deprecated}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
