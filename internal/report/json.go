package report

import (
	"encoding/json"
	"io"

	"github.com/rvalk/depscan/internal/models"
	"github.com/rvalk/depscan/internal/scan"
)

// JSONWriter exports the inventory as indented JSON
type JSONWriter struct{}

type jsonDeclaration struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Repository  string `json:"repository"`
	ProjectPath string `json:"projectPath"`
	ProjectRef  string `json:"projectRef,omitempty"`

	LatestVersion string `json:"latestVersion,omitempty"`
	Deprecated    bool   `json:"deprecated,omitempty"`
	Outdated      bool   `json:"outdated,omitempty"`
	ProjectURL    string `json:"projectUrl,omitempty"`
}

type jsonReport struct {
	ProjectFileCount int               `json:"projectFileCount"`
	Declarations     []jsonDeclaration `json:"declarations"`
	Diagnostics      []string          `json:"diagnostics,omitempty"`
}

// Write implements Writer
func (w *JSONWriter) Write(out io.Writer, result *scan.ScanResult) error {
	doc := jsonReport{
		ProjectFileCount: result.ProjectFileCount,
		Declarations:     make([]jsonDeclaration, 0, len(result.Declarations)),
	}
	for _, decl := range result.Declarations {
		doc.Declarations = append(doc.Declarations, toJSONDeclaration(decl))
	}
	for _, diag := range result.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, diag.String())
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func toJSONDeclaration(decl models.PackageDeclaration) jsonDeclaration {
	out := jsonDeclaration{
		Name:        decl.Name,
		Version:     decl.Version,
		Repository:  decl.Repository,
		ProjectPath: decl.ProjectPath,
		ProjectRef:  decl.ProjectRef,
	}
	if decl.Metadata != nil {
		out.LatestVersion = decl.Metadata.LatestVersion
		out.Deprecated = decl.Metadata.Deprecated
		out.Outdated = decl.IsOutdated()
		out.ProjectURL = decl.Metadata.ProjectURL
	}
	return out
}
