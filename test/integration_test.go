package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rvalk/depscan/internal/gateway"
	"github.com/rvalk/depscan/internal/models"
	"github.com/rvalk/depscan/internal/policy"
	"github.com/rvalk/depscan/internal/scan"
)

// TestIntegration runs the full pipeline against a real workspace on disk
// through the filesystem gateway: two repositories, one with a central
// version manifest, a legacy lock file and an override document, one empty.
func TestIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	workspace := t.TempDir()

	// Repository "billing": central versions + legacy file + override policy
	writeFile(t, workspace, "billing/src/App/App.csproj", `<Project Sdk="Microsoft.NET.Sdk">
	<ItemGroup>
		<PackageReference Include="Newtonsoft.Json" Version="12.0.3" />
		<PackageReference Include="Serilog" Version="3.1.1" />
		<PackageReference Include="StyleCop.Analyzers" Version="1.1.118" />
	</ItemGroup>
</Project>`)
	writeFile(t, workspace, "billing/src/App/packages.config", `<?xml version="1.0" encoding="utf-8"?>
<packages>
	<package id="serilog" version="2.0.0" targetFramework="net472" />
	<package id="AutoMapper" version="10.1.1" targetFramework="net472" />
</packages>`)
	writeFile(t, workspace, "billing/Directory.Packages.props", `<Project>
	<PropertyGroup>
		<ManagePackageVersionsCentrally>true</ManagePackageVersionsCentrally>
	</PropertyGroup>
	<ItemGroup>
		<PackageVersion Include="Newtonsoft.Json" Version="13.0.3" />
	</ItemGroup>
</Project>`)
	writeFile(t, workspace, "billing/renovate.json", `{"ignoreDeps": ["StyleCop.Analyzers"]}`)

	// Repository "docs": no project files at all
	if err := os.MkdirAll(filepath.Join(workspace, "docs"), 0755); err != nil {
		t.Fatalf("Failed to create docs repository: %v", err)
	}

	exclusions, err := policy.NewExclusionPolicy(nil, nil, nil, false)
	if err != nil {
		t.Fatalf("Failed to build exclusion policy: %v", err)
	}

	config := &models.ScanConfig{
		IncludeLegacyFiles:   true,
		ReadOverridePolicies: true,
	}
	gw := gateway.NewFilesystemGateway(workspace)
	orchestrator := scan.NewOrchestrator(gw, nil, exclusions, config)

	result, err := orchestrator.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if result.ProjectFileCount != 1 {
		t.Errorf("Expected 1 project file, got %d", result.ProjectFileCount)
	}

	byName := make(map[string]models.PackageDeclaration)
	for _, decl := range result.Declarations {
		byName[decl.Name] = decl
	}

	// Central version wins over the manifest's declared version
	if got := byName["Newtonsoft.Json"].Version; got != "13.0.3" {
		t.Errorf("Newtonsoft.Json version = %q, want 13.0.3", got)
	}
	// Manifest wins over the legacy lock file for the same project
	if got := byName["Serilog"].Version; got != "3.1.1" {
		t.Errorf("Serilog version = %q, want 3.1.1", got)
	}
	if _, ok := byName["serilog"]; ok {
		t.Error("Legacy serilog declaration should have been deduplicated")
	}
	// Legacy-only packages survive
	if got := byName["AutoMapper"].Version; got != "10.1.1" {
		t.Errorf("AutoMapper version = %q, want 10.1.1", got)
	}
	// Override policy drops ignored packages
	if _, ok := byName["StyleCop.Analyzers"]; ok {
		t.Error("StyleCop.Analyzers should have been removed by the override policy")
	}
	if len(result.Declarations) != 3 {
		t.Errorf("Expected 3 declarations, got %d", len(result.Declarations))
	}

	if _, ok := result.Policies["billing"]; !ok {
		t.Error("Expected an override policy for billing")
	}
}

func writeFile(t *testing.T, workspace, relPath, content string) {
	t.Helper()
	full := filepath.Join(workspace, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", full, err)
	}
}
