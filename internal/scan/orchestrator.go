// Package scan drives the inventory pipeline: per-repository discovery,
// per-file extraction, precedence-based merging, override filtering, failure
// isolation and final registry enrichment.
package scan

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rvalk/depscan/internal/extract"
	"github.com/rvalk/depscan/internal/gateway"
	"github.com/rvalk/depscan/internal/models"
	"github.com/rvalk/depscan/internal/policy"
	"github.com/rvalk/depscan/internal/registry"
)

// Orchestrator wires the gateway, extractors, policies and registry resolver
// into one scan pipeline. One instance may run any number of scans; all
// per-run state lives in an accumulator owned by the Scan call.
type Orchestrator struct {
	gateway    gateway.Gateway
	resolver   registry.Resolver // nil when registry resolution is disabled
	exclusions *policy.ExclusionPolicy
	config     *models.ScanConfig
}

// NewOrchestrator creates a scan orchestrator
func NewOrchestrator(gw gateway.Gateway, resolver registry.Resolver, exclusions *policy.ExclusionPolicy, config *models.ScanConfig) *Orchestrator {
	return &Orchestrator{
		gateway:    gw,
		resolver:   resolver,
		exclusions: exclusions,
		config:     config,
	}
}

// Scan runs the full pipeline. It fails only when repository enumeration
// fails; every narrower failure is caught at its own scope, recorded as a
// diagnostic and logged, and the run continues. A cancelled context stops
// the scan between repositories and whatever was accumulated so far is still
// returned.
func (o *Orchestrator) Scan(ctx context.Context) (*ScanResult, error) {
	repos, err := o.gateway.ListRepositories(ctx)
	if err != nil {
		return nil, &models.ScanError{Type: models.ErrEnumeration, Err: fmt.Errorf("failed to enumerate repositories: %w", err)}
	}
	logrus.Infof("Scanning %d repositories", len(repos))

	results := make([]*repoResult, len(repos))

	workers := o.config.Concurrency
	if workers < 1 {
		workers = 1
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, repo := range repos {
		if groupCtx.Err() != nil {
			logrus.Infof("Scan cancelled after %d repositories", i)
			break
		}
		i, repo := i, repo
		group.Go(func() error {
			// A worker whose turn comes after cancellation starts nothing;
			// already-finished repositories keep their contribution.
			if groupCtx.Err() != nil {
				return nil
			}
			results[i] = o.processRepository(groupCtx, repo)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes them.
	_ = group.Wait()

	acc := newAccumulator()
	for _, result := range results {
		acc.fold(result)
	}
	logrus.Infof("Accumulated %d declarations from %d project files", len(acc.declarations), acc.projectFiles)

	declarations := o.enrich(ctx, acc.declarations)

	return &ScanResult{
		Declarations:     declarations,
		Policies:         acc.policies,
		Pinned:           BuildPinnedLookup(o.config.Pinned),
		Diagnostics:      acc.diagnostics,
		ProjectFileCount: acc.projectFiles,
	}, nil
}

// processRepository runs steps 1-6 for one repository. Nothing it does can
// fail the run: errors become diagnostics, and a panic in a collaborator is
// caught at this boundary so the remaining repositories still get scanned.
func (o *Orchestrator) processRepository(ctx context.Context, repo models.Repository) (result *repoResult) {
	result = &repoResult{repository: repo.Name}

	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("Repository %s: processing aborted: %v", repo.Name, r)
			result.fail("", fmt.Sprintf("processing aborted: %v", r))
		}
	}()

	// Step 1: override policy; failure means "no policy", never "no repository"
	if o.config.ReadOverridePolicies {
		overrides, err := policy.ReadOverridePolicy(ctx, o.gateway, repo)
		if err != nil {
			logrus.Warnf("Repository %s: override policy unreadable, continuing without: %v", repo.Name, err)
			result.fail("", fmt.Sprintf("override policy unreadable: %v", err))
		} else {
			result.overrides = overrides
		}
	}

	// Step 2: project files
	projectFiles, err := o.gateway.ListProjectFiles(ctx, repo)
	if err != nil {
		logrus.Warnf("Repository %s: failed to list project files: %v", repo.Name, err)
		result.fail("", fmt.Sprintf("failed to list project files: %v", err))
		return result
	}
	if len(projectFiles) == 0 {
		logrus.Debugf("Repository %s has no project files", repo.Name)
		result.skip("", "no project files")
		return result
	}
	result.projectFiles = len(projectFiles)

	// Step 3: management files; legacy discovery is gated by configuration
	managementFiles, err := o.gateway.ListManagementFiles(ctx, repo, o.config.IncludeLegacyFiles)
	if err != nil {
		logrus.Warnf("Repository %s: failed to list management files: %v", repo.Name, err)
		result.fail("", fmt.Sprintf("failed to list management files: %v", err))
		managementFiles = nil
	}

	// Step 4: central version manifest
	central := o.parseCentralVersions(ctx, repo, managementFiles, result)

	// Step 5: project files, each isolated from its siblings
	for _, file := range projectFiles {
		o.processProjectFile(ctx, repo, file, central, result)
	}

	// Step 6: legacy lock files, same isolation, manifest wins on conflict
	if o.config.IncludeLegacyFiles {
		projectPaths := make([]string, 0, len(projectFiles))
		for _, file := range projectFiles {
			projectPaths = append(projectPaths, file.Path)
		}
		for _, file := range managementFiles {
			if file.Kind == models.ManagementLegacyLock {
				o.processLegacyFile(ctx, repo, file, projectPaths, result)
			}
		}
	}

	return result
}

func (o *Orchestrator) parseCentralVersions(ctx context.Context, repo models.Repository, managementFiles []models.ManagementFile, result *repoResult) extract.CentralVersions {
	for _, file := range managementFiles {
		if file.Kind != models.ManagementCentralVersions {
			continue
		}
		content, err := o.gateway.FetchContent(ctx, repo, file.Path)
		if err != nil {
			logrus.Warnf("Repository %s: failed to fetch %s: %v", repo.Name, file.Path, err)
			result.fail(file.Path, fmt.Sprintf("fetch failed: %v", err))
			break
		}
		central, err := extract.ParseCentralVersions(content)
		if err != nil {
			logrus.Warnf("Repository %s: %s did not parse, treating versions as unmanaged: %v", repo.Name, file.Path, err)
			result.fail(file.Path, fmt.Sprintf("parse failed: %v", err))
			break
		}
		if central.Managed {
			logrus.Debugf("Repository %s manages %d package versions centrally", repo.Name, len(central.Versions))
		}
		return central
	}
	return extract.CentralVersions{}
}

func (o *Orchestrator) processProjectFile(ctx context.Context, repo models.Repository, file models.ProjectFile, central extract.CentralVersions, result *repoResult) {
	content, err := o.gateway.FetchContent(ctx, repo, file.Path)
	if err != nil {
		logrus.Warnf("File %s in %s: fetch failed: %v", file.Path, repo.Name, err)
		result.fail(file.Path, fmt.Sprintf("fetch failed: %v", err))
		return
	}
	if strings.TrimSpace(content) == "" {
		logrus.Debugf("File %s in %s is empty", file.Path, repo.Name)
		result.skip(file.Path, "empty content")
		return
	}

	declarations, err := extract.ExtractManifest(content, repo.Name, file.Path, projectRefName(file.Path), o.exclusions)
	if err != nil {
		logrus.Warnf("File %s in %s: %v", file.Path, repo.Name, err)
		result.fail(file.Path, err.Error())
		return
	}

	if central.Managed {
		declarations = MergeCentralVersions(declarations, central)
	}

	declarations, removed := FilterDeclarations(declarations, result.overrides)
	if removed > 0 {
		logrus.Infof("File %s in %s: override policy removed %d declarations", file.Path, repo.Name, removed)
	}

	result.declarations = append(result.declarations, declarations...)
}

func (o *Orchestrator) processLegacyFile(ctx context.Context, repo models.Repository, file models.ManagementFile, projectPaths []string, result *repoResult) {
	projectPath := extract.FindColocatedProjectFile(file.Path, projectPaths)
	if projectPath == "" {
		// Expected for repositories mid-migration, not a failure
		logrus.Debugf("Legacy file %s in %s has no co-located project file", file.Path, repo.Name)
		result.skip(file.Path, "no co-located project file")
		return
	}

	content, err := o.gateway.FetchContent(ctx, repo, file.Path)
	if err != nil {
		logrus.Warnf("Legacy file %s in %s: fetch failed: %v", file.Path, repo.Name, err)
		result.fail(file.Path, fmt.Sprintf("fetch failed: %v", err))
		return
	}
	if strings.TrimSpace(content) == "" {
		result.skip(file.Path, "empty content")
		return
	}

	declarations, err := extract.ExtractLegacy(content, repo.Name, projectPath, projectRefName(projectPath), o.exclusions)
	if err != nil {
		logrus.Warnf("Legacy file %s in %s: %v", file.Path, repo.Name, err)
		result.fail(file.Path, err.Error())
		return
	}

	declarations, removed := FilterDeclarations(declarations, result.overrides)
	if removed > 0 {
		logrus.Infof("Legacy file %s in %s: override policy removed %d declarations", file.Path, repo.Name, removed)
	}

	// Manifest declarations always win over legacy ones for the same
	// project file; only packages the manifest does not declare survive.
	seen := make(map[string]bool, len(result.declarations))
	for _, decl := range result.declarations {
		seen[decl.Key()] = true
	}
	appended := 0
	for _, decl := range declarations {
		if seen[decl.Key()] {
			continue
		}
		seen[decl.Key()] = true
		result.declarations = append(result.declarations, decl)
		appended++
	}
	logrus.Debugf("Legacy file %s in %s contributed %d of %d declarations", file.Path, repo.Name, appended, len(declarations))
}

// enrich attaches registry metadata to every declaration whose package the
// resolver knows. Declarations the registry does not know pass through
// unchanged. The returned slice is always a fresh copy, so mutating the scan
// result never reaches back into accumulator state.
func (o *Orchestrator) enrich(ctx context.Context, declarations []models.PackageDeclaration) []models.PackageDeclaration {
	out := make([]models.PackageDeclaration, len(declarations))
	copy(out, declarations)

	if o.resolver == nil || !o.config.ResolveRegistry || len(out) == 0 {
		return out
	}

	names := distinctNames(out)
	logrus.Infof("Resolving registry metadata for %d distinct packages", len(names))
	metadata, err := o.resolver.Resolve(ctx, names, out)
	if err != nil {
		logrus.Warnf("Registry resolution incomplete: %v", err)
	}
	if len(metadata) == 0 {
		return out
	}

	byLower := make(map[string]models.PackageMetadata, len(metadata))
	for name, meta := range metadata {
		byLower[strings.ToLower(name)] = meta
	}
	for i, decl := range out {
		if meta, ok := byLower[strings.ToLower(decl.Name)]; ok {
			out[i] = decl.WithMetadata(meta)
		}
	}
	return out
}

// distinctNames returns package names in first-seen order, case-insensitively unique
func distinctNames(declarations []models.PackageDeclaration) []string {
	seen := make(map[string]bool, len(declarations))
	var names []string
	for _, decl := range declarations {
		lower := strings.ToLower(decl.Name)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		names = append(names, decl.Name)
	}
	return names
}

// projectRefName derives the project/solution display name from a file path
func projectRefName(filePath string) string {
	base := path.Base(filePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

func (r *repoResult) skip(filePath, reason string) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Kind: OutcomeSkipped, Repository: r.repository, Path: filePath, Reason: reason})
}

func (r *repoResult) fail(filePath, reason string) {
	r.diagnostics = append(r.diagnostics, Diagnostic{Kind: OutcomeFailed, Repository: r.repository, Path: filePath, Reason: reason})
}
