package cli

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rvalk/depscan/internal/gateway"
	"github.com/rvalk/depscan/internal/models"
	"github.com/rvalk/depscan/internal/policy"
	"github.com/rvalk/depscan/internal/registry"
	"github.com/rvalk/depscan/internal/report"
	"github.com/rvalk/depscan/internal/scan"
)

// NewScanCmd creates the scan command
func NewScanCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Inventory package dependencies across repositories",
		Long: `Scans every repository reachable through the configured gateway,
extracts package declarations from project manifests, central version
manifests and legacy lock files, reconciles them, and optionally enriches
the inventory with registry metadata.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd, configFile)
			if err != nil {
				return err
			}
			if err := validateConfig(config); err != nil {
				return err
			}

			logrus.Info("Starting dependency scan...")
			logrus.Debugf("Configuration: %+v", config)

			return runScan(cmd, config)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to depscan.yaml config file")

	// Source control
	cmd.Flags().StringP("workspace", "w", "", "Local workspace whose subdirectories are repositories")
	cmd.Flags().String("organization", "", "Azure DevOps organization")
	cmd.Flags().String("project", "", "Azure DevOps project")
	cmd.Flags().String("token", "", "Azure DevOps personal access token")

	// Exclusion policy
	cmd.Flags().StringSlice("exclude-prefixes", nil, "Package name prefixes to exclude")
	cmd.Flags().StringSlice("exclude-names", nil, "Exact package names to exclude")
	cmd.Flags().StringSlice("exclude-patterns", nil, "Package name regex patterns to exclude")
	cmd.Flags().Bool("case-sensitive", false, "Match exclusions case-sensitively")

	// Pipeline toggles
	cmd.Flags().Bool("include-legacy-files", true, "Discover legacy packages.config lock files")
	cmd.Flags().Bool("read-override-policies", true, "Read per-repository override documents")
	cmd.Flags().Bool("resolve-registry", false, "Enrich declarations with registry metadata")
	cmd.Flags().String("registry-url", registry.DefaultRegistryURL, "Registration index base URL")

	cmd.Flags().Int("concurrency", 1, "Repositories scanned in parallel")

	// Export
	cmd.Flags().StringP("output", "o", "", "Export file path (.gz compresses JSON output)")
	cmd.Flags().StringP("format", "f", "json", "Export format (json, csv)")

	return cmd
}

// loadConfig merges the optional config file under the CLI flags; flags win.
func loadConfig(cmd *cobra.Command, configFile string) (*models.ScanConfig, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("depscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, &models.ScanError{Type: models.ErrInvalidConfig, Err: fmt.Errorf("failed to read config: %w", err)}
		}
	} else {
		logrus.Debugf("Using config file %s", v.ConfigFileUsed())
	}

	var config models.ScanConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ScanError{Type: models.ErrInvalidConfig, Err: fmt.Errorf("invalid config: %w", err)}
	}
	return &config, nil
}

func validateConfig(config *models.ScanConfig) error {
	hasWorkspace := config.Workspace != ""
	hasDevOps := config.Organization != "" && config.Project != ""
	if !hasWorkspace && !hasDevOps {
		return &models.ScanError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("either workspace or organization+project is required"),
		}
	}
	if hasWorkspace && hasDevOps {
		return &models.ScanError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("workspace and organization+project are mutually exclusive"),
		}
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return nil
}

func runScan(cmd *cobra.Command, config *models.ScanConfig) error {
	exclusions, err := policy.NewExclusionPolicy(config.ExcludePrefixes, config.ExcludeNames, config.ExcludePatterns, config.CaseSensitive)
	if err != nil {
		return &models.ScanError{Type: models.ErrInvalidConfig, Err: err}
	}

	var gw gateway.Gateway
	if config.Workspace != "" {
		gw = gateway.NewFilesystemGateway(config.Workspace)
	} else {
		gw = gateway.NewAzureDevOpsGateway(config.Organization, config.Project, config.Token)
	}

	var resolver registry.Resolver
	if config.ResolveRegistry {
		nuget, err := registry.NewNuGetResolver(config.RegistryURL)
		if err != nil {
			return &models.ScanError{Type: models.ErrRegistry, Err: err}
		}
		resolver = nuget
	}

	orchestrator := scan.NewOrchestrator(gw, resolver, exclusions, config)
	result, err := orchestrator.Scan(cmd.Context())
	if err != nil {
		return err
	}

	report.LogSummary(result, resolver)

	if config.Output != "" {
		if err := report.Export(config.Output, config.Format, result); err != nil {
			return err
		}
		logrus.Infof("Inventory written to %s", config.Output)
	}
	return nil
}
