package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mvaldez/orinup/internal/app"
	"github.com/mvaldez/orinup/internal/ports"
)

var (
	targetVersion string
	jobs          int
	skipDeps      bool
	keepTemp      bool
	indexURL      string
	dryRun        bool
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Run the full provisioning pipeline",
	Long: `Provision probes the host, installs dependencies, builds and installs
the minimal Qt binding, applies desktop settings, and writes the install
manifest.

Every step is idempotent: already-satisfied steps are no-ops, so re-running
after a failure resumes where the previous run stopped. The process exit
code identifies the failing phase (10 preflight, 15 fetch, 20 configure,
30 build, 40 install, 50 validate).`,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().StringVar(&targetVersion, "target-version", "", "exact version of the binding to build")
	provisionCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "parallel build jobs (default: from config)")
	provisionCmd.Flags().BoolVar(&skipDeps, "skip-deps", false, "skip dependency installation steps")
	provisionCmd.Flags().BoolVar(&keepTemp, "keep-temp", false, "retain the scratch directory after the run")
	provisionCmd.Flags().StringVar(&indexURL, "index-url", "", "package index endpoint override")
	provisionCmd.Flags().BoolVar(&dryRun, "dry-run", false, "evaluate preconditions without applying anything")

	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flags override the config file.
	if targetVersion != "" {
		cfg = cfg.WithTargetVersion(targetVersion)
	}
	if jobs > 0 {
		cfg = cfg.WithJobs(jobs)
	}
	if skipDeps {
		cfg = cfg.WithSkipDeps(true)
	}
	if keepTemp {
		cfg = cfg.WithKeepTemp(true)
	}
	if indexURL != "" {
		cfg = cfg.WithIndexURL(indexURL)
	}
	if dryRun {
		cfg = cfg.WithDryRun(true)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	provisioner := app.New(os.Stdout)
	if verbose {
		provisioner = provisioner.WithLogLevel(ports.LevelDebug)
	}

	outcome, err := provisioner.Provision(cmd.Context(), cfg)
	provisioner.PrintSummary(outcome)

	if err != nil {
		return &exitCodeError{code: outcome.ExitCode, err: err}
	}
	return nil
}
