package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvaldez/orinup/internal/app"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
)

var (
	manifestRoot string
	manifestPath string
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Write or verify the install manifest",
}

var manifestWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Record the install root into a checksummed manifest",
	RunE:  runManifestWrite,
}

var manifestVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Report drift between the manifest and the install root",
	Long: `Verify re-walks the install root recorded in the manifest and reports
every missing, modified, and added file. Exits 50 when drift is found.`,
	RunE: runManifestVerify,
}

func init() {
	manifestCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "manifest file path (default: from config)")
	manifestWriteCmd.Flags().StringVar(&manifestRoot, "root", "", "install root to record (default: from config)")

	manifestCmd.AddCommand(manifestWriteCmd)
	manifestCmd.AddCommand(manifestVerifyCmd)
	rootCmd.AddCommand(manifestCmd)
}

func manifestDefaults() (root, path string, err error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", "", err
	}

	root = manifestRoot
	if root == "" {
		root = cfg.InstallRoot()
	}
	path = manifestPath
	if path == "" {
		path = cfg.ManifestPath()
	}
	return root, path, nil
}

func runManifestWrite(cmd *cobra.Command, _ []string) error {
	root, path, err := manifestDefaults()
	if err != nil {
		return err
	}

	m, err := app.New(os.Stdout).WriteManifest(cmd.Context(), root, path)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %d files under %s\n", m.EntryCount(), m.Root())
	return nil
}

func runManifestVerify(cmd *cobra.Command, _ []string) error {
	_, path, err := manifestDefaults()
	if err != nil {
		return err
	}

	provisioner := app.New(os.Stdout)
	m, report, err := provisioner.VerifyManifest(cmd.Context(), path)
	if err != nil {
		return err
	}

	provisioner.PrintDrift(m, report)

	if !report.Clean() {
		return &exitCodeError{
			code: pipeline.ExitValidateFailed,
			err:  errors.New("install root has drifted from the manifest"),
		}
	}
	return nil
}
