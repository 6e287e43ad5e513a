package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvaldez/orinup/internal/app"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the host without changing anything",
	Long: `Doctor probes the host the same way provision does: required tools and
their versions, available memory, free disk space, and host facts. It never
mutates anything and exits 10 when the host is not ready.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	provisioner := app.New(os.Stdout)

	report, err := provisioner.Doctor(cmd.Context())
	if err != nil {
		return &exitCodeError{code: pipeline.ExitPreflightFailed, err: err}
	}

	provisioner.PrintDoctor(report)

	if !report.Healthy() {
		return &exitCodeError{
			code: pipeline.ExitPreflightFailed,
			err:  errors.New("host is not ready for provisioning"),
		}
	}
	return nil
}
