package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvaldez/orinup/internal/domain/config"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "orinup",
	Short: "Post-flash provisioning for Jetson Orin boards",
	Long: `Orinup turns a freshly flashed board into a ready development machine.

It runs a declarative pipeline of idempotent steps: install toolchain
dependencies, build a minimal Qt binding from source with unneeded feature
modules excluded, verify the exclusions took effect, and record an install
manifest. A completed step is a no-op on re-run, so an interrupted
provisioning can simply be started again.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// exitCodeError carries a phase-partitioned process exit code up to main.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return pipeline.ExitSuccess
	}

	printError(err)

	var coded *exitCodeError
	if errors.As(err, &coded) {
		return coded.code
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: orinup.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}

	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) {
		if verbose {
			return stepErr.Format()
		}
		msg := stepErr.Error()
		if stepErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", stepErr.Suggestion)
		}
		return msg
	}

	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// loadConfig loads the run configuration from --config or the default
// location, falling back to built-in defaults when no file exists.
func loadConfig() (config.RunConfig, error) {
	loader := config.NewLoader()
	if cfgFile != "" {
		return loader.Load(cfgFile)
	}
	return loader.LoadOrDefault("orinup.yaml")
}
