package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/mvaldez/orinup/internal/domain/manifest"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
)

// Summary styles.
var (
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"})
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"})
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"})
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"})
)

// PrintSummary renders the run outcome.
func (p *Provisioner) PrintSummary(outcome RunOutcome) {
	p.printf("\n%s\n\n", styleTitle.Render("Provisioning Summary"))

	for _, r := range outcome.Result.Results {
		p.printf("  %s %s%s\n", statusGlyph(r.Status()), r.StepID().String(), attemptNote(r))
	}

	succeeded, failed, skipped := tally(outcome.Result)
	p.printf("\n%s\n", styleMuted.Render(fmt.Sprintf(
		"%d succeeded, %d failed, %d skipped", succeeded, failed, skipped)))

	if outcome.DryRun {
		p.printf("%s\n", styleWarn.Render("Dry run: nothing was changed."))
	}

	for _, r := range outcome.Result.Results {
		if r.Status() != pipeline.StatusFailed || r.Err() == nil {
			continue
		}
		var stepErr *pipeline.StepError
		if errors.As(r.Err(), &stepErr) {
			p.printf("\n%s\n", styleError.Render(stepErr.Format()))
		} else {
			p.printf("\n%s\n", styleError.Render(r.Err().Error()))
		}
	}

	if outcome.ManifestPath != "" {
		p.printf("\nManifest: %s\n", outcome.ManifestPath)
	}
	if outcome.LogPath != "" {
		p.printf("Run log:  %s\n", outcome.LogPath)
	}

	if outcome.Result.Succeeded() && !outcome.DryRun {
		p.printf("\n%s\n", styleSuccess.Render("Provisioning complete."))
	}
}

// PrintDoctor renders a host inspection report.
func (p *Provisioner) PrintDoctor(report DoctorReport) {
	p.printf("\n%s\n\n", styleTitle.Render("Environment Check"))

	for _, t := range report.Tools {
		switch {
		case t.Err != nil:
			p.printf("  %s %s: %s\n", styleError.Render("✗"), t.Name, t.Err.Error())
		case t.Version != "":
			p.printf("  %s %s %s\n", styleSuccess.Render("✓"), t.Name, styleMuted.Render(t.Version))
		default:
			p.printf("  %s %s\n", styleSuccess.Render("✓"), t.Name)
		}
	}

	p.printf("\n  Memory:    %d MB available\n", report.Snapshot.AvailableMemoryMB)
	diskGlyph := styleSuccess.Render("✓")
	if !report.DiskOK {
		diskGlyph = styleError.Render("✗")
	}
	p.printf("  Disk:      %s %d MB free (need %d MB)\n", diskGlyph, report.Snapshot.DiskFreeMB, MinDiskFreeMB)
	p.printf("  Desktop:   %v\n", report.Snapshot.Flag("desktop-session"))
	p.printf("  Jetson:    %v\n", report.Snapshot.Flag("jetson-board"))

	if report.Healthy() {
		p.printf("\n%s\n", styleSuccess.Render("Environment looks good."))
	} else {
		p.printf("\n%s\n", styleError.Render("Environment is not ready for provisioning."))
	}
}

// PrintDrift renders a manifest drift report.
func (p *Provisioner) PrintDrift(m *manifest.Manifest, report manifest.DriftReport) {
	p.printf("\n%s\n", styleTitle.Render("Manifest Verification"))
	p.printf("%s\n\n", styleMuted.Render(fmt.Sprintf("root %s, %d files recorded", m.Root(), m.EntryCount())))

	if report.Clean() {
		p.printf("%s\n", styleSuccess.Render("No drift: install root matches the manifest."))
		return
	}

	for _, path := range report.Missing {
		p.printf("  %s %s\n", styleError.Render("missing "), path)
	}
	for _, path := range report.Modified {
		p.printf("  %s %s\n", styleWarn.Render("modified"), path)
	}
	for _, path := range report.Added {
		p.printf("  %s %s\n", styleMuted.Render("added   "), path)
	}

	p.printf("\n%s\n", styleError.Render(fmt.Sprintf(
		"Drift detected: %d missing, %d modified, %d added.",
		len(report.Missing), len(report.Modified), len(report.Added))))
}

func (p *Provisioner) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func statusGlyph(status pipeline.StepStatus) string {
	switch status {
	case pipeline.StatusSucceeded:
		return styleSuccess.Render("✓")
	case pipeline.StatusFailed:
		return styleError.Render("✗")
	case pipeline.StatusSkipped:
		return styleMuted.Render("-")
	default:
		return " "
	}
}

func attemptNote(r pipeline.ExecutionResult) string {
	if r.Attempts() > 1 {
		return styleMuted.Render(fmt.Sprintf(" (attempt %d)", r.Attempts()))
	}
	return ""
}

func tally(result pipeline.RunResult) (succeeded, failed, skipped int) {
	for _, r := range result.Results {
		switch r.Status() {
		case pipeline.StatusSucceeded:
			succeeded++
		case pipeline.StatusFailed:
			failed++
		case pipeline.StatusSkipped:
			skipped++
		}
	}
	return succeeded, failed, skipped
}
