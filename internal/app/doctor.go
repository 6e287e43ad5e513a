package app

import (
	"context"
	"os"

	"github.com/mvaldez/orinup/internal/domain/probe"
)

// ToolCheck is one required-tool finding in a doctor report.
type ToolCheck struct {
	Name    string
	Version string
	Found   bool
	Err     error
}

// DoctorReport is the host inspection result.
type DoctorReport struct {
	Snapshot *probe.Snapshot
	Tools    []ToolCheck
	DiskOK   bool
}

// Healthy returns true when every required tool checks out and disk space
// is sufficient.
func (r DoctorReport) Healthy() bool {
	if !r.DiskOK {
		return false
	}
	for _, t := range r.Tools {
		if t.Err != nil {
			return false
		}
	}
	return true
}

// Doctor probes the host and checks every provisioning requirement without
// mutating anything.
func (p *Provisioner) Doctor(ctx context.Context) (DoctorReport, error) {
	prober := probe.NewProber(p.runner, p.tools).WithSystemReader(p.sys)

	snapshot, err := prober.Probe(ctx, os.TempDir())
	if err != nil {
		return DoctorReport{}, err
	}

	report := DoctorReport{
		Snapshot: snapshot,
		DiskOK:   snapshot.DiskFreeMB >= MinDiskFreeMB,
	}

	for _, tool := range p.tools {
		check := ToolCheck{
			Name:    tool.Name,
			Version: snapshot.Version(tool.Name),
			Found:   snapshot.HasTool(tool.Name),
			Err:     prober.Require(snapshot, tool.Name),
		}
		report.Tools = append(report.Tools, check)
	}

	return report, nil
}
