package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/record"
)

// ArtifactStatus describes one pipeline artifact on disk. Records is -1 when
// the count cannot be derived from the file size alone.
type ArtifactStatus struct {
	Name      string
	Exists    bool
	SizeBytes int64
	Records   int64
}

type Status struct {
	Artifacts []ArtifactStatus

	IndexedHeight uint32
	IndexKnown    bool

	// ReportedEndHeight is the highest end height already reported to
	// ClickHouse for the configured network; meaningful only when
	// HasReporter is set.
	ReportedEndHeight uint32
	HasReporter       bool
}

// Status inspects every artifact of the data directory plus the index and
// reporting state. It never mutates anything.
func (p *Pipeline) Status(ctx context.Context) (Status, error) {
	artifacts := []struct {
		name  string
		align int64
	}{
		{InputsUnsortedFile, record.InputRecordSize},
		{InputsSortedFile, record.InputRecordSize},
		{OutputsUnsortedFile, 0},
		{OutputsSortedFile, 0},
		{JoinedUnsortedFile, 0},
		{JoinedSortedFile, 0},
		{FailureLogFile, 0},
	}

	st := Status{Artifacts: make([]ArtifactStatus, 0, len(artifacts))}
	for _, a := range artifacts {
		as := ArtifactStatus{Name: a.name, Records: -1}
		info, err := os.Stat(p.path(a.name))
		switch {
		case err == nil:
			as.Exists = true
			as.SizeBytes = info.Size()
			if a.align > 0 {
				as.Records = info.Size() / a.align
			}
		case !os.IsNotExist(err):
			return Status{}, fmt.Errorf("stat %s: %w", a.name, err)
		}
		st.Artifacts = append(st.Artifacts, as)
	}

	if p.index != nil {
		st.IndexedHeight, st.IndexKnown = p.index.MaxContiguousHeight()
	}
	if p.reporter != nil {
		height, err := p.reporter.MaxReportedEndHeight(ctx, p.cfg.Network)
		if err != nil {
			return Status{}, fmt.Errorf("query reported end height: %w", err)
		}
		st.ReportedEndHeight = height
		st.HasReporter = true
	}
	return st, nil
}
