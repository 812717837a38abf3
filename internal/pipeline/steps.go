package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/ionoview/internal/database"
	"github.com/nao1215/ionoview/internal/report"
	"github.com/nao1215/ionoview/internal/session"
)

// ErrNotOpened is returned by steps that need an opened sounding when the
// open step has not run.
var ErrNotOpened = errors.New("sounding not opened")

// OpenStep parses the sounding and its companion file.
//
// Each job gets its own Session because a Session holds a single current
// sounding.
type OpenStep struct {
	config session.Config
	logger *slog.Logger
}

// NewOpenStep creates an OpenStep that opens soundings with cfg.
func NewOpenStep(cfg session.Config, logger *slog.Logger) *OpenStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenStep{config: cfg, logger: logger}
}

// Name returns the step name.
func (s *OpenStep) Name() string {
	return "open"
}

// Do opens job.Path and stores the state in the job.
func (s *OpenStep) Do(_ context.Context, job *Job) error {
	st, err := session.New(s.config, s.logger).Open(job.Path)
	if err != nil {
		return err
	}
	job.State = st
	return nil
}

// ArchiveStep stores the scaled parameters of annotated soundings in the
// archive database. Soundings without a companion file are skipped.
type ArchiveStep struct {
	db     *database.ArchiveDB
	logger *slog.Logger
}

// NewArchiveStep creates an ArchiveStep writing to db.
func NewArchiveStep(db *database.ArchiveDB, logger *slog.Logger) *ArchiveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do archives the job's scaling.
func (s *ArchiveStep) Do(ctx context.Context, job *Job) error {
	if job.State == nil {
		return ErrNotOpened
	}
	if !job.State.CompanionFound {
		s.logger.Debug("not archiving unscaled sounding", "path", job.Path)
		return nil
	}

	// State.Path is absolute, so every spelling of one file shares a record.
	path := job.State.Path
	hash, err := database.HashFile(path)
	if err != nil {
		return fmt.Errorf("failed to hash sounding: %w", err)
	}
	rec := database.NewScaledRecord(path, job.State.Header, job.State.Annotations, hash)
	if err := s.db.SaveScaled(ctx, rec); err != nil {
		return err
	}
	s.logger.Debug("archived scaling", "path", path, "station", rec.Station)
	return nil
}

// SummaryStep builds the report summary of the opened sounding.
type SummaryStep struct{}

// NewSummaryStep creates a SummaryStep.
func NewSummaryStep() *SummaryStep {
	return &SummaryStep{}
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do stores the summary in the job.
func (s *SummaryStep) Do(_ context.Context, job *Job) error {
	if job.State == nil {
		return ErrNotOpened
	}
	job.Summary = report.NewSummary(job.State)
	return nil
}

// DefaultPipeline creates the pipeline used by the batch command: open,
// optionally archive, then summarize. A nil db disables archiving.
func DefaultPipeline(cfg session.Config, db *database.ArchiveDB, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddStep(NewOpenStep(cfg, logger))
	if db != nil {
		p.AddStep(NewArchiveStep(db, logger))
	}
	p.AddStep(NewSummaryStep())
	return p
}
