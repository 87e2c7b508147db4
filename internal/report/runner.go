// Package report orchestrates one report run: validate the input
// table against the catalog, convert units, roll up the watershed
// hierarchy, and emit artifacts. A run is a one-shot synchronous batch
// computation; any fatal error aborts the whole run so no partial
// artifact ever reaches storage.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/riverscapes/reportcore/internal/aggregate"
	"github.com/riverscapes/reportcore/internal/artifact"
	"github.com/riverscapes/reportcore/internal/catalog"
	"github.com/riverscapes/reportcore/internal/table"
	"github.com/riverscapes/reportcore/internal/units"
)

// Request describes one report run.
type Request struct {
	Name         string
	Table        *table.Table
	TargetLevel  int
	System       units.System
	Formats      []artifact.Format
	OutputDir    string
	WeightColumn string
}

// Summary is the structured result of a completed run: what was
// produced, what was excluded, and why.
type Summary struct {
	RunID      uuid.UUID             `json:"run_id"`
	LayerID    string                `json:"layer_id"`
	System     string                `json:"unit_system"`
	InputRows  int                   `json:"input_rows"`
	OutputRows int                   `json:"output_rows"`
	Defaulted  int                   `json:"defaulted_cells"`
	Exclusions []aggregate.Exclusion `json:"exclusions,omitempty"`
	Artifacts  []string              `json:"artifacts"`
}

// Runner wires the registry into the pipeline stages. It holds no
// per-run state; one Runner serves many runs.
type Runner struct {
	registry *catalog.Registry
	logger   *zap.Logger
}

// NewRunner creates a runner over a loaded registry.
func NewRunner(reg *catalog.Registry, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{registry: reg, logger: logger}
}

// Run executes the pipeline. The context is consulted between stages;
// an individual stage is a bounded in-memory computation and is not
// interruptible mid-flight.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	summary := &Summary{
		RunID:   uuid.New(),
		LayerID: req.Table.LayerID,
		System:  req.System.String(),
	}
	log := r.logger.With(
		zap.String("run_id", summary.RunID.String()),
		zap.String("layer_id", req.Table.LayerID),
	)
	log.Info("report run started",
		zap.Int("input_rows", req.Table.Len()),
		zap.Int("target_level", req.TargetLevel),
		zap.String("unit_system", req.System.String()),
	)
	summary.InputRows = req.Table.Len()

	// Orphan columns are fatal before anything else happens.
	tbl := req.Table.Clone()
	if err := r.registry.Annotate(tbl, tbl.LayerID); err != nil {
		return nil, err
	}
	filled, err := r.registry.ApplyDefaults(tbl, tbl.LayerID)
	if err != nil {
		return nil, err
	}
	summary.Defaulted = filled
	if filled > 0 {
		log.Info("applied catalog defaults", zap.Int("cells", filled))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	converted, err := units.ConvertTable(tbl, req.System)
	if err != nil {
		return nil, fmt.Errorf("unit conversion failed: %w", err)
	}
	log.Debug("converted table", zap.String("system", req.System.String()))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := converted
	if req.TargetLevel > 0 && req.TargetLevel < converted.Level {
		rolled, exclusions, err := aggregate.Aggregate(converted, r.registry, req.TargetLevel, aggregate.Options{
			WeightColumn: req.WeightColumn,
		})
		if err != nil {
			return nil, fmt.Errorf("aggregation failed: %w", err)
		}
		for _, ex := range exclusions {
			log.Warn("row excluded from aggregate",
				zap.String("code", ex.Code),
				zap.String("column", ex.Column),
				zap.String("reason", ex.Reason),
			)
		}
		summary.Exclusions = exclusions
		out = rolled
	}
	out.SortByCode()
	summary.OutputRows = out.Len()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, err := artifact.Build(req.Name, out, r.registry, req.System)
	if err != nil {
		return nil, err
	}

	// Emit into a staging directory and move everything at the end, so
	// a failure in a later format does not strand earlier files.
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	staging, err := os.MkdirTemp(req.OutputDir, ".staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	names := make([]string, 0, len(req.Formats))
	for _, format := range req.Formats {
		name := fmt.Sprintf("%s.%s", req.Name, format)
		if err := artifact.Emit(a, format, filepath.Join(staging, name)); err != nil {
			return nil, fmt.Errorf("emit %s failed: %w", format, err)
		}
		names = append(names, name)
	}
	for i, name := range names {
		path := filepath.Join(req.OutputDir, name)
		if err := os.Rename(filepath.Join(staging, name), path); err != nil {
			return nil, fmt.Errorf("failed to finalize %s: %w", name, err)
		}
		log.Info("artifact written", zap.String("path", path), zap.String("format", req.Formats[i].String()))
		summary.Artifacts = append(summary.Artifacts, path)
	}

	log.Info("report run complete",
		zap.Int("output_rows", summary.OutputRows),
		zap.Int("exclusions", len(summary.Exclusions)),
	)
	return summary, nil
}
