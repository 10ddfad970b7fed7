package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/scada-studio/rtac-cim/internal/config"
	"github.com/scada-studio/rtac-cim/pkg/equipment"
	"github.com/scada-studio/rtac-cim/pkg/log"
	"github.com/scada-studio/rtac-cim/pkg/metrics"
	"github.com/scada-studio/rtac-cim/pkg/pipeline"
	"github.com/scada-studio/rtac-cim/pkg/source"
)

// RunSync converts one export stored in a directory repository and commits
// the profile back. The result is written to w as JSON.
func RunSync(ctx context.Context, cfg config.Config, job pipeline.Job, logger *slog.Logger, w io.Writer) error {
	if job.Substation == "" {
		job.Substation = cfg.Substation
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}

	// The processor already logs outcomes; the per-stage trace is debug output.
	var events []log.Logger
	if logger.Enabled(ctx, slog.LevelDebug) {
		events = append(events, log.NewSlogAdapter(logger))
	}
	if cfg.EventLog != "" {
		fl, err := log.NewRotatingFileLogger(cfg.EventLog, cfg.EventLogMaxBytes)
		if err != nil {
			return fmt.Errorf("failed to open event log: %w", err)
		}
		defer fl.Close()
		events = append(events, fl)
	}

	var mapping *equipment.Mapping
	if cfg.EquipmentFile != "" {
		m, err := equipment.Load(cfg.EquipmentFile)
		if err != nil {
			return err
		}
		mapping = m
	}

	reg := metrics.NewRegistry()
	repo := source.NewDirRepository(cfg.RepoRoot)
	p := pipeline.NewProcessor(pipeline.Config{
		Fetcher:   repo,
		Committer: repo,
		Backoff:   cfg.Retry.Backoff(),
		Attempts:  cfg.Retry.Attempts,
		RTUName:   cfg.RTUName,
		Authority: cfg.Authority,
		Equipment: mapping,
		Events:    log.NewMultiLogger(events...),
		Logger:    logger,
		Metrics:   reg,
	})

	res, procErr := p.Process(ctx, job)

	if cfg.MetricsFile != "" {
		if err := reg.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("metrics not written", "path", cfg.MetricsFile, "error", err)
		}
	}
	if procErr != nil {
		return procErr
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
