package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/batch"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/classify"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/completion"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/config"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/lawsuits"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/report"
	"github.com/gregorizeidler-cw/themis-law-suits/pkg/formatting"
	"github.com/gregorizeidler-cw/themis-law-suits/pkg/lifecycle"
	"github.com/gregorizeidler-cw/themis-law-suits/pkg/retry"
)

const (
	shutdownTimeout  = 10 * time.Second
	progressInterval = 10 * time.Second
)

func runPipeline(cfg *config.Config, inputPath, outputPath string, logger *slog.Logger) error {
	ids, err := readInput(inputPath, logger)
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	variant := cfg.Batch.Variant()

	writer, err := report.NewWriter(out, variant)
	if err != nil {
		return err
	}

	orch := buildOrchestrator(cfg, variant, logger)

	coordinator := lifecycle.New()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	results, run, err := orch.Run(coordinator.Context(), ids)
	if err != nil {
		return err
	}

	var interrupted atomic.Bool

	go func() {
		select {
		case s := <-sig:
			interrupted.Store(true)
			logger.Warn("interrupt received, stopping run", "signal", s)
			coordinator.Shutdown(shutdownTimeout)
		case <-coordinator.Context().Done():
		}
	}()

	coordinator.OnShutdown(func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()

		for {
			select {
			case <-coordinator.Context().Done():
				return
			case <-ticker.C:
				totals := run.Snapshot()
				logger.Info("progress",
					"processed", totals.Processed,
					"total", run.Total,
					"errored", totals.Errored,
					"elapsed", run.Elapsed().Round(time.Second),
				)
			}
		}
	})

	for res := range results {
		if err := writer.Write(res); err != nil {
			coordinator.Shutdown(shutdownTimeout)
			return fmt.Errorf("writing results: %w", err)
		}
	}

	if err := coordinator.Shutdown(shutdownTimeout); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing results: %w", err)
	}

	stats := writer.Stats()
	logger.Info("run complete",
		"run", run.ID,
		"mode", variant,
		"output", outputPath,
		"rows", stats.Total,
		"acquitted", stats.Acquitted,
		"acquitted_pct", fmt.Sprintf("%.1f", stats.AcquittedPercent()),
		"no_data", stats.NoData,
		"errors", stats.Errors,
		"elapsed", run.Elapsed().Round(time.Millisecond),
	)

	if variant == classify.VariantSemantic && stats.Total > 0 {
		logger.Info("confidence",
			"mean", fmt.Sprintf("%.1f", stats.MeanConfidence()),
			"high", stats.HighConfidence,
		)
	}

	if err := run.Err(); err != nil {
		return err
	}

	if interrupted.Load() {
		logger.Warn("run interrupted, partial results written", "output", outputPath)
	}

	return nil
}

func readInput(path string, logger *slog.Logger) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		logger.Info("reading input",
			"path", path,
			"size", formatting.FormatBytes(info.Size(), 1),
		)
	}

	ids, err := batch.ReadIDs(f, path)
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("no ids found in %s", path)
	}

	return ids, nil
}

func buildOrchestrator(cfg *config.Config, variant classify.Variant, logger *slog.Logger) *batch.Orchestrator {
	records := lawsuits.NewClient(&cfg.Provider, logger)

	var classifier classify.Classifier
	if variant == classify.VariantSemantic {
		classifier = classify.NewSemantic(completion.NewClient(&cfg.Completion, logger), logger)
	} else {
		classifier = classify.NewPattern(logger)
	}

	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.Batch.MaxRetries

	ctrl := retry.NewController(policy, cfg.Batch.DelayDuration(), logger)

	return batch.NewOrchestrator(records, classifier, ctrl, &cfg.Batch, logger)
}
