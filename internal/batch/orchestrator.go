package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/classify"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/completion"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/lawsuits"
	"github.com/gregorizeidler-cw/themis-law-suits/pkg/cpf"
	"github.com/gregorizeidler-cw/themis-law-suits/pkg/retry"
)

// Orchestrator drives batch runs. It owns no goroutines between runs; each
// call to Run spins up its own worker pool and tears it down when the input
// is exhausted or the run aborts.
type Orchestrator struct {
	records    lawsuits.System
	classifier classify.Classifier
	ctrl       *retry.Controller
	config     *Config
	logger     *slog.Logger
}

func NewOrchestrator(
	records lawsuits.System,
	classifier classify.Classifier,
	ctrl *retry.Controller,
	config *Config,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		records:    records,
		classifier: classifier,
		ctrl:       ctrl,
		config:     config,
		logger:     logger.With("system", "batch"),
	}
}

type job struct {
	seq int
	id  string
}

// Run validates the batch size, then processes every ID through a pool of
// config.Workers goroutines, streaming one Result per ID on the returned
// channel. The channel closes when all IDs have been handled or the run
// aborts; after that, Run.Err reports whether the batch completed. Results
// arrive in completion order, not input order.
func (o *Orchestrator) Run(ctx context.Context, ids []string) (<-chan Result, *Run, error) {
	if max := o.config.MaxBatch(); len(ids) > max {
		return nil, nil, fmt.Errorf("%w: %d ids, limit %d for %s mode",
			ErrBatchTooLarge, len(ids), max, o.config.Mode,
		)
	}

	run := newRun(o.config.Variant(), len(ids))
	results := make(chan Result)

	o.logger.Info("batch started",
		"run", run.ID,
		"mode", run.Variant,
		"total", run.Total,
		"workers", o.config.Workers,
	)

	go o.execute(ctx, run, ids, results)

	return results, run, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *Run, ids []string, results chan<- Result) {
	defer close(results)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job)

	go func() {
		defer close(jobs)

		for i, id := range ids {
			select {
			case jobs <- job{seq: i, id: id}:
			case <-runCtx.Done():
				return
			}
		}
	}()

	g := new(errgroup.Group)

	for range o.config.Workers {
		g.Go(func() error {
			for j := range jobs {
				if runCtx.Err() != nil {
					return nil
				}

				res, abortCause := o.processOne(runCtx, j)
				run.record(&res)

				select {
				case results <- res:
				case <-ctx.Done():
					return nil
				}

				if abortCause != nil {
					run.abort(fmt.Errorf("%w: %w", ErrAborted, abortCause))
					cancel()
					return nil
				}
			}

			return nil
		})
	}

	g.Wait()

	if err := run.Err(); err != nil {
		o.logger.Error("batch aborted", "run", run.ID, "error", err)
	} else {
		totals := run.Snapshot()
		o.logger.Info("batch finished",
			"run", run.ID,
			"processed", totals.Processed,
			"succeeded", totals.Succeeded,
			"no_data", totals.NoData,
			"errored", totals.Errored,
			"acquitted", totals.Acquitted,
			"elapsed", run.Elapsed(),
		)
	}
}

// processOne runs the full pipeline for a single ID. The second return value
// is non-nil only when the failure poisons the whole batch, which today means
// a credential rejection from either external service.
func (o *Orchestrator) processOne(ctx context.Context, j job) (Result, error) {
	res := Result{Seq: j.seq, CPF: j.id}

	id, err := cpf.Normalize(j.id)
	if err != nil {
		res.Status = StatusError
		res.Reason = err.Error()
		return res, nil
	}

	res.CPF = id

	subject, err := o.fetch(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, lawsuits.ErrNoData):
			res.Status = StatusNoData
			res.Reason = "no records found"
			res.Verdict = &classify.Verdict{Outcome: classify.OutcomeUnknown}
		case errors.Is(err, lawsuits.ErrAuthRejected):
			res.Status = StatusError
			res.Reason = "provider rejected credentials"
			return res, err
		default:
			res.Status = StatusError
			res.Reason = fmt.Sprintf("fetch failed: %v", err)
			o.logger.Warn("fetch failed", "cpf", cpf.Mask(id), "error", err)
		}

		return res, nil
	}

	res.Name = subject.Name

	verdict, err := o.classify(ctx, id, subject)
	if err != nil {
		res.Status = StatusError
		res.Reason = fmt.Sprintf("classification failed: %v", err)

		if errors.Is(err, completion.ErrAuthRejected) {
			res.Reason = "completion service rejected credentials"
			return res, err
		}

		o.logger.Warn("classification failed", "cpf", cpf.Mask(id), "error", err)
		return res, nil
	}

	res.Status = StatusSuccess
	res.Verdict = verdict

	return res, nil
}

func (o *Orchestrator) fetch(ctx context.Context, id string) (*lawsuits.Subject, error) {
	return retry.Result(ctx, o.ctrl, "fetch", func(ctx context.Context) (*lawsuits.Subject, error) {
		subject, err := o.records.Fetch(ctx, id)
		if err != nil && !lawsuits.Retryable(err) {
			return nil, retry.Terminal(err)
		}

		return subject, err
	})
}

// classify routes through the retry controller only for the semantic variant.
// The pattern classifier makes no external calls, so pacing it would just
// throttle local work.
func (o *Orchestrator) classify(ctx context.Context, id string, subject *lawsuits.Subject) (*classify.Verdict, error) {
	if o.classifier.Variant() != classify.VariantSemantic {
		return o.classifier.Classify(ctx, id, subject)
	}

	return retry.Result(ctx, o.ctrl, "classify", func(ctx context.Context) (*classify.Verdict, error) {
		verdict, err := o.classifier.Classify(ctx, id, subject)
		if err != nil && errors.Is(err, completion.ErrAuthRejected) {
			return nil, retry.Terminal(err)
		}

		return verdict, err
	})
}
