package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gitfleet/gitfleet/pkg/gitrepo"
)

// Runner executes the fixed pipeline over a set of repositories:
// prepare directory, resolve URIs, materialize, apply the primary
// action, apply the finalization action when configured, clean up. The
// pipeline is strictly sequential; at most one run is in flight per
// Runner at a time.
type Runner struct {
	cfg Config
	log zerolog.Logger

	mu            sync.Mutex
	stepsComplete int
	stepsTotal    int
}

// DoActions performs one complete run and blocks until it finishes.
// Under the strict policy the first error aborts the run and is
// returned wrapped as a *RunError. Under the lenient policy the run
// returns nil and per-repository errors are recorded on the Result.
// The Result is returned in both cases and reflects whatever state the
// run reached.
func (r *Runner) DoActions(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	log := r.log.With().Str("run_id", runID).Logger()

	ctx, span := r.cfg.Tracer.Start(ctx, "gitfleet.run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	r.stepsComplete = 0
	r.stepsTotal = 0
	r.cfg.Metrics.RunStarted()

	res := &Result{RunID: runID, Slots: make(map[string]*Slot)}
	err := r.run(ctx, log, res)

	res.Duration = time.Since(start)
	res.StepsTotal = r.stepsTotal
	switch {
	case err != nil:
		res.Status = RunStatusFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case len(res.Errs()) > 0:
		res.Status = RunStatusPartial
	default:
		res.Status = RunStatusSucceeded
	}
	r.cfg.Metrics.RunCompleted(string(res.Status), res.Duration)
	log.Info().Str("status", string(res.Status)).Dur("duration", res.Duration).Msg("run finished")
	return res, err
}

func (r *Runner) run(ctx context.Context, log zerolog.Logger, res *Result) error {
	listener := r.cfg.StatusListener
	wd := workDir{path: r.cfg.WorkingDir}

	if err := wd.Prepare(); err != nil {
		listener.OnMessage(err.Error())
		return err
	}
	listener.OnMessage("Prepared working directory for repositories.")

	// Cleanup runs even when a later phase fails. Registered before the
	// handle-closing defer so handles are released first.
	if r.cfg.Cleanup {
		defer func() {
			listener.OnMessage("Removing all repositories.")
			if err := wd.Remove(func(path string, err error) {
				log.Warn().Err(err).Str("path", path).Msg("cleanup could not remove entry")
			}); err != nil {
				listener.OnMessage(err.Error())
			}
		}()
	}
	defer r.closeSlots(log, res)

	uris, err := r.cfg.Selector.URIs(ctx)
	if err != nil {
		selErr := NewSelectionError(err)
		listener.OnMessage(selErr.Error())
		return selErr
	}
	if len(uris) == 0 {
		listener.OnProgress(1.0)
		listener.OnMessage("No repositories selected; nothing to do.")
		return nil
	}

	phases := 2
	if r.cfg.FinalizationAction != nil {
		phases = 3
	}
	r.stepsTotal = phases * len(uris)
	r.cfg.Metrics.StepsPlanned(r.stepsTotal)
	log.Info().Int("repositories", len(uris)).Int("phases", phases).Msg("selection resolved")

	if err := r.materialize(ctx, log, res, uris); err != nil {
		return err
	}
	if err := r.applyPass(ctx, log, res, r.cfg.Action, "action"); err != nil {
		return err
	}
	if fa := r.cfg.FinalizationAction; fa != nil {
		if err := r.applyPass(ctx, log, res, fa, "finalization action"); err != nil {
			return err
		}
	}
	return nil
}

// materialize clones every selected repository into an ordinal-named
// subdirectory, in input order. Credential attachment and the clone
// itself are independent failure points, both subject to the failure
// policy. Every attempt counts exactly one progress step.
func (r *Runner) materialize(ctx context.Context, log zerolog.Logger, res *Result, uris []string) error {
	ctx, span := r.cfg.Tracer.Start(ctx, "gitfleet.materialize",
		trace.WithAttributes(attribute.Int("repositories", len(uris))))
	defer span.End()

	listener := r.cfg.StatusListener
	for i, uri := range uris {
		slot := &Slot{URI: uri, Ordinal: i + 1, Dir: filepath.Join(r.cfg.WorkingDir, strconv.Itoa(i+1))}
		if prior, ok := res.Slots[uri]; ok && prior.Repo != nil {
			// Duplicate URIs collapse to one slot; release the handle
			// the new clone displaces.
			if err := prior.Repo.Close(); err != nil {
				log.Warn().Err(err).Str("repository", uri).Msg("failed to close displaced handle")
			}
		}
		res.Slots[uri] = slot
		listener.OnMessage(fmt.Sprintf("Cloning repository %s to %s.", uri, slot.Dir))

		var repoErr *RunError
		cc := gitrepo.NewCloneCommand(uri, slot.Dir)
		if err := r.cfg.Credentials.Apply(cc); err != nil {
			repoErr = NewCredentialError(err).WithURI(uri)
		} else if repo, err := r.cfg.VCS.Clone(ctx, cc); err != nil {
			repoErr = NewCloneError(err).WithURI(uri)
		} else {
			slot.Repo = repo
		}

		if repoErr != nil {
			r.cfg.Metrics.CloneRecorded("failed")
			if r.isFatal(repoErr) {
				span.RecordError(repoErr)
				span.SetStatus(codes.Error, repoErr.Error())
				return repoErr
			}
			slot.CloneErr = repoErr
			log.Warn().Err(repoErr).Str("repository", uri).Msg("repository not materialized")
			listener.OnMessage(repoErr.Error())
		} else {
			r.cfg.Metrics.CloneRecorded("succeeded")
			log.Debug().Str("repository", uri).Str("dir", slot.Dir).Msg("repository materialized")
		}
		r.completeStep()
	}
	return nil
}

// applyPass invokes the action against every slot. Failed slots are
// skipped with a message but still account for a progress step. The
// iteration order across repositories follows the slot map and is not
// guaranteed; both passes observe the same working copies, so the
// finalization pass sees whatever state the primary pass left behind.
func (r *Runner) applyPass(ctx context.Context, log zerolog.Logger, res *Result, act Action, phase string) error {
	ctx, span := r.cfg.Tracer.Start(ctx, "gitfleet.apply",
		trace.WithAttributes(attribute.String("phase", phase)))
	defer span.End()

	listener := r.cfg.StatusListener
	for uri, slot := range res.Slots {
		if slot.Failed() {
			listener.OnMessage(fmt.Sprintf("Skipping %s on repository %s because it could not be downloaded.", phase, uri))
			r.completeStep()
			continue
		}
		listener.OnMessage(fmt.Sprintf("Applying %s to repository %s.", phase, uri))
		if err := act.Apply(ctx, slot.Repo); err != nil {
			actErr := NewActionError(err).WithURI(uri)
			r.cfg.Metrics.ActionRecorded(phase, "failed")
			if r.isFatal(actErr) {
				span.RecordError(actErr)
				span.SetStatus(codes.Error, actErr.Error())
				return actErr
			}
			slot.ActionErrs = append(slot.ActionErrs, actErr)
			log.Warn().Err(actErr).Str("repository", uri).Msg("action failed")
			listener.OnMessage(actErr.Error())
		} else {
			r.cfg.Metrics.ActionRecorded(phase, "succeeded")
		}
		r.completeStep()
	}
	return nil
}

// isFatal applies the failure policy: some kinds abort regardless,
// everything else aborts only under the strict policy.
func (r *Runner) isFatal(err *RunError) bool {
	if err.Kind == KindCleanup {
		return false
	}
	return err.Kind.alwaysFatal() || !r.cfg.ContinueOnError
}

// completeStep counts one finished unit of work and pushes the overall
// fraction to the listener.
func (r *Runner) completeStep() {
	r.stepsComplete++
	if r.stepsTotal > 0 {
		r.cfg.StatusListener.OnProgress(float64(r.stepsComplete) / float64(r.stepsTotal))
	}
}

// closeSlots releases every live handle exactly once, after all action
// phases are done.
func (r *Runner) closeSlots(log zerolog.Logger, res *Result) {
	for uri, slot := range res.Slots {
		if slot.Repo == nil {
			continue
		}
		if err := slot.Repo.Close(); err != nil {
			log.Warn().Err(err).Str("repository", uri).Msg("failed to close repository handle")
		}
	}
}
