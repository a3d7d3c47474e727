// Package prediction runs the submit cycle: validate the batch, map it to the
// scoring schema, call the service and keep the verdicts aligned to the
// records they were computed for.
package prediction

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/fraudwatch/internal/client/batch"
	"github.com/dmitrijs2005/fraudwatch/internal/client/client"
	"github.com/dmitrijs2005/fraudwatch/internal/logging"
)

type State int

const (
	Idle State = iota
	Validating
	Calling
	Succeeded
	// Failed is passed through when the service call errors; Submit then
	// returns to Idle and keeps the error in LastError.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Calling:
		return "calling"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Predictor is the part of the service client the workflow needs.
type Predictor interface {
	Predict(ctx context.Context, transactions []client.ScoringTransaction) (*client.PredictResult, error)
	ModelInfo(ctx context.Context) (*client.ModelInfo, error)
}

// Verdict is the result for the record at Index in the batch as it was when
// submitted.
type Verdict struct {
	Index int
	Fraud bool
}

// Outcome is one successful prediction. Only complete records were sent;
// Skipped holds the indices of the rest.
type Outcome struct {
	Revision   uint64
	Verdicts   []Verdict
	Skipped    []int
	FraudCount int
}

// Lookup returns the verdict for a batch index, if that record was scored.
func (o *Outcome) Lookup(index int) (fraud bool, ok bool) {
	for _, v := range o.Verdicts {
		if v.Index == index {
			return v.Fraud, true
		}
	}
	return false, false
}

// Workflow owns the verdicts for one editor. At most one Submit runs at a
// time.
type Workflow struct {
	mu       sync.Mutex
	editor   *batch.Editor
	client   Predictor
	defaults Defaults
	log      logging.Logger

	state   State
	outcome *Outcome
	lastErr error
}

// Open checks that the service has a trained model and returns a workflow
// over editor. ErrModelNotTrained means the caller should show the
// train-first notice instead.
func Open(ctx context.Context, c Predictor, editor *batch.Editor, defaults Defaults, log logging.Logger) (*Workflow, error) {
	info, err := c.ModelInfo(ctx)
	if err != nil {
		return nil, err
	}
	if !info.ModelExists {
		return nil, ErrModelNotTrained
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Workflow{editor: editor, client: c, defaults: defaults, log: log}, nil
}

// State reports where the submit cycle is. A success whose batch has since
// been edited counts as Idle again.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Succeeded && (w.outcome == nil || w.outcome.Revision != w.editor.Revision()) {
		return Idle
	}
	return w.state
}

// LastError is the error of the most recent failed Submit.
func (w *Workflow) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Results returns the verdicts if the batch has not changed since they were
// computed. Stale verdicts are dropped.
func (w *Workflow) Results() *Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.outcome != nil && w.outcome.Revision != w.editor.Revision() {
		w.outcome = nil
	}
	return w.outcome
}

// Submit scores every complete record of the batch. On failure the previous
// verdicts are kept and the batch is never modified.
func (w *Workflow) Submit(ctx context.Context) (*Outcome, error) {
	w.mu.Lock()
	if w.state == Calling {
		w.mu.Unlock()
		return nil, ErrInFlight
	}
	w.state = Validating

	records := w.editor.Records()
	revision := w.editor.Revision()

	if len(records) == 0 {
		w.state = Idle
		w.mu.Unlock()
		return nil, ErrEmptyBatch
	}

	var retained, skipped []int
	var transactions []client.ScoringTransaction
	for i, r := range records {
		if !r.Complete() {
			skipped = append(skipped, i)
			continue
		}
		retained = append(retained, i)
		transactions = append(transactions, Map(r, w.defaults))
	}
	if len(retained) == 0 {
		w.state = Idle
		w.mu.Unlock()
		return nil, ErrNoCompleteRecords
	}

	w.state = Calling
	w.mu.Unlock()

	w.log.Debug(ctx, "submitting batch", "sent", len(retained), "skipped", len(skipped))
	res, err := w.client.Predict(ctx, transactions)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err == nil && len(res.Predictions) != len(transactions) {
		err = fmt.Errorf("%w: got %d for %d", ErrVerdictMismatch, len(res.Predictions), len(transactions))
	}
	if err != nil {
		w.state = Failed
		w.lastErr = err
		w.log.Warn(ctx, "prediction failed", "err", err, "state", w.state)
		w.state = Idle
		return nil, err
	}

	outcome := &Outcome{Revision: revision, Skipped: skipped}
	for k, v := range res.Predictions {
		outcome.Verdicts = append(outcome.Verdicts, Verdict{Index: retained[k], Fraud: bool(v)})
		if v {
			outcome.FraudCount++
		}
	}

	w.state = Succeeded
	w.lastErr = nil
	w.outcome = outcome
	w.log.Info(ctx, "prediction finished", "scored", len(outcome.Verdicts), "fraud", outcome.FraudCount)
	return outcome, nil
}
