package runlog

import "github.com/tsawler/go-trainloop/callbacks"

// Recorder is a training callback that persists each epoch's metrics to a
// Store. It never asks the loop to stop.
type Recorder struct {
	store  *Store
	runID  int64
	epochs int
}

// NewRecorder registers a new run for jobID and returns a callback that
// records into it.
func NewRecorder(store *Store, jobID string) (*Recorder, error) {
	runID, err := store.StartRun(jobID)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, runID: runID}, nil
}

// OnEpochBegin never stops training.
func (r *Recorder) OnEpochBegin(ctx *callbacks.Context) (bool, error) {
	return false, nil
}

// OnEpochEnd writes the epoch's metrics to the store.
func (r *Recorder) OnEpochEnd(ctx *callbacks.Context) (bool, error) {
	if err := r.store.RecordEpoch(r.runID, ctx.Epoch, ctx.Logs); err != nil {
		return false, err
	}
	r.epochs = ctx.Epoch
	return false, nil
}

// Finish marks the run complete in the store.
func (r *Recorder) Finish() error {
	return r.store.FinishRun(r.runID, r.epochs)
}

// RunID returns the store row ID of the run being recorded.
func (r *Recorder) RunID() int64 {
	return r.runID
}
