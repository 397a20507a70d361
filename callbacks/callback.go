// Package callbacks provides training-loop hooks invoked at epoch boundaries.
//
// A training driver holds a list of Callback values and invokes each one at
// the start and end of every epoch, passing the metrics the epoch produced.
// Callbacks answer a single question: should training stop now?
package callbacks

import "github.com/tsawler/go-trainloop/checkpoints"

// Logs maps metric names to the scalar values one epoch produced.
// Logs are owned by the training driver; callbacks only read them.
type Logs map[string]float64

// Model is the minimal surface callbacks need from a trainable model:
// a snapshot of its named parameter tensors.
type Model interface {
	StateDict() []checkpoints.WeightTensor
}

// Context carries the per-epoch values the training driver hands to callbacks.
type Context struct {
	Epoch int   // 1-based epoch number
	Logs  Logs  // metrics produced by the epoch; nil at epoch begin
	Model Model // model being trained; may be nil for hooks that never save
}

// Callback is the contract between the training driver and a hook.
// Both methods return true when training should stop. Errors are fatal
// to the calling loop; there are no retries.
type Callback interface {
	// OnEpochBegin is called before an epoch runs. ctx.Logs is nil.
	OnEpochBegin(ctx *Context) (bool, error)

	// OnEpochEnd is called after an epoch runs with the metrics it produced.
	OnEpochEnd(ctx *Context) (bool, error)
}
