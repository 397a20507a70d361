// Package training provides a minimal epoch driver for training-loop hooks.
package training

import (
	"fmt"
	"sort"

	"github.com/tsawler/go-trainloop/callbacks"
)

// EpochFunc runs one epoch of training and returns the metrics it produced.
type EpochFunc func(epoch int) (callbacks.Logs, error)

// LoopConfig holds configuration for the training loop
type LoopConfig struct {
	Epochs  int  // total number of epochs to run
	Verbose bool // print a summary line after every epoch
}

// Loop drives a training run and invokes callbacks at epoch boundaries.
// Execution is single-threaded; hooks run in-line in registration order.
type Loop struct {
	config    LoopConfig
	model     callbacks.Model
	runEpoch  EpochFunc
	callbacks []callbacks.Callback
	history   *History
	stoppedAt int
}

// NewLoop creates a training loop. The model may be nil when no registered
// callback saves weights.
func NewLoop(config LoopConfig, model callbacks.Model, runEpoch EpochFunc, cbs ...callbacks.Callback) *Loop {
	return &Loop{
		config:    config,
		model:     model,
		runEpoch:  runEpoch,
		callbacks: cbs,
		history:   NewHistory(),
	}
}

// Run executes the training loop. Epochs are numbered from 1. Every callback
// is invoked each epoch even when an earlier one already asked to stop; the
// loop halts once the epoch's hooks have all run. Any hook or epoch error is
// fatal.
func (l *Loop) Run() error {
	if l.runEpoch == nil {
		return fmt.Errorf("training loop requires an epoch function")
	}

	for epoch := 1; epoch <= l.config.Epochs; epoch++ {
		beginCtx := &callbacks.Context{Epoch: epoch, Model: l.model}
		stop, err := l.fireEpochBegin(beginCtx)
		if err != nil {
			return fmt.Errorf("epoch %d begin hook failed: %v", epoch, err)
		}
		if stop {
			l.stoppedAt = epoch
			return nil
		}

		logs, err := l.runEpoch(epoch)
		if err != nil {
			return fmt.Errorf("training epoch %d failed: %v", epoch, err)
		}
		l.history.Append(epoch, logs)

		endCtx := &callbacks.Context{Epoch: epoch, Logs: logs, Model: l.model}
		stop, err = l.fireEpochEnd(endCtx)
		if err != nil {
			return fmt.Errorf("epoch %d end hook failed: %v", epoch, err)
		}

		if l.config.Verbose {
			l.printEpochSummary(epoch, logs)
		}

		if stop {
			l.stoppedAt = epoch
			if l.config.Verbose {
				fmt.Printf("Training stopped by callback after %d epochs\n", epoch)
			}
			return nil
		}
	}

	return nil
}

// History returns the per-epoch metrics recorded so far.
func (l *Loop) History() *History {
	return l.history
}

// StoppedAt returns the epoch a callback stopped training on, 0 when the
// loop ran to completion.
func (l *Loop) StoppedAt() int {
	return l.stoppedAt
}

func (l *Loop) fireEpochBegin(ctx *callbacks.Context) (bool, error) {
	stop := false
	for _, cb := range l.callbacks {
		s, err := cb.OnEpochBegin(ctx)
		if err != nil {
			return false, err
		}
		if s {
			stop = true
		}
	}
	return stop, nil
}

func (l *Loop) fireEpochEnd(ctx *callbacks.Context) (bool, error) {
	stop := false
	for _, cb := range l.callbacks {
		s, err := cb.OnEpochEnd(ctx)
		if err != nil {
			return false, err
		}
		if s {
			stop = true
		}
	}
	return stop, nil
}

// printEpochSummary prints one line per epoch with metrics in stable order
func (l *Loop) printEpochSummary(epoch int, logs callbacks.Logs) {
	fmt.Printf("Epoch %d/%d:", epoch, l.config.Epochs)
	for _, name := range sortedMetricNames(logs) {
		fmt.Printf(" %s=%.4f", name, logs[name])
	}
	fmt.Println()
}

func sortedMetricNames(logs callbacks.Logs) []string {
	names := make([]string, 0, len(logs))
	for name := range logs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
