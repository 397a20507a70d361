package callbacks

import "math"

// ReduceLROnPlateau lowers a learning rate when the monitored metric has
// stopped improving. It never asks the loop to stop; the training driver
// reads the current rate through LR before each epoch.
type ReduceLROnPlateau struct {
	Factor    float64 // multiplicative factor applied on plateau
	Patience  int     // non-improving epochs tolerated before reducing
	Threshold float64 // minimum change counted as improvement
	Mode      string  // "min" or "max"

	monitor    string
	currentLR  float64
	bestMetric float64
	badEpochs  int
	seen       bool
}

// NewReduceLROnPlateau creates a plateau hook monitoring the given metric at
// the given initial learning rate. Out-of-range values fall back to the usual
// defaults: factor 0.1, patience 10, threshold 1e-4, mode "min". An empty
// monitor falls back to "val_loss".
func NewReduceLROnPlateau(monitor string, initialLR, factor float64, patience int, threshold float64, mode string) *ReduceLROnPlateau {
	if monitor == "" {
		monitor = "val_loss"
	}
	if factor <= 0 || factor >= 1 {
		factor = 0.1
	}
	if patience <= 0 {
		patience = 10
	}
	if threshold < 0 {
		threshold = 1e-4
	}
	if mode != ModeMin && mode != ModeMax {
		mode = ModeMin
	}

	return &ReduceLROnPlateau{
		Factor:    factor,
		Patience:  patience,
		Threshold: threshold,
		Mode:      mode,
		monitor:   monitor,
		currentLR: initialLR,
	}
}

// OnEpochBegin never stops training.
func (s *ReduceLROnPlateau) OnEpochBegin(ctx *Context) (bool, error) {
	return false, nil
}

// OnEpochEnd updates the plateau state from the monitored metric. The first
// observed value becomes the baseline. A missing metric leaves the state
// untouched.
func (s *ReduceLROnPlateau) OnEpochEnd(ctx *Context) (bool, error) {
	metric, ok := ctx.Logs[s.monitor]
	if !ok || math.IsNaN(metric) {
		return false, nil
	}

	if !s.seen {
		s.bestMetric = metric
		s.seen = true
		return false, nil
	}

	improved := false
	if s.Mode == ModeMin {
		improved = metric < s.bestMetric-s.Threshold
	} else {
		improved = metric > s.bestMetric+s.Threshold
	}

	if improved {
		s.bestMetric = metric
		s.badEpochs = 0
	} else {
		s.badEpochs++
		if s.badEpochs >= s.Patience {
			s.currentLR *= s.Factor
			s.badEpochs = 0
		}
	}

	return false, nil
}

// LR returns the current learning rate.
func (s *ReduceLROnPlateau) LR() float64 {
	return s.currentLR
}
