package callbacks

import "math"

// EarlyStopping stops training when validation loss does not improve for a
// configured number of consecutive epochs. It monitors the "val_loss" key; a
// missing key reads as positive infinity and therefore never improves.
type EarlyStopping struct {
	Patience int     // non-improving epochs tolerated before stopping
	Delta    float64 // minimum change in the monitored value to count as improvement

	monitor   string
	counter   int
	bestLoss  float64
	bestEpoch int
}

// NewEarlyStopping creates an early stopping hook. A non-positive patience
// falls back to 10 and a negative delta to 0.
func NewEarlyStopping(patience int, delta float64) *EarlyStopping {
	if patience <= 0 {
		patience = 10
	}
	if delta < 0 {
		delta = 0
	}
	return &EarlyStopping{
		Patience: patience,
		Delta:    delta,
		monitor:  "val_loss",
		bestLoss: math.Inf(1),
	}
}

// OnEpochBegin never stops training.
func (es *EarlyStopping) OnEpochBegin(ctx *Context) (bool, error) {
	return false, nil
}

// OnEpochEnd checks the monitored value against the best seen so far.
// A value below best-delta resets the counter; a value above best+delta
// counts against patience. Values inside the delta band leave the counter
// untouched.
func (es *EarlyStopping) OnEpochEnd(ctx *Context) (bool, error) {
	loss := math.Inf(1)
	if v, ok := ctx.Logs[es.monitor]; ok {
		loss = v
	}

	switch {
	case loss < es.bestLoss-es.Delta:
		es.bestLoss = loss
		es.bestEpoch = ctx.Epoch
		es.counter = 0
	case loss > es.bestLoss+es.Delta:
		es.counter++
		if es.counter >= es.Patience {
			return true, nil
		}
	}

	return false, nil
}

// BestLoss returns the best monitored value seen so far.
func (es *EarlyStopping) BestLoss() float64 {
	return es.bestLoss
}

// BestEpoch returns the epoch the best value was recorded on, 0 if none yet.
func (es *EarlyStopping) BestEpoch() int {
	return es.bestEpoch
}
