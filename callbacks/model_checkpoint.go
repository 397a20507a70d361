package callbacks

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/tsawler/go-trainloop/checkpoints"
)

// Monitoring modes for ModelCheckpoint.
const (
	ModeMin = "min" // save when the monitored value decreases
	ModeMax = "max" // save when the monitored value increases
)

// ModelCheckpointConfig configures checkpoint saving behavior.
type ModelCheckpointConfig struct {
	JobID        string                       // run identifier used in saved filenames
	SaveDir      string                       // directory checkpoints are written to
	Monitor      string                       // metric to monitor, defaults to "val_loss"
	Mode         string                       // "min" or "max", defaults to "min"
	SaveBestOnly bool                         // overwrite a single file on improvement only
	Format       checkpoints.CheckpointFormat // serialization format for saved weights
}

// DefaultModelCheckpointConfig returns a best-only, min-mode configuration
// monitoring validation loss.
func DefaultModelCheckpointConfig(jobID, saveDir string) ModelCheckpointConfig {
	return ModelCheckpointConfig{
		JobID:        jobID,
		SaveDir:      saveDir,
		Monitor:      "val_loss",
		Mode:         ModeMin,
		SaveBestOnly: true,
		Format:       checkpoints.FormatJSON,
	}
}

// ModelCheckpoint persists model weights at the end of each epoch, either on
// every epoch or only when the monitored metric improves. It never asks the
// loop to stop.
//
// Files are written to <SaveDir>/<JobID>.pth when SaveBestOnly is set
// (overwritten on every improvement) and to <SaveDir>/<JobID>_epoch_<N>.pth
// otherwise (one file per epoch).
type ModelCheckpoint struct {
	config    ModelCheckpointConfig
	saver     *checkpoints.CheckpointSaver
	best      float64
	bestEpoch int
}

// NewModelCheckpoint creates a checkpoint hook. An empty monitor falls back
// to "val_loss" and an unknown mode to "min".
func NewModelCheckpoint(config ModelCheckpointConfig) *ModelCheckpoint {
	if config.Monitor == "" {
		config.Monitor = "val_loss"
	}
	if config.Mode != ModeMin && config.Mode != ModeMax {
		config.Mode = ModeMin
	}

	best := math.Inf(1)
	if config.Mode == ModeMax {
		best = math.Inf(-1)
	}

	return &ModelCheckpoint{
		config: config,
		saver:  checkpoints.NewCheckpointSaver(config.Format),
		best:   best,
	}
}

// OnEpochBegin never stops training.
func (mc *ModelCheckpoint) OnEpochBegin(ctx *Context) (bool, error) {
	return false, nil
}

// OnEpochEnd saves the model according to the configured policy. At epoch 1 a
// monitored metric absent from the logs is replaced by the closest lexical
// match among the available keys; with no keys at all this is a configuration
// error. In later epochs a missing metric reads as positive infinity.
func (mc *ModelCheckpoint) OnEpochEnd(ctx *Context) (bool, error) {
	if ctx.Epoch == 1 {
		if _, ok := ctx.Logs[mc.config.Monitor]; !ok {
			match, err := closestMetric(mc.config.Monitor, ctx.Logs)
			if err != nil {
				return false, err
			}
			mc.config.Monitor = match
		}
	}

	current := math.Inf(1)
	if v, ok := ctx.Logs[mc.config.Monitor]; ok {
		current = v
	}

	if mc.config.SaveBestOnly {
		improved := (mc.config.Mode == ModeMin && current < mc.best) ||
			(mc.config.Mode == ModeMax && current > mc.best)
		if !improved {
			return false, nil
		}
		mc.best = current
		mc.bestEpoch = ctx.Epoch

		path := filepath.Join(mc.config.SaveDir, mc.config.JobID+".pth")
		return false, mc.save(ctx, path)
	}

	// Save every epoch, one file per epoch.
	filename := fmt.Sprintf("%s_epoch_%d.pth", mc.config.JobID, ctx.Epoch)
	return false, mc.save(ctx, filepath.Join(mc.config.SaveDir, filename))
}

// Monitor returns the metric currently monitored, after any epoch-1 fallback.
func (mc *ModelCheckpoint) Monitor() string {
	return mc.config.Monitor
}

// BestEpoch returns the epoch the best value was saved on, 0 if none yet.
func (mc *ModelCheckpoint) BestEpoch() int {
	return mc.bestEpoch
}

func (mc *ModelCheckpoint) save(ctx *Context, path string) error {
	if ctx.Model == nil {
		return fmt.Errorf("model checkpoint at epoch %d requires a model, got nil", ctx.Epoch)
	}

	if err := os.MkdirAll(mc.config.SaveDir, 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %v", err)
	}

	state := checkpoints.TrainingState{
		Epoch:   ctx.Epoch,
		Monitor: mc.config.Monitor,
	}
	if v, ok := ctx.Logs[mc.config.Monitor]; ok {
		state.Value = v
	}

	checkpoint := &checkpoints.Checkpoint{
		Weights:       ctx.Model.StateDict(),
		TrainingState: state,
		Metadata: checkpoints.CheckpointMetadata{
			Description: fmt.Sprintf("Checkpoint at epoch %d", ctx.Epoch),
			Tags:        []string{mc.config.JobID, fmt.Sprintf("epoch_%d", ctx.Epoch)},
		},
	}

	if err := mc.saver.SaveCheckpoint(checkpoint, path); err != nil {
		return fmt.Errorf("failed to save checkpoint: %v", err)
	}

	return nil
}

// closestMetric returns the available metric name with the smallest edit
// distance to the requested one. Ties resolve to the lexicographically
// smallest candidate.
func closestMetric(monitor string, logs Logs) (string, error) {
	if len(logs) == 0 {
		return "", fmt.Errorf("monitor metric %q not found in logs and no metrics are available", monitor)
	}

	names := make([]string, 0, len(logs))
	for name := range logs {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	bestDist := levenshtein.ComputeDistance(monitor, best)
	for _, name := range names[1:] {
		if d := levenshtein.ComputeDistance(monitor, name); d < bestDist {
			best = name
			bestDist = d
		}
	}

	return best, nil
}
