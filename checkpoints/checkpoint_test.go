package checkpoints

import (
	"path/filepath"
	"testing"
	"time"
)

func testCheckpoint() *Checkpoint {
	checkpoint := &Checkpoint{
		Weights: []WeightTensor{
			{
				Name:  "dense1.weight",
				Shape: []int{4, 8},
				Data:  make([]float32, 32),
				Layer: "dense1",
				Type:  "weight",
			},
			{
				Name:  "dense1.bias",
				Shape: []int{8},
				Data:  make([]float32, 8),
				Layer: "dense1",
				Type:  "bias",
			},
		},
		TrainingState: TrainingState{
			Epoch:   10,
			Monitor: "val_loss",
			Value:   0.5,
		},
		Metadata: CheckpointMetadata{
			Version:     "1.0.0",
			Framework:   "go-trainloop",
			CreatedAt:   time.Now(),
			Description: "Test checkpoint",
			Tags:        []string{"test", "mnist"},
		},
	}

	// Fill test data
	for i := range checkpoint.Weights[0].Data {
		checkpoint.Weights[0].Data[i] = float32(i%100) * 0.01
	}
	for i := range checkpoint.Weights[1].Data {
		checkpoint.Weights[1].Data[i] = float32(i%10) * 0.1
	}

	return checkpoint
}

func verifyRoundTrip(t *testing.T, original, loaded *Checkpoint) {
	t.Helper()

	if loaded.TrainingState.Epoch != original.TrainingState.Epoch {
		t.Errorf("Epoch mismatch: expected %d, got %d",
			original.TrainingState.Epoch, loaded.TrainingState.Epoch)
	}
	if loaded.TrainingState.Monitor != original.TrainingState.Monitor {
		t.Errorf("Monitor mismatch: expected %s, got %s",
			original.TrainingState.Monitor, loaded.TrainingState.Monitor)
	}
	if loaded.TrainingState.Value != original.TrainingState.Value {
		t.Errorf("Value mismatch: expected %f, got %f",
			original.TrainingState.Value, loaded.TrainingState.Value)
	}

	if len(loaded.Weights) != len(original.Weights) {
		t.Fatalf("Weight count mismatch: expected %d, got %d",
			len(original.Weights), len(loaded.Weights))
	}

	for i, weight := range original.Weights {
		got := loaded.Weights[i]
		if got.Name != weight.Name {
			t.Errorf("Weight %d name mismatch: expected %s, got %s", i, weight.Name, got.Name)
		}
		if len(got.Shape) != len(weight.Shape) {
			t.Fatalf("Weight %s shape mismatch: expected %v, got %v", weight.Name, weight.Shape, got.Shape)
		}
		for j, dim := range weight.Shape {
			if got.Shape[j] != dim {
				t.Errorf("Weight %s dimension %d mismatch: expected %d, got %d",
					weight.Name, j, dim, got.Shape[j])
			}
		}
		if len(got.Data) != len(weight.Data) {
			t.Fatalf("Weight %s data length mismatch: expected %d, got %d",
				weight.Name, len(weight.Data), len(got.Data))
		}
		for j, value := range weight.Data {
			if got.Data[j] != value {
				t.Errorf("Weight %s data[%d] mismatch: expected %f, got %f",
					weight.Name, j, value, got.Data[j])
				break
			}
		}
	}

	if loaded.Metadata.Framework != original.Metadata.Framework {
		t.Errorf("Framework mismatch: expected %s, got %s",
			original.Metadata.Framework, loaded.Metadata.Framework)
	}
}

func TestCheckpointJSONSaveLoad(t *testing.T) {
	checkpoint := testCheckpoint()

	saver := NewCheckpointSaver(FormatJSON)
	path := filepath.Join(t.TempDir(), "test_checkpoint.json")

	if err := saver.SaveCheckpoint(checkpoint, path); err != nil {
		t.Fatalf("Failed to save JSON checkpoint: %v", err)
	}

	loaded, err := saver.LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("Failed to load JSON checkpoint: %v", err)
	}

	verifyRoundTrip(t, checkpoint, loaded)
}

func TestCheckpointPBSaveLoad(t *testing.T) {
	checkpoint := testCheckpoint()

	saver := NewCheckpointSaver(FormatPB)
	path := filepath.Join(t.TempDir(), "test_checkpoint.pb")

	if err := saver.SaveCheckpoint(checkpoint, path); err != nil {
		t.Fatalf("Failed to save PB checkpoint: %v", err)
	}

	loaded, err := saver.LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("Failed to load PB checkpoint: %v", err)
	}

	verifyRoundTrip(t, checkpoint, loaded)
}

func TestCheckpointMetadataDefaults(t *testing.T) {
	checkpoint := testCheckpoint()
	checkpoint.Metadata = CheckpointMetadata{}

	saver := NewCheckpointSaver(FormatJSON)
	path := filepath.Join(t.TempDir(), "defaults.json")

	if err := saver.SaveCheckpoint(checkpoint, path); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	loaded, err := saver.LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("Failed to load checkpoint: %v", err)
	}

	if loaded.Metadata.Framework != "go-trainloop" {
		t.Errorf("Expected default framework go-trainloop, got %s", loaded.Metadata.Framework)
	}
	if loaded.Metadata.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestCheckpointFormatString(t *testing.T) {
	tests := []struct {
		format   CheckpointFormat
		expected string
	}{
		{FormatJSON, "JSON"},
		{FormatPB, "PB"},
		{CheckpointFormat(99), "Unknown"},
	}

	for _, tt := range tests {
		if name := tt.format.String(); name != tt.expected {
			t.Errorf("Expected format name %s, got %s", tt.expected, name)
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	saver := NewCheckpointSaver(CheckpointFormat(99))

	if err := saver.SaveCheckpoint(testCheckpoint(), "nowhere.bin"); err == nil {
		t.Error("Expected error saving with unsupported format")
	}
	if _, err := saver.LoadCheckpoint("nowhere.bin"); err == nil {
		t.Error("Expected error loading with unsupported format")
	}
}

func TestLoadMissingCheckpoint(t *testing.T) {
	saver := NewCheckpointSaver(FormatJSON)

	if _, err := saver.LoadCheckpoint(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error loading a missing checkpoint file")
	}
}
