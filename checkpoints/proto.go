package checkpoints

import (
	"encoding/json"
	"fmt"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// savePB saves checkpoint as a binary protobuf Struct
func (cs *CheckpointSaver) savePB(checkpoint *Checkpoint, path string) error {
	ensureMetadata(checkpoint)

	msg, err := checkpointToStruct(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %v", err)
	}

	data, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %v", err)
	}

	return nil
}

// loadPB loads checkpoint from binary protobuf format
func (cs *CheckpointSaver) loadPB(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint file: %v", err)
	}

	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %v", err)
	}

	return structToCheckpoint(&msg)
}

// checkpointToStruct converts a checkpoint to a protobuf Struct. The JSON
// round trip reuses the checkpoint field tags so both formats agree on naming.
func checkpointToStruct(checkpoint *Checkpoint) (*structpb.Struct, error) {
	raw, err := json.Marshal(checkpoint)
	if err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	return structpb.NewStruct(fields)
}

// structToCheckpoint converts a protobuf Struct back into a checkpoint
func structToCheckpoint(msg *structpb.Struct) (*Checkpoint, error) {
	raw, err := json.Marshal(msg.AsMap())
	if err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %v", err)
	}

	var checkpoint Checkpoint
	if err := json.Unmarshal(raw, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %v", err)
	}

	return &checkpoint, nil
}
