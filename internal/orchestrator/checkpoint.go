package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lox/cfrengine/internal/fileutil"
)

func readFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("orchestrator: failed to read checkpoint: %w", err)
	}
	return data, nil
}

// Checkpoint is the small, restartable run state persisted alongside the
// regret/strategy backends: the iteration counter each agent should
// resume from. The tables themselves are durable independently (the
// leveldb backend persists on every delta); this file only needs to
// record how far training had progressed.
type Checkpoint struct {
	Iteration int    `json:"iteration"`
	Config    string `json:"config_digest"`
}

// SaveCheckpoint atomically writes a checkpoint to path, grounded on the
// teacher's fileutil.WriteFileAtomic: readers never observe a partially
// written checkpoint file.
func SaveCheckpoint(path string, cp Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("orchestrator: failed to marshal checkpoint: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// LoadCheckpoint reads a previously saved checkpoint. A missing file is
// not an error: it simply means this is a fresh run starting at
// iteration zero.
func LoadCheckpoint(path string) (Checkpoint, bool, error) {
	data, err := readFileIfExists(path)
	if err != nil {
		return Checkpoint{}, false, err
	}
	if data == nil {
		return Checkpoint{}, false, nil
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("orchestrator: failed to unmarshal checkpoint: %w", err)
	}
	return cp, true, nil
}
