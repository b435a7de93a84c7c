// Package manifest records how each (dataset, tool) report was produced.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ccsbench/ccsbench/internal/utils"
	"github.com/google/uuid"
)

const (
	manifestFileName = "run.json"
)

// Manifest is persisted next to the report outputs of one (dataset, tool) pair.
type Manifest struct {
	RunID          string    `json:"run_id"`
	Dataset        string    `json:"dataset"`
	Tool           string    `json:"tool"`
	DatasetFile    string    `json:"dataset_file"`
	PredictionFile string    `json:"prediction_file"`
	Command        []string  `json:"command"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`

	// Not serialized: directory holding run.json
	dir string `json:"-"`
}

// Run statuses.
const (
	StatusRunning = "running"
	StatusOK      = "ok"
	StatusFailed  = "failed"
)

// New starts an in-memory manifest with a fresh run id. Call Save() to persist.
func New(dir, dataset, tool string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Dataset:   dataset,
		Tool:      tool,
		Status:    StatusRunning,
		StartedAt: time.Now(),
		dir:       dir,
	}
}

// Path returns the manifest file path inside dir.
func Path(dir string) string { return filepath.Join(dir, manifestFileName) }

// Load reads run.json from dir.
func Load(dir string) (*Manifest, error) {
	path := Path(dir)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.dir = dir
	return &m, nil
}

// Dir returns the on-disk directory of the manifest.
func (m *Manifest) Dir() string { return m.dir }

// Finish stamps the outcome of the run.
func (m *Manifest) Finish(runErr error) {
	m.FinishedAt = time.Now()
	if runErr != nil {
		m.Status = StatusFailed
		m.Error = runErr.Error()
		return
	}
	m.Status = StatusOK
	m.Error = ""
}

// Save writes run.json using atomic write.
func (m *Manifest) Save() error {
	if m.dir == "" {
		return errors.New("manifest directory not set")
	}
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(Path(m.dir), data)
}
