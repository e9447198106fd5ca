package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"
)

const artifactVersion = 1

// Artifact is the on-disk form of a trained KNN. Columns and Normalization
// pin the feature layout the model was trained on so a server cannot load
// a model built for a different schema.
type Artifact struct {
	Version       int         `json:"version"`
	CreatedAt     time.Time   `json:"created_at"`
	Columns       []string    `json:"columns"`
	Normalization string      `json:"normalization"`
	K             int         `json:"k"`
	Classes       int         `json:"classes"`
	X             [][]float64 `json:"x"`
	Y             []int       `json:"y"`
}

// NewArtifact snapshots a fitted model.
func NewArtifact(m *KNN, columns []string, normalization string) (*Artifact, error) {
	if len(m.X) == 0 {
		return nil, ErrNotFitted
	}
	if len(columns) != m.Width() {
		return nil, fmt.Errorf("classifier: %d column names for %d features", len(columns), m.Width())
	}
	return &Artifact{
		Version:       artifactVersion,
		CreatedAt:     time.Now().UTC(),
		Columns:       slices.Clone(columns),
		Normalization: normalization,
		K:             m.K,
		Classes:       m.Classes,
		X:             m.X,
		Y:             m.y,
	}, nil
}

// Model rebuilds the KNN, checking it against the expected columns.
func (a *Artifact) Model(columns []string) (*KNN, error) {
	if a.Version != artifactVersion {
		return nil, fmt.Errorf("classifier: unsupported artifact version %d", a.Version)
	}
	if !slices.Equal(a.Columns, columns) {
		return nil, fmt.Errorf("classifier: artifact columns %v do not match schema %v", a.Columns, columns)
	}
	m := NewKNN(a.K, a.Classes)
	if err := m.Fit(a.X, a.Y); err != nil {
		return nil, fmt.Errorf("classifier: artifact: %w", err)
	}
	if m.Width() != len(columns) {
		return nil, fmt.Errorf("classifier: artifact rows have %d features, want %d", m.Width(), len(columns))
	}
	return m, nil
}

// Save writes the artifact as JSON.
func (a *Artifact) Save(path string) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads an artifact written by Save.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return &a, nil
}
