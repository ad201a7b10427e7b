package rebalance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Incident records a position whose liquidity was withdrawn but not yet
// resupplied. There is no automatic rollback: the wallet holds the withdrawn
// tokens, and the incident stays on disk until an operator resolves it. While
// an incident is pending the engine refuses to act on that position again.
type Incident struct {
	PositionID string   `json:"position_id"`
	Stage      string   `json:"stage"`
	TxHashes   []string `json:"tx_hashes,omitempty"`
	UpdatedAt  string   `json:"updated_at"`
}

// IncidentStore persists pending incidents to disk, one file per engine.
type IncidentStore struct {
	path    string
	enabled bool
}

func NewIncidentStore(path string, enabled bool) *IncidentStore {
	return &IncidentStore{path: path, enabled: enabled}
}

func (s *IncidentStore) Load() (map[string]Incident, error) {
	if !s.enabled {
		return map[string]Incident{}, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Incident{}, nil
		}
		return nil, fmt.Errorf("read incidents: %w", err)
	}

	incidents := map[string]Incident{}
	if err := json.Unmarshal(data, &incidents); err != nil {
		return nil, fmt.Errorf("parse incidents: %w", err)
	}
	return incidents, nil
}

// Record upserts an incident for a position.
func (s *IncidentStore) Record(incident Incident) error {
	if !s.enabled {
		return nil
	}
	incidents, err := s.Load()
	if err != nil {
		return err
	}
	incident.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	incidents[incident.PositionID] = incident
	return s.save(incidents)
}

// Resolve removes the incident for a position, if any.
func (s *IncidentStore) Resolve(positionID string) error {
	if !s.enabled {
		return nil
	}
	incidents, err := s.Load()
	if err != nil {
		return err
	}
	if _, ok := incidents[positionID]; !ok {
		return nil
	}
	delete(incidents, positionID)
	return s.save(incidents)
}

func (s *IncidentStore) save(incidents map[string]Incident) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create incident dir: %w", err)
		}
	}

	data, err := json.Marshal(incidents)
	if err != nil {
		return fmt.Errorf("marshal incidents: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write incidents tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename incidents: %w", err)
	}
	return nil
}
