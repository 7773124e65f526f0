// Package persistence contains helpers shared by snapshot store implementations.
package persistence

import (
	"encoding/json"
	"fmt"

	"example.com/session/internal/domain"
)

// SnapshotSchemaVersion is bumped whenever the serialized session layout
// changes incompatibly. Loaders reject versions they do not understand.
const SnapshotSchemaVersion = 1

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Session       json.RawMessage `json:"session"`
}

// EncodeSnapshot serialises the session into a versioned snapshot record.
func EncodeSnapshot(session *domain.WorkoutSession) ([]byte, error) {
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		SchemaVersion: SnapshotSchemaVersion,
		Session:       raw,
	})
}

// DecodeSnapshot parses a snapshot record, detecting schema evolution on load.
func DecodeSnapshot(data []byte) (*domain.WorkoutSession, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.SchemaVersion != SnapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema version %d", env.SchemaVersion)
	}
	var session domain.WorkoutSession
	if err := json.Unmarshal(env.Session, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
