// Package postgres provides the durable snapshot store for session actors.
// Each command's post-mutation snapshot, the archived workout record (on the
// completed transition), and the resulting outbox events are written in a
// single transaction, so the durable state never trails a published event.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/session/internal/domain"
	"example.com/session/internal/persistence"
	"example.com/session/pkg/events"
)

// Store is the pgx-backed SnapshotStore implementation.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Save upserts the session snapshot and appends outbox rows atomically.
func (s *Store) Save(ctx context.Context, session *domain.WorkoutSession, archive *domain.CompletedWorkout, evts []events.Event) error {
	snapshot, err := persistence.EncodeSnapshot(session)
	if err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const upsert = `INSERT INTO session_snapshots (session_id, owner_id, state, schema_version, snapshot, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (session_id) DO UPDATE
        SET state = EXCLUDED.state,
            schema_version = EXCLUDED.schema_version,
            snapshot = EXCLUDED.snapshot,
            updated_at = EXCLUDED.updated_at`

	if _, err = tx.Exec(ctx, upsert,
		session.ID,
		session.OwnerID,
		string(session.State),
		persistence.SnapshotSchemaVersion,
		snapshot,
		session.CreatedAt,
		session.UpdatedAt,
	); err != nil {
		return err
	}

	if archive != nil {
		if err = s.insertWorkout(ctx, tx, session.ID, archive); err != nil {
			return err
		}
	}

	for i, evt := range evts {
		if err = s.insertOutbox(ctx, tx, session, evt, i); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) insertWorkout(ctx context.Context, tx pgx.Tx, sessionID string, record *domain.CompletedWorkout) error {
	body, err := json.Marshal(record)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO completed_workouts (workout_id, session_id, user_id, workout_type, record, recorded_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (workout_id) DO NOTHING`

	_, err = tx.Exec(ctx, stmt,
		record.ID,
		sessionID,
		record.UserID,
		record.WorkoutType,
		body,
		record.RecordedAt,
	)
	return err
}

func (s *Store) insertOutbox(ctx context.Context, tx pgx.Tx, session *domain.WorkoutSession, evt events.Event, seq int) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[evt.EventType()]
	if !ok {
		return fmt.Errorf("unknown event type: %s", evt.EventType())
	}

	dedupeKey := fmt.Sprintf("%s:%s:%d:%d", session.ID, evt.EventType(), session.UpdatedAt.UnixNano(), seq)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = tx.Exec(ctx, stmt,
		"session",
		session.ID,
		evt.EventType(),
		meta.Topic,
		meta.SchemaSubject,
		evt.Key(),
		body,
		dedupeKey,
	)
	return err
}

// Load reads the last durable snapshot for a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.WorkoutSession, error) {
	const query = `SELECT snapshot FROM session_snapshots WHERE session_id = $1`

	var snapshot []byte
	if err := s.pool.QueryRow(ctx, query, sessionID).Scan(&snapshot); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return persistence.DecodeSnapshot(snapshot)
}

// GetCompletedWorkout reads an archived workout record.
func (s *Store) GetCompletedWorkout(ctx context.Context, workoutID string) (*domain.CompletedWorkout, error) {
	const query = `SELECT record FROM completed_workouts WHERE workout_id = $1`

	var body []byte
	if err := s.pool.QueryRow(ctx, query, workoutID).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	var record domain.CompletedWorkout
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"session.participant_joined": {Topic: "session_events", SchemaSubject: "session_events-value"},
	"session.participant_left":   {Topic: "session_events", SchemaSubject: "session_events-value"},
	"session.activity_completed": {Topic: "session_events", SchemaSubject: "session_events-value"},
	"session.paused":             {Topic: "session_events", SchemaSubject: "session_events-value"},
	"session.resumed":            {Topic: "session_events", SchemaSubject: "session_events-value"},
	"session.abandoned":          {Topic: "session_events", SchemaSubject: "session_events-value"},
	"session.workout_completed":  {Topic: "workout_completed", SchemaSubject: "workout_completed-value"},
}
