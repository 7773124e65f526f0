//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/session/internal/domain"
	"example.com/session/pkg/events"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, pool := newTestStore(t, ctx)

	now := time.Date(2025, time.November, 3, 18, 0, 0, 0, time.UTC)
	ids := uuid.NewString

	session, err := domain.NewSession(domain.CreateSessionInput{
		OwnerID:     "owner-1",
		OwnerName:   "Alex",
		WorkoutType: "full_body",
		Activities: []domain.WorkoutActivity{
			{Name: "Warmup Walk", ActivityType: "cardio", Structure: domain.StructureFreeform, EstimatedSeconds: 300},
		},
		Configuration: domain.SessionConfiguration{ChatEnabled: true},
	}, now, ids)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, session, nil, nil))

	require.NoError(t, session.Start(now.Add(time.Minute)))
	session.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, store.Save(ctx, session, nil, nil))

	loaded, err := store.Load(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, session.ID, loaded.ID)
	require.Equal(t, domain.StateInProgress, loaded.State)
	require.NotNil(t, loaded.StartedAt)
	require.Len(t, loaded.Participants, 1)

	// The upsert must have replaced the row, not stacked a second one.
	var rows int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM session_snapshots WHERE session_id = $1`, session.ID).Scan(&rows))
	require.Equal(t, 1, rows)
}

func TestStoreLoadUnknownSession(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, ctx)

	_, err := store.Load(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStoreWritesOutboxAndArchiveAtomically(t *testing.T) {
	ctx := context.Background()
	store, pool := newTestStore(t, ctx)

	now := time.Date(2025, time.November, 3, 18, 0, 0, 0, time.UTC)
	ids := uuid.NewString

	session, err := domain.NewSession(domain.CreateSessionInput{
		OwnerID:     "owner-1",
		OwnerName:   "Alex",
		WorkoutType: "full_body",
		Activities: []domain.WorkoutActivity{
			{Name: "Warmup Walk", ActivityType: "cardio", Structure: domain.StructureFreeform, EstimatedSeconds: 300},
		},
	}, now, ids)
	require.NoError(t, err)
	require.NoError(t, session.Start(now))
	_, err = session.CompleteActivity("owner-1", domain.ActivityPerformance{DurationSeconds: 290}, now.Add(5*time.Minute), ids)
	require.NoError(t, err)
	session.UpdatedAt = now.Add(5 * time.Minute)

	archive, err := domain.Archive(session, now.Add(5*time.Minute), ids)
	require.NoError(t, err)

	evts := []events.Event{
		events.ActivityCompleted{
			SessionID:       session.ID,
			UserID:          "owner-1",
			ActivityIndex:   0,
			ActivityType:    "cardio",
			DurationSeconds: 290,
			CompletedAt:     now.Add(5 * time.Minute),
		},
		events.WorkoutCompleted{
			SessionID:            session.ID,
			WorkoutID:            archive.ID,
			UserID:               archive.UserID,
			WorkoutType:          archive.WorkoutType,
			DurationSeconds:      archive.Performance.DurationSeconds,
			ActivitiesCompleted:  archive.Performance.ActivitiesCompleted,
			TotalActivities:      archive.Performance.TotalActivities,
			CompletionPercentage: archive.Performance.CompletionPercentage,
			RecordedAt:           archive.RecordedAt,
		},
	}

	require.NoError(t, store.Save(ctx, session, archive, evts))

	stored, err := store.GetCompletedWorkout(ctx, archive.ID)
	require.NoError(t, err)
	require.Equal(t, archive.UserID, stored.UserID)
	require.Equal(t, 1.0, stored.Performance.CompletionPercentage)

	rows, err := pool.Query(ctx,
		`SELECT event_type, topic, partition_key FROM outbox WHERE aggregate_id = $1 ORDER BY event_id`, session.ID)
	require.NoError(t, err)
	defer rows.Close()

	type outboxRow struct {
		eventType, topic, key string
	}
	var got []outboxRow
	for rows.Next() {
		var r outboxRow
		require.NoError(t, rows.Scan(&r.eventType, &r.topic, &r.key))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)
	require.Equal(t, "session.activity_completed", got[0].eventType)
	require.Equal(t, "session_events", got[0].topic)
	require.Equal(t, "session.workout_completed", got[1].eventType)
	require.Equal(t, "workout_completed", got[1].topic)
	require.Equal(t, "owner-1", got[1].key)

	// Saving the same snapshot again must not duplicate outbox rows.
	require.NoError(t, store.Save(ctx, session, archive, evts))
	var count int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1`, session.ID).Scan(&count))
	require.Equal(t, 2, count)
}

func newTestStore(t *testing.T, ctx context.Context) (*Store, *pgxpool.Pool) {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("sessions"),
		postgrescontainer.WithUsername("platform"),
		postgrescontainer.WithPassword("platform"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return NewStore(pool), pool
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
