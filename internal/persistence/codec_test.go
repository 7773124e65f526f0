package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/session/internal/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	startedAt := time.Date(2025, time.November, 3, 18, 0, 0, 0, time.UTC)
	ids := func() func() string {
		n := 0
		return func() string {
			n++
			return "id"
		}
	}()

	session, err := domain.NewSession(domain.CreateSessionInput{
		OwnerID:     "owner-1",
		OwnerName:   "Alex",
		WorkoutType: "full_body",
		Activities: []domain.WorkoutActivity{{
			Name:         "Warmup Walk",
			ActivityType: "cardio",
			Structure:    domain.StructureFreeform,
		}},
		Configuration: domain.SessionConfiguration{ChatEnabled: true},
	}, startedAt, ids)
	require.NoError(t, err)
	require.NoError(t, session.Start(startedAt))
	require.NoError(t, session.Pause(startedAt.Add(30*time.Second)))

	data, err := EncodeSnapshot(session)
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, session.ID, decoded.ID)
	require.Equal(t, domain.StatePaused, decoded.State)
	require.Equal(t, session.CurrentActivityIndex, decoded.CurrentActivityIndex)
	require.Len(t, decoded.Participants, 1)
	require.Equal(t, "owner-1", decoded.Participants[0].UserID)
	require.NotNil(t, decoded.PausedAt)
	require.True(t, decoded.PausedAt.Equal(startedAt.Add(30*time.Second)))
	require.NotNil(t, decoded.LiveProgress)
	require.Equal(t, session.LiveProgress.Kind, decoded.LiveProgress.Kind)
}

func TestDecodeSnapshotRejectsUnknownVersion(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`{"schema_version":99,"session":{}}`))
	require.ErrorContains(t, err, "unsupported snapshot schema version 99")
}

func TestDecodeSnapshotRejectsMalformedPayload(t *testing.T) {
	_, err := DecodeSnapshot([]byte(`not json`))
	require.Error(t, err)
}
