package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestArchiveFullyCompletedSession(t *testing.T) {
	session := newTestSession(t, SessionConfiguration{})
	ids := sequentialIDs()
	require.NoError(t, session.Start(testStart))

	now := testStart
	for i := 0; i < 3; i++ {
		now = now.Add(5 * time.Minute)
		_, err := session.CompleteActivity("owner-1", ActivityPerformance{DurationSeconds: 300}, now, ids)
		require.NoError(t, err)
	}

	record, err := Archive(session, now, func() string { return "workout-1" })
	require.NoError(t, err)

	require.Equal(t, "workout-1", record.ID)
	require.Equal(t, "owner-1", record.UserID)
	require.Equal(t, "full_body", record.WorkoutType)
	require.Equal(t, 1.0, record.Performance.CompletionPercentage)
	require.Equal(t, 3, record.Performance.ActivitiesCompleted)
	require.Equal(t, 3, record.Performance.TotalActivities)
	require.Equal(t, 15*60, record.Performance.DurationSeconds)
	require.Equal(t, VerificationUnverified, record.Verification.State)
	require.Empty(t, record.MultiplayerSessionID)

	// Per-activity entries match completedActivities in order.
	require.Len(t, record.Performance.Activities, 3)
	for i := range record.Performance.Activities {
		require.Equal(t, session.CompletedActivities[i], record.Performance.Activities[i])
	}
}

func TestArchiveEarlyCompletionReportsPartialPercentage(t *testing.T) {
	session := newTestSession(t, SessionConfiguration{})
	ids := sequentialIDs()
	require.NoError(t, session.Start(testStart))

	_, err := session.CompleteActivity("owner-1", ActivityPerformance{DurationSeconds: 300}, testStart.Add(5*time.Minute), ids)
	require.NoError(t, err)
	require.NoError(t, session.CompleteSession(testStart.Add(6*time.Minute)))

	record, err := Archive(session, testStart.Add(6*time.Minute), sequentialIDs())
	require.NoError(t, err)
	require.InDelta(t, 1.0/3.0, record.Performance.CompletionPercentage, 1e-9)
	require.Equal(t, 1, record.Performance.ActivitiesCompleted)
}

func TestArchiveExcludesPausedTimeFromDuration(t *testing.T) {
	session := newTestSession(t, SessionConfiguration{})
	require.NoError(t, session.Start(testStart))
	require.NoError(t, session.Pause(testStart.Add(100*time.Second)))
	require.NoError(t, session.Resume(testStart.Add(130*time.Second)))
	require.NoError(t, session.CompleteSession(testStart.Add(190*time.Second)))

	record, err := Archive(session, testStart.Add(5*time.Minute), sequentialIDs())
	require.NoError(t, err)
	require.Equal(t, 160, record.Performance.DurationSeconds)
	require.Equal(t, 30, record.Performance.TotalPausedSeconds)
}

func TestArchiveMultiplayerSessionKeepsBackReference(t *testing.T) {
	session := newTestSession(t, multiplayerConfig(4))
	require.NoError(t, session.Start(testStart))
	require.NoError(t, session.CompleteSession(testStart.Add(time.Minute)))

	record, err := Archive(session, testStart.Add(time.Minute), sequentialIDs())
	require.NoError(t, err)
	require.Equal(t, session.ID, record.MultiplayerSessionID)
}

func TestArchiveRejectsNonCompletedStates(t *testing.T) {
	inProgress := newTestSession(t, SessionConfiguration{})
	require.NoError(t, inProgress.Start(testStart))

	abandoned := newTestSession(t, SessionConfiguration{})
	require.NoError(t, abandoned.Start(testStart))
	require.NoError(t, abandoned.Abandon("injury", testStart.Add(time.Minute)))

	for _, session := range []*WorkoutSession{inProgress, abandoned} {
		_, err := Archive(session, testStart.Add(time.Hour), sequentialIDs())
		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		require.Equal(t, "archive", invalid.Attempted)
	}
}
