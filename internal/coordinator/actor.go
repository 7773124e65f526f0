// Package coordinator owns the live lifecycle of workout sessions. Each
// session is driven by a single-threaded actor: all commands are processed
// strictly one at a time, in arrival order, so the domain invariants can be
// checked sequentially without locks.
package coordinator

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"example.com/session/internal/domain"
	"example.com/session/internal/observability"
	"example.com/session/pkg/events"
)

// ErrActorStopped is returned for commands sent to an actor that is no
// longer running.
var ErrActorStopped = errors.New("session actor stopped")

// SnapshotStore persists the post-command snapshot, the archived workout (on
// the completed transition), and the resulting events in one atomic write.
// A command is not acknowledged until Save returns.
type SnapshotStore interface {
	Save(ctx context.Context, session *domain.WorkoutSession, archive *domain.CompletedWorkout, evts []events.Event) error
	Load(ctx context.Context, sessionID string) (*domain.WorkoutSession, error)
}

type options struct {
	now    func() time.Time
	newID  func() string
	logger *log.Logger
	buffer int
}

// Option configures optional behaviour for actors and the manager.
type Option func(*options)

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the id generator, for deterministic tests.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithLogger overrides the logger used to report persistence failures.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCommandBuffer sets the actor's inbound command channel capacity.
func WithCommandBuffer(n int) Option {
	return func(o *options) { o.buffer = n }
}

func buildOptions(opts []Option) options {
	o := options{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.New(log.Writer(), "[coordinator] ", log.LstdFlags),
		buffer: 16,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Actor is the exclusive owner of one session's in-memory snapshot.
type Actor struct {
	session  *domain.WorkoutSession
	store    SnapshotStore
	commands chan command
	done     chan struct{}
	opts     options
}

// NewActor wraps an existing session snapshot in an actor. Call Run to begin
// processing commands.
func NewActor(session *domain.WorkoutSession, store SnapshotStore, opts ...Option) *Actor {
	o := buildOptions(opts)
	return &Actor{
		session:  session,
		store:    store,
		commands: make(chan command, o.buffer),
		done:     make(chan struct{}),
		opts:     o,
	}
}

// SessionID returns the id of the owned session.
func (a *Actor) SessionID() string { return a.session.ID }

// Run processes commands until the context is cancelled. It must be called
// exactly once, in its own goroutine.
func (a *Actor) Run(ctx context.Context) {
	observability.ActorStarted()
	defer func() {
		observability.ActorStopped()
		close(a.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-a.commands:
			a.handle(ctx, cmd)
		}
	}
}

func (a *Actor) handle(ctx context.Context, cmd command) {
	start := time.Now()

	if cmd.kind == cmdView {
		cmd.reply <- result{view: a.session.Clone()}
		observability.RecordCommand(string(cmd.kind), "ok", time.Since(start))
		return
	}

	working := a.session.Clone()
	now := a.opts.now().UTC()

	evts, archived, err := a.apply(working, cmd, now)
	if err != nil {
		cmd.reply <- result{err: err}
		observability.RecordCommand(string(cmd.kind), "rejected", time.Since(start))
		return
	}

	working.UpdatedAt = now
	if err := a.store.Save(ctx, working, archived, evts); err != nil {
		// The in-memory snapshot stays behind the durable one, so a crash or
		// retry is observably equivalent to the command never having happened.
		a.opts.logger.Printf("session %s: snapshot write failed for %s: %v", working.ID, cmd.kind, err)
		cmd.reply <- result{err: err}
		observability.RecordCommand(string(cmd.kind), "persist_failed", time.Since(start))
		return
	}
	observability.RecordSnapshotPersisted(now)

	a.session = working
	cmd.reply <- result{view: a.session.Clone()}
	observability.RecordCommand(string(cmd.kind), "ok", time.Since(start))
}

// apply executes the command against the working copy and collects the
// outbound events. The working copy is discarded on error.
func (a *Actor) apply(working *domain.WorkoutSession, cmd command, now time.Time) ([]events.Event, *domain.CompletedWorkout, error) {
	var evts []events.Event
	completed := false

	switch cmd.kind {
	case cmdStart:
		if err := working.Start(now); err != nil {
			return nil, nil, err
		}

	case cmdPause:
		if err := working.Pause(now); err != nil {
			return nil, nil, err
		}
		evts = append(evts, events.SessionPaused{
			SessionID: working.ID,
			UserID:    cmd.userID,
			PausedAt:  now,
		})

	case cmdResume:
		if err := working.Resume(now); err != nil {
			return nil, nil, err
		}
		evts = append(evts, events.SessionResumed{
			SessionID:          working.ID,
			UserID:             cmd.userID,
			ResumedAt:          now,
			TotalPausedSeconds: working.TotalPausedSeconds,
		})

	case cmdCompleteActivity:
		index := working.CurrentActivityIndex
		done, err := working.CompleteActivity(cmd.userID, cmd.performance, now, a.opts.newID)
		if err != nil {
			return nil, nil, err
		}
		evts = append(evts, events.ActivityCompleted{
			SessionID:       working.ID,
			UserID:          cmd.userID,
			ActivityIndex:   index,
			ActivityType:    working.CompletedActivities[len(working.CompletedActivities)-1].ActivityType,
			DurationSeconds: cmd.performance.DurationSeconds,
			CompletedAt:     now,
		})
		completed = done

	case cmdCompleteSet:
		if err := working.CompleteSet(cmd.userID, cmd.reps, cmd.weightKg, now, a.opts.newID); err != nil {
			return nil, nil, err
		}

	case cmdCompleteSession:
		if err := working.CompleteSession(now); err != nil {
			return nil, nil, err
		}
		completed = true

	case cmdAbandon:
		if err := working.Abandon(cmd.reason, now); err != nil {
			return nil, nil, err
		}
		evts = append(evts, events.SessionAbandoned{
			SessionID:   working.ID,
			UserID:      working.OwnerID,
			Reason:      cmd.reason,
			AbandonedAt: now,
		})

	case cmdJoin:
		if err := working.Join(cmd.join, now, a.opts.newID); err != nil {
			return nil, nil, err
		}
		// A rejoin keeps the roster role, so the event's role comes from the
		// roster entry rather than the request.
		role := domain.RoleParticipant
		for i := range working.Participants {
			if working.Participants[i].UserID == cmd.join.UserID {
				role = working.Participants[i].Role
				break
			}
		}
		evts = append(evts, events.ParticipantJoined{
			SessionID: working.ID,
			UserID:    cmd.join.UserID,
			UserName:  cmd.join.UserName,
			Role:      string(role),
			JoinedAt:  now,
		})

	case cmdLeave:
		if err := working.Leave(cmd.userID, now, a.opts.newID); err != nil {
			return nil, nil, err
		}
		evts = append(evts, events.ParticipantLeft{
			SessionID: working.ID,
			UserID:    cmd.userID,
			LeftAt:    now,
		})

	case cmdUpdateStatus:
		if err := working.UpdateParticipantStatus(cmd.userID, cmd.status, cmd.currentActivity); err != nil {
			return nil, nil, err
		}

	case cmdPostFeedItem:
		if err := working.PostFeedItem(cmd.userID, cmd.feedType, cmd.content, cmd.metadata, now, a.opts.newID); err != nil {
			return nil, nil, err
		}

	case cmdReact:
		if err := working.React(cmd.userID, cmd.feedItemID, cmd.emoji, now); err != nil {
			return nil, nil, err
		}

	case cmdTick:
		if err := working.Tick(now); err != nil {
			return nil, nil, err
		}

	default:
		return nil, nil, &domain.ValidationError{Field: "command", Reason: "unknown"}
	}

	var archived *domain.CompletedWorkout
	if completed {
		record, err := domain.Archive(working, now, a.opts.newID)
		if err != nil {
			return nil, nil, err
		}
		archived = record
		evts = append(evts, events.WorkoutCompleted{
			SessionID:            working.ID,
			WorkoutID:            record.ID,
			UserID:               record.UserID,
			WorkoutType:          record.WorkoutType,
			DurationSeconds:      record.Performance.DurationSeconds,
			ActivitiesCompleted:  record.Performance.ActivitiesCompleted,
			TotalActivities:      record.Performance.TotalActivities,
			CompletionPercentage: record.Performance.CompletionPercentage,
			RecordedAt:           record.RecordedAt,
		})
	}

	return evts, archived, nil
}

func (a *Actor) do(ctx context.Context, cmd command) (*domain.WorkoutSession, error) {
	cmd.reply = make(chan result, 1)
	select {
	case a.commands <- cmd:
	case <-a.done:
		return nil, ErrActorStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-cmd.reply:
		return res.view, res.err
	case <-a.done:
		return nil, ErrActorStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start begins the workout.
func (a *Actor) Start(ctx context.Context) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdStart})
}

// Pause pauses the session. Only the owner's pause affects the session-level
// state machine; callers enforce who may issue it.
func (a *Actor) Pause(ctx context.Context, userID string) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdPause, userID: userID})
}

// Resume resumes a paused session.
func (a *Actor) Resume(ctx context.Context, userID string) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdResume, userID: userID})
}

// CompleteActivity records a performance for the current activity.
func (a *Actor) CompleteActivity(ctx context.Context, userID string, perf domain.ActivityPerformance) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdCompleteActivity, userID: userID, performance: perf})
}

// CompleteSet records one finished set within a set/rep activity.
func (a *Actor) CompleteSet(ctx context.Context, userID string, reps int, weightKg float64) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdCompleteSet, userID: userID, reps: reps, weightKg: weightKg})
}

// CompleteSession ends the workout early.
func (a *Actor) CompleteSession(ctx context.Context) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdCompleteSession})
}

// Abandon terminates the session without producing a workout record.
func (a *Actor) Abandon(ctx context.Context, reason string) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdAbandon, reason: reason})
}

// Join adds a user to the roster.
func (a *Actor) Join(ctx context.Context, input domain.JoinInput) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdJoin, join: input})
}

// Leave removes a participant from the roster.
func (a *Actor) Leave(ctx context.Context, userID string) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdLeave, userID: userID})
}

// UpdateStatus reflects a participant's own pause or completion.
func (a *Actor) UpdateStatus(ctx context.Context, userID string, status domain.ParticipantStatus, currentActivity string) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdUpdateStatus, userID: userID, status: status, currentActivity: currentActivity})
}

// PostFeedItem appends a chat, encouragement, or progress item to the feed.
func (a *Actor) PostFeedItem(ctx context.Context, userID string, itemType domain.FeedItemType, content string, metadata map[string]string) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdPostFeedItem, userID: userID, feedType: itemType, content: content, metadata: metadata})
}

// React records a reaction to a feed item.
func (a *Actor) React(ctx context.Context, userID, feedItemID, emoji string) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdReact, userID: userID, feedItemID: feedItemID, emoji: emoji})
}

// Tick refreshes elapsed and estimated-remaining time for the current activity.
func (a *Actor) Tick(ctx context.Context) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdTick})
}

// View returns a read-only copy of the current session snapshot.
func (a *Actor) View(ctx context.Context) (*domain.WorkoutSession, error) {
	return a.do(ctx, command{kind: cmdView})
}
