package coordinator

import (
	"context"
	"sync"

	"example.com/session/internal/domain"
)

// Manager owns the set of running session actors, keyed by session id. It
// creates sessions, recovers them from the snapshot store after a restart,
// and stops them together on shutdown.
type Manager struct {
	store SnapshotStore
	opts  []Option

	mu     sync.Mutex
	actors map[string]*Actor

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager constructs a Manager. Options are forwarded to every actor it
// starts.
func NewManager(store SnapshotStore, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:  store,
		opts:   opts,
		actors: make(map[string]*Actor),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Create builds a new session from the upstream plan input, persists the
// initial snapshot, and starts its actor.
func (m *Manager) Create(ctx context.Context, input domain.CreateSessionInput) (*Actor, error) {
	o := buildOptions(m.opts)
	session, err := domain.NewSession(input, o.now(), o.newID)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, session, nil, nil); err != nil {
		return nil, err
	}
	return m.startActor(session), nil
}

// Get returns the running actor for a session, recovering it from the last
// durable snapshot if no actor is running. Returns domain.ErrSessionNotFound
// when neither exists.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Actor, error) {
	m.mu.Lock()
	actor, ok := m.actors[sessionID]
	m.mu.Unlock()
	if ok {
		return actor, nil
	}

	session, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.startActor(session), nil
}

func (m *Manager) startActor(session *domain.WorkoutSession) *Actor {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have recovered the same session concurrently.
	if existing, ok := m.actors[session.ID]; ok {
		return existing
	}

	actor := NewActor(session, m.store, m.opts...)
	m.actors[session.ID] = actor
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		actor.Run(m.ctx)
	}()
	return actor
}

// Shutdown stops all actors and waits for them to drain, or until the
// context expires.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
