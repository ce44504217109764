package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc"
)

// DefaultEffectBuffer is the effect queue capacity when none is configured.
const DefaultEffectBuffer = 16

// Settings configures a Screen.
type Settings struct {
	Logger       *slog.Logger
	EffectBuffer int
}

// NewSettings applies options over the defaults.
func NewSettings(options ...func(*Settings) error) (Settings, error) {
	settings := Settings{
		Logger:       slog.Default(),
		EffectBuffer: DefaultEffectBuffer,
	}
	for _, option := range options {
		if err := option(&settings); err != nil {
			return Settings{}, fmt.Errorf("applying option on presenter : %w", err)
		}
	}
	return settings, nil
}

// WithLogger sets the presenter logger. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) func(*Settings) error {
	return func(s *Settings) error {
		if logger != nil {
			s.Logger = logger
		}
		return nil
	}
}

// WithEffectBuffer sets how many effects may wait for the consumer before emitters block.
func WithEffectBuffer(size int) func(*Settings) error {
	return func(s *Settings) error {
		if size < 0 {
			return errors.New("effect buffer must not be negative")
		}
		s.EffectBuffer = size
		return nil
	}
}

// Screen owns the state S of a screen, its effect queue of E and the tasks
// started on its behalf. State changes are serialized; tasks run concurrently.
type Screen[S any, E any] struct {
	mu       sync.Mutex
	state    S
	watchers map[uint64]chan S
	nextID   uint64
	closed   bool

	emitMu  sync.RWMutex // held for reading by emitters, for writing while closing effects
	effects chan E

	ctx    context.Context
	cancel context.CancelFunc
	tasks  conc.WaitGroup
	logger *slog.Logger
}

// NewScreen returns a Screen starting at initial.
func NewScreen[S any, E any](initial S, settings Settings) *Screen[S, E] {
	ctx, cancel := context.WithCancel(context.Background())
	logger := settings.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Screen[S, E]{
		state:    initial,
		watchers: make(map[uint64]chan S),
		effects:  make(chan E, settings.EffectBuffer),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
	}
}

// Logger returns the screen logger.
func (s *Screen[S, E]) Logger() *slog.Logger {
	return s.logger
}

// State returns a snapshot of the current state.
func (s *Screen[S, E]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update replaces the state with fn applied to it and publishes the result to watchers.
// fn runs under the screen lock and must not block.
func (s *Screen[S, E]) Update(fn func(S) S) S {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = fn(s.state)
	for _, ch := range s.watchers {
		// Conflate: a watcher that has not read the previous snapshot only sees the latest.
		select {
		case <-ch:
		default:
		}
		ch <- s.state
	}
	return s.state
}

// Watch streams state snapshots starting with the current one. Intermediate
// snapshots may be skipped by a slow reader. The channel closes when ctx is done
// or the screen is closed.
func (s *Screen[S, E]) Watch(ctx context.Context) <-chan S {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan S, 1)
	ch <- s.state
	if s.closed {
		close(ch)
		return ch
	}

	s.nextID++
	id := s.nextID
	s.watchers[id] = ch

	go func() {
		select {
		case <-ctx.Done():
		case <-s.ctx.Done():
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(ch)
		}
	}()
	return ch
}

// Effects returns the effect queue. It has a single consumer: each effect is
// delivered once and is not replayed. It closes after Close.
func (s *Screen[S, E]) Effects() <-chan E {
	return s.effects
}

// Emit queues effect, blocking while the queue is full. It reports false when the
// effect was dropped because ctx ended or the screen closed.
func (s *Screen[S, E]) Emit(ctx context.Context, effect E) bool {
	s.emitMu.RLock()
	defer s.emitMu.RUnlock()

	select {
	case <-s.ctx.Done():
		return false
	default:
	}

	select {
	case s.effects <- effect:
		return true
	case <-ctx.Done():
		return false
	case <-s.ctx.Done():
		return false
	}
}

// Go runs task in the screen's task group with a context cancelled by Close.
// It reports false when the screen is already closed.
func (s *Screen[S, E]) Go(task func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.tasks.Go(func() {
		task(s.ctx)
	})
	return true
}

// Context returns the context cancelled by Close.
func (s *Screen[S, E]) Context() context.Context {
	return s.ctx
}

// Close cancels every task, waits for them and closes the effect queue and watchers.
// A panicking task is logged rather than propagated.
func (s *Screen[S, E]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	if recovered := s.tasks.WaitAndRecover(); recovered != nil {
		s.logger.Error("presenter task panicked", "panic", recovered.Value, "stack", string(recovered.Stack))
	}

	s.emitMu.Lock()
	close(s.effects)
	s.emitMu.Unlock()

	s.mu.Lock()
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	s.mu.Unlock()
}
