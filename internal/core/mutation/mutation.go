package mutation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/denchenko/pa/internal/core/query"
	"github.com/denchenko/pa/internal/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrInvalidTransition is returned when a run is driven out of order,
// for example executed twice.
var ErrInvalidTransition = errors.New("invalid mutation state transition")

// State is the lifecycle state of one mutation run.
type State int

const (
	StateIdle State = iota
	StateOptimistic
	StateCommitting
	StateRollingBack
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOptimistic:
		return "optimistic"
	case StateCommitting:
		return "committing"
	case StateRollingBack:
		return "rolling-back"
	case StateSettled:
		return "settled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateIdle:        {StateOptimistic},
	StateOptimistic:  {StateCommitting, StateRollingBack},
	StateCommitting:  {StateRollingBack, StateSettled},
	StateRollingBack: {StateSettled},
}

// Scope is the cache key set a mutation touches.
type Scope struct {
	// Cancel selects fetches abandoned before the optimistic edit.
	Cancel query.Matcher
	// Snapshot selects entries restored if the remote write fails.
	Snapshot query.Matcher
	// Invalidate selects entries reloaded after the remote write succeeds.
	Invalidate query.Matcher
}

// Definition describes one kind of mutation.
type Definition[In, Out any] struct {
	Name  string
	Scope func(in In) Scope

	// Optimistic applies the local cache edit. It returns the input the
	// remote write is made with, which lets it carry values read from the cache.
	Optimistic func(cache *query.Client, in In) (In, error)

	// LocalOnly reports inputs that have no server-side counterpart;
	// the remote write is skipped for them.
	LocalOnly func(in In) bool

	Commit func(ctx context.Context, in In) (Out, error)

	// Confirm runs after a successful remote write and before invalidation.
	Confirm func(cache *query.Client, in In, out Out)
}

// Coordinator executes runs of one Definition against a query cache.
type Coordinator[In, Out any] struct {
	def     Definition[In, Out]
	cache   *query.Client
	metrics *metrics.Metrics
	logger  logrus.FieldLogger
}

// New creates a coordinator for def.
func New[In, Out any](
	def Definition[In, Out],
	cache *query.Client,
	m *metrics.Metrics,
	logger logrus.FieldLogger,
) *Coordinator[In, Out] {
	return &Coordinator[In, Out]{
		def:     def,
		cache:   cache,
		metrics: m,
		logger:  logger.WithField("mutation", def.Name),
	}
}

// Name returns the definition name.
func (c *Coordinator[In, Out]) Name() string {
	return c.def.Name
}

// Begin prepares a run for in without executing it.
func (c *Coordinator[In, Out]) Begin(in In) *Run[In, Out] {
	id := uuid.NewString()

	return &Run[In, Out]{
		id:      id,
		c:       c,
		in:      in,
		state:   StateIdle,
		history: []State{StateIdle},
		logger:  c.logger.WithField("run", id),
	}
}

// Execute runs the full mutation protocol for in.
func (c *Coordinator[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	return c.Begin(in).Execute(ctx)
}

// Run is a single execution of a mutation.
type Run[In, Out any] struct {
	id     string
	c      *Coordinator[In, Out]
	in     In
	logger logrus.FieldLogger

	mu        sync.Mutex
	state     State
	history   []State
	snapshots []query.Snapshot
}

// ID returns the run's correlation id.
func (r *Run[In, Out]) ID() string {
	return r.id
}

// State returns the current state.
func (r *Run[In, Out]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// History returns every state the run has been in, in order.
func (r *Run[In, Out]) History() []State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.history)
}

func (r *Run[In, Out]) transition(to State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(transitions[r.state], to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.state, to)
	}

	r.logger.WithFields(logrus.Fields{"from": r.state, "to": to}).Debug("mutation transition")
	r.state = to
	r.history = append(r.history, to)

	return nil
}

// Execute cancels in-flight fetches in scope, snapshots and edits the cache,
// performs the remote write and then either invalidates the scope or restores
// the snapshots. Remote errors are returned after the rollback.
func (r *Run[In, Out]) Execute(ctx context.Context) (Out, error) {
	var zero Out
	def := r.c.def
	cache := r.c.cache

	if err := r.transition(StateOptimistic); err != nil {
		return zero, err
	}

	start := time.Now()
	defer func() {
		r.c.metrics.MutationDuration.WithLabelValues(def.Name).Observe(time.Since(start).Seconds())
	}()

	scope := def.Scope(r.in)
	cache.Cancel(scope.Cancel)

	r.mu.Lock()
	r.snapshots = cache.SnapshotAll(scope.Snapshot)
	r.mu.Unlock()

	in, err := def.Optimistic(cache, r.in)
	if err != nil {
		return zero, r.rollback(fmt.Errorf("failed to %s: %w", def.Name, err))
	}

	if err := r.transition(StateCommitting); err != nil {
		return zero, err
	}

	var out Out
	if def.LocalOnly != nil && def.LocalOnly(in) {
		r.logger.Debug("entity is local only, skipping remote write")
	} else {
		out, err = def.Commit(ctx, in)
		if err != nil {
			return zero, r.rollback(fmt.Errorf("failed to %s: %w", def.Name, err))
		}
	}

	if def.Confirm != nil {
		def.Confirm(cache, in, out)
	}
	cache.Invalidate(scope.Invalidate)

	r.mu.Lock()
	r.snapshots = nil
	r.mu.Unlock()

	if err := r.transition(StateSettled); err != nil {
		return zero, err
	}

	r.c.metrics.MutationsTotal.WithLabelValues(def.Name, "success").Inc()

	return out, nil
}

func (r *Run[In, Out]) rollback(cause error) error {
	if err := r.transition(StateRollingBack); err != nil {
		return errors.Join(cause, err)
	}

	r.mu.Lock()
	snapshots := r.snapshots
	r.snapshots = nil
	r.mu.Unlock()

	r.c.cache.Restore(snapshots)
	r.c.metrics.MutationRollbacks.WithLabelValues(r.c.def.Name).Inc()
	r.c.metrics.MutationsTotal.WithLabelValues(r.c.def.Name, "error").Inc()
	r.logger.WithError(cause).WithField("entries", len(snapshots)).Warn("rolled back optimistic update")

	if err := r.transition(StateSettled); err != nil {
		return errors.Join(cause, err)
	}

	return cause
}
