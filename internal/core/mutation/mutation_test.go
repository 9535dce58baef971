package mutation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/denchenko/pa/internal/core/domain"
	"github.com/denchenko/pa/internal/core/query"
	"github.com/denchenko/pa/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listKey = query.PostListKey(domain.ListPostsParams{Limit: 10})

type fixture struct {
	cache   *query.Client
	metrics *metrics.Metrics
	commits int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	m := metrics.NewMetrics(prometheus.NewRegistry())
	logger, _ := logtest.NewNullLogger()
	cache := query.NewClient(m, logger)

	query.SetData(cache, listKey, func(domain.Page[string], bool) (domain.Page[string], bool) {
		return domain.Page[string]{Items: []string{"A", "B"}, Total: 2, Limit: 10}, true
	})

	return &fixture{cache: cache, metrics: m}
}

func (f *fixture) coordinator(commitErr error, localOnly bool) *Coordinator[string, string] {
	logger, _ := logtest.NewNullLogger()

	return New(Definition[string, string]{
		Name: "add item",
		Scope: func(string) Scope {
			return Scope{
				Cancel:     query.Prefix(query.PostsKey()),
				Snapshot:   query.Exact(listKey),
				Invalidate: query.Prefix(query.PostsKey()),
			}
		},
		Optimistic: func(cache *query.Client, in string) (string, error) {
			query.SetData(cache, listKey, func(old domain.Page[string], ok bool) (domain.Page[string], bool) {
				if !ok {
					return old, false
				}

				return old.Append(in), true
			})

			return in, nil
		},
		LocalOnly: func(string) bool {
			return localOnly
		},
		Commit: func(_ context.Context, in string) (string, error) {
			f.commits++
			if commitErr != nil {
				return "", commitErr
			}

			return in + "-confirmed", nil
		},
	}, f.cache, f.metrics, logger)
}

func (f *fixture) page(t *testing.T) domain.Page[string] {
	t.Helper()

	p, ok := query.Get[domain.Page[string]](f.cache, listKey)
	require.True(t, ok)

	return p
}

func TestRun_Success(t *testing.T) {
	f := newFixture(t)
	c := f.coordinator(nil, false)

	run := c.Begin("C")
	assert.Equal(t, StateIdle, run.State())
	assert.NotEmpty(t, run.ID())

	out, err := run.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "C-confirmed", out)
	assert.Equal(t, 1, f.commits)
	assert.Equal(t, []State{StateIdle, StateOptimistic, StateCommitting, StateSettled}, run.History())

	p := f.page(t)
	assert.Equal(t, []string{"A", "B", "C"}, p.Items)
	assert.Equal(t, 3, p.Total)

	e, _ := f.cache.Get(listKey)
	assert.True(t, e.Stale, "scope is invalidated after success")
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.MutationsTotal.WithLabelValues("add item", "success")), 0)
}

func TestRun_FailureRollsBack(t *testing.T) {
	f := newFixture(t)
	remoteErr := errors.New("API Error: 500")
	c := f.coordinator(remoteErr, false)

	run := c.Begin("C")
	_, err := run.Execute(context.Background())

	require.ErrorIs(t, err, remoteErr)
	assert.Contains(t, err.Error(), "failed to add item")
	assert.Equal(t,
		[]State{StateIdle, StateOptimistic, StateCommitting, StateRollingBack, StateSettled},
		run.History(),
	)

	p := f.page(t)
	assert.Equal(t, []string{"A", "B"}, p.Items)
	assert.Equal(t, 2, p.Total)

	e, _ := f.cache.Get(listKey)
	assert.False(t, e.Stale, "failed mutations leave invalidation to the caller's retry")
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.MutationRollbacks.WithLabelValues("add item")), 0)
}

func TestRun_RetryAfterFailure(t *testing.T) {
	f := newFixture(t)

	_, err := f.coordinator(errors.New("offline"), false).Execute(context.Background(), "C")
	require.Error(t, err)

	_, err = f.coordinator(nil, false).Execute(context.Background(), "C")
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, f.page(t).Items)
}

func TestRun_LocalOnlySkipsCommit(t *testing.T) {
	f := newFixture(t)
	c := f.coordinator(errors.New("must not be called"), true)

	out, err := c.Execute(context.Background(), "C")

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, f.commits)
	assert.Equal(t, []string{"A", "B", "C"}, f.page(t).Items)
}

func TestRun_ExecuteTwice(t *testing.T) {
	f := newFixture(t)
	run := f.coordinator(nil, false).Begin("C")

	_, err := run.Execute(context.Background())
	require.NoError(t, err)

	_, err = run.Execute(context.Background())
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, f.commits)
}

func TestRun_OptimisticErrorRollsBackWithoutCommit(t *testing.T) {
	f := newFixture(t)
	logger, _ := logtest.NewNullLogger()
	notCached := errors.New("target not cached")

	c := New(Definition[string, string]{
		Name: "like item",
		Scope: func(string) Scope {
			return Scope{
				Cancel:     query.Exact(listKey),
				Snapshot:   query.Exact(listKey),
				Invalidate: query.Exact(listKey),
			}
		},
		Optimistic: func(cache *query.Client, in string) (string, error) {
			query.SetData(cache, listKey, func(old domain.Page[string], ok bool) (domain.Page[string], bool) {
				return old.Append("partial"), ok
			})

			return in, notCached
		},
		Commit: func(context.Context, string) (string, error) {
			f.commits++

			return "", nil
		},
	}, f.cache, f.metrics, logger)

	run := c.Begin("C")
	_, err := run.Execute(context.Background())

	require.ErrorIs(t, err, notCached)
	assert.Equal(t, 0, f.commits)
	assert.Equal(t, []string{"A", "B"}, f.page(t).Items)
	assert.Equal(t, []State{StateIdle, StateOptimistic, StateRollingBack, StateSettled}, run.History())
}

func TestRun_CancelsInFlightFetch(t *testing.T) {
	f := newFixture(t)
	f.cache.Invalidate(query.Exact(listKey))

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := f.cache.Fetch(context.Background(), listKey, func(context.Context) (any, error) {
			close(entered)
			<-release

			return domain.Page[string]{Items: []string{"stale"}, Total: 1}, nil
		})
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("fetch did not start")
	}

	var seenDuringCommit domain.Page[string]
	logger, _ := logtest.NewNullLogger()
	c := New(Definition[string, string]{
		Name: "add item",
		Scope: func(string) Scope {
			return Scope{
				Cancel:     query.Prefix(query.PostsKey()),
				Snapshot:   query.Exact(listKey),
				Invalidate: query.Prefix(query.PostsKey()),
			}
		},
		Optimistic: func(cache *query.Client, in string) (string, error) {
			query.SetData(cache, listKey, func(old domain.Page[string], ok bool) (domain.Page[string], bool) {
				return old.Prepend(in), ok
			})

			return in, nil
		},
		Commit: func(context.Context, string) (string, error) {
			close(release)
			require.NoError(t, <-done)
			seenDuringCommit, _ = query.Get[domain.Page[string]](f.cache, listKey)

			return "", errors.New("rejected")
		},
	}, f.cache, f.metrics, logger)

	_, err := c.Execute(context.Background(), "C")
	require.Error(t, err)

	assert.Equal(t, []string{"C", "A", "B"}, seenDuringCommit.Items, "stale response must not replace the optimistic value")
	assert.Equal(t, []string{"A", "B"}, f.page(t).Items)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "rolling-back", StateRollingBack.String())
	assert.Equal(t, "State(42)", State(42).String())
}
