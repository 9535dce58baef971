package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/denchenko/pa/internal/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// errDiscarded marks a load whose fetch was cancelled while the entry held no
// data. Fetch never returns it; the caller loads again instead.
var errDiscarded = errors.New("fetch cancelled")

// Status is the load status of a cache entry.
type Status int

const (
	// StatusPending is an entry that has never loaded or is loading.
	StatusPending Status = iota
	// StatusFresh is an entry whose last load succeeded.
	StatusFresh
	// StatusError is an entry whose last load failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFresh:
		return "fresh"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Entry is a point-in-time view of a cache entry.
type Entry struct {
	Key  Key
	Data any
	// HasData distinguishes a cached nil from no data at all.
	HasData bool
	Status  Status
	// Stale is set by Invalidate; the next Fetch reloads the entry.
	Stale bool
	// Fetching reports a load in flight.
	Fetching bool
	// Err is the error of the last failed load.
	Err       error
	UpdatedAt time.Time
}

// Snapshot is a copy of an entry's data taken for a later Restore.
type Snapshot struct {
	Key     Key
	Data    any
	HasData bool
}

// Loader produces the data for one key.
type Loader func(ctx context.Context) (any, error)

// Updater is a pure transform of an entry's data. ok reports whether the entry
// held data; returning keep=false leaves the entry untouched.
type Updater func(old any, ok bool) (data any, keep bool)

type entry struct {
	key       Key
	data      any
	hasData   bool
	status    Status
	stale     bool
	err       error
	updatedAt time.Time

	// token identifies the fetch currently in flight; zero when idle.
	token      uint64
	prevStatus Status
}

func (e *entry) view() Entry {
	return Entry{
		Key:       e.key,
		Data:      e.data,
		HasData:   e.hasData,
		Status:    e.status,
		Stale:     e.stale,
		Fetching:  e.token != 0,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
	}
}

// Client is the process-wide store of fetched results addressed by Key.
// Stored values are treated as immutable: updaters return new values instead
// of editing the old ones, so snapshots stay valid after later writes.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	tokens  uint64
	group   singleflight.Group

	metrics *metrics.Metrics
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewClient creates an empty query cache.
func NewClient(m *metrics.Metrics, logger logrus.FieldLogger) *Client {
	return &Client{
		entries: make(map[string]*entry),
		metrics: m,
		logger:  logger.WithField("component", "query"),
		now:     time.Now,
	}
}

// Get returns the entry for key without triggering a fetch.
func (c *Client) Get(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Entry{}, false
	}

	return e.view(), true
}

// Entries returns every entry matched by m, ordered by key.
func (c *Client) Entries(m Matcher) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var views []Entry
	for _, e := range c.matchLocked(m) {
		views = append(views, e.view())
	}

	return views
}

// Fetch returns fresh cached data for key, or runs loader and caches its result.
// Concurrent fetches of the same key share a single loader call. A load
// cancelled before the entry had any data is retried, so cancellation is
// never reported to the caller.
func (c *Client) Fetch(ctx context.Context, key Key, loader Loader) (any, error) {
	for {
		data, err := c.fetch(ctx, key, loader)
		if !errors.Is(err, errDiscarded) {
			return data, err
		}

		c.logger.WithField("key", key.String()).Debug("load was cancelled, loading again")
	}
}

func (c *Client) fetch(ctx context.Context, key Key, loader Loader) (any, error) {
	id := key.String()
	ns := key.Namespace()
	logger := c.logger.WithField("key", id)

	c.mu.Lock()
	e := c.entryLocked(key, id)
	if e.hasData && e.status == StatusFresh && !e.stale && e.token == 0 {
		data := e.data
		c.mu.Unlock()

		c.metrics.CacheHits.WithLabelValues(ns).Inc()
		logger.Debug("cache hit")

		return data, nil
	}

	if e.token == 0 {
		c.tokens++
		e.token = c.tokens
		e.prevStatus = e.status
		e.status = StatusPending
	}
	token := e.token
	c.mu.Unlock()

	c.metrics.CacheMisses.WithLabelValues(ns).Inc()

	// The flight name carries the token so that a fetch issued after a cancel
	// starts a new load instead of joining the abandoned one.
	flight := fmt.Sprintf("%s#%d", id, token)
	ch := c.group.DoChan(flight, func() (any, error) {
		c.metrics.CacheLoads.WithLabelValues(ns).Inc()
		logger.Debug("loading")

		data, err := loader(context.WithoutCancel(ctx))

		return c.settle(id, token, data, err)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) settle(id string, token uint64, data any, loadErr error) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.logger.WithField("key", id)

	e, ok := c.entries[id]
	if !ok || e.token != token {
		c.metrics.CacheDiscarded.Inc()
		logger.Debug("discarding response of cancelled fetch")

		if ok && e.hasData {
			return e.data, nil
		}

		return nil, errDiscarded
	}

	e.token = 0
	if loadErr != nil {
		e.status = StatusError
		e.err = loadErr
		c.metrics.CacheLoadErrors.WithLabelValues(e.key.Namespace()).Inc()
		logger.WithError(loadErr).Debug("load failed")

		return nil, loadErr
	}

	e.data = data
	e.hasData = true
	e.status = StatusFresh
	e.stale = false
	e.err = nil
	e.updatedAt = c.now()

	return data, nil
}

// SetData applies fn to the entry's current data and stores the result
// synchronously. Status is left as it was; an entry created here starts fresh.
func (c *Client) SetData(key Key, fn Updater) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := key.String()
	e, exists := c.entries[id]

	var old any
	hasData := exists && e.hasData
	if hasData {
		old = e.data
	}

	data, keep := fn(old, hasData)
	if !keep {
		return
	}

	if !exists {
		e = c.entryLocked(key, id)
		e.status = StatusFresh
	}

	e.data = data
	e.hasData = true
	e.updatedAt = c.now()
}

// Update applies fn to every matched entry that holds data and returns how many changed.
func (c *Client) Update(m Matcher, fn Updater) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated := 0
	for _, e := range c.matchLocked(m) {
		if !e.hasData {
			continue
		}

		data, keep := fn(e.data, true)
		if !keep {
			continue
		}

		e.data = data
		e.updatedAt = c.now()
		updated++
	}

	return updated
}

// Cancel abandons the in-flight fetches of matched entries. Their results are
// dropped when they arrive. It returns the number of fetches cancelled.
func (c *Client) Cancel(m Matcher) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cancelled := 0
	for _, e := range c.matchLocked(m) {
		if c.cancelLocked(e) {
			cancelled++
		}
	}

	if cancelled > 0 {
		c.logger.WithField("fetches", cancelled).Debug("cancelled in-flight fetches")
	}

	return cancelled
}

func (c *Client) cancelLocked(e *entry) bool {
	if e.token == 0 {
		return false
	}

	e.token = 0
	e.status = e.prevStatus
	c.metrics.CacheCancellations.Inc()

	return true
}

// Invalidate marks matched entries stale so the next Fetch reloads them.
// In-flight fetches of those entries are cancelled as their results predate
// the invalidation. Invalidating an already stale entry changes nothing.
func (c *Client) Invalidate(m Matcher) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	invalidated := 0
	for _, e := range c.matchLocked(m) {
		c.cancelLocked(e)
		e.stale = true
		invalidated++
	}

	c.metrics.CacheInvalidations.Add(float64(invalidated))

	return invalidated
}

// Snapshot copies the current data of key.
func (c *Client) Snapshot(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{Key: key}
	if e, ok := c.entries[key.String()]; ok && e.hasData {
		s.Data = e.data
		s.HasData = true
	}

	return s
}

// SnapshotAll copies the data of every matched entry that holds data.
func (c *Client) SnapshotAll(m Matcher) []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var snapshots []Snapshot
	for _, e := range c.matchLocked(m) {
		if e.hasData {
			snapshots = append(snapshots, Snapshot{Key: e.key, Data: e.data, HasData: true})
		}
	}

	return snapshots
}

// Restore writes every snapshot back verbatim. A snapshot taken of an entry
// without data clears whatever data the entry gained since.
func (c *Client) Restore(snapshots []Snapshot) {
	for _, s := range snapshots {
		if s.HasData {
			data := s.Data
			c.SetData(s.Key, func(any, bool) (any, bool) {
				return data, true
			})

			continue
		}

		c.Clear(s.Key)
	}
}

// Clear drops the data cached under key. The next Fetch of key loads it again.
func (c *Client) Clear(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key.String()]; ok {
		e.data = nil
		e.hasData = false
	}
}

func (c *Client) entryLocked(key Key, id string) *entry {
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: key, status: StatusPending}
		c.entries[id] = e
		c.metrics.CacheEntries.Set(float64(len(c.entries)))
	}

	return e
}

func (c *Client) matchLocked(m Matcher) []*entry {
	ids := make([]string, 0, len(c.entries))
	for id, e := range c.entries {
		if m(e.key) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	matched := make([]*entry, len(ids))
	for i, id := range ids {
		matched[i] = c.entries[id]
	}

	return matched
}
