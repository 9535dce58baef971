package state

import (
	"net/url"
	"strconv"
	"sync"

	"github.com/google/go-querystring/query"
)

const (
	// DefaultLimit is the page size restored by Pagination.Reset.
	DefaultLimit = 10

	// AllTags is the tag selection that disables tag filtering.
	AllTags = "all"
)

// SortOrder is the direction of the post list sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether o is one of the known sort orders.
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// Filter selects which post source the view shows.
type Filter struct {
	SearchQuery string    `json:"searchQuery"`
	SelectedTag string    `json:"selectedTag"`
	SortBy      string    `json:"sortBy"`
	SortOrder   SortOrder `json:"sortOrder"`
}

// TagActive reports whether a tag other than AllTags is selected.
func (f Filter) TagActive() bool {
	return f.SelectedTag != "" && f.SelectedTag != AllTags
}

// Page is the current pagination window.
type Page struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Selection holds what the operator currently has open.
type Selection struct {
	PostID    int `json:"postId,omitempty"`
	CommentID int `json:"commentId,omitempty"`
	UserID    int `json:"userId,omitempty"`
}

// Store is the application state container. Each slice has its own lock.
type Store struct {
	Filter     *FilterState
	Pagination *PaginationState
	Selection  *SelectionState
}

// NewStore creates a state container whose pagination resets to defaultLimit.
func NewStore(defaultLimit int) *Store {
	return &Store{
		Filter:     NewFilterState(),
		Pagination: NewPaginationState(defaultLimit),
		Selection:  &SelectionState{},
	}
}

// Reset restores every slice to its defaults.
func (s *Store) Reset() {
	s.Filter.Reset()
	s.Pagination.Reset()
	s.Selection.Clear()
}

type FilterState struct {
	mu sync.RWMutex
	f  Filter
}

func NewFilterState() *FilterState {
	return &FilterState{f: Filter{SortOrder: SortAsc}}
}

// Get returns a copy of the current filter.
func (s *FilterState) Get() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.f
}

func (s *FilterState) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.f.SearchQuery = q
}

func (s *FilterState) SetSelectedTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.f.SelectedTag = tag
}

func (s *FilterState) SetSortBy(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.f.SortBy = field
}

// SetSortOrder ignores unknown orders.
func (s *FilterState) SetSortOrder(order SortOrder) {
	if !order.Valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.f.SortOrder = order
}

// Reset clears every filter and sorts ascending.
func (s *FilterState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.f = Filter{SortOrder: SortAsc}
}

type PaginationState struct {
	mu           sync.RWMutex
	p            Page
	defaultLimit int
}

// NewPaginationState starts at the first page; non-positive limits fall back to DefaultLimit.
func NewPaginationState(defaultLimit int) *PaginationState {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	return &PaginationState{
		p:            Page{Skip: 0, Limit: defaultLimit},
		defaultLimit: defaultLimit,
	}
}

func (s *PaginationState) Get() Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.p
}

// DefaultLimit returns the page size Reset restores.
func (s *PaginationState) DefaultLimit() int {
	return s.defaultLimit
}

// SetSkip clamps negative offsets to zero.
func (s *PaginationState) SetSkip(skip int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.p.Skip = max(skip, 0)
}

// SetLimit changes the page size and returns to the first page.
// Non-positive limits are ignored.
func (s *PaginationState) SetLimit(limit int) {
	if limit <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.p = Page{Skip: 0, Limit: limit}
}

func (s *PaginationState) NextPage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.p.Skip += s.p.Limit
}

func (s *PaginationState) PrevPage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.p.Skip = max(s.p.Skip-s.p.Limit, 0)
}

func (s *PaginationState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.p = Page{Skip: 0, Limit: s.defaultLimit}
}

type SelectionState struct {
	mu  sync.RWMutex
	sel Selection
}

func (s *SelectionState) Get() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sel
}

// SelectPost opens a post and drops the selected comment, which belonged to the previous post.
func (s *SelectionState) SelectPost(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sel.PostID = id
	s.sel.CommentID = 0
}

func (s *SelectionState) SelectComment(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sel.CommentID = id
}

func (s *SelectionState) SelectUser(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sel.UserID = id
}

func (s *SelectionState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sel = Selection{}
}

type urlState struct {
	Skip      int    `url:"skip,omitempty"`
	Limit     int    `url:"limit,omitempty"`
	Search    string `url:"search,omitempty"`
	Tag       string `url:"tag,omitempty"`
	SortBy    string `url:"sortBy,omitempty"`
	SortOrder string `url:"sortOrder,omitempty"`
}

// Values encodes the non-default filter and pagination state as URL query parameters.
func (s *Store) Values() (url.Values, error) {
	f := s.Filter.Get()
	p := s.Pagination.Get()

	u := urlState{
		Skip:   p.Skip,
		Search: f.SearchQuery,
		Tag:    f.SelectedTag,
		SortBy: f.SortBy,
	}
	if p.Limit != s.Pagination.DefaultLimit() {
		u.Limit = p.Limit
	}
	if f.SortOrder != SortAsc {
		u.SortOrder = string(f.SortOrder)
	}

	return query.Values(u)
}

// ApplyValues reads state from URL query parameters. Parameters that are
// absent or malformed leave the corresponding state untouched.
func (s *Store) ApplyValues(v url.Values) {
	if limit, err := strconv.Atoi(v.Get("limit")); err == nil {
		s.Pagination.SetLimit(limit)
	}
	if skip, err := strconv.Atoi(v.Get("skip")); err == nil {
		s.Pagination.SetSkip(skip)
	}
	if v.Has("search") {
		s.Filter.SetSearchQuery(v.Get("search"))
	}
	if v.Has("tag") {
		s.Filter.SetSelectedTag(v.Get("tag"))
	}
	if v.Has("sortBy") {
		s.Filter.SetSortBy(v.Get("sortBy"))
	}
	if v.Has("sortOrder") {
		s.Filter.SetSortOrder(SortOrder(v.Get("sortOrder")))
	}
}
