package view

import (
	"github.com/denchenko/pa/internal/core/domain"
	"github.com/denchenko/pa/internal/core/state"
)

// Source names the post source a view was composed from.
const (
	SourceSearch = "search"
	SourceTag    = "tag"
	SourceList   = "list"
)

// Sources are the inputs of Compose. A nil page is a source that has not loaded.
type Sources struct {
	Search *domain.Page[domain.Post]
	Tag    *domain.Page[domain.Post]
	List   *domain.Page[domain.Post]
	Users  []domain.User
}

// Select picks the source the filter makes active: search when a query is
// typed, otherwise the selected tag, otherwise the plain page.
func Select(f state.Filter) string {
	switch {
	case f.SearchQuery != "":
		return SourceSearch
	case f.TagActive():
		return SourceTag
	default:
		return SourceList
	}
}

// Compose builds the displayed post list from exactly one source and attaches
// each post's author. An unloaded source yields an empty list and posts whose
// author is unknown keep a nil Author.
func Compose(f state.Filter, src Sources) domain.PostsView {
	source := Select(f)

	var page *domain.Page[domain.Post]
	switch source {
	case SourceSearch:
		page = src.Search
	case SourceTag:
		page = src.Tag
	default:
		page = src.List
	}

	v := domain.PostsView{
		Posts:  []domain.PostWithAuthor{},
		Source: source,
	}
	if page == nil {
		return v
	}

	v.Total = page.Total
	v.Posts = Attach(page.Items, src.Users)

	return v
}

// Attach left-joins posts with their authors by user id.
func Attach(posts []domain.Post, users []domain.User) []domain.PostWithAuthor {
	authors := make(map[int]domain.Author, len(users))
	for _, u := range users {
		authors[u.ID] = domain.Author{Username: u.Username, Image: u.Image}
	}

	joined := make([]domain.PostWithAuthor, len(posts))
	for i, p := range posts {
		joined[i] = domain.PostWithAuthor{Post: p}
		if a, ok := authors[p.UserID]; ok {
			joined[i].Author = &a
		}
	}

	return joined
}
