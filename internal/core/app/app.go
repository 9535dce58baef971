package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/denchenko/pa/internal/config"
	"github.com/denchenko/pa/internal/core/domain"
	"github.com/denchenko/pa/internal/core/mutation"
	"github.com/denchenko/pa/internal/core/query"
	"github.com/denchenko/pa/internal/core/state"
	"github.com/denchenko/pa/internal/core/view"
	"github.com/denchenko/pa/internal/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// userFields are the user fields the author join needs.
const userFields = "username,image"

// App represents the core application: cached reads, the composed post view
// and the optimistic mutations.
type App struct {
	repo    Repository
	cache   *query.Client
	state   *state.Store
	tempIDs *domain.TempIDs
	userID  int
	logger  logrus.FieldLogger

	addPost       *mutation.Coordinator[addPostInput, domain.Post]
	editPost      *mutation.Coordinator[editPostInput, domain.Post]
	deletePost    *mutation.Coordinator[int, struct{}]
	addComment    *mutation.Coordinator[domain.Comment, domain.Comment]
	editComment   *mutation.Coordinator[editCommentInput, domain.Comment]
	deleteComment *mutation.Coordinator[commentRef, struct{}]
	likeComment   *mutation.Coordinator[likeInput, domain.Comment]
}

// NewApp creates a new application instance.
func NewApp(
	cfg *config.Config,
	repo Repository,
	cache *query.Client,
	m *metrics.Metrics,
	logger logrus.FieldLogger,
) (*App, error) {
	if cfg.UserID <= 0 {
		return nil, fmt.Errorf("acting user id must be positive, got %d", cfg.UserID)
	}

	a := &App{
		repo:    repo,
		cache:   cache,
		state:   state.NewStore(cfg.PageLimit),
		tempIDs: &domain.TempIDs{},
		userID:  cfg.UserID,
		logger:  logger.WithField("component", "app"),
	}
	a.registerMutations(m, logger)

	return a, nil
}

// State returns the application state container.
func (a *App) State() *state.Store {
	return a.state
}

// Cache returns the query cache backing every read.
func (a *App) Cache() *query.Client {
	return a.cache
}

// ListParams returns the post list parameters for a filter and page window.
func ListParams(f state.Filter, p state.Page) domain.ListPostsParams {
	params := domain.ListPostsParams{Skip: p.Skip, Limit: p.Limit}
	if f.SortBy != "" {
		params.SortBy = f.SortBy
		params.Order = string(f.SortOrder)
	}

	return params
}

// ListPosts returns one page of posts.
func (a *App) ListPosts(ctx context.Context, params domain.ListPostsParams) (domain.Page[domain.Post], error) {
	return query.Fetch(ctx, a.cache, query.PostListKey(params),
		func(ctx context.Context) (domain.Page[domain.Post], error) {
			return a.repo.ListPosts(ctx, params)
		})
}

// SearchPosts returns the posts matching q.
func (a *App) SearchPosts(ctx context.Context, q string) (domain.Page[domain.Post], error) {
	return query.Fetch(ctx, a.cache, query.PostSearchKey(q),
		func(ctx context.Context) (domain.Page[domain.Post], error) {
			return a.repo.SearchPosts(ctx, q)
		})
}

// PostsByTag returns the posts carrying tag.
func (a *App) PostsByTag(ctx context.Context, tag string) (domain.Page[domain.Post], error) {
	return query.Fetch(ctx, a.cache, query.PostTagKey(tag),
		func(ctx context.Context) (domain.Page[domain.Post], error) {
			return a.repo.PostsByTag(ctx, tag)
		})
}

// Post returns a post from any fresh cached post page, falling back to the
// remote API. Temporary posts only exist in the cache, so stale copies count.
func (a *App) Post(ctx context.Context, id int) (domain.Post, error) {
	if p, ok := a.cachedPost(id, domain.IsTemporaryID(id)); ok {
		return p, nil
	}

	if domain.IsTemporaryID(id) {
		return domain.Post{}, fmt.Errorf("post %d: %w", id, domain.ErrNotFound)
	}

	return query.Fetch(ctx, a.cache, query.PostDetailKey(id),
		func(ctx context.Context) (domain.Post, error) {
			return a.repo.GetPost(ctx, id)
		})
}

func (a *App) cachedPost(id int, includeStale bool) (domain.Post, bool) {
	for _, e := range a.cache.Entries(query.Prefix(query.PostsKey())) {
		if e.Stale && !includeStale {
			continue
		}

		switch data := e.Data.(type) {
		case domain.Page[domain.Post]:
			if p, ok := data.Find(postByID(id)); ok {
				return p, true
			}
		case domain.Post:
			if data.ID == id {
				return data, true
			}
		}
	}

	return domain.Post{}, false
}

// Tags returns every known tag.
func (a *App) Tags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := query.Fetch(ctx, a.cache, query.TagsKey(), a.repo.ListTags)
	if err != nil {
		return nil, err
	}

	return slices.Clone(tags), nil
}

// Users returns every user with the fields the author join needs.
func (a *App) Users(ctx context.Context) ([]domain.User, error) {
	users, err := query.Fetch(ctx, a.cache, query.UsersKey(),
		func(ctx context.Context) ([]domain.User, error) {
			return a.repo.ListUsers(ctx, domain.ListUsersParams{Limit: 0, Select: userFields})
		})
	if err != nil {
		return nil, err
	}

	return slices.Clone(users), nil
}

// User returns the full profile of one user.
func (a *App) User(ctx context.Context, id int) (domain.User, error) {
	return query.Fetch(ctx, a.cache, query.UserKey(id),
		func(ctx context.Context) (domain.User, error) {
			return a.repo.GetUser(ctx, id)
		})
}

// Comments returns the comments of a post. Temporary posts have none on the server.
func (a *App) Comments(ctx context.Context, postID int) (domain.Page[domain.Comment], error) {
	return query.Fetch(ctx, a.cache, query.PostCommentsKey(postID),
		func(ctx context.Context) (domain.Page[domain.Comment], error) {
			if domain.IsTemporaryID(postID) {
				return domain.Page[domain.Comment]{Items: []domain.Comment{}}, nil
			}

			return a.repo.ListComments(ctx, postID)
		})
}

// PostsView composes the post list for the current filter and pagination state.
func (a *App) PostsView(ctx context.Context) (domain.PostsView, error) {
	return a.PostsViewFor(ctx, a.state.Filter.Get(), a.state.Pagination.Get())
}

// PostsViewFor composes the post list for f and p. The plain page and the users
// are always loaded; search and tag results only when the filter asks for them.
// Only a failure of the source the view is built from is returned.
func (a *App) PostsViewFor(ctx context.Context, f state.Filter, p state.Page) (domain.PostsView, error) {
	selected := view.Select(f)

	var (
		src  view.Sources
		errg errgroup.Group
	)

	load := func(
		source string,
		dst **domain.Page[domain.Post],
		fetch func(context.Context) (domain.Page[domain.Post], error),
	) {
		errg.Go(func() error {
			page, err := fetch(ctx)
			if err != nil {
				if source == selected {
					return fmt.Errorf("failed to load %s posts: %w", source, err)
				}
				a.logger.WithError(err).WithField("source", source).Warn("inactive post source failed to load")

				return nil
			}
			*dst = &page

			return nil
		})
	}

	params := ListParams(f, p)
	load(view.SourceList, &src.List, func(ctx context.Context) (domain.Page[domain.Post], error) {
		return a.ListPosts(ctx, params)
	})
	if f.SearchQuery != "" {
		load(view.SourceSearch, &src.Search, func(ctx context.Context) (domain.Page[domain.Post], error) {
			return a.SearchPosts(ctx, f.SearchQuery)
		})
	}
	if f.TagActive() {
		load(view.SourceTag, &src.Tag, func(ctx context.Context) (domain.Page[domain.Post], error) {
			return a.PostsByTag(ctx, f.SelectedTag)
		})
	}
	errg.Go(func() error {
		users, err := a.Users(ctx)
		if err != nil {
			a.logger.WithError(err).Warn("users failed to load, authors omitted")

			return nil
		}
		src.Users = users

		return nil
	})

	if err := errg.Wait(); err != nil {
		return domain.PostsView{}, err
	}

	return view.Compose(f, src), nil
}

// PostDetail returns a post with its author and comments.
func (a *App) PostDetail(ctx context.Context, postID int) (domain.PostDetail, error) {
	var (
		post     domain.Post
		comments domain.Page[domain.Comment]
		users    []domain.User
		errg     errgroup.Group
	)

	errg.Go(func() error {
		var err error
		post, err = a.Post(ctx, postID)
		if err != nil {
			return fmt.Errorf("failed to get post: %w", err)
		}

		return nil
	})
	errg.Go(func() error {
		var err error
		comments, err = a.Comments(ctx, postID)
		if err != nil {
			return fmt.Errorf("failed to get comments: %w", err)
		}

		return nil
	})
	errg.Go(func() error {
		var err error
		users, err = a.Users(ctx)
		if err != nil {
			a.logger.WithError(err).Warn("users failed to load, author omitted")
		}

		return nil
	})

	if err := errg.Wait(); err != nil {
		return domain.PostDetail{}, err
	}

	return domain.PostDetail{
		Post:     view.Attach([]domain.Post{post}, users)[0],
		Comments: comments,
	}, nil
}

func postByID(id int) func(domain.Post) bool {
	return func(p domain.Post) bool {
		return p.ID == id
	}
}

func commentByID(id int) func(domain.Comment) bool {
	return func(c domain.Comment) bool {
		return c.ID == id
	}
}
