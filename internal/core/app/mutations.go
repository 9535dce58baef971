package app

import (
	"context"
	"fmt"

	"github.com/denchenko/pa/internal/core/domain"
	"github.com/denchenko/pa/internal/core/mutation"
	"github.com/denchenko/pa/internal/core/query"
	"github.com/denchenko/pa/internal/core/state"
	"github.com/denchenko/pa/internal/metrics"
	"github.com/sirupsen/logrus"
)

type addPostInput struct {
	key  query.Key
	post domain.Post
}

type editPostInput struct {
	id  int
	req domain.UpdatePostRequest
}

type commentRef struct {
	postID int
	id     int
}

type editCommentInput struct {
	commentRef
	body string
}

type likeInput struct {
	commentRef
	likes int
}

func postsScope() mutation.Scope {
	all := query.Prefix(query.PostsKey())

	return mutation.Scope{Cancel: all, Snapshot: all, Invalidate: all}
}

func commentsScope(postID int) mutation.Scope {
	comments := query.Prefix(query.PostCommentsKey(postID))

	return mutation.Scope{Cancel: comments, Snapshot: comments, Invalidate: comments}
}

// updatePosts applies fn to every cached post, in pages and detail entries alike.
func updatePosts(cache *query.Client, fn func(domain.Post) domain.Post) {
	all := query.Prefix(query.PostsKey())
	query.Update(cache, all, func(p domain.Page[domain.Post]) domain.Page[domain.Post] {
		return p.Map(fn)
	})
	query.Update(cache, all, fn)
}

func replacePost(id int, with func(domain.Post) domain.Post) func(domain.Post) domain.Post {
	return func(p domain.Post) domain.Post {
		if p.ID == id {
			return with(p)
		}

		return p
	}
}

func replaceComment(id int, with func(domain.Comment) domain.Comment) func(domain.Comment) domain.Comment {
	return func(c domain.Comment) domain.Comment {
		if c.ID == id {
			return with(c)
		}

		return c
	}
}

func (a *App) registerMutations(m *metrics.Metrics, logger logrus.FieldLogger) {
	a.addPost = mutation.New(mutation.Definition[addPostInput, domain.Post]{
		Name: "add post",
		Scope: func(in addPostInput) mutation.Scope {
			return mutation.Scope{
				Cancel:     query.Prefix(query.PostsKey()),
				Snapshot:   query.Exact(in.key),
				Invalidate: query.Prefix(query.PostsKey()),
			}
		},
		Optimistic: func(cache *query.Client, in addPostInput) (addPostInput, error) {
			query.SetData(cache, in.key, func(old domain.Page[domain.Post], ok bool) (domain.Page[domain.Post], bool) {
				if !ok {
					return old, false
				}

				return old.Prepend(in.post), true
			})

			return in, nil
		},
		Commit: func(ctx context.Context, in addPostInput) (domain.Post, error) {
			return a.repo.CreatePost(ctx, domain.CreatePostRequest{
				Title:  in.post.Title,
				Body:   in.post.Body,
				UserID: in.post.UserID,
			})
		},
		Confirm: func(cache *query.Client, in addPostInput, out domain.Post) {
			updatePosts(cache, replacePost(in.post.ID, func(domain.Post) domain.Post {
				return out
			}))
		},
	}, a.cache, m, logger)

	a.editPost = mutation.New(mutation.Definition[editPostInput, domain.Post]{
		Name: "edit post",
		Scope: func(editPostInput) mutation.Scope {
			return postsScope()
		},
		Optimistic: func(cache *query.Client, in editPostInput) (editPostInput, error) {
			updatePosts(cache, replacePost(in.id, in.req.Apply))

			return in, nil
		},
		LocalOnly: func(in editPostInput) bool {
			return domain.IsTemporaryID(in.id)
		},
		Commit: func(ctx context.Context, in editPostInput) (domain.Post, error) {
			return a.repo.UpdatePost(ctx, in.id, in.req)
		},
	}, a.cache, m, logger)

	a.deletePost = mutation.New(mutation.Definition[int, struct{}]{
		Name: "delete post",
		Scope: func(int) mutation.Scope {
			return postsScope()
		},
		Optimistic: func(cache *query.Client, id int) (int, error) {
			query.Update(cache, query.Prefix(query.PostsKey()), func(p domain.Page[domain.Post]) domain.Page[domain.Post] {
				return p.Remove(postByID(id))
			})
			cache.Clear(query.PostDetailKey(id))

			return id, nil
		},
		LocalOnly: domain.IsTemporaryID,
		Commit: func(ctx context.Context, id int) (struct{}, error) {
			return struct{}{}, a.repo.DeletePost(ctx, id)
		},
	}, a.cache, m, logger)

	a.addComment = mutation.New(mutation.Definition[domain.Comment, domain.Comment]{
		Name: "add comment",
		Scope: func(c domain.Comment) mutation.Scope {
			return commentsScope(c.PostID)
		},
		Optimistic: func(cache *query.Client, c domain.Comment) (domain.Comment, error) {
			query.SetData(cache, query.PostCommentsKey(c.PostID),
				func(old domain.Page[domain.Comment], ok bool) (domain.Page[domain.Comment], bool) {
					if !ok {
						return old, false
					}

					return old.Append(c), true
				})

			return c, nil
		},
		LocalOnly: func(c domain.Comment) bool {
			return domain.IsTemporaryID(c.PostID)
		},
		Commit: func(ctx context.Context, c domain.Comment) (domain.Comment, error) {
			return a.repo.CreateComment(ctx, domain.CreateCommentRequest{
				Body:   c.Body,
				PostID: c.PostID,
				UserID: c.User.ID,
			})
		},
		Confirm: func(cache *query.Client, c domain.Comment, out domain.Comment) {
			if out.ID == 0 {
				return
			}
			if out.User.ID == 0 {
				out.User = c.User
			}

			query.SetData(cache, query.PostCommentsKey(c.PostID),
				func(old domain.Page[domain.Comment], ok bool) (domain.Page[domain.Comment], bool) {
					if !ok {
						return old, false
					}

					return old.Map(replaceComment(c.ID, func(domain.Comment) domain.Comment {
						return out
					})), true
				})
		},
	}, a.cache, m, logger)

	a.editComment = mutation.New(mutation.Definition[editCommentInput, domain.Comment]{
		Name: "edit comment",
		Scope: func(in editCommentInput) mutation.Scope {
			return commentsScope(in.postID)
		},
		Optimistic: func(cache *query.Client, in editCommentInput) (editCommentInput, error) {
			query.Update(cache, query.Prefix(query.PostCommentsKey(in.postID)),
				func(p domain.Page[domain.Comment]) domain.Page[domain.Comment] {
					return p.Map(replaceComment(in.id, func(c domain.Comment) domain.Comment {
						c.Body = in.body

						return c
					}))
				})

			return in, nil
		},
		LocalOnly: func(in editCommentInput) bool {
			return domain.IsTemporaryID(in.id)
		},
		Commit: func(ctx context.Context, in editCommentInput) (domain.Comment, error) {
			return a.repo.UpdateComment(ctx, in.id, domain.UpdateCommentRequest{Body: in.body})
		},
	}, a.cache, m, logger)

	a.deleteComment = mutation.New(mutation.Definition[commentRef, struct{}]{
		Name: "delete comment",
		Scope: func(in commentRef) mutation.Scope {
			return commentsScope(in.postID)
		},
		Optimistic: func(cache *query.Client, in commentRef) (commentRef, error) {
			query.Update(cache, query.Prefix(query.PostCommentsKey(in.postID)),
				func(p domain.Page[domain.Comment]) domain.Page[domain.Comment] {
					return p.Remove(commentByID(in.id))
				})

			return in, nil
		},
		LocalOnly: func(in commentRef) bool {
			return domain.IsTemporaryID(in.id)
		},
		Commit: func(ctx context.Context, in commentRef) (struct{}, error) {
			return struct{}{}, a.repo.DeleteComment(ctx, in.id)
		},
	}, a.cache, m, logger)

	a.likeComment = mutation.New(mutation.Definition[likeInput, domain.Comment]{
		Name: "like comment",
		Scope: func(in likeInput) mutation.Scope {
			return commentsScope(in.postID)
		},
		// The new count is derived from the cached one while the cache lock is
		// held, so a like always adds exactly one to the latest known value.
		Optimistic: func(cache *query.Client, in likeInput) (likeInput, error) {
			found := false
			query.SetData(cache, query.PostCommentsKey(in.postID),
				func(old domain.Page[domain.Comment], ok bool) (domain.Page[domain.Comment], bool) {
					if !ok {
						return old, false
					}

					c, exists := old.Find(commentByID(in.id))
					if !exists {
						return old, false
					}

					found = true
					in.likes = c.Likes + 1

					return old.Map(replaceComment(in.id, func(c domain.Comment) domain.Comment {
						c.Likes = in.likes

						return c
					})), true
				})

			if !found {
				return in, fmt.Errorf("comment %d of post %d: %w", in.id, in.postID, domain.ErrNotFound)
			}

			return in, nil
		},
		LocalOnly: func(in likeInput) bool {
			return domain.IsTemporaryID(in.id)
		},
		Commit: func(ctx context.Context, in likeInput) (domain.Comment, error) {
			return a.repo.LikeComment(ctx, in.id, in.likes)
		},
	}, a.cache, m, logger)
}

// AddPost creates a post by the acting user. It appears first on the current
// page immediately under a temporary id and is replaced by the server's copy
// once confirmed.
func (a *App) AddPost(ctx context.Context, title, body string) (domain.Post, error) {
	return a.AddPostFor(ctx, a.state.Filter.Get(), a.state.Pagination.Get(), title, body)
}

// AddPostFor is AddPost with the new post shown on the list page for f and p.
func (a *App) AddPostFor(ctx context.Context, f state.Filter, p state.Page, title, body string) (domain.Post, error) {
	in := addPostInput{
		key: query.PostListKey(ListParams(f, p)),
		post: domain.Post{
			ID:     a.tempIDs.Next(),
			Title:  title,
			Body:   body,
			UserID: a.userID,
			Tags:   []string{},
		},
	}

	return a.addPost.Execute(ctx, in)
}

// UpdatePost merges a partial update into a post.
func (a *App) UpdatePost(ctx context.Context, id int, req domain.UpdatePostRequest) (domain.Post, error) {
	post, err := a.editPost.Execute(ctx, editPostInput{id: id, req: req})
	if err != nil {
		return domain.Post{}, err
	}

	if domain.IsTemporaryID(id) {
		post, _ = a.cachedPost(id, true)
	}

	return post, nil
}

// DeletePost removes a post from every cached page and from the server.
func (a *App) DeletePost(ctx context.Context, id int) error {
	_, err := a.deletePost.Execute(ctx, id)

	return err
}

// AddComment appends a comment by the acting user to a post.
func (a *App) AddComment(ctx context.Context, postID int, body string) (domain.Comment, error) {
	c := domain.Comment{
		ID:     a.tempIDs.Next(),
		Body:   body,
		PostID: postID,
		User:   a.actingUser(),
	}

	out, err := a.addComment.Execute(ctx, c)
	if err != nil {
		return domain.Comment{}, err
	}
	if out.ID == 0 {
		return c, nil
	}

	return out, nil
}

func (a *App) actingUser() domain.CommentUser {
	u := domain.CommentUser{ID: a.userID}

	if users, ok := query.Get[[]domain.User](a.cache, query.UsersKey()); ok {
		for _, user := range users {
			if user.ID == a.userID {
				u.Username = user.Username
				u.FullName = user.FullName()

				break
			}
		}
	}

	return u
}

// UpdateComment replaces the body of a comment.
func (a *App) UpdateComment(ctx context.Context, postID, id int, body string) (domain.Comment, error) {
	in := editCommentInput{commentRef: commentRef{postID: postID, id: id}, body: body}

	c, err := a.editComment.Execute(ctx, in)
	if err != nil {
		return domain.Comment{}, err
	}

	if c.ID == 0 {
		c, _ = a.cachedComment(postID, id)
	}

	return c, nil
}

// DeleteComment removes a comment from its post.
func (a *App) DeleteComment(ctx context.Context, postID, id int) error {
	_, err := a.deleteComment.Execute(ctx, commentRef{postID: postID, id: id})

	return err
}

// LikeComment adds one like to a comment. The post's comments are loaded
// first when they are not cached, since the new count derives from them.
func (a *App) LikeComment(ctx context.Context, postID, id int) (domain.Comment, error) {
	if _, ok := query.Get[domain.Page[domain.Comment]](a.cache, query.PostCommentsKey(postID)); !ok {
		if _, err := a.Comments(ctx, postID); err != nil {
			return domain.Comment{}, fmt.Errorf("failed to like comment: %w", err)
		}
	}

	if _, err := a.likeComment.Execute(ctx, likeInput{commentRef: commentRef{postID: postID, id: id}}); err != nil {
		return domain.Comment{}, err
	}

	c, _ := a.cachedComment(postID, id)

	return c, nil
}

func (a *App) cachedComment(postID, id int) (domain.Comment, bool) {
	page, ok := query.Get[domain.Page[domain.Comment]](a.cache, query.PostCommentsKey(postID))
	if !ok {
		return domain.Comment{}, false
	}

	return page.Find(commentByID(id))
}
