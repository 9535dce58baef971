package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/denchenko/pa/internal/core/domain"
)

// Transport performs JSON requests against the remote API.
type Transport interface {
	Get(ctx context.Context, path string, params, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// StatusFunc extracts the HTTP status code from a transport error, zero if none.
type StatusFunc func(err error) int

// Repository implements the app.Repository interface over the REST API.
type Repository struct {
	transport Transport
	status    StatusFunc
}

// NewRepository creates a new REST repository instance.
func NewRepository(transport Transport, status StatusFunc) *Repository {
	return &Repository{
		transport: transport,
		status:    status,
	}
}

type postsResponse struct {
	Posts []domain.Post `json:"posts"`
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
}

func (r postsResponse) page() domain.Page[domain.Post] {
	return domain.Page[domain.Post]{
		Items: nonNil(r.Posts),
		Total: max(r.Total, len(r.Posts)),
		Skip:  r.Skip,
		Limit: r.Limit,
	}
}

type commentsResponse struct {
	Comments []domain.Comment `json:"comments"`
	Total    int              `json:"total"`
	Skip     int              `json:"skip"`
	Limit    int              `json:"limit"`
}

type usersResponse struct {
	Users []domain.User `json:"users"`
}

// wireTag accepts both tag encodings the API has served: a bare string and
// a {slug, name, url} object.
type wireTag domain.Tag

func (t *wireTag) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = wireTag{Slug: s, Name: s}

		return nil
	}

	var obj domain.Tag
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("failed to decode tag: %w", err)
	}
	if obj.Name == "" {
		obj.Name = obj.Slug
	}
	*t = wireTag(obj)

	return nil
}

// ListPosts fetches one page of posts.
func (r *Repository) ListPosts(ctx context.Context, params domain.ListPostsParams) (domain.Page[domain.Post], error) {
	var resp postsResponse
	if err := r.transport.Get(ctx, "/posts", params, &resp); err != nil {
		return domain.Page[domain.Post]{}, r.wrap(err, "failed to list posts")
	}

	return resp.page(), nil
}

// SearchPosts fetches posts matching q.
func (r *Repository) SearchPosts(ctx context.Context, q string) (domain.Page[domain.Post], error) {
	params := struct {
		Q string `url:"q"`
	}{Q: q}

	var resp postsResponse
	if err := r.transport.Get(ctx, "/posts/search", params, &resp); err != nil {
		return domain.Page[domain.Post]{}, r.wrap(err, "failed to search posts")
	}

	return resp.page(), nil
}

// PostsByTag fetches posts carrying tag.
func (r *Repository) PostsByTag(ctx context.Context, tag string) (domain.Page[domain.Post], error) {
	var resp postsResponse
	if err := r.transport.Get(ctx, "/posts/tag/"+url.PathEscape(tag), nil, &resp); err != nil {
		return domain.Page[domain.Post]{}, r.wrap(err, "failed to list posts by tag")
	}

	return resp.page(), nil
}

func (r *Repository) GetPost(ctx context.Context, id int) (domain.Post, error) {
	var post domain.Post
	if err := r.transport.Get(ctx, postPath(id), nil, &post); err != nil {
		return domain.Post{}, r.wrap(err, "failed to get post")
	}

	return post, nil
}

func (r *Repository) CreatePost(ctx context.Context, req domain.CreatePostRequest) (domain.Post, error) {
	var post domain.Post
	if err := r.transport.Post(ctx, "/posts/add", req, &post); err != nil {
		return domain.Post{}, r.wrap(err, "failed to create post")
	}

	return post, nil
}

func (r *Repository) UpdatePost(ctx context.Context, id int, req domain.UpdatePostRequest) (domain.Post, error) {
	var post domain.Post
	if err := r.transport.Put(ctx, postPath(id), req, &post); err != nil {
		return domain.Post{}, r.wrap(err, "failed to update post")
	}

	return post, nil
}

func (r *Repository) DeletePost(ctx context.Context, id int) error {
	if err := r.transport.Delete(ctx, postPath(id), nil); err != nil {
		return r.wrap(err, "failed to delete post")
	}

	return nil
}

// ListComments fetches the comments of a post.
func (r *Repository) ListComments(ctx context.Context, postID int) (domain.Page[domain.Comment], error) {
	var resp commentsResponse
	if err := r.transport.Get(ctx, "/comments/post/"+strconv.Itoa(postID), nil, &resp); err != nil {
		return domain.Page[domain.Comment]{}, r.wrap(err, "failed to list comments")
	}

	return domain.Page[domain.Comment]{
		Items: nonNil(resp.Comments),
		Total: max(resp.Total, len(resp.Comments)),
		Skip:  resp.Skip,
		Limit: resp.Limit,
	}, nil
}

func (r *Repository) CreateComment(ctx context.Context, req domain.CreateCommentRequest) (domain.Comment, error) {
	var comment domain.Comment
	if err := r.transport.Post(ctx, "/comments/add", req, &comment); err != nil {
		return domain.Comment{}, r.wrap(err, "failed to create comment")
	}

	return comment, nil
}

func (r *Repository) UpdateComment(
	ctx context.Context,
	id int,
	req domain.UpdateCommentRequest,
) (domain.Comment, error) {
	var comment domain.Comment
	if err := r.transport.Put(ctx, commentPath(id), req, &comment); err != nil {
		return domain.Comment{}, r.wrap(err, "failed to update comment")
	}

	return comment, nil
}

func (r *Repository) DeleteComment(ctx context.Context, id int) error {
	if err := r.transport.Delete(ctx, commentPath(id), nil); err != nil {
		return r.wrap(err, "failed to delete comment")
	}

	return nil
}

// LikeComment stores likes as the comment's new like count.
func (r *Repository) LikeComment(ctx context.Context, id, likes int) (domain.Comment, error) {
	body := struct {
		Likes int `json:"likes"`
	}{Likes: likes}

	var comment domain.Comment
	if err := r.transport.Patch(ctx, commentPath(id), body, &comment); err != nil {
		return domain.Comment{}, r.wrap(err, "failed to like comment")
	}

	return comment, nil
}

// ListUsers fetches users; a zero limit asks for all of them.
func (r *Repository) ListUsers(ctx context.Context, params domain.ListUsersParams) ([]domain.User, error) {
	var resp usersResponse
	if err := r.transport.Get(ctx, "/users", params, &resp); err != nil {
		return nil, r.wrap(err, "failed to list users")
	}

	return nonNil(resp.Users), nil
}

func (r *Repository) GetUser(ctx context.Context, id int) (domain.User, error) {
	var user domain.User
	if err := r.transport.Get(ctx, "/users/"+strconv.Itoa(id), nil, &user); err != nil {
		return domain.User{}, r.wrap(err, "failed to get user")
	}

	return user, nil
}

// ListTags fetches every known tag.
func (r *Repository) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var resp []wireTag
	if err := r.transport.Get(ctx, "/posts/tags", nil, &resp); err != nil {
		return nil, r.wrap(err, "failed to list tags")
	}

	tags := make([]domain.Tag, len(resp))
	for i, t := range resp {
		tags[i] = domain.Tag(t)
	}

	return tags, nil
}

// wrap adds context to err and marks upstream 404s with domain.ErrNotFound.
func (r *Repository) wrap(err error, msg string) error {
	if r.status != nil && r.status(err) == http.StatusNotFound {
		return fmt.Errorf("%s: %w: %w", msg, domain.ErrNotFound, err)
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func postPath(id int) string {
	return "/posts/" + strconv.Itoa(id)
}

func commentPath(id int) string {
	return "/comments/" + strconv.Itoa(id)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}
