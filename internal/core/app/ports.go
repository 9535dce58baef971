package app

import (
	"context"

	"github.com/denchenko/pa/internal/core/domain"
)

// PostRepository defines remote post operations (port).
type PostRepository interface {
	ListPosts(ctx context.Context, params domain.ListPostsParams) (domain.Page[domain.Post], error)
	SearchPosts(ctx context.Context, q string) (domain.Page[domain.Post], error)
	PostsByTag(ctx context.Context, tag string) (domain.Page[domain.Post], error)
	GetPost(ctx context.Context, id int) (domain.Post, error)
	CreatePost(ctx context.Context, req domain.CreatePostRequest) (domain.Post, error)
	UpdatePost(ctx context.Context, id int, req domain.UpdatePostRequest) (domain.Post, error)
	DeletePost(ctx context.Context, id int) error
}

// CommentRepository defines remote comment operations (port).
type CommentRepository interface {
	ListComments(ctx context.Context, postID int) (domain.Page[domain.Comment], error)
	CreateComment(ctx context.Context, req domain.CreateCommentRequest) (domain.Comment, error)
	UpdateComment(ctx context.Context, id int, req domain.UpdateCommentRequest) (domain.Comment, error)
	DeleteComment(ctx context.Context, id int) error
	LikeComment(ctx context.Context, id, likes int) (domain.Comment, error)
}

// UserRepository defines remote user operations (port).
type UserRepository interface {
	ListUsers(ctx context.Context, params domain.ListUsersParams) ([]domain.User, error)
	GetUser(ctx context.Context, id int) (domain.User, error)
}

// TagRepository defines remote tag operations (port).
type TagRepository interface {
	ListTags(ctx context.Context) ([]domain.Tag, error)
}

// Repository defines the interface for all remote data operations (port).
type Repository interface {
	PostRepository
	CommentRepository
	UserRepository
	TagRepository
}
