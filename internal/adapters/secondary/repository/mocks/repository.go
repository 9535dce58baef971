package mocks

import (
	"context"

	"github.com/denchenko/pa/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of app.Repository.
type MockRepository struct {
	mock.Mock
}

// ListPosts mocks the ListPosts method.
func (m *MockRepository) ListPosts(ctx context.Context, params domain.ListPostsParams) (domain.Page[domain.Post], error) {
	args := m.Called(ctx, params)

	return args.Get(0).(domain.Page[domain.Post]), args.Error(1)
}

// SearchPosts mocks the SearchPosts method.
func (m *MockRepository) SearchPosts(ctx context.Context, q string) (domain.Page[domain.Post], error) {
	args := m.Called(ctx, q)

	return args.Get(0).(domain.Page[domain.Post]), args.Error(1)
}

// PostsByTag mocks the PostsByTag method.
func (m *MockRepository) PostsByTag(ctx context.Context, tag string) (domain.Page[domain.Post], error) {
	args := m.Called(ctx, tag)

	return args.Get(0).(domain.Page[domain.Post]), args.Error(1)
}

// GetPost mocks the GetPost method.
func (m *MockRepository) GetPost(ctx context.Context, id int) (domain.Post, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(domain.Post), args.Error(1)
}

// CreatePost mocks the CreatePost method.
func (m *MockRepository) CreatePost(ctx context.Context, req domain.CreatePostRequest) (domain.Post, error) {
	args := m.Called(ctx, req)

	return args.Get(0).(domain.Post), args.Error(1)
}

// UpdatePost mocks the UpdatePost method.
func (m *MockRepository) UpdatePost(ctx context.Context, id int, req domain.UpdatePostRequest) (domain.Post, error) {
	args := m.Called(ctx, id, req)

	return args.Get(0).(domain.Post), args.Error(1)
}

// DeletePost mocks the DeletePost method.
func (m *MockRepository) DeletePost(ctx context.Context, id int) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// ListComments mocks the ListComments method.
func (m *MockRepository) ListComments(ctx context.Context, postID int) (domain.Page[domain.Comment], error) {
	args := m.Called(ctx, postID)

	return args.Get(0).(domain.Page[domain.Comment]), args.Error(1)
}

// CreateComment mocks the CreateComment method.
func (m *MockRepository) CreateComment(ctx context.Context, req domain.CreateCommentRequest) (domain.Comment, error) {
	args := m.Called(ctx, req)

	return args.Get(0).(domain.Comment), args.Error(1)
}

// UpdateComment mocks the UpdateComment method.
func (m *MockRepository) UpdateComment(
	ctx context.Context,
	id int,
	req domain.UpdateCommentRequest,
) (domain.Comment, error) {
	args := m.Called(ctx, id, req)

	return args.Get(0).(domain.Comment), args.Error(1)
}

// DeleteComment mocks the DeleteComment method.
func (m *MockRepository) DeleteComment(ctx context.Context, id int) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// LikeComment mocks the LikeComment method.
func (m *MockRepository) LikeComment(ctx context.Context, id, likes int) (domain.Comment, error) {
	args := m.Called(ctx, id, likes)

	return args.Get(0).(domain.Comment), args.Error(1)
}

// ListUsers mocks the ListUsers method.
func (m *MockRepository) ListUsers(ctx context.Context, params domain.ListUsersParams) ([]domain.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.User), args.Error(1)
}

// GetUser mocks the GetUser method.
func (m *MockRepository) GetUser(ctx context.Context, id int) (domain.User, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(domain.User), args.Error(1)
}

// ListTags mocks the ListTags method.
func (m *MockRepository) ListTags(ctx context.Context) ([]domain.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Tag), args.Error(1)
}
