package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/denchenko/pa/internal/adapters/secondary/api"
	"github.com/denchenko/pa/internal/core/domain"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	body   string
}

func newTestRepository(t *testing.T, status int, response string) (*Repository, *recorded) {
	t.Helper()

	rec := &recorded{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.method = r.Method
		rec.path = r.URL.EscapedPath()
		rec.query = r.URL.RawQuery
		rec.body = string(b)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	logger, _ := logtest.NewNullLogger()
	client, err := api.NewClient(api.Options{BaseURL: server.URL, Logger: logger})
	require.NoError(t, err)

	return NewRepository(client, api.StatusCode), rec
}

func TestRepository_ListPosts(t *testing.T) {
	repo, rec := newTestRepository(t, http.StatusOK,
		`{"posts":[{"id":1,"title":"His mother had always taught him","userId":121,"tags":["history"],`+
			`"reactions":{"likes":192,"dislikes":25},"views":305}],"total":251,"skip":0,"limit":1}`)

	page, err := repo.ListPosts(context.Background(), domain.ListPostsParams{Limit: 1, SortBy: "title", Order: "desc"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/posts", rec.path)
	assert.Equal(t, "limit=1&order=desc&skip=0&sortBy=title", rec.query)

	require.Len(t, page.Items, 1)
	assert.Equal(t, 251, page.Total)
	assert.Equal(t, 1, page.Limit)
	assert.Equal(t, 121, page.Items[0].UserID)
	assert.Equal(t, 192, page.Items[0].Reactions.Likes)
	assert.Equal(t, []string{"history"}, page.Items[0].Tags)
}

func TestRepository_SearchAndTag(t *testing.T) {
	tests := []struct {
		name          string
		call          func(r *Repository) (domain.Page[domain.Post], error)
		expectedPath  string
		expectedQuery string
	}{
		{
			name: "search",
			call: func(r *Repository) (domain.Page[domain.Post], error) {
				return r.SearchPosts(context.Background(), "love story")
			},
			expectedPath:  "/posts/search",
			expectedQuery: "q=love+story",
		},
		{
			name: "tag is path escaped",
			call: func(r *Repository) (domain.Page[domain.Post], error) {
				return r.PostsByTag(context.Background(), "science fiction")
			},
			expectedPath: "/posts/tag/science%20fiction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, rec := newTestRepository(t, http.StatusOK, `{"posts":[],"total":0,"skip":0,"limit":0}`)

			page, err := tt.call(repo)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedPath, rec.path)
			assert.Equal(t, tt.expectedQuery, rec.query)
			assert.NotNil(t, page.Items)
		})
	}
}

func TestRepository_GetPost(t *testing.T) {
	repo, rec := newTestRepository(t, http.StatusOK, `{"id":12,"title":"t","userId":3}`)

	post, err := repo.GetPost(context.Background(), 12)

	require.NoError(t, err)
	assert.Equal(t, "/posts/12", rec.path)
	assert.Equal(t, 12, post.ID)
	assert.Equal(t, 3, post.UserID)
}

func TestRepository_PostWrites(t *testing.T) {
	title := "new title"

	tests := []struct {
		name           string
		call           func(r *Repository) error
		expectedMethod string
		expectedPath   string
		expectedBody   string
	}{
		{
			name: "create",
			call: func(r *Repository) error {
				_, err := r.CreatePost(context.Background(), domain.CreatePostRequest{Title: "t", Body: "b", UserID: 5})

				return err
			},
			expectedMethod: http.MethodPost,
			expectedPath:   "/posts/add",
			expectedBody:   `{"title":"t","body":"b","userId":5}`,
		},
		{
			name: "partial update",
			call: func(r *Repository) error {
				_, err := r.UpdatePost(context.Background(), 7, domain.UpdatePostRequest{Title: &title})

				return err
			},
			expectedMethod: http.MethodPut,
			expectedPath:   "/posts/7",
			expectedBody:   `{"title":"new title"}`,
		},
		{
			name: "delete",
			call: func(r *Repository) error {
				return r.DeletePost(context.Background(), 7)
			},
			expectedMethod: http.MethodDelete,
			expectedPath:   "/posts/7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, rec := newTestRepository(t, http.StatusOK, `{"id":7,"title":"t"}`)

			require.NoError(t, tt.call(repo))
			assert.Equal(t, tt.expectedMethod, rec.method)
			assert.Equal(t, tt.expectedPath, rec.path)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rec.body)
			}
		})
	}
}

func TestRepository_Comments(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		repo, rec := newTestRepository(t, http.StatusOK,
			`{"comments":[{"id":3,"body":"nice","postId":5,"likes":3,`+
				`"user":{"id":9,"username":"emilys","fullName":"Emily Johnson"}}],"total":1,"skip":0,"limit":30}`)

		page, err := repo.ListComments(context.Background(), 5)

		require.NoError(t, err)
		assert.Equal(t, "/comments/post/5", rec.path)
		require.Len(t, page.Items, 1)
		assert.Equal(t, 3, page.Items[0].Likes)
		assert.Equal(t, "Emily Johnson", page.Items[0].User.FullName)
	})

	t.Run("like sends the new count", func(t *testing.T) {
		repo, rec := newTestRepository(t, http.StatusOK, `{"id":3,"likes":4}`)

		comment, err := repo.LikeComment(context.Background(), 3, 4)

		require.NoError(t, err)
		assert.Equal(t, http.MethodPatch, rec.method)
		assert.Equal(t, "/comments/3", rec.path)
		assert.JSONEq(t, `{"likes":4}`, rec.body)
		assert.Equal(t, 4, comment.Likes)
	})

	t.Run("create", func(t *testing.T) {
		repo, rec := newTestRepository(t, http.StatusCreated, `{"id":341,"body":"hi","postId":5}`)

		comment, err := repo.CreateComment(context.Background(), domain.CreateCommentRequest{Body: "hi", PostID: 5, UserID: 1})

		require.NoError(t, err)
		assert.Equal(t, "/comments/add", rec.path)
		assert.JSONEq(t, `{"body":"hi","postId":5,"userId":1}`, rec.body)
		assert.Equal(t, 341, comment.ID)
	})

	t.Run("update and delete", func(t *testing.T) {
		repo, rec := newTestRepository(t, http.StatusOK, `{"id":3,"body":"edited"}`)

		_, err := repo.UpdateComment(context.Background(), 3, domain.UpdateCommentRequest{Body: "edited"})
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, rec.method)
		assert.JSONEq(t, `{"body":"edited"}`, rec.body)

		require.NoError(t, repo.DeleteComment(context.Background(), 3))
		assert.Equal(t, http.MethodDelete, rec.method)
		assert.Equal(t, "/comments/3", rec.path)
	})
}

func TestRepository_Users(t *testing.T) {
	repo, rec := newTestRepository(t, http.StatusOK,
		`{"users":[{"id":1,"username":"emilys","image":"https://dummyjson.com/icon/emilys/128"}],"total":208}`)

	users, err := repo.ListUsers(context.Background(), domain.ListUsersParams{Select: "username,image"})

	require.NoError(t, err)
	assert.Equal(t, "/users", rec.path)
	assert.Equal(t, "limit=0&select=username%2Cimage", rec.query)
	require.Len(t, users, 1)
	assert.Equal(t, "emilys", users[0].Username)
}

func TestRepository_ListTags(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected []domain.Tag
	}{
		{
			name:     "strings",
			response: `["history","crime"]`,
			expected: []domain.Tag{{Slug: "history", Name: "history"}, {Slug: "crime", Name: "crime"}},
		},
		{
			name:     "objects",
			response: `[{"slug":"history","name":"History","url":"https://dummyjson.com/posts/tag/history"}]`,
			expected: []domain.Tag{
				{Slug: "history", Name: "History", URL: "https://dummyjson.com/posts/tag/history"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, rec := newTestRepository(t, http.StatusOK, tt.response)

			tags, err := repo.ListTags(context.Background())

			require.NoError(t, err)
			assert.Equal(t, "/posts/tags", rec.path)
			assert.Equal(t, tt.expected, tags)
		})
	}
}

func TestRepository_Errors(t *testing.T) {
	t.Run("404 is not found", func(t *testing.T) {
		repo, _ := newTestRepository(t, http.StatusNotFound, `{"message":"User with id '999' not found"}`)

		_, err := repo.GetUser(context.Background(), 999)

		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
		assert.Contains(t, err.Error(), "failed to get user")
	})

	t.Run("500 keeps status", func(t *testing.T) {
		repo, _ := newTestRepository(t, http.StatusInternalServerError, `{}`)

		err := repo.DeletePost(context.Background(), 1)

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, http.StatusInternalServerError, api.StatusCode(err))
	})
}

func TestWireTag_Invalid(t *testing.T) {
	var tags []wireTag
	err := json.Unmarshal([]byte(`[42]`), &tags)
	require.Error(t, err)
}
