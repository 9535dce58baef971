package link

import (
	"testing"

	"github.com/denchenko/pa/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinker_MakeURL(t *testing.T) {
	tests := []struct {
		name        string
		template    string
		post        domain.Post
		expected    string
		configured  bool
		expectError bool
	}{
		{
			name:       "id template",
			template:   "https://dummyjson.com/posts/{{.ID}}",
			post:       domain.Post{ID: 5},
			expected:   "https://dummyjson.com/posts/5",
			configured: true,
		},
		{
			name:       "user template",
			template:   "https://admin.example.com/users/{{.UserID}}/posts/{{.ID}}",
			post:       domain.Post{ID: 5, UserID: 121},
			expected:   "https://admin.example.com/users/121/posts/5",
			configured: true,
		},
		{
			name:     "no template",
			post:     domain.Post{ID: 5},
			expected: "",
		},
		{
			name:        "unknown field",
			template:    "https://example.com/{{.Slug}}",
			post:        domain.Post{ID: 5},
			configured:  true,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLinker(tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.configured, l.Configured())

			url, err := l.MakeURL(tt.post)

			if tt.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, url)
			}
		})
	}
}

func TestNewLinker_InvalidTemplate(t *testing.T) {
	l, err := NewLinker("https://example.com/{{.ID")

	require.Error(t, err)
	assert.Nil(t, l)
}
