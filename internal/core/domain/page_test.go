package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_Prepend(t *testing.T) {
	tests := []struct {
		name          string
		page          Page[int]
		item          int
		expectedItems []int
		expectedTotal int
	}{
		{
			name:          "room on page",
			page:          Page[int]{Items: []int{1, 2}, Total: 2, Limit: 10},
			item:          3,
			expectedItems: []int{3, 1, 2},
			expectedTotal: 3,
		},
		{
			name:          "full page drops the tail",
			page:          Page[int]{Items: []int{1, 2}, Total: 5, Limit: 2},
			item:          3,
			expectedItems: []int{3, 1},
			expectedTotal: 6,
		},
		{
			name:          "unbounded limit",
			page:          Page[int]{Items: []int{1}, Total: 1},
			item:          2,
			expectedItems: []int{2, 1},
			expectedTotal: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.page.Clone()

			got := tt.page.Prepend(tt.item)

			assert.Equal(t, tt.expectedItems, got.Items)
			assert.Equal(t, tt.expectedTotal, got.Total)
			assert.Equal(t, original, tt.page, "receiver must not change")
		})
	}
}

func TestPage_Append(t *testing.T) {
	tests := []struct {
		name          string
		page          Page[int]
		expectedItems []int
		expectedTotal int
		expectedLimit int
	}{
		{
			name:          "room on page",
			page:          Page[int]{Items: []int{1, 2}, Total: 2, Limit: 10},
			expectedItems: []int{1, 2, 3},
			expectedTotal: 3,
			expectedLimit: 10,
		},
		{
			name:          "full page grows its limit",
			page:          Page[int]{Items: []int{1, 2}, Total: 2, Limit: 2},
			expectedItems: []int{1, 2, 3},
			expectedTotal: 3,
			expectedLimit: 3,
		},
		{
			name:          "unbounded limit",
			page:          Page[int]{Items: []int{1, 2}, Total: 2},
			expectedItems: []int{1, 2, 3},
			expectedTotal: 3,
			expectedLimit: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.page.Clone()

			got := tt.page.Append(3)

			assert.Equal(t, tt.expectedItems, got.Items)
			assert.Equal(t, tt.expectedTotal, got.Total)
			assert.Equal(t, tt.expectedLimit, got.Limit)
			if got.Limit > 0 {
				assert.LessOrEqual(t, len(got.Items), got.Limit)
			}
			assert.Equal(t, original, tt.page, "receiver must not change")
		})
	}
}

func TestPage_Remove(t *testing.T) {
	page := Page[int]{Items: []int{1, 2, 3}, Total: 3, Limit: 10}

	got := page.Remove(func(i int) bool { return i == 2 })

	assert.Equal(t, []int{1, 3}, got.Items)
	assert.Equal(t, 2, got.Total)

	got = page.Remove(func(int) bool { return false })
	assert.Equal(t, 3, got.Total)
}

func TestPage_RemoveKeepsTotalAboveItems(t *testing.T) {
	page := Page[int]{Items: []int{1, 2, 3}, Total: 1}

	got := page.Remove(func(i int) bool { return i == 1 })

	assert.Equal(t, 2, got.Total)
}

func TestPage_MapAndFind(t *testing.T) {
	page := Page[int]{Items: []int{1, 2, 3}, Total: 3}

	got := page.Map(func(i int) int { return i * 10 })
	assert.Equal(t, []int{10, 20, 30}, got.Items)
	assert.Equal(t, []int{1, 2, 3}, page.Items)

	item, ok := got.Find(func(i int) bool { return i > 15 })
	require.True(t, ok)
	assert.Equal(t, 20, item)

	_, ok = got.Find(func(i int) bool { return i > 100 })
	assert.False(t, ok)
}

func TestTempIDs(t *testing.T) {
	var ids TempIDs

	assert.Equal(t, -1, ids.Next())
	assert.Equal(t, -2, ids.Next())

	seen := sync.Map{}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ids.Next()
			_, dup := seen.LoadOrStore(id, struct{}{})
			assert.False(t, dup)
			assert.True(t, IsTemporaryID(id))
		}()
	}
	wg.Wait()

	assert.False(t, IsTemporaryID(1))
	assert.False(t, IsTemporaryID(0))
}

func TestUpdatePostRequest_Apply(t *testing.T) {
	title := "new title"
	post := Post{ID: 1, Title: "old", Body: "body"}

	got := UpdatePostRequest{Title: &title}.Apply(post)

	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, "body", got.Body)
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Emily Johnson", (&User{FirstName: "Emily", LastName: "Johnson"}).FullName())
	assert.Equal(t, "Emily", (&User{FirstName: "Emily"}).FullName())
	assert.Equal(t, "Johnson", (&User{LastName: "Johnson"}).FullName())
}
