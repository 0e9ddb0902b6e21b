package grouping

import (
	"fmt"
	"testing"

	"github.com/orgball2608/stories-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, authorID string) domain.StoryItem {
	return domain.StoryItem{
		ID:        id,
		AuthorID:  authorID,
		MediaRef:  "https://cdn.example.com/" + id,
		MediaKind: domain.MediaKindImage,
	}
}

func seenSet(ids ...string) map[string]struct{} {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen
}

func authorOrder(groups []domain.StoryGroup) []string {
	order := make([]string, 0, len(groups))
	for _, g := range groups {
		order = append(order, g.AuthorID)
	}
	return order
}

func TestBuildEmptyInput(t *testing.T) {
	assert.Nil(t, Build(nil, nil, "me"))
	assert.Nil(t, Build([]domain.StoryItem{}, seenSet(), "me"))
}

func TestBuildPartitionsByAuthorKeepingItemOrder(t *testing.T) {
	items := []domain.StoryItem{
		item("a2", "alice"),
		item("b1", "bob"),
		item("a1", "alice"),
	}

	groups := Build(items, nil, "me")

	require.Len(t, groups, 2)
	assert.Equal(t, "alice", groups[0].AuthorID)
	assert.Equal(t, []string{"a2", "a1"}, []string{groups[0].Items[0].ID, groups[0].Items[1].ID},
		"within-group order must follow fetched order, not be re-sorted")
	assert.Equal(t, "bob", groups[1].AuthorID)
}

func TestBuildOwnGroupFirstRegardlessOfViewedState(t *testing.T) {
	items := []domain.StoryItem{
		item("b1", "bob"),
		item("me1", "me"),
	}

	groups := Build(items, seenSet("me1"), "me")

	require.Len(t, groups, 2)
	assert.Equal(t, "me", groups[0].AuthorID)
	assert.True(t, groups[0].HasViewed)
}

func TestBuildUnviewedBeforeViewed(t *testing.T) {
	items := []domain.StoryItem{
		item("a1", "alice"),
		item("b1", "bob"),
		item("c1", "carol"),
		item("d1", "dave"),
	}

	groups := Build(items, seenSet("a1", "c1"), "me")

	require.Len(t, groups, 4)
	for i := range groups {
		for j := i + 1; j < len(groups); j++ {
			assert.False(t, groups[i].HasViewed && !groups[j].HasViewed,
				"viewed group %q must not precede unviewed group %q", groups[i].AuthorID, groups[j].AuthorID)
		}
	}
	// Stable: bob and dave keep their relative order, as do alice and carol.
	assert.Equal(t, []string{"bob", "dave", "alice", "carol"}, authorOrder(groups))
}

func TestBuildViewedRequiresEveryItemSeen(t *testing.T) {
	items := []domain.StoryItem{
		item("a1", "alice"),
		item("a2", "alice"),
	}

	groups := Build(items, seenSet("a1"), "me")

	require.Len(t, groups, 1)
	assert.False(t, groups[0].HasViewed)
}

func TestBuildDeterministic(t *testing.T) {
	items := make([]domain.StoryItem, 0, 30)
	for i := 0; i < 30; i++ {
		items = append(items, item(fmt.Sprintf("s%d", i), fmt.Sprintf("author%d", i%7)))
	}
	seen := seenSet("s3", "s10", "s17", "s24")

	first := Build(items, seen, "author2")
	second := Build(items, seen, "author2")

	assert.Equal(t, first, second)
}

// Scenario: groups [Own(1), B(2 unviewed), C(1 viewed)] arriving unordered as
// [C, B, Own] must come out as [Own, B, C].
func TestBuildScenarioOwnUnviewedViewed(t *testing.T) {
	items := []domain.StoryItem{
		item("c1", "carol"),
		item("b1", "bob"),
		item("b2", "bob"),
		item("own1", "me"),
	}

	groups := Build(items, seenSet("c1"), "me")

	assert.Equal(t, []string{"me", "bob", "carol"}, authorOrder(groups))
	assert.False(t, groups[1].HasViewed)
	assert.True(t, groups[2].HasViewed)
}
