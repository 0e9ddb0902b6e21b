package grouping

import (
	"sort"

	"github.com/orgball2608/stories-engine/internal/domain"
)

// Build partitions a flat, repository-ordered list of live story items into
// per-author groups and orders them for display: the viewer's own group
// first (when present), then groups with unseen items, then fully viewed
// ones. The sort is stable, so groups with equal viewed state keep the order
// in which their first item appeared in the input, and items inside a group
// keep the input order untouched (newest-first, per the repository's
// ListLive contract).
//
// An empty input yields a nil output. No placeholder is synthesized when the
// viewer has no live items of their own.
func Build(items []domain.StoryItem, seen map[string]struct{}, viewerID string) []domain.StoryGroup {
	if len(items) == 0 {
		return nil
	}

	indexByAuthor := make(map[string]int)
	groups := make([]domain.StoryGroup, 0)
	for _, item := range items {
		idx, ok := indexByAuthor[item.AuthorID]
		if !ok {
			idx = len(groups)
			indexByAuthor[item.AuthorID] = idx
			groups = append(groups, domain.StoryGroup{AuthorID: item.AuthorID})
		}
		groups[idx].Items = append(groups[idx].Items, item)
	}

	for i := range groups {
		groups[i].HasViewed = allViewed(groups[i].Items, seen)
	}

	ordered := make([]domain.StoryGroup, 0, len(groups))
	rest := make([]domain.StoryGroup, 0, len(groups))
	for i := range groups {
		if groups[i].AuthorID == viewerID {
			ordered = append(ordered, groups[i])
			continue
		}
		rest = append(rest, groups[i])
	}

	sort.SliceStable(rest, func(i, j int) bool {
		return !rest[i].HasViewed && rest[j].HasViewed
	})

	return append(ordered, rest...)
}

func allViewed(items []domain.StoryItem, seen map[string]struct{}) bool {
	for _, item := range items {
		if _, ok := seen[item.ID]; !ok {
			return false
		}
	}
	return true
}
