package watchlist

import (
	"fmt"
	"slices"
	"strings"
)

// SortField orders the view.
type SortField string

const (
	SortAdded   SortField = "added" // watchlist order, newest addition first
	SortTitle   SortField = "title"
	SortRelease SortField = "release"
	SortRating  SortField = "rating"
	SortRuntime SortField = "runtime"
)

// ParseSortField validates a sort name. Empty selects SortAdded.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(s)); f {
	case "":
		return SortAdded, nil
	case SortAdded, SortTitle, SortRelease, SortRating, SortRuntime:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field %q", s)
	}
}

// Filter narrows and orders the view. The zero value keeps everything in
// watchlist order.
type Filter struct {
	Query      string   // fuzzy title match
	Genre      string   // genre name, case-insensitive
	Services   []string // keep movies streaming on any of these
	MaxRuntime int      // minutes; 0 means no limit
	Sort       SortField
	Descending bool
}

// Apply returns the matching items in the requested order. items is not
// modified. Movies with an unknown runtime sort after the rest whichever
// way runtime is ordered.
func (f Filter) Apply(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.keep(it) {
			out = append(out, it)
		}
	}

	cmp := f.compare()
	slices.SortStableFunc(out, func(a, b Item) int {
		// Unknown runtimes go last in either direction.
		if f.Sort == SortRuntime && (a.Runtime == nil || b.Runtime == nil) {
			return nilsLast(a.Runtime, b.Runtime)
		}
		c := cmp(a, b)
		if f.Descending {
			return -c
		}
		return c
	})
	return out
}

func (f Filter) keep(it Item) bool {
	if q := strings.TrimSpace(f.Query); q != "" && !matchesTitle(q, it.Title) {
		return false
	}
	if f.Genre != "" && !containsFold(it.Genres, f.Genre) {
		return false
	}
	if len(f.Services) > 0 && !slices.ContainsFunc(f.Services, func(svc string) bool {
		return containsFold(it.StreamingOn, svc)
	}) {
		return false
	}
	if f.MaxRuntime > 0 && (it.Runtime == nil || *it.Runtime > f.MaxRuntime) {
		return false
	}
	return true
}

func (f Filter) compare() func(a, b Item) int {
	switch f.Sort {
	case SortTitle:
		return func(a, b Item) int {
			return strings.Compare(cleanTitle(a.Title), cleanTitle(b.Title))
		}
	case SortRelease:
		return func(a, b Item) int { return strings.Compare(a.ReleaseDate, b.ReleaseDate) }
	case SortRating:
		return func(a, b Item) int {
			switch {
			case a.VoteAverage < b.VoteAverage:
				return -1
			case a.VoteAverage > b.VoteAverage:
				return 1
			}
			return 0
		}
	case SortRuntime:
		return func(a, b Item) int { return *a.Runtime - *b.Runtime }
	default:
		return func(a, b Item) int { return a.Position - b.Position }
	}
}

func nilsLast(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return 0
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool {
		return strings.EqualFold(v, s)
	})
}
