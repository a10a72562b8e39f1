package prioritize

import (
	"github.com/Veraticus/pulse/internal/model"
)

// Filter describes a consumer view over a ranked feed. Zero values disable a clause.
type Filter struct {
	Category   model.Category
	UnreadOnly bool
	UrgentOnly bool
	Limit      int
}

// Apply composes the filter clauses over an already sorted feed without re-sorting.
func (f Feed) Apply(filter Filter, state ReadState) Feed {
	view := f
	if filter.Category != "" {
		view = view.ByCategory(filter.Category)
	}
	if filter.UnreadOnly {
		view = view.Unread(state)
	}
	if filter.UrgentOnly {
		view = view.Urgent()
	}
	if filter.Limit > 0 {
		return view.Top(filter.Limit)
	}
	return view.Top(len(view))
}

// Counts summarizes a feed for badges and headers.
type Counts struct {
	ByCategory map[model.Category]int `json:"by_category"`
	Total      int                    `json:"total"`
	Unread     int                    `json:"unread"`
	Urgent     int                    `json:"urgent"`
}

// Count tallies totals, unread and urgent entries, and per-category counts.
func (f Feed) Count(state ReadState) Counts {
	counts := Counts{
		ByCategory: make(map[model.Category]int),
		Total:      len(f),
	}
	for _, n := range f {
		read := n.Read
		if state != nil {
			read = state.IsRead(n.ID)
		}
		if !read {
			counts.Unread++
		}
		if n.Urgent {
			counts.Urgent++
		}
		counts.ByCategory[n.Category]++
	}
	return counts
}
