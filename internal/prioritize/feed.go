// Package prioritize ranks notifications and exposes the filtered views consumers
// render: by category, unread only, urgent only and top N.
//
// Every function returns a fresh slice; inputs are never reordered or mutated.
package prioritize

import (
	"cmp"
	"slices"
	"time"

	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/scoring"
)

// ReadState answers whether a consumer has read a notification. Read state is owned
// by the store; the feed only consults it.
type ReadState interface {
	IsRead(id string) bool
}

// ReadSet is an in-memory ReadState keyed by notification id.
type ReadSet map[string]struct{}

// NewReadSet builds a ReadSet from ids.
func NewReadSet(ids ...string) ReadSet {
	s := make(ReadSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// IsRead implements ReadState.
func (s ReadSet) IsRead(id string) bool {
	_, ok := s[id]
	return ok
}

// Feed is a ranked list of scored notifications.
type Feed []model.ScoredNotification

// Prioritize scores every record and returns them ordered by priority descending,
// then by creation time descending. Records equal on both keep their input order,
// so identical input always yields identical output.
func Prioritize(records []model.Notification, now time.Time, cfg scoring.Config) Feed {
	feed := make(Feed, len(records))
	for i, n := range records {
		feed[i] = scoring.ScoreNotification(n, now, cfg)
	}

	slices.SortStableFunc(feed, compareScored)
	return feed
}

func compareScored(a, b model.ScoredNotification) int {
	if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
		return c
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

// ByCategory keeps notifications of exactly category c.
func (f Feed) ByCategory(c model.Category) Feed {
	return f.filter(func(n model.ScoredNotification) bool {
		return n.Category == c
	})
}

// Unread keeps notifications not marked read. A nil state falls back to each
// record's own Read flag.
func (f Feed) Unread(state ReadState) Feed {
	return f.filter(func(n model.ScoredNotification) bool {
		if state == nil {
			return !n.Read
		}
		return !state.IsRead(n.ID)
	})
}

// Urgent keeps notifications flagged urgent.
func (f Feed) Urgent() Feed {
	return f.filter(func(n model.ScoredNotification) bool {
		return n.Urgent
	})
}

// Top returns the first n entries. A non-positive n returns an empty feed.
func (f Feed) Top(n int) Feed {
	if n <= 0 {
		return Feed{}
	}
	n = min(n, len(f))
	top := make(Feed, n)
	copy(top, f[:n])
	return top
}

func (f Feed) filter(keep func(model.ScoredNotification) bool) Feed {
	out := Feed{}
	for _, n := range f {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// Deduplicate collapses records sharing an id into the most recent one. The survivor
// takes the position of the first occurrence; on equal timestamps the later record wins.
func Deduplicate(records []model.Notification) []model.Notification {
	index := make(map[string]int, len(records))
	out := make([]model.Notification, 0, len(records))

	for _, n := range records {
		i, seen := index[n.ID]
		if !seen {
			index[n.ID] = len(out)
			out = append(out, n)
			continue
		}
		if !n.CreatedAt.Before(out[i].CreatedAt) {
			out[i] = n
		}
	}
	return out
}
