package tui

import (
	"time"

	"github.com/Veraticus/pulse/internal/prioritize"
)

// feedLoadedMsg carries a freshly ranked view and the owner's counts.
type feedLoadedMsg struct {
	err    error
	feed   prioritize.Feed
	counts prioritize.Counts
	view   View
}

// markedReadMsg reports the outcome of marking one notification read.
type markedReadMsg struct {
	err error
	id  string
}

// markedAllReadMsg reports the outcome of marking every notification read.
type markedAllReadMsg struct {
	err     error
	updated int64
}

// tickMsg triggers an automatic refresh.
type tickMsg time.Time
