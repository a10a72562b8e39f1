// Package model defines the core domain records that flow through the scoring engine.
package model

import (
	"strings"
	"time"
)

// Category classifies the event that produced a notification.
type Category string

// Notification categories. The set is closed; anything else is treated as unknown.
const (
	CategoryOrder     Category = "order"
	CategoryDelivery  Category = "delivery"
	CategoryPayment   Category = "payment"
	CategoryInventory Category = "inventory"
	CategoryCustomer  Category = "customer"
	CategoryAlert     Category = "alert"
	CategoryTask      Category = "task"
	CategoryApproval  Category = "approval"
	CategoryDeadline  Category = "deadline"
	CategoryInfo      Category = "info"
)

// Categories returns every known category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryOrder,
		CategoryDelivery,
		CategoryPayment,
		CategoryInventory,
		CategoryCustomer,
		CategoryAlert,
		CategoryTask,
		CategoryApproval,
		CategoryDeadline,
		CategoryInfo,
	}
}

// IsKnown reports whether c belongs to the closed category set.
// Matching is case-sensitive.
func (c Category) IsKnown() bool {
	switch c {
	case CategoryOrder, CategoryDelivery, CategoryPayment, CategoryInventory, CategoryCustomer,
		CategoryAlert, CategoryTask, CategoryApproval, CategoryDeadline, CategoryInfo:
		return true
	default:
		return false
	}
}

// Action is an optional follow-up reference attached to a notification.
type Action struct {
	URL  string `json:"url" yaml:"url"`
	Type string `json:"type" yaml:"type"`
}

// Notification is a single event surfaced to an owner.
// CreatedAt is the zero time when the source timestamp was missing or unparsable.
type Notification struct {
	CreatedAt time.Time      `json:"created_at"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	Action    *Action        `json:"action,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Category  Category       `json:"category"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Read      bool           `json:"read"`
}

// HasAction reports whether the notification carries a usable follow-up action.
func (n Notification) HasAction() bool {
	return n.Action != nil && strings.TrimSpace(n.Action.URL) != ""
}

// HasTimestamp reports whether the creation time is known.
func (n Notification) HasTimestamp() bool {
	return !n.CreatedAt.IsZero()
}

// ScoredNotification is a notification annotated with display-time priority.
// Priority and Urgent are derived and never persisted.
type ScoredNotification struct {
	Notification
	Priority int  `json:"priority"`
	Urgent   bool `json:"urgent"`
}

// timestampLayouts are tried in order when normalizing raw timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp normalizes a raw timestamp. It returns the zero time when raw is
// empty or matches none of the accepted layouts; callers treat that as maximally stale.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
