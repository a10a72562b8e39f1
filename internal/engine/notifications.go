package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/prioritize"
	"github.com/Veraticus/pulse/internal/service"
)

// Feed returns the owner's notifications ranked and filtered for display. An empty
// owner ranks every owner's notifications by their stored read flags.
func (e *Engine) Feed(ctx context.Context, ownerID string, filter prioritize.Filter) (prioritize.Feed, error) {
	feed, state, err := e.rankedFeed(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return feed.Apply(filter, state), nil
}

// Counts summarizes the owner's feed.
func (e *Engine) Counts(ctx context.Context, ownerID string) (prioritize.Counts, error) {
	feed, state, err := e.rankedFeed(ctx, ownerID)
	if err != nil {
		return prioritize.Counts{}, err
	}
	return feed.Count(state), nil
}

func (e *Engine) rankedFeed(ctx context.Context, ownerID string) (prioritize.Feed, prioritize.ReadState, error) {
	records, err := e.storage.ListNotifications(ctx, service.NotificationFilter{OwnerID: ownerID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load notifications: %w", err)
	}

	var state prioritize.ReadState
	if ownerID != "" {
		ids, err := e.storage.GetReadNotificationIDs(ctx, ownerID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load read state: %w", err)
		}
		state = prioritize.NewReadSet(ids...)
	}

	records = prioritize.Deduplicate(records)
	feed := prioritize.Prioritize(records, e.now(), e.cfg)

	e.logger.Debug("ranked notifications", "owner", ownerID, "count", len(feed))
	return feed, state, nil
}

// Notify stores a new notification, assigning an id when absent. Unknown categories
// are accepted and rank with the default weight.
func (e *Engine) Notify(ctx context.Context, n *model.Notification) error {
	if n == nil || strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: notification needs a title", common.ErrInvalidInput)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = e.now().UTC()
	}
	if !n.Category.IsKnown() {
		e.logger.Warn("notification has unknown category", "category", n.Category)
	}
	if err := e.storage.SaveNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// MarkRead marks one notification read now.
func (e *Engine) MarkRead(ctx context.Context, id string) error {
	return e.storage.MarkNotificationRead(ctx, id, e.now())
}

// MarkAllRead marks every unread notification of the owner read and reports how many
// changed.
func (e *Engine) MarkAllRead(ctx context.Context, ownerID string) (int64, error) {
	n, err := e.storage.MarkAllNotificationsRead(ctx, ownerID, e.now())
	if err != nil {
		return 0, err
	}
	e.logger.Info("marked notifications read", "owner", ownerID, "count", n)
	return n, nil
}

// DeleteNotification removes a notification.
func (e *Engine) DeleteNotification(ctx context.Context, id string) error {
	return e.storage.DeleteNotification(ctx, id)
}
