package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/model"
	"github.com/Veraticus/pulse/internal/service"
)

const notificationColumns = `id, owner_id, category, title, message, action_url, action_type,
	metadata, is_read, read_at, created_at`

type notificationRow struct {
	ReadAt     sql.NullTime   `db:"read_at"`
	CreatedAt  sql.NullTime   `db:"created_at"`
	ActionURL  sql.NullString `db:"action_url"`
	ActionType sql.NullString `db:"action_type"`
	Metadata   sql.NullString `db:"metadata"`
	ID         string         `db:"id"`
	OwnerID    string         `db:"owner_id"`
	Category   string         `db:"category"`
	Title      string         `db:"title"`
	Message    string         `db:"message"`
	IsRead     bool           `db:"is_read"`
}

func (r notificationRow) toModel() (model.Notification, error) {
	n := model.Notification{
		ID:       r.ID,
		OwnerID:  r.OwnerID,
		Category: model.Category(r.Category),
		Title:    r.Title,
		Message:  r.Message,
		Read:     r.IsRead,
	}
	if r.CreatedAt.Valid {
		n.CreatedAt = r.CreatedAt.Time
	}
	if r.ReadAt.Valid {
		readAt := r.ReadAt.Time
		n.ReadAt = &readAt
	}
	if r.ActionURL.Valid && r.ActionURL.String != "" {
		n.Action = &model.Action{URL: r.ActionURL.String, Type: r.ActionType.String}
	}
	if r.Metadata.Valid && r.Metadata.String != "" {
		if err := json.Unmarshal([]byte(r.Metadata.String), &n.Metadata); err != nil {
			return model.Notification{}, fmt.Errorf("failed to decode metadata for %s: %w", r.ID, err)
		}
	}
	return n, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// SaveNotification inserts or replaces a notification. An empty ID is filled with a
// new UUID and written back to n.
func (s *SQLiteStorage) SaveNotification(ctx context.Context, n *model.Notification) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateNotification(n); err != nil {
		return err
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	var actionURL, actionType sql.NullString
	if n.Action != nil {
		actionURL = sql.NullString{String: n.Action.URL, Valid: n.Action.URL != ""}
		actionType = sql.NullString{String: n.Action.Type, Valid: n.Action.Type != ""}
	}

	var metadata sql.NullString
	if len(n.Metadata) > 0 {
		raw, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}

	var readAt sql.NullTime
	if n.ReadAt != nil {
		readAt = nullTime(*n.ReadAt)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			category = excluded.category,
			title = excluded.title,
			message = excluded.message,
			action_url = excluded.action_url,
			action_type = excluded.action_type,
			metadata = excluded.metadata,
			is_read = excluded.is_read,
			read_at = excluded.read_at,
			created_at = excluded.created_at`,
		n.ID, n.OwnerID, string(n.Category), n.Title, n.Message, actionURL, actionType,
		metadata, boolToInt(n.Read), readAt, nullTime(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// GetNotification retrieves a notification by id.
func (s *SQLiteStorage) GetNotification(ctx context.Context, id string) (*model.Notification, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var row notificationRow
	err := s.db.GetContext(ctx, &row, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query notification: %w", err)
	}

	n, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotifications returns notifications matching filter, newest first.
func (s *SQLiteStorage) ListNotifications(ctx context.Context, filter service.NotificationFilter) ([]model.Notification, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		clauses []string
		args    []any
	)
	if filter.OwnerID != "" {
		clauses = append(clauses, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if len(filter.Categories) > 0 {
		in, inArgs, err := sqlx.In("category IN (?)", filter.Categories)
		if err != nil {
			return nil, fmt.Errorf("failed to build category filter: %w", err)
		}
		clauses = append(clauses, in)
		args = append(args, inArgs...)
	}
	if filter.UnreadOnly {
		clauses = append(clauses, "is_read = 0")
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, max(filter.Offset, 0))
	}

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	out := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		n, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// CountUnread counts unread notifications for an owner.
func (s *SQLiteStorage) CountUnread(ctx context.Context, ownerID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE owner_id = ? AND is_read = 0`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// GetReadNotificationIDs returns the ids an owner has already read.
func (s *SQLiteStorage) GetReadNotificationIDs(ctx context.Context, ownerID string) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}

	ids := []string{}
	err := s.db.SelectContext(ctx, &ids,
		`SELECT id FROM notifications WHERE owner_id = ? AND is_read = 1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query read notifications: %w", err)
	}
	return ids, nil
}

// MarkNotificationRead marks one notification read at the given time. Marking an
// already read notification keeps its original read time.
func (s *SQLiteStorage) MarkNotificationRead(ctx context.Context, id string, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = 1, read_at = COALESCE(read_at, ?)
		WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of an owner read and
// reports how many changed.
func (s *SQLiteStorage) MarkAllNotificationsRead(ctx context.Context, ownerID string, at time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET is_read = 1, read_at = ?
		WHERE owner_id = ? AND is_read = 0`, at.UTC(), ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

// DeleteNotification removes a notification.
func (s *SQLiteStorage) DeleteNotification(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %s: %w", id, common.ErrNotFound)
	}
	return nil
}
