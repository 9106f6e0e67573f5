package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/followup/internal/model"
)

// reminderRow is the on-disk shape of a reminder: slices are JSON text.
type reminderRow struct {
	model.Reminder
	AttachmentsJSON string `db:"attachments"`
	ActivityJSON    string `db:"activity"`
}

func (row reminderRow) toModel() (model.Reminder, error) {
	r := row.Reminder
	r.Attachments = []model.Attachment{}
	r.Activity = []model.ActivityEntry{}
	if row.AttachmentsJSON != "" {
		if err := json.Unmarshal([]byte(row.AttachmentsJSON), &r.Attachments); err != nil {
			return model.Reminder{}, fmt.Errorf("unmarshaling attachments for reminder %s: %w", r.ID, err)
		}
	}
	if row.ActivityJSON != "" {
		if err := json.Unmarshal([]byte(row.ActivityJSON), &r.Activity); err != nil {
			return model.Reminder{}, fmt.Errorf("unmarshaling activity for reminder %s: %w", r.ID, err)
		}
	}
	return r, nil
}

func marshalList[T any](list []T) (string, error) {
	if list == nil {
		return "[]", nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CreateReminder inserts r for owner and returns its ID. Generates a UUID
// if ID is empty.
func (s *SQLiteStore) CreateReminder(ctx context.Context, owner string, r model.Reminder) (string, error) {
	if strings.TrimSpace(r.Title) == "" {
		return "", fmt.Errorf("reminder title must not be empty")
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	r.OwnerID = owner

	attachments, err := marshalList(r.Attachments)
	if err != nil {
		return "", fmt.Errorf("marshaling attachments for reminder %s: %w", r.ID, err)
	}
	activity, err := marshalList(r.Activity)
	if err != nil {
		return "", fmt.Errorf("marshaling activity for reminder %s: %w", r.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reminders (
			id, owner_id, title, note, media_type, source,
			due_epoch, due_iso, due_label, status, countdown,
			completed_at_iso, created_at_label, attachments, activity,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.Title, r.Note, string(r.MediaType), string(r.Source),
		r.DueEpoch, r.DueISO, r.DueLabel, string(r.Status), r.Countdown,
		r.CompletedAtISO, r.CreatedAtLabel, attachments, activity,
		r.CreatedAt.UTC(), r.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("creating reminder: %w", err)
	}

	s.notify(ctx, owner)
	return r.ID, nil
}

// UpdateReminder applies a partial update to the reminder with id.
func (s *SQLiteStore) UpdateReminder(ctx context.Context, id string, patch model.ReminderPatch) error {
	var (
		sets []string
		args []interface{}
	)
	set := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return fmt.Errorf("reminder title must not be empty")
		}
		set("title", *patch.Title)
	}
	if patch.Note != nil {
		set("note", *patch.Note)
	}
	if patch.DueEpoch != nil {
		set("due_epoch", *patch.DueEpoch)
	}
	if patch.DueISO != nil {
		set("due_iso", *patch.DueISO)
	}
	if patch.DueLabel != nil {
		set("due_label", *patch.DueLabel)
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.Countdown != nil {
		set("countdown", *patch.Countdown)
	}
	if patch.CompletedAtISO != nil {
		set("completed_at_iso", *patch.CompletedAtISO)
	}
	if patch.Attachments != nil {
		v, err := marshalList(patch.Attachments)
		if err != nil {
			return fmt.Errorf("marshaling attachments for reminder %s: %w", id, err)
		}
		set("attachments", v)
	}
	if patch.Activity != nil {
		v, err := marshalList(patch.Activity)
		if err != nil {
			return fmt.Errorf("marshaling activity for reminder %s: %w", id, err)
		}
		set("activity", v)
	}
	set("updated_at", time.Now().UTC())

	query := "UPDATE reminders SET " + strings.Join(sets, ", ") + " WHERE id = ? RETURNING owner_id"
	args = append(args, id)

	var owner string
	err := s.db.QueryRowxContext(ctx, query, args...).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("updating reminder %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating reminder %s: %w", id, err)
	}

	s.notify(ctx, owner)
	return nil
}

// DeleteReminder removes a reminder by ID.
func (s *SQLiteStore) DeleteReminder(ctx context.Context, id string) error {
	var owner string
	err := s.db.QueryRowxContext(ctx,
		"DELETE FROM reminders WHERE id = ? RETURNING owner_id", id,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("deleting reminder %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting reminder %s: %w", id, err)
	}

	s.notify(ctx, owner)
	return nil
}

// GetReminder retrieves a single reminder by ID.
func (s *SQLiteStore) GetReminder(ctx context.Context, id string) (*model.Reminder, error) {
	var row reminderRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM reminders WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting reminder %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting reminder %s: %w", id, err)
	}

	r, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReminders retrieves owner's reminders matching filter, ordered by
// due instant unless the filter says otherwise.
func (s *SQLiteStore) ListReminders(
	ctx context.Context,
	owner string,
	filter ReminderFilter,
) ([]model.Reminder, error) {
	conditions := []string{"owner_id = ?"}
	args := []interface{}{owner}

	if filter.MediaType != nil {
		conditions = append(conditions, "media_type = ?")
		args = append(args, *filter.MediaType)
	}
	if filter.Source != nil {
		conditions = append(conditions, "source = ?")
		args = append(args, *filter.Source)
	}
	if filter.Completed != nil {
		if *filter.Completed {
			conditions = append(conditions, "status = 'completed'")
		} else {
			conditions = append(conditions, "status != 'completed'")
		}
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR note LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT * FROM reminders WHERE " + strings.Join(conditions, " AND ")

	sortBy := "due_epoch"
	if filter.SortBy != "" {
		allowedSorts := map[string]bool{
			"due_epoch":  true,
			"created_at": true,
			"updated_at": true,
			"title":      true,
		}
		if allowedSorts[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var rows []reminderRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying reminders for %s: %w", owner, err)
	}

	reminders := make([]model.Reminder, 0, len(rows))
	for _, row := range rows {
		r, err := row.toModel()
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, nil
}
