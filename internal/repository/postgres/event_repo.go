package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gatherly/internal/domain"
)

// eventRepository is a read-only view over the events table, which is
// owned by the calendar subsystem.
type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, calendar_id, name, creator_id, owner_id, is_public,
		       requires_approval, has_capacity_limit, capacity, waiting_list,
		       start_at, end_at
		FROM events
		WHERE id = $1
	`
	event := &domain.Event{}
	var capacity sql.NullInt64
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&event.ID, &event.CalendarID, &event.Name, &event.CreatorID, &event.OwnerID,
			&event.IsPublic, &event.RequiresApproval, &event.HasCapacityLimit, &capacity,
			&event.WaitingList, &event.StartAt, &event.EndAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if capacity.Valid {
		event.Capacity = int(capacity.Int64)
	}
	return event, nil
}
