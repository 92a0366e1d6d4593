package database

import (
	"fmt"

	"github.com/coinsniper/coinsniper/internal/models"
)

// CreateFailureEvent inserts a failed-operation record.
func (db *DB) CreateFailureEvent(e *models.FailureEvent) error {
	query := `
		INSERT INTO failure_events (event_type, symbol, stage, reason, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		e.EventType, e.Symbol, e.Stage, e.Reason, e.OccurredAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to create failure event: %w", err)
	}
	return nil
}

// GetRecentFailureEvents retrieves the newest failure events.
func (db *DB) GetRecentFailureEvents(limit int) ([]*models.FailureEvent, error) {
	query := `
		SELECT id, event_type, symbol, stage, reason, occurred_at
		FROM failure_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query failure events: %w", err)
	}
	defer rows.Close()

	var events []*models.FailureEvent
	for rows.Next() {
		var e models.FailureEvent
		err := rows.Scan(&e.ID, &e.EventType, &e.Symbol, &e.Stage, &e.Reason, &e.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan failure event: %w", err)
		}
		events = append(events, &e)
	}

	return events, nil
}
