// Package audit records inbound MQTT commands to the command_log table
// for operator troubleshooting.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Outcome values recorded for each command.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// CommandLog represents a single recorded command.
type CommandLog struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	Topic     string    `json:"topic"`
	Envelope  string    `json:"envelope,omitempty"`
	Outcome   string    `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter controls which command log entries to return.
type Filter struct {
	DeviceID string // optional: filter by device
	Outcome  string // optional: filter by outcome (accepted, rejected, failed)
	Limit    int    // default 50, max 200
	Offset   int    // pagination offset
}

// ListResult contains the paginated command log results.
type ListResult struct {
	Logs   []CommandLog `json:"logs"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// Repository defines the interface for command log operations.
type Repository interface {
	RecordCommand(ctx context.Context, deviceID, topic string, envelope []byte, outcome string) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores command log entries in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new command log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordCommand inserts a command log entry. The envelope is the translated
// SmartThings command payload, or nil when translation failed.
func (r *SQLiteRepository) RecordCommand(ctx context.Context, deviceID, topic string, envelope []byte, outcome string) error {
	id := "cmd-" + uuid.NewString()[:8]

	var envelopeJSON any
	if len(envelope) > 0 {
		envelopeJSON = string(envelope)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO command_log (id, device_id, topic, envelope, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, deviceID, topic, envelopeJSON, outcome,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting command log: %w", err)
	}

	return nil
}

// List returns command log entries matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for command log queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.DeviceID != "" {
		conditions = append(conditions, "device_id = ?")
		args = append(args, filter.DeviceID)
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, filter.Outcome)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM command_log %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting command logs: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT id, device_id, topic, envelope, outcome, created_at FROM command_log %s ORDER BY created_at DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying command logs: %w", err)
	}
	defer rows.Close()

	var logs []CommandLog
	for rows.Next() {
		var log CommandLog
		var envelope sql.NullString
		var createdAt string

		if err := rows.Scan(&log.ID, &log.DeviceID, &log.Topic,
			&envelope, &log.Outcome, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning command log: %w", err)
		}

		if envelope.Valid {
			log.Envelope = envelope.String
		}

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing command log timestamp %q: %w", createdAt, err)
		}
		log.CreatedAt = t

		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating command logs: %w", err)
	}

	if logs == nil {
		logs = []CommandLog{}
	}

	return &ListResult{
		Logs:   logs,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}
