package db

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/report"
)

// Insert stores a new report row. Rows are immutable once written.
func Insert(database *sql.DB, r *report.HandoffReport) error {
	body, err := json.Marshal(r)
	if err != nil {
		return errors.NewInternal(err)
	}

	summary := r.ToSummary()
	var prioritiesJSON sql.NullString
	if len(summary.TopPriorities) > 0 {
		data, err := json.Marshal(summary.TopPriorities)
		if err != nil {
			return errors.NewInternal(err)
		}
		prioritiesJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO reports (
			id, session_id, created_at, handoff_reason,
			fill_percentage, priorities_json, report_json
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = database.Exec(query,
		r.ID, r.PreviousSessionID, r.Timestamp, summary.HandoffReason,
		summary.FillPercentage, prioritiesJSON, string(body),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewInvalidRequest("report id already stored: " + r.ID)
		}
		return errors.NewInternal(err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a report by its ULID.
func GetByID(database *sql.DB, id string) (*report.HandoffReport, error) {
	var body string
	err := database.QueryRow(`SELECT report_json FROM reports WHERE id = ?`, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var r report.HandoffReport
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &r, nil
}

// ListRecent returns up to limit report summaries, newest first. Projection
// columns are read directly so listing never deserializes full report bodies.
func ListRecent(database *sql.DB, limit int) ([]report.ReportSummary, error) {
	query := `
		SELECT id, created_at, handoff_reason, fill_percentage, priorities_json
		FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := database.Query(query, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	summaries := make([]report.ReportSummary, 0, limit)
	for rows.Next() {
		var (
			s              report.ReportSummary
			prioritiesJSON sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Timestamp, &s.HandoffReason, &s.FillPercentage, &prioritiesJSON); err != nil {
			return nil, errors.NewInternal(err)
		}
		if prioritiesJSON.Valid && prioritiesJSON.String != "" {
			if err := json.Unmarshal([]byte(prioritiesJSON.String), &s.TopPriorities); err != nil {
				return nil, errors.NewInternal(err)
			}
		}
		if s.TopPriorities == nil {
			s.TopPriorities = []string{}
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return summaries, nil
}

// Purge permanently deletes reports created more than olderThanDays ago and
// returns the number removed. Retention is the only sanctioned delete path;
// individual reports are never removed through the store contract.
func Purge(database *sql.DB, olderThanDays int) (int, error) {
	if olderThanDays < 0 {
		return 0, errors.NewInvalidRequest("older_than_days must be non-negative")
	}

	cutoff := time.Now().AddDate(0, 0, -olderThanDays).UnixMilli()
	result, err := database.Exec(`DELETE FROM reports WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(affected), nil
}
