package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"clinic/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const upsertLeaveDaySQL = `
    INSERT INTO attendance_records (clinic_id, staff_id, date, status, notes, marked_by)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (staff_id, date) DO UPDATE
    SET status = EXCLUDED.status, notes = EXCLUDED.notes, marked_by = EXCLUDED.marked_by, updated_at = now()
  `

// UpsertLeaveDays marks every day as LEAVE for the staff member in one batch.
// Clock-in and clock-out of existing rows are left untouched.
func UpsertLeaveDays(ctx context.Context, q querier.Querier, tenantID, staffID string, days []time.Time, note, markedBy string) error {
	if len(days) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, d := range days {
		batch.Queue(upsertLeaveDaySQL, tenantID, staffID, d, StatusLeave, note, querier.NullIfEmpty(markedBy))
	}

	results := q.SendBatch(ctx, batch)
	for _, d := range days {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("upsert attendance %s: %w", d.Format(time.DateOnly), err)
		}
	}
	return results.Close()
}

func (s *Store) UpsertLeaveDays(ctx context.Context, tenantID, staffID string, days []time.Time, note, markedBy string) error {
	return UpsertLeaveDays(ctx, s.DB, tenantID, staffID, days, note, markedBy)
}

func (s *Store) List(ctx context.Context, tenantID string, filter ListFilter) ([]Record, error) {
	query := `
    SELECT a.id, a.staff_id, trim(s.first_name || ' ' || s.last_name), a.date, a.status,
      a.clock_in, a.clock_out, a.notes, COALESCE(a.marked_by::text, ''), a.updated_at
    FROM attendance_records a
    JOIN staff s ON s.id = a.staff_id
    WHERE a.clinic_id = $1`
	args := []any{tenantID}
	if filter.StaffID != "" && !querier.ValidID(filter.StaffID) {
		return []Record{}, nil
	}
	if filter.StaffID != "" {
		query += fmt.Sprintf(" AND a.staff_id = $%d", len(args)+1)
		args = append(args, filter.StaffID)
	}
	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND a.date >= $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND a.date <= $%d", len(args)+1)
		args = append(args, filter.To)
	}
	query += " ORDER BY a.date DESC, s.first_name"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StaffID, &rec.StaffName, &rec.Date, &rec.Status,
			&rec.ClockIn, &rec.ClockOut, &rec.Notes, &rec.MarkedBy, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
