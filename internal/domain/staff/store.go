package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"clinic/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const staffColumns = `id, COALESCE(user_id::text, ''), first_name, last_name, role, email, phone,
    basic_salary, allowances, hra, other_allowances, joined_on, status, created_at`

func scanStaff(row pgx.Row) (Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.Role, &s.Email, &s.Phone,
		&s.BasicSalary, &s.Allowances, &s.HRA, &s.OtherAllowances, &s.JoinedOn, &s.Status, &s.CreatedAt)
	return s, err
}

func (s *Store) Get(ctx context.Context, tenantID, staffID string) (Staff, error) {
	if !querier.ValidID(staffID) {
		return Staff{}, ErrNotFound
	}
	out, err := scanStaff(s.DB.QueryRow(ctx, `
    SELECT `+staffColumns+`
    FROM staff
    WHERE clinic_id = $1 AND id = $2
  `, tenantID, staffID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Staff{}, ErrNotFound
	}
	return out, err
}

func (s *Store) List(ctx context.Context, tenantID string, filter ListFilter) ([]Staff, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE clinic_id = $1"
	args := []any{tenantID}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Role != "" {
		query += fmt.Sprintf(" AND role = $%d", len(args)+1)
		args = append(args, filter.Role)
	}
	query += " ORDER BY first_name, last_name"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		member, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, member)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, tenantID string, in Staff) (Staff, error) {
	out, err := scanStaff(s.DB.QueryRow(ctx, `
    INSERT INTO staff (clinic_id, user_id, first_name, last_name, role, email, phone,
      basic_salary, allowances, hra, other_allowances, joined_on, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING `+staffColumns,
		tenantID, querier.NullIfEmpty(in.UserID), in.FirstName, in.LastName, in.Role, in.Email, in.Phone,
		in.BasicSalary, in.Allowances, in.HRA, in.OtherAllowances, in.JoinedOn, in.Status))
	switch {
	case querier.IsUniqueViolation(err):
		return Staff{}, fmt.Errorf("%w: user is already linked to a staff record", ErrInvalidInput)
	case querier.IsForeignKeyViolation(err):
		return Staff{}, fmt.Errorf("%w: unknown user", ErrInvalidInput)
	}
	return out, err
}

// IDByUserID resolves the staff record linked to a login.
func (s *Store) IDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	if !querier.ValidID(userID) {
		return "", ErrNotFound
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    SELECT id FROM staff WHERE clinic_id = $1 AND user_id = $2
  `, tenantID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}
