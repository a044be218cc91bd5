package expense

import (
	"context"
	"fmt"

	"clinic/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, tenantID string, e Expense) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO expenses (clinic_id, expense_number, category, subcategory, amount, description, vendor_name,
      payment_status, payment_method, payment_reference, expense_date, payroll_id, added_by, approved_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    RETURNING id
  `, tenantID, e.ExpenseNumber, e.Category, e.Subcategory, e.Amount, e.Description, e.VendorName,
		e.PaymentStatus, e.PaymentMethod, e.PaymentReference, e.ExpenseDate,
		querier.NullIfEmpty(e.PayrollID), querier.NullIfEmpty(e.AddedBy), querier.NullIfEmpty(e.ApprovedBy)).Scan(&id)
	return id, err
}

func (s *Store) List(ctx context.Context, tenantID string, filter ListFilter) ([]Expense, error) {
	query := `
    SELECT id, expense_number, category, subcategory, amount, description, vendor_name, payment_status,
      payment_method, payment_reference, expense_date, COALESCE(payroll_id::text, ''),
      COALESCE(added_by::text, ''), COALESCE(approved_by::text, ''), created_at
    FROM expenses
    WHERE clinic_id = $1`
	args := []any{tenantID}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", len(args)+1)
		args = append(args, filter.Category)
	}
	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND expense_date >= $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND expense_date <= $%d", len(args)+1)
		args = append(args, filter.To)
	}
	query += " ORDER BY expense_date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.ExpenseNumber, &e.Category, &e.Subcategory, &e.Amount, &e.Description,
			&e.VendorName, &e.PaymentStatus, &e.PaymentMethod, &e.PaymentReference, &e.ExpenseDate,
			&e.PayrollID, &e.AddedBy, &e.ApprovedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
