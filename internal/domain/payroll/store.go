package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"clinic/internal/domain/expense"
	"clinic/internal/domain/staff"
	"clinic/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(StoreAPI) error) error {
	beginner, ok := s.DB.(querier.Beginner)
	if !ok {
		return errors.New("payroll store: connection cannot begin transactions")
	}
	return querier.InTx(ctx, beginner, func(tx pgx.Tx) error {
		return fn(&Store{DB: tx})
	})
}

func (s *Store) Staff(ctx context.Context, tenantID, staffID string) (staff.Staff, error) {
	member, err := staff.NewStore(s.DB).Get(ctx, tenantID, staffID)
	if errors.Is(err, staff.ErrNotFound) {
		return staff.Staff{}, ErrStaffNotFound
	}
	return member, err
}

func (s *Store) Exists(ctx context.Context, tenantID, staffID string, month, year int) (bool, error) {
	if !querier.ValidID(staffID) {
		return false, nil
	}
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM payrolls
      WHERE clinic_id = $1 AND staff_id = $2 AND month = $3 AND year = $4
    )
  `, tenantID, staffID, month, year).Scan(&exists)
	return exists, err
}

// LockNumbering holds a transaction-scoped advisory lock so payroll numbers of
// one clinic are issued one at a time.
func (s *Store) LockNumbering(ctx context.Context, tenantID string) error {
	_, err := s.DB.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", "payroll-number:"+tenantID)
	return err
}

func (s *Store) LastNumber(ctx context.Context, tenantID string) (string, error) {
	var number string
	err := s.DB.QueryRow(ctx, `
    SELECT payroll_number
    FROM payrolls
    WHERE clinic_id = $1
    ORDER BY created_at DESC, payroll_number DESC
    LIMIT 1
  `, tenantID).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return number, err
}

func (s *Store) Create(ctx context.Context, tenantID string, p Payroll) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payrolls (clinic_id, staff_id, month, year, basic_salary, allowances, hra, other_allowances,
      total_working_days, days_present, days_absent, absence_deduction, other_deductions, total_deductions,
      gross_salary, net_salary, payroll_number, status, generated_by, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
    RETURNING id
  `, tenantID, p.StaffID, p.Month, p.Year, p.BasicSalary, p.Allowances, p.HRA, p.OtherAllowances,
		p.TotalWorkingDays, p.DaysPresent, p.DaysAbsent, p.AbsenceDeduction, p.OtherDeductions, p.TotalDeductions,
		p.GrossSalary, p.NetSalary, p.PayrollNumber, p.Status, querier.NullIfEmpty(p.GeneratedBy), p.Notes).Scan(&id)
	if querier.IsUniqueViolation(err) {
		return "", ErrDuplicate
	}
	return id, err
}

const payrollSelectSQL = `
    SELECT p.id, p.staff_id, p.month, p.year, p.basic_salary, p.allowances, p.hra, p.other_allowances,
      p.total_working_days, p.days_present, p.days_absent, p.absence_deduction, p.other_deductions,
      p.total_deductions, p.gross_salary, p.net_salary, p.payroll_number, p.status, p.payment_date,
      p.payment_method, p.payment_reference, COALESCE(p.paid_by::text, ''), COALESCE(payer.name, ''),
      COALESCE(p.generated_by::text, ''), COALESCE(gen.name, ''), p.notes, p.created_at,
      s.first_name, s.last_name, s.role
    FROM payrolls p
    JOIN staff s ON s.id = p.staff_id
    LEFT JOIN users gen ON gen.id = p.generated_by
    LEFT JOIN users payer ON payer.id = p.paid_by`

func scanPayroll(row pgx.Row) (Payroll, error) {
	var p Payroll
	var summary staff.Summary
	err := row.Scan(&p.ID, &p.StaffID, &p.Month, &p.Year, &p.BasicSalary, &p.Allowances, &p.HRA, &p.OtherAllowances,
		&p.TotalWorkingDays, &p.DaysPresent, &p.DaysAbsent, &p.AbsenceDeduction, &p.OtherDeductions,
		&p.TotalDeductions, &p.GrossSalary, &p.NetSalary, &p.PayrollNumber, &p.Status, &p.PaymentDate,
		&p.PaymentMethod, &p.PaymentReference, &p.PaidBy, &p.PaidByName,
		&p.GeneratedBy, &p.GeneratedByName, &p.Notes, &p.CreatedAt,
		&summary.FirstName, &summary.LastName, &summary.Role)
	if err != nil {
		return Payroll{}, err
	}
	summary.ID = p.StaffID
	p.Staff = &summary
	return p, nil
}

func (s *Store) Get(ctx context.Context, tenantID, payrollID string) (Payroll, error) {
	if !querier.ValidID(payrollID) {
		return Payroll{}, ErrNotFound
	}
	p, err := scanPayroll(s.DB.QueryRow(ctx, payrollSelectSQL+`
    WHERE p.clinic_id = $1 AND p.id = $2
  `, tenantID, payrollID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payroll{}, ErrNotFound
	}
	return p, err
}

// Lock reads the payroll row with FOR UPDATE; callers must be inside WithinTx.
func (s *Store) Lock(ctx context.Context, tenantID, payrollID string) (Payroll, error) {
	if !querier.ValidID(payrollID) {
		return Payroll{}, ErrNotFound
	}
	p, err := scanPayroll(s.DB.QueryRow(ctx, payrollSelectSQL+`
    WHERE p.clinic_id = $1 AND p.id = $2
    FOR UPDATE OF p
  `, tenantID, payrollID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payroll{}, ErrNotFound
	}
	return p, err
}

func (s *Store) List(ctx context.Context, tenantID string, filter ListFilter) ([]Payroll, error) {
	if filter.StaffID != "" && !querier.ValidID(filter.StaffID) {
		return []Payroll{}, nil
	}
	query := payrollSelectSQL + " WHERE p.clinic_id = $1"
	args := []any{tenantID}
	if filter.StaffID != "" {
		query += fmt.Sprintf(" AND p.staff_id = $%d", len(args)+1)
		args = append(args, filter.StaffID)
	}
	if filter.Month > 0 {
		query += fmt.Sprintf(" AND p.month = $%d", len(args)+1)
		args = append(args, filter.Month)
	}
	if filter.Year > 0 {
		query += fmt.Sprintf(" AND p.year = $%d", len(args)+1)
		args = append(args, filter.Year)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND p.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	query += " ORDER BY p.year DESC, p.month DESC, p.created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Payroll{}
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Stats(ctx context.Context, tenantID string) (Stats, error) {
	var st Stats
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
      COALESCE(SUM(gross_salary), 0),
      COALESCE(SUM(net_salary), 0),
      COALESCE(SUM(total_deductions), 0),
      COUNT(1) FILTER (WHERE status = $2),
      COALESCE(SUM(net_salary) FILTER (WHERE status = $2), 0)
    FROM payrolls
    WHERE clinic_id = $1
  `, tenantID, StatusPending).Scan(&st.TotalPayrolls, &st.TotalGross, &st.TotalNet, &st.TotalDeductions, &st.PendingCount, &st.PendingAmount)
	return st, err
}

func (s *Store) MarkPaid(ctx context.Context, tenantID, payrollID string, paidAt time.Time, method, reference, paidBy string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payrolls
    SET status = $3, payment_date = $4, payment_method = $5, payment_reference = $6, paid_by = $7
    WHERE clinic_id = $1 AND id = $2
  `, tenantID, payrollID, StatusPaid, paidAt, method, reference, querier.NullIfEmpty(paidBy))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateExpense(ctx context.Context, tenantID string, e expense.Expense) (string, error) {
	return expense.NewStore(s.DB).Create(ctx, tenantID, e)
}
