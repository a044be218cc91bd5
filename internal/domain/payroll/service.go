package payroll

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	Store StoreAPI
	Now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func validateGenerate(in GenerateInput) error {
	if in.StaffID == "" || in.Month == 0 || in.Year == 0 {
		return fmt.Errorf("%w: staffId, month and year are required", ErrInvalidInput)
	}
	if in.Month < 1 || in.Month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	if in.Year < 2000 || in.Year > 2100 {
		return fmt.Errorf("%w: year out of range", ErrInvalidInput)
	}
	if in.TotalWorkingDays < 0 || in.DaysPresent < 0 || in.DaysAbsent < 0 {
		return fmt.Errorf("%w: day counts must not be negative", ErrInvalidInput)
	}
	for _, amount := range []decimal.Decimal{in.Overrides.Basic, in.Overrides.Allowances, in.Overrides.HRA, in.Overrides.Other, in.OtherDeductions} {
		if amount.IsNegative() {
			return fmt.Errorf("%w: amounts must not be negative", ErrInvalidInput)
		}
	}
	return nil
}

// Generate computes and stores a PENDING payroll for one staff member and
// period. Numbering runs under a per-clinic lock in the same transaction.
func (s *Service) Generate(ctx context.Context, tenantID string, in GenerateInput) (Payroll, error) {
	if err := validateGenerate(in); err != nil {
		return Payroll{}, err
	}
	workingDays := in.TotalWorkingDays
	if workingDays == 0 {
		workingDays = DefaultWorkingDays
	}

	var id string
	err := s.Store.WithinTx(ctx, func(tx StoreAPI) error {
		exists, err := tx.Exists(ctx, tenantID, in.StaffID, in.Month, in.Year)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicate
		}

		member, err := tx.Staff(ctx, tenantID, in.StaffID)
		if err != nil {
			return err
		}
		components := ResolveComponents(in.Overrides, Components{
			Basic:      member.BasicSalary,
			Allowances: member.Allowances,
			HRA:        member.HRA,
			Other:      member.OtherAllowances,
		})
		breakdown := Compute(components, workingDays, in.DaysAbsent, in.OtherDeductions)

		if err := tx.LockNumbering(ctx, tenantID); err != nil {
			return err
		}
		last, err := tx.LastNumber(ctx, tenantID)
		if err != nil {
			return err
		}

		id, err = tx.Create(ctx, tenantID, Payroll{
			StaffID:          in.StaffID,
			Month:            in.Month,
			Year:             in.Year,
			BasicSalary:      components.Basic,
			Allowances:       components.Allowances,
			HRA:              components.HRA,
			OtherAllowances:  components.Other,
			TotalWorkingDays: workingDays,
			DaysPresent:      in.DaysPresent,
			DaysAbsent:       in.DaysAbsent,
			AbsenceDeduction: breakdown.AbsenceDeduction,
			OtherDeductions:  in.OtherDeductions,
			TotalDeductions:  breakdown.TotalDeductions,
			GrossSalary:      breakdown.Gross,
			NetSalary:        breakdown.Net,
			PayrollNumber:    NextNumber(last, s.now()),
			Status:           StatusPending,
			GeneratedBy:      in.GeneratedBy,
			Notes:            strings.TrimSpace(in.Notes),
		})
		return err
	})
	if err != nil {
		return Payroll{}, err
	}
	return s.Store.Get(ctx, tenantID, id)
}

// List returns the filtered rows with clinic-wide totals.
func (s *Service) List(ctx context.Context, tenantID string, filter ListFilter) (ListResult, error) {
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	if filter.Status == "ALL" {
		filter.Status = ""
	}
	if filter.Status != "" && filter.Status != StatusPending && filter.Status != StatusPaid {
		return ListResult{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	rows, err := s.Store.List(ctx, tenantID, filter)
	if err != nil {
		return ListResult{}, err
	}
	if rows == nil {
		rows = []Payroll{}
	}
	stats, err := s.Store.Stats(ctx, tenantID)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Payrolls: rows, Stats: stats}, nil
}

func (s *Service) Get(ctx context.Context, tenantID, payrollID string) (Payroll, error) {
	return s.Store.Get(ctx, tenantID, payrollID)
}

// MarkPaid settles a PENDING payroll and records the matching salary expense
// in the same transaction.
func (s *Service) MarkPaid(ctx context.Context, tenantID string, in PayInput) (PayResult, error) {
	if in.PayrollID == "" {
		return PayResult{}, fmt.Errorf("%w: payrollId is required", ErrInvalidInput)
	}
	method := strings.ToUpper(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = PaymentMethodBankTransfer
	}
	if !slices.Contains(PaymentMethods, method) {
		return PayResult{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, in.PaymentMethod)
	}
	paidAt := s.now()
	if in.PaymentDate != nil && !in.PaymentDate.IsZero() {
		paidAt = *in.PaymentDate
	}

	var updated Payroll
	err := s.Store.WithinTx(ctx, func(tx StoreAPI) error {
		current, err := tx.Lock(ctx, tenantID, in.PayrollID)
		if err != nil {
			return err
		}
		if current.Status == StatusPaid {
			return ErrAlreadyPaid
		}
		if err := tx.MarkPaid(ctx, tenantID, current.ID, paidAt, method, strings.TrimSpace(in.PaymentReference), in.PaidBy); err != nil {
			return err
		}
		updated, err = tx.Get(ctx, tenantID, current.ID)
		if err != nil {
			return err
		}

		member, err := tx.Staff(ctx, tenantID, current.StaffID)
		if err != nil {
			return err
		}
		if _, err := tx.CreateExpense(ctx, tenantID, SalaryExpense(updated, member, in.AddedBy)); err != nil {
			return fmt.Errorf("record salary expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return PayResult{}, err
	}
	return PayResult{Payroll: updated, Message: MessagePaid}, nil
}

// Payslip renders the payslip PDF of one payroll into w.
func (s *Service) Payslip(ctx context.Context, tenantID, payrollID string, w io.Writer) error {
	p, err := s.Store.Get(ctx, tenantID, payrollID)
	if err != nil {
		return err
	}
	return RenderPayslip(w, p)
}

// Export writes the payroll register of the filtered rows as an xlsx workbook.
func (s *Service) Export(ctx context.Context, tenantID string, filter ListFilter, w io.Writer) error {
	result, err := s.List(ctx, tenantID, filter)
	if err != nil {
		return err
	}
	return WriteRegister(w, result.Payrolls)
}
