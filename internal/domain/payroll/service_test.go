package payroll_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"clinic/internal/domain/payroll"
	"clinic/internal/domain/payroll/payrolltest"
	"clinic/internal/domain/staff"
)

const tenant = "clinic-1"

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newService(t *testing.T) (*payroll.Service, *payrolltest.Store) {
	t.Helper()
	store := payrolltest.New()
	store.AddStaff(tenant, staff.Staff{
		ID: "staff-1", FirstName: "Asha", LastName: "Rao", Role: "Therapist",
		BasicSalary: dec("20000"), Allowances: dec("2000"), HRA: dec("1000"), OtherAllowances: decimal.Zero,
		Status: staff.StatusActive,
	})
	store.AddStaff(tenant, staff.Staff{ID: "staff-2", FirstName: "Ravi", Role: "Cook", BasicSalary: dec("12000"), Status: staff.StatusActive})
	store.AddUser("acct-1", "Meera")
	svc := payroll.NewService(store)
	svc.Now = func() time.Time { return time.Date(2024, 3, 28, 12, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestGenerateUsesStaffDefaults(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.Generate(context.Background(), tenant, payroll.GenerateInput{
		StaffID: "staff-1", Month: 3, Year: 2024, DaysAbsent: 3, OtherDeductions: dec("500"), GeneratedBy: "acct-1",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !p.GrossSalary.Equal(dec("23000")) || !p.AbsenceDeduction.Equal(dec("2300")) ||
		!p.TotalDeductions.Equal(dec("2800")) || !p.NetSalary.Equal(dec("20200")) {
		t.Fatalf("unexpected amounts %+v", p)
	}
	if p.TotalWorkingDays != 30 || p.Status != payroll.StatusPending {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if p.PayrollNumber != "PAY2403-0001" {
		t.Fatalf("unexpected number %s", p.PayrollNumber)
	}
	if p.Staff == nil || p.Staff.Role != "Therapist" || p.GeneratedByName != "Meera" {
		t.Fatalf("expected joined staff and generator, got %+v", p)
	}
}

func TestGenerateOverridesWin(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.Generate(context.Background(), tenant, payroll.GenerateInput{
		StaffID: "staff-1", Month: 4, Year: 2024,
		Overrides:        payroll.Components{Basic: dec("30000")},
		TotalWorkingDays: 25,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !p.BasicSalary.Equal(dec("30000")) || !p.GrossSalary.Equal(dec("33000")) {
		t.Fatalf("expected override basic, got %+v", p)
	}
	if p.TotalWorkingDays != 25 {
		t.Fatalf("expected 25 working days, got %d", p.TotalWorkingDays)
	}
}

func TestGenerateDuplicatePeriod(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	in := payroll.GenerateInput{StaffID: "staff-1", Month: 3, Year: 2024}

	if _, err := svc.Generate(ctx, tenant, in); err != nil {
		t.Fatalf("first generate: %v", err)
	}
	if _, err := svc.Generate(ctx, tenant, in); !errors.Is(err, payroll.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGenerateValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cases := []payroll.GenerateInput{
		{Month: 3, Year: 2024},
		{StaffID: "staff-1", Year: 2024},
		{StaffID: "staff-1", Month: 13, Year: 2024},
		{StaffID: "staff-1", Month: 3, Year: 1999},
		{StaffID: "staff-1", Month: 3, Year: 2024, DaysAbsent: -1},
		{StaffID: "staff-1", Month: 3, Year: 2024, OtherDeductions: dec("-5")},
	}
	for i, in := range cases {
		if _, err := svc.Generate(ctx, tenant, in); !errors.Is(err, payroll.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	if _, err := svc.Generate(ctx, tenant, payroll.GenerateInput{StaffID: "ghost", Month: 3, Year: 2024}); !errors.Is(err, payroll.ErrStaffNotFound) {
		t.Fatalf("expected ErrStaffNotFound, got %v", err)
	}
	if _, err := svc.Generate(ctx, "clinic-2", payroll.GenerateInput{StaffID: "staff-1", Month: 3, Year: 2024}); !errors.Is(err, payroll.ErrStaffNotFound) {
		t.Fatalf("expected ErrStaffNotFound across clinics, got %v", err)
	}
}

func TestPayrollNumbersIncreaseAcrossMonths(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Generate(ctx, tenant, payroll.GenerateInput{StaffID: "staff-1", Month: 3, Year: 2024})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := svc.Generate(ctx, tenant, payroll.GenerateInput{StaffID: "staff-2", Month: 3, Year: 2024})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	svc.Now = func() time.Time { return time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC) }
	third, err := svc.Generate(ctx, tenant, payroll.GenerateInput{StaffID: "staff-1", Month: 4, Year: 2024})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got := []string{first.PayrollNumber, second.PayrollNumber, third.PayrollNumber}
	want := []string{"PAY2403-0001", "PAY2403-0002", "PAY2404-0003"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestConcurrentGenerateIssuesDistinctNumbers(t *testing.T) {
	store := payrolltest.New()
	for i := 0; i < 10; i++ {
		store.AddStaff(tenant, staff.Staff{ID: string(rune('a'+i)) + "-staff", FirstName: "S", Role: "Nurse", BasicSalary: dec("1000")})
	}
	svc := payroll.NewService(store)

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			p, err := svc.Generate(context.Background(), tenant, payroll.GenerateInput{StaffID: id, Month: 5, Year: 2024})
			if err != nil {
				t.Errorf("generate %s: %v", id, err)
				return
			}
			mu.Lock()
			seen[p.PayrollNumber] = true
			mu.Unlock()
		}(string(rune('a'+i)) + "-staff")
	}
	wg.Wait()
	if len(seen) != 10 {
		t.Fatalf("expected 10 distinct numbers, got %d", len(seen))
	}
}

func TestListStatsAreClinicWide(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	march, err := svc.Generate(ctx, tenant, payroll.GenerateInput{StaffID: "staff-1", Month: 3, Year: 2024, DaysAbsent: 3, OtherDeductions: dec("500")})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.Generate(ctx, tenant, payroll.GenerateInput{StaffID: "staff-2", Month: 4, Year: 2024}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, tenant, payroll.PayInput{PayrollID: march.ID, AddedBy: "acct-1"}); err != nil {
		t.Fatalf("pay: %v", err)
	}

	out, err := svc.List(ctx, tenant, payroll.ListFilter{StaffID: "staff-2"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out.Payrolls) != 1 {
		t.Fatalf("expected one row for staff-2, got %d", len(out.Payrolls))
	}
	if out.Stats.TotalPayrolls != 2 || !out.Stats.TotalGross.Equal(dec("35000")) || !out.Stats.TotalNet.Equal(dec("32200")) {
		t.Fatalf("unexpected totals %+v", out.Stats)
	}
	if !out.Stats.TotalDeductions.Equal(dec("2800")) {
		t.Fatalf("unexpected deductions %s", out.Stats.TotalDeductions)
	}
	if out.Stats.PendingCount != 1 || !out.Stats.PendingAmount.Equal(dec("12000")) {
		t.Fatalf("unexpected pending figures %+v", out.Stats)
	}

	all, err := svc.List(ctx, tenant, payroll.ListFilter{Status: "all"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all.Payrolls) != 2 || all.Payrolls[0].Month != 4 {
		t.Fatalf("expected newest period first, got %+v", all.Payrolls)
	}

	if _, err := svc.List(ctx, tenant, payroll.ListFilter{Status: "VOID"}); !errors.Is(err, payroll.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMarkPaidCreatesOneExpense(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p, err := svc.Generate(ctx, tenant, payroll.GenerateInput{StaffID: "staff-1", Month: 3, Year: 2024, DaysAbsent: 3, OtherDeductions: dec("500")})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	paidOn := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	out, err := svc.MarkPaid(ctx, tenant, payroll.PayInput{PayrollID: p.ID, PaymentDate: &paidOn, PaymentReference: "UTR123", PaidBy: "acct-1", AddedBy: "acct-1"})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if out.Message != payroll.MessagePaid || out.Payroll.Status != payroll.StatusPaid {
		t.Fatalf("unexpected result %+v", out)
	}
	if out.Payroll.PaymentMethod != payroll.PaymentMethodBankTransfer || out.Payroll.PaidByName != "Meera" {
		t.Fatalf("expected default method and payer, got %+v", out.Payroll)
	}

	if _, err := svc.MarkPaid(ctx, tenant, payroll.PayInput{PayrollID: p.ID}); !errors.Is(err, payroll.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}

	expenses := store.Expenses()
	if len(expenses) != 1 {
		t.Fatalf("expected exactly one expense, got %d", len(expenses))
	}
	e := expenses[0]
	if e.ExpenseNumber != "SAL-"+p.PayrollNumber || !e.Amount.Equal(dec("20200")) || !e.ExpenseDate.Equal(paidOn) {
		t.Fatalf("unexpected expense %+v", e)
	}
	if e.Description != "Salary payment for Asha Rao - March 2024" || e.ApprovedBy != "acct-1" {
		t.Fatalf("unexpected expense text %+v", e)
	}
}

func TestMarkPaidRollsBackWhenLedgerFails(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	p, err := svc.Generate(ctx, tenant, payroll.GenerateInput{StaffID: "staff-1", Month: 3, Year: 2024})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	store.FailCreateExpense = errors.New("ledger down")

	if _, err := svc.MarkPaid(ctx, tenant, payroll.PayInput{PayrollID: p.ID}); err == nil {
		t.Fatal("expected error")
	}
	current, err := svc.Get(ctx, tenant, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if current.Status != payroll.StatusPending {
		t.Fatalf("expected PENDING after rollback, got %s", current.Status)
	}
}

func TestMarkPaidValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.MarkPaid(ctx, tenant, payroll.PayInput{}); !errors.Is(err, payroll.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.MarkPaid(ctx, tenant, payroll.PayInput{PayrollID: "missing"}); !errors.Is(err, payroll.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.MarkPaid(ctx, tenant, payroll.PayInput{PayrollID: "missing", PaymentMethod: "BARTER"}); !errors.Is(err, payroll.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown method, got %v", err)
	}
}

func TestConcurrentMarkPaidCreatesOneExpense(t *testing.T) {
	svc, store := newService(t)
	p, err := svc.Generate(context.Background(), tenant, payroll.GenerateInput{StaffID: "staff-1", Month: 3, Year: 2024})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var wg sync.WaitGroup
	for n := 0; n < 5; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.MarkPaid(context.Background(), tenant, payroll.PayInput{PayrollID: p.ID})
			if err != nil && !errors.Is(err, payroll.ErrAlreadyPaid) {
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()
	if got := len(store.Expenses()); got != 1 {
		t.Fatalf("expected one expense, got %d", got)
	}
}

func TestPayslipAndExport(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p, err := svc.Generate(ctx, tenant, payroll.GenerateInput{StaffID: "staff-1", Month: 3, Year: 2024})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var pdf bytes.Buffer
	if err := svc.Payslip(ctx, tenant, p.ID, &pdf); err != nil {
		t.Fatalf("payslip: %v", err)
	}
	if !bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")) {
		t.Fatal("expected a PDF document")
	}
	if err := svc.Payslip(ctx, tenant, "missing", &pdf); !errors.Is(err, payroll.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var xlsx bytes.Buffer
	if err := svc.Export(ctx, tenant, payroll.ListFilter{Month: 3, Year: 2024}, &xlsx); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(xlsx.Bytes(), []byte("PK")) {
		t.Fatal("expected a zip-based xlsx workbook")
	}
}
