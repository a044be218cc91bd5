package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"clinic/internal/domain/staff"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestComputeReferenceBreakdown(t *testing.T) {
	c := Components{Basic: dec("20000"), Allowances: dec("2000"), HRA: dec("1000"), Other: decimal.Zero}

	got := Compute(c, 30, 3, dec("500"))
	if !got.Gross.Equal(dec("23000")) {
		t.Fatalf("gross: expected 23000, got %s", got.Gross)
	}
	if !got.AbsenceDeduction.Equal(dec("2300")) {
		t.Fatalf("absence: expected 2300, got %s", got.AbsenceDeduction)
	}
	if !got.TotalDeductions.Equal(dec("2800")) {
		t.Fatalf("total deductions: expected 2800, got %s", got.TotalDeductions)
	}
	if !got.Net.Equal(dec("20200")) {
		t.Fatalf("net: expected 20200, got %s", got.Net)
	}
}

func TestComputeDefaultsWorkingDaysAndRounds(t *testing.T) {
	c := Components{Basic: dec("10000")}

	got := Compute(c, 0, 1, decimal.Zero)
	if !got.AbsenceDeduction.Equal(dec("333.33")) {
		t.Fatalf("expected 333.33 for one day of 30, got %s", got.AbsenceDeduction)
	}
	if !got.Net.Equal(dec("9666.67")) {
		t.Fatalf("unexpected net %s", got.Net)
	}

	none := Compute(c, 26, 0, decimal.Zero)
	if !none.TotalDeductions.IsZero() || !none.Net.Equal(dec("10000")) {
		t.Fatalf("expected no deductions, got %+v", none)
	}
}

func TestResolveComponentsPrefersNonZeroOverrides(t *testing.T) {
	defaults := Components{Basic: dec("20000"), Allowances: dec("2000"), HRA: dec("1000"), Other: dec("500")}
	overrides := Components{Basic: dec("25000"), HRA: dec("1500")}

	got := ResolveComponents(overrides, defaults)
	if !got.Basic.Equal(dec("25000")) || !got.HRA.Equal(dec("1500")) {
		t.Fatalf("expected overrides to win, got %+v", got)
	}
	if !got.Allowances.Equal(dec("2000")) || !got.Other.Equal(dec("500")) {
		t.Fatalf("expected defaults for zero overrides, got %+v", got)
	}
	if !got.Gross().Equal(dec("29000")) {
		t.Fatalf("unexpected gross %s", got.Gross())
	}
}

func TestNextNumber(t *testing.T) {
	march := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		last string
		now  time.Time
		want string
	}{
		{"", march, "PAY2403-0001"},
		{"PAY2403-0001", march, "PAY2403-0002"},
		{"PAY2403-0002", april, "PAY2404-0003"},
		{"PAY2403-9999", april, "PAY2404-10000"},
		{"garbage", march, "PAY2403-0001"},
	}
	for _, tc := range cases {
		if got := NextNumber(tc.last, tc.now); got != tc.want {
			t.Fatalf("NextNumber(%q): expected %s, got %s", tc.last, tc.want, got)
		}
	}
}

func TestSalaryExpense(t *testing.T) {
	paidOn := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	p := Payroll{
		ID:            "payroll-1",
		Month:         3,
		Year:          2024,
		NetSalary:     dec("20200"),
		PayrollNumber: "PAY2403-0001",
		PaymentDate:   &paidOn,
		PaymentMethod: PaymentMethodBankTransfer,
	}
	member := staff.Staff{FirstName: "Asha", LastName: "Rao", Role: "Therapist"}

	e := SalaryExpense(p, member, "user-9")
	if e.ExpenseNumber != "SAL-PAY2403-0001" || e.Category != "SALARY" {
		t.Fatalf("unexpected identity %+v", e)
	}
	if e.Subcategory != "Therapist Salary" || e.VendorName != "Asha Rao" {
		t.Fatalf("unexpected text fields %+v", e)
	}
	if e.Description != "Salary payment for Asha Rao - March 2024" {
		t.Fatalf("unexpected description %q", e.Description)
	}
	if !e.Amount.Equal(dec("20200")) || !e.ExpenseDate.Equal(paidOn) || e.PaymentStatus != "PAID" {
		t.Fatalf("unexpected amount/date/status %+v", e)
	}
	if e.ApprovedBy != "user-9" || e.AddedBy != "user-9" {
		t.Fatalf("expected approver to mirror creator, got %+v", e)
	}

	anonymous := SalaryExpense(p, member, "")
	if anonymous.ApprovedBy != "" {
		t.Fatalf("expected no approver without creator, got %q", anonymous.ApprovedBy)
	}
}
