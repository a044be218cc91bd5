package payroll

import (
	"fmt"
	"time"

	"clinic/internal/domain/expense"
	"clinic/internal/domain/staff"
)

// SalaryExpense builds the ledger row recorded when a payroll is paid.
func SalaryExpense(p Payroll, member staff.Staff, addedBy string) expense.Expense {
	paidOn := time.Now()
	if p.PaymentDate != nil {
		paidOn = *p.PaymentDate
	}
	name := member.FullName()
	out := expense.Expense{
		ExpenseNumber:    ExpenseNumberPrefix + p.PayrollNumber,
		Category:         expense.CategorySalary,
		Subcategory:      member.Role + " Salary",
		Amount:           p.NetSalary,
		Description:      fmt.Sprintf("Salary payment for %s - %s %d", name, time.Month(p.Month), p.Year),
		VendorName:       name,
		PaymentStatus:    expense.PaymentStatusPaid,
		PaymentMethod:    p.PaymentMethod,
		PaymentReference: p.PaymentReference,
		ExpenseDate:      paidOn,
		PayrollID:        p.ID,
		AddedBy:          addedBy,
	}
	if addedBy != "" {
		out.ApprovedBy = addedBy
	}
	return out
}
