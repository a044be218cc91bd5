package payroll

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

func RenderPayslip(w io.Writer, p Payroll) error {
	name := ""
	role := ""
	if p.Staff != nil {
		name = p.Staff.FullName()
		role = p.Staff.Role
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip "+p.PayrollNumber, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Payroll No: %s", p.PayrollNumber))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Staff: %s (%s)", name, role))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s %d", time.Month(p.Month), p.Year))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Working days: %d  Present: %d  Absent: %d", p.TotalWorkingDays, p.DaysPresent, p.DaysAbsent))
	pdf.Ln(10)

	lines := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Basic salary", p.BasicSalary},
		{"Allowances", p.Allowances},
		{"HRA", p.HRA},
		{"Other allowances", p.OtherAllowances},
		{"Gross salary", p.GrossSalary},
		{"Absence deduction", p.AbsenceDeduction},
		{"Other deductions", p.OtherDeductions},
		{"Total deductions", p.TotalDeductions},
	}
	for _, line := range lines {
		pdf.CellFormat(80, 8, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, line.amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(80, 9, "Net salary", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, p.NetSalary.StringFixed(2), "T", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	status := p.Status
	if p.PaymentDate != nil {
		status = fmt.Sprintf("%s on %s via %s", p.Status, p.PaymentDate.Format(time.DateOnly), p.PaymentMethod)
	}
	pdf.Cell(0, 8, "Status: "+status)

	return pdf.Output(w)
}
