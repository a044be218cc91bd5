package payroll

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const registerSheet = "Payroll"

var registerHeadings = []string{
	"Payroll No", "Staff", "Role", "Month", "Year", "Basic", "Allowances", "HRA", "Other Allowances",
	"Gross", "Absence Deduction", "Other Deductions", "Total Deductions", "Net", "Status", "Payment Date",
}

// WriteRegister writes one header row and one row per payroll.
func WriteRegister(w io.Writer, rows []Payroll) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", registerSheet); err != nil {
		return err
	}
	for i, heading := range registerHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(registerSheet, cell, heading); err != nil {
			return err
		}
	}

	for i, p := range rows {
		name, role := "", ""
		if p.Staff != nil {
			name, role = p.Staff.FullName(), p.Staff.Role
		}
		paidOn := ""
		if p.PaymentDate != nil {
			paidOn = p.PaymentDate.Format("2006-01-02")
		}
		values := []any{
			p.PayrollNumber, name, role, p.Month, p.Year,
			p.BasicSalary.InexactFloat64(), p.Allowances.InexactFloat64(), p.HRA.InexactFloat64(), p.OtherAllowances.InexactFloat64(),
			p.GrossSalary.InexactFloat64(), p.AbsenceDeduction.InexactFloat64(), p.OtherDeductions.InexactFloat64(),
			p.TotalDeductions.InexactFloat64(), p.NetSalary.InexactFloat64(), p.Status, paidOn,
		}
		if err := f.SetSheetRow(registerSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
