package payroll

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ResolveComponents prefers each non-zero override over the staff default.
func ResolveComponents(overrides, defaults Components) Components {
	pick := func(override, fallback decimal.Decimal) decimal.Decimal {
		if !override.IsZero() {
			return override
		}
		return fallback
	}
	return Components{
		Basic:      pick(overrides.Basic, defaults.Basic),
		Allowances: pick(overrides.Allowances, defaults.Allowances),
		HRA:        pick(overrides.HRA, defaults.HRA),
		Other:      pick(overrides.Other, defaults.Other),
	}
}

func (c Components) Gross() decimal.Decimal {
	return c.Basic.Add(c.Allowances).Add(c.HRA).Add(c.Other)
}

// Compute derives deductions and net pay. The absence deduction is the daily
// rate of gross pay times the absent days, rounded to two places.
func Compute(c Components, workingDays, daysAbsent int, otherDeductions decimal.Decimal) Breakdown {
	if workingDays <= 0 {
		workingDays = DefaultWorkingDays
	}
	if daysAbsent < 0 {
		daysAbsent = 0
	}
	gross := c.Gross()
	absence := gross.Mul(decimal.NewFromInt(int64(daysAbsent))).
		Div(decimal.NewFromInt(int64(workingDays))).
		Round(2)
	total := absence.Add(otherDeductions)
	return Breakdown{
		Gross:            gross,
		AbsenceDeduction: absence,
		TotalDeductions:  total,
		Net:              gross.Sub(total),
	}
}

// NextNumber increments the numeric suffix of the last issued payroll number
// and prefixes it with the year and month of now. The counter carries across
// months; an empty or unparsable last number starts at 0001.
func NextNumber(last string, now time.Time) string {
	seq := 1
	if i := strings.LastIndex(last, "-"); i >= 0 {
		if n, err := strconv.Atoi(last[i+1:]); err == nil && n >= 0 {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%02d%02d-%04d", NumberPrefix, now.Year()%100, int(now.Month()), seq)
}
