package auth

const (
	PermStaffRead      = "staff.read"
	PermStaffWrite     = "staff.write"
	PermLeaveRead      = "leave.read"
	PermLeaveWrite     = "leave.write"
	PermLeaveApprove   = "leave.approve"
	PermLeaveBalances  = "leave.balances"
	PermAttendanceRead = "attendance.read"
	PermPayrollRead    = "payroll.read"
	PermPayrollWrite   = "payroll.write"
	PermPayrollPay     = "payroll.pay"
	PermExpensesRead   = "expenses.read"
	PermDietRead       = "diet.read"
	PermAuditRead      = "audit.read"
	PermReportsRead    = "reports.read"
)

var DefaultPermissions = []string{
	PermStaffRead,
	PermStaffWrite,
	PermLeaveRead,
	PermLeaveWrite,
	PermLeaveApprove,
	PermLeaveBalances,
	PermAttendanceRead,
	PermPayrollRead,
	PermPayrollWrite,
	PermPayrollPay,
	PermExpensesRead,
	PermDietRead,
	PermAuditRead,
	PermReportsRead,
}

var RolePermissions = map[string][]string{
	RoleStaff: {
		PermLeaveRead,
		PermLeaveWrite,
		PermAttendanceRead,
		PermDietRead,
		PermReportsRead,
	},
	RoleManager: {
		PermStaffRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermAttendanceRead,
		PermDietRead,
		PermReportsRead,
	},
	RoleAccountant: {
		PermStaffRead,
		PermAttendanceRead,
		PermPayrollRead,
		PermPayrollWrite,
		PermPayrollPay,
		PermExpensesRead,
		PermReportsRead,
	},
	RoleAdmin: DefaultPermissions,
}

// RoleHasPermission checks the built-in role table without a database round trip.
func RoleHasPermission(roleName, permission string) bool {
	for _, perm := range RolePermissions[roleName] {
		if perm == permission {
			return true
		}
	}
	return false
}
