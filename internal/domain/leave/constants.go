package leave

const (
	TypeSick   = "SICK"
	TypeCasual = "CASUAL"
	TypeEarned = "EARNED"
	TypeUnpaid = "UNPAID"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusAll      = "ALL"
)

var Types = []string{TypeSick, TypeCasual, TypeEarned, TypeUnpaid}

var ReviewActions = []string{StatusApproved, StatusRejected}

const (
	MessageApproved = "Leave approved successfully"
	MessageRejected = "Leave rejected successfully"
)

// balanceColumns maps a balance-tracked leave type to its (used, balance) columns.
var balanceColumns = map[string][2]string{
	TypeSick:   {"sick_leave_used", "sick_leave_balance"},
	TypeCasual: {"casual_leave_used", "casual_leave_balance"},
	TypeEarned: {"earned_leave_used", "earned_leave_balance"},
}
