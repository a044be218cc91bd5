package payroll

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"

	PaymentMethodBankTransfer = "BANK_TRANSFER"

	DefaultWorkingDays = 30

	NumberPrefix        = "PAY"
	ExpenseNumberPrefix = "SAL-"
)

const (
	MessagePaid = "Payroll marked as paid successfully"
)

var PaymentMethods = []string{PaymentMethodBankTransfer, "CASH", "CHEQUE", "UPI", "CARD"}
