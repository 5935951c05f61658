package model

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"   // link created; awaiting webhook
	TransactionStatusPaid      TransactionStatus = "PAID"      // provider confirmed payment
	TransactionStatusCancelled TransactionStatus = "CANCELLED" // provider reported failure/cancel
)

// Terminal reports whether no further transition is allowed out of s.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusPaid || s == TransactionStatusCancelled
}

// CanTransition enforces the single legal transition: PENDING -> {PAID, CANCELLED}.
func (s TransactionStatus) CanTransition(to TransactionStatus) bool {
	return s == TransactionStatusPending && to.Terminal()
}

// StatusForOutcome maps the webhook success flag to the target terminal status.
func StatusForOutcome(success bool) TransactionStatus {
	if success {
		return TransactionStatusPaid
	}
	return TransactionStatusCancelled
}

// Transaction records one payment intent, keyed by the bill id shared with the
// provider. Timestamps are epoch seconds; TimePay stays zero until the
// transaction reaches a terminal status.
type Transaction struct {
	BillID     int64             `json:"bill_id"`
	MachineID  string            `json:"machine_id"`
	PayChannel string            `json:"pay_channel"`
	Status     TransactionStatus `json:"status"`
	TimeCreate int64             `json:"time_create"`
	TimePay    int64             `json:"time_pay,omitempty"`
}
