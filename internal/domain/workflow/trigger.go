package workflow

// Trigger represents an operation that can cause a state transition
type Trigger string

const (
	TriggerRequestStart   Trigger = "REQUEST_START"
	TriggerApprove        Trigger = "APPROVE"
	TriggerComplete       Trigger = "COMPLETE"
	TriggerSubmit         Trigger = "SUBMIT"
	TriggerReject         Trigger = "REJECT"
	TriggerOrder          Trigger = "ORDER"
	TriggerDeliver        Trigger = "DELIVER"
	TriggerConfirmPayment Trigger = "CONFIRM_PAYMENT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
