// Package events persists billing events to a transactional outbox. A relay
// process drains the table; nothing in this service delivers notifications.
package events

// Event types stored in the outbox.
const (
	EventBillCreated = "bill.created"
)

// BillCreatedPayload is the outbox payload written for each generated bill.
type BillCreatedPayload struct {
	BillID     string `json:"bill_id"`
	AccountID  string `json:"account_id"`
	ScheduleID string `json:"schedule_id,omitempty"`
	DueDate    string `json:"due_date"`
}

func (p BillCreatedPayload) ToMap() map[string]any {
	payload := map[string]any{
		"bill_id":    p.BillID,
		"account_id": p.AccountID,
		"due_date":   p.DueDate,
	}
	if p.ScheduleID != "" {
		payload["schedule_id"] = p.ScheduleID
	}
	return payload
}
