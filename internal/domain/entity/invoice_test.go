package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		inv  *Invoice
		want string
	}{
		{
			name: "paid wins regardless of due date",
			inv:  &Invoice{Status: InvoicePaid, DueDate: past},
			want: DisplayPaid,
		},
		{
			name: "pending past due shows overdue",
			inv:  &Invoice{Status: InvoicePending, DueDate: past},
			want: DisplayOverdue,
		},
		{
			name: "approved past due shows overdue",
			inv:  &Invoice{Status: InvoiceApproved, DueDate: past},
			want: DisplayOverdue,
		},
		{
			name: "pending before due shows pending",
			inv:  &Invoice{Status: InvoicePending, DueDate: future},
			want: DisplayPending,
		},
		{
			name: "client mark-paid flag does not change the projection",
			inv:  &Invoice{Status: InvoiceApproved, DueDate: future, ClientMarkedPaid: true},
			want: DisplayPending,
		},
		{
			name: "rejected past due is not overdue",
			inv:  &Invoice{Status: InvoiceRejected, DueDate: past},
			want: DisplayPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayStatus(tt.inv, now))
		})
	}
}
