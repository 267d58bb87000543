package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status RequestStatus
		want   bool
	}{
		{name: "pending", status: StatusPending, want: true},
		{name: "responded", status: StatusResponded, want: true},
		{name: "accepted", status: StatusAccepted, want: true},
		{name: "refused", status: StatusRefused, want: true},
		{name: "archived", status: StatusArchived, want: true},
		{name: "empty", status: RequestStatus(""), want: false},
		{name: "unknown", status: RequestStatus("DELETED"), want: false},
		{name: "lowercase is not valid", status: RequestStatus("pending"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsValid())
		})
	}
}

func TestRequestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusArchived.IsTerminal())

	for _, status := range []RequestStatus{StatusPending, StatusResponded, StatusAccepted, StatusRefused} {
		assert.False(t, status.IsTerminal(), "status %v must not be terminal", status)
	}
}

func TestRequestStatus_RequiresToken(t *testing.T) {
	assert.True(t, StatusResponded.RequiresToken())
	assert.True(t, StatusAccepted.RequiresToken())

	for _, status := range []RequestStatus{StatusPending, StatusRefused, StatusArchived} {
		assert.False(t, status.RequiresToken(), "status %v must be free", status)
	}
}

func TestTransactionType_IsValid(t *testing.T) {
	for _, typ := range []TransactionType{TransactionPurchase, TransactionSpend, TransactionGrant, TransactionRefund} {
		assert.True(t, typ.IsValid())
	}

	assert.False(t, TransactionType("BONUS").IsValid())
	assert.False(t, TransactionType("").IsValid())
}
