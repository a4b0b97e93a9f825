package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceRequestStatus_Transitions(t *testing.T) {
	assert.True(t, RequestPending.CanTransitionTo(RequestInProgress))
	assert.True(t, RequestPending.CanTransitionTo(RequestCancelled))
	assert.False(t, RequestPending.CanTransitionTo(RequestResolved))
	assert.True(t, RequestInProgress.CanTransitionTo(RequestResolved))
	assert.True(t, RequestInProgress.CanTransitionTo(RequestCancelled))
	assert.False(t, RequestInProgress.CanTransitionTo(RequestPending))
	assert.False(t, RequestResolved.CanTransitionTo(RequestInProgress))

	assert.True(t, RequestResolved.Terminal())
	assert.True(t, RequestCancelled.Terminal())
	assert.False(t, RequestPending.Terminal())
}

func TestInvoiceStatus_Payable(t *testing.T) {
	assert.True(t, InvoicePending.Payable())
	assert.True(t, InvoiceOverdue.Payable())
	assert.False(t, InvoicePaid.Payable())
	assert.False(t, InvoiceCancelled.Payable())
}

func TestPaymentGateway_Valid(t *testing.T) {
	assert.True(t, GatewayBankTransfer.Valid())
	assert.True(t, GatewayVNPay.Valid())
	assert.False(t, PaymentGateway("paypal").Valid())
}
