package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentPaid, NormalizePaymentStatus(" Paid "))
	assert.Equal(t, PaymentNoPaymentRequired, NormalizePaymentStatus("no_payment_required"))
	assert.Equal(t, PaymentUnpaid, NormalizePaymentStatus("unpaid"))
	assert.Equal(t, PaymentUnpaid, NormalizePaymentStatus(""))
	assert.Equal(t, PaymentUnpaid, NormalizePaymentStatus("processing"))
}
