package statemachine

import (
	"context"
	"testing"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPayoutFSM_FailedPayoutHasNoRetryEvent(t *testing.T) {
	payout := &models.Payout{Status: models.PayoutStatusFailed}
	pfsm := NewPayoutFSM(payout)

	// The only way out of failed is "process", which the service layer
	// gates behind two-person approval
	assert.False(t, pfsm.Can("retry"))
	assert.True(t, pfsm.Can("process"))
}

func TestPayoutFSM_Lifecycle(t *testing.T) {
	payout := &models.Payout{Status: models.PayoutStatusPending}
	pfsm := NewPayoutFSM(payout)

	err := pfsm.Process(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusProcessing, payout.Status)

	err = pfsm.Settle(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPaid, payout.Status)
}

func TestPayoutFSM_FailCarriesReason(t *testing.T) {
	payout := &models.Payout{Status: models.PayoutStatusProcessing}
	pfsm := NewPayoutFSM(payout)

	err := pfsm.Fail(context.Background(), "bank rejected transfer")
	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusFailed, payout.Status)
	assert.NotNil(t, payout.FailureReason)
	assert.Equal(t, "bank rejected transfer", *payout.FailureReason)
}

func TestPayoutFSM_PaidIsTerminal(t *testing.T) {
	payout := &models.Payout{Status: models.PayoutStatusPaid}
	pfsm := NewPayoutFSM(payout)

	assert.Error(t, pfsm.Process(context.Background()))
	assert.Error(t, pfsm.Settle(context.Background()))
	assert.Error(t, pfsm.Fail(context.Background(), "too late"))
	assert.Equal(t, models.PayoutStatusPaid, payout.Status)
}

func TestCommissionFSM_Lifecycle(t *testing.T) {
	change := &models.CommissionRateChange{Status: models.CommissionStatusPending}
	cfsm := NewCommissionFSM(change)

	err := cfsm.Approve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.CommissionStatusApproved, change.Status)

	err = cfsm.Supersede(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.CommissionStatusSuperseded, change.Status)
}

func TestCommissionFSM_RejectedIsTerminal(t *testing.T) {
	change := &models.CommissionRateChange{Status: models.CommissionStatusPending}
	cfsm := NewCommissionFSM(change)

	err := cfsm.Reject(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.CommissionStatusRejected, change.Status)

	assert.Error(t, cfsm.Approve(context.Background()))
	assert.Equal(t, models.CommissionStatusRejected, change.Status)
}
