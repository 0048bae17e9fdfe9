package statemachine

import (
	"context"
	"fmt"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/looplab/fsm"
)

// PayoutFSM wraps a payout with its state machine.
//
// There is intentionally no "retry" event: a failed payout can only leave
// the failed state through the two-person approval flow, which re-enters
// processing via Process after a distinct admin approved the transfer.
type PayoutFSM struct {
	payout *models.Payout
	fsm    *fsm.FSM
}

// NewPayoutFSM creates a new payout state machine
func NewPayoutFSM(payout *models.Payout) *PayoutFSM {
	pfsm := &PayoutFSM{
		payout: payout,
	}

	pfsm.fsm = fsm.NewFSM(
		payout.Status,
		fsm.Events{
			// pending/failed → processing (transfer initiated after approval)
			{Name: "process", Src: []string{models.PayoutStatusPending, models.PayoutStatusFailed}, Dst: models.PayoutStatusProcessing},

			// processing → paid
			{Name: "settle", Src: []string{models.PayoutStatusProcessing}, Dst: models.PayoutStatusPaid},

			// processing → failed
			{Name: "fail", Src: []string{models.PayoutStatusProcessing}, Dst: models.PayoutStatusFailed},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Process transitions the payout to processing state
func (p *PayoutFSM) Process(ctx context.Context) error {
	if err := p.fsm.Event(ctx, "process"); err != nil {
		return fmt.Errorf("payout cannot be processed in current state: %s", p.payout.Status)
	}

	p.payout.Status = p.fsm.Current()
	return nil
}

// Settle transitions the payout to paid state
func (p *PayoutFSM) Settle(ctx context.Context) error {
	if err := p.fsm.Event(ctx, "settle"); err != nil {
		return fmt.Errorf("payout cannot be settled in current state: %s", p.payout.Status)
	}

	p.payout.Status = p.fsm.Current()
	return nil
}

// Fail transitions the payout to failed state with a reason
func (p *PayoutFSM) Fail(ctx context.Context, reason string) error {
	if err := p.fsm.Event(ctx, "fail"); err != nil {
		return fmt.Errorf("payout cannot be failed in current state: %s", p.payout.Status)
	}

	p.payout.Status = p.fsm.Current()
	p.payout.FailureReason = &reason
	return nil
}

// Current returns the current state
func (p *PayoutFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PayoutFSM) Can(event string) bool {
	return p.fsm.Can(event)
}
