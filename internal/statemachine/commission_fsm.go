package statemachine

import (
	"context"
	"fmt"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/looplab/fsm"
)

// CommissionFSM wraps a commission rate change with its state machine.
//
// The transition table is deliberately minimal: pending is the only
// non-terminal state. Approved and rejected changes are immutable; a
// further adjustment requires a new pending change (the older approved
// one becomes superseded by convention when the new one takes effect).
type CommissionFSM struct {
	change *models.CommissionRateChange
	fsm    *fsm.FSM
}

// NewCommissionFSM creates a new commission rate change state machine
func NewCommissionFSM(change *models.CommissionRateChange) *CommissionFSM {
	cfsm := &CommissionFSM{
		change: change,
	}

	cfsm.fsm = fsm.NewFSM(
		change.Status,
		fsm.Events{
			// pending → approved
			{Name: "approve", Src: []string{models.CommissionStatusPending}, Dst: models.CommissionStatusApproved},

			// pending → rejected
			{Name: "reject", Src: []string{models.CommissionStatusPending}, Dst: models.CommissionStatusRejected},

			// approved → superseded (a newer approved change took effect)
			{Name: "supersede", Src: []string{models.CommissionStatusApproved}, Dst: models.CommissionStatusSuperseded},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// Approve transitions the change to approved state
func (c *CommissionFSM) Approve(ctx context.Context) error {
	if !c.change.MayApprove() {
		return fmt.Errorf("commission change cannot be approved in current state: %s", c.change.Status)
	}

	if err := c.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve commission change: %w", err)
	}

	c.change.Status = c.fsm.Current()
	return nil
}

// Reject transitions the change to rejected state
func (c *CommissionFSM) Reject(ctx context.Context) error {
	if !c.change.MayReject() {
		return fmt.Errorf("commission change cannot be rejected in current state: %s", c.change.Status)
	}

	if err := c.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("failed to reject commission change: %w", err)
	}

	c.change.Status = c.fsm.Current()
	return nil
}

// Supersede marks an approved change as replaced by a newer one
func (c *CommissionFSM) Supersede(ctx context.Context) error {
	if err := c.fsm.Event(ctx, "supersede"); err != nil {
		return fmt.Errorf("failed to supersede commission change: %w", err)
	}

	c.change.Status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *CommissionFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *CommissionFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
