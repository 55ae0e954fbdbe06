package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-tuition/internal/models"
)

// Payment events
const (
	EventRecordFull    = "record_full"
	EventRecordPartial = "record_partial"
	EventComplete      = "complete"
	EventMarkOverdue   = "mark_overdue"
	EventVoid          = "void"
)

// PaymentFSM wraps a payment with its state machine
type PaymentFSM struct {
	payment *models.Payment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.Payment) *PaymentFSM {
	pfsm := &PaymentFSM{
		payment: payment,
	}

	status := payment.Status
	if status == "" {
		status = models.PaymentStatusUnpaid
	}

	pfsm.fsm = fsm.NewFSM(
		status,
		fsm.Events{
			// unpaid/overdue → paid
			{Name: EventRecordFull, Src: []string{models.PaymentStatusUnpaid, models.PaymentStatusOverdue}, Dst: models.PaymentStatusPaid},

			// unpaid/overdue → partially paid
			{Name: EventRecordPartial, Src: []string{models.PaymentStatusUnpaid, models.PaymentStatusOverdue}, Dst: models.PaymentStatusPartiallyPaid},

			// partially paid → paid
			{Name: EventComplete, Src: []string{models.PaymentStatusPartiallyPaid}, Dst: models.PaymentStatusPaid},

			// unpaid → overdue
			{Name: EventMarkOverdue, Src: []string{models.PaymentStatusUnpaid}, Dst: models.PaymentStatusOverdue},

			// anything but voided → voided
			{Name: EventVoid, Src: []string{
				models.PaymentStatusPaid,
				models.PaymentStatusPartiallyPaid,
				models.PaymentStatusUnpaid,
				models.PaymentStatusOverdue,
			}, Dst: models.PaymentStatusVoided},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Record moves the payment to PAID or PARTIALLY_PAID
func (p *PaymentFSM) Record(ctx context.Context, status string) error {
	switch status {
	case models.PaymentStatusPaid:
		return p.RecordFull(ctx)
	case models.PaymentStatusPartiallyPaid:
		return p.RecordPartial(ctx)
	default:
		return fmt.Errorf("payment cannot be recorded as %q", status)
	}
}

// RecordFull transitions payment to paid state
func (p *PaymentFSM) RecordFull(ctx context.Context) error {
	if !p.payment.MayRecord() {
		return fmt.Errorf("payment cannot be recorded in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, EventRecordFull); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// RecordPartial transitions payment to partially paid state
func (p *PaymentFSM) RecordPartial(ctx context.Context) error {
	if !p.payment.MayRecord() {
		return fmt.Errorf("payment cannot be recorded in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, EventRecordPartial); err != nil {
		return fmt.Errorf("failed to record partial payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Complete settles a partially paid payment
func (p *PaymentFSM) Complete(ctx context.Context) error {
	if !p.payment.MayComplete() {
		return fmt.Errorf("payment cannot be completed in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, EventComplete); err != nil {
		return fmt.Errorf("failed to complete payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// MarkOverdue flags an unpaid payment as overdue
func (p *PaymentFSM) MarkOverdue(ctx context.Context) error {
	if !p.payment.MayMarkOverdue() {
		return fmt.Errorf("payment cannot be marked overdue in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, EventMarkOverdue); err != nil {
		return fmt.Errorf("failed to mark payment overdue: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Void cancels the payment; VOIDED is terminal
func (p *PaymentFSM) Void(ctx context.Context) error {
	if !p.payment.MayVoid() {
		return fmt.Errorf("payment cannot be voided in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, EventVoid); err != nil {
		return fmt.Errorf("failed to void payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PaymentFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PaymentFSM) Can(event string) bool {
	return p.fsm.Can(event)
}
