package core

import (
	"context"

	"bookdist/internal/confirm"
)

// PendingConfirmation reports the gate state.
func (s *Service) PendingConfirmation() confirm.State {
	return s.gate.State()
}

// Confirm runs the pending destructive action. It returns
// confirm.ErrNothingPending when the gate is idle.
func (s *Service) Confirm(ctx context.Context) error {
	return s.run(ctx, "confirm", s.gate.Confirm)
}

// Cancel discards the pending action.
func (s *Service) Cancel(ctx context.Context) {
	_ = s.run(ctx, "cancel", func(context.Context) error {
		s.gate.Cancel()
		return nil
	})
}
