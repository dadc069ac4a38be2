package reputation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bookloop/backend/internal/domain/lending"
	"github.com/bookloop/backend/internal/domain/reputation"
	"github.com/bookloop/backend/internal/domain/shared"
)

// LoanSettledHandler applies a settled loan to both parties'
// reputation records: the owner's lend counter and reward, the
// borrower's borrow counter and any reward that was not withheld.
type LoanSettledHandler struct {
	profiles  reputation.ProfileRepository
	txManager shared.TransactionManager
	logger    *zap.Logger
}

// NewLoanSettledHandler creates a new handler for loan settled events
func NewLoanSettledHandler(
	profiles reputation.ProfileRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *LoanSettledHandler {
	return &LoanSettledHandler{
		profiles:  profiles,
		txManager: txManager,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LoanSettledHandler) EventTypes() []string {
	return []string{lending.EventTypeLoanSettled}
}

// DedupKey deduplicates by loan, not by event. A settlement replayed
// under a fresh event id must still count each loan exactly once.
func (h *LoanSettledHandler) DedupKey(event shared.DomainEvent) string {
	if settled, ok := event.(*lending.LoanSettledEvent); ok {
		return fmt.Sprintf("reputation:loan:%d", settled.LoanID)
	}
	return event.EventID().String()
}

// Handle processes a LoanSettledEvent
func (h *LoanSettledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	settled, ok := event.(*lending.LoanSettledEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", lending.EventTypeLoanSettled),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			lending.EventTypeLoanSettled, event.EventType())
	}

	h.logger.Info("applying settled loan to reputation",
		zap.Uint64("loan_id", settled.LoanID),
		zap.String("owner", settled.Owner),
		zap.String("borrower", settled.Borrower),
		zap.Int64("late_days", settled.LateDays),
	)

	return h.txManager.WithinTx(ctx, func(ctx context.Context) error {
		owner, err := h.profiles.FindOrCreate(ctx, settled.Owner)
		if err != nil {
			return fmt.Errorf("load owner profile: %w", err)
		}
		owner.CreditLend(settled.OwnerReward)
		if err := h.profiles.Save(ctx, owner); err != nil {
			return fmt.Errorf("save owner profile: %w", err)
		}

		borrower, err := h.profiles.FindOrCreate(ctx, settled.Borrower)
		if err != nil {
			return fmt.Errorf("load borrower profile: %w", err)
		}
		borrower.CreditBorrow(settled.BorrowerReward)
		if err := h.profiles.Save(ctx, borrower); err != nil {
			return fmt.Errorf("save borrower profile: %w", err)
		}
		return nil
	})
}

var _ shared.EventHandler = (*LoanSettledHandler)(nil)
