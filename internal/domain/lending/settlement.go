package lending

import (
	"time"

	"github.com/bookloop/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const secondsPerDay = 86400

// SettlementPolicy parameterizes the penalty and reward arithmetic.
// Late and damage penalties are summed and then capped; whether late
// accrual should instead stop once damage already compensates the
// owner in full is a policy decision, so the rates live here rather
// than as constants buried in the computation.
type SettlementPolicy struct {
	LatePenaltyPerDay decimal.Decimal // fraction of deposit forfeited per day late
	DamagePenaltyRate decimal.Decimal // fraction forfeited when returned damaged
	PenaltyCap        decimal.Decimal // total forfeiture never exceeds this fraction
	OwnerReward       decimal.Decimal // credited to the owner on every completed return
	BorrowerReward    decimal.Decimal // credited to the borrower on a flawless return
}

// DefaultSettlementPolicy returns the marketplace's standard terms:
// 5% of the deposit per day late, 50% for damage, capped at the full
// deposit; 10 reward credits for the owner, 2 for the borrower.
func DefaultSettlementPolicy() SettlementPolicy {
	return SettlementPolicy{
		LatePenaltyPerDay: decimal.NewFromFloat(0.05),
		DamagePenaltyRate: decimal.NewFromFloat(0.50),
		PenaltyCap:        decimal.NewFromInt(1),
		OwnerReward:       decimal.NewFromInt(10),
		BorrowerReward:    decimal.NewFromInt(2),
	}
}

// Settlement is the outcome of a loan return. Refund plus penalty
// always equals the deposit paid, exactly.
type Settlement struct {
	LateDays       int64
	PenaltyRate    decimal.Decimal
	Penalty        valueobject.Money
	Refund         valueobject.Money
	OwnerReward    valueobject.Money
	BorrowerReward valueobject.Money // zero when withheld
}

// OnTime reports whether the return beat the deadline
func (s *Settlement) OnTime() bool {
	return s.LateDays == 0
}

// Settle computes the settlement for a return happening at now.
// Inputs are the loan's frozen deposit and deadline; the current Book
// record plays no part.
func (p SettlementPolicy) Settle(depositPaid valueobject.Money, deadline time.Time, conditionAfter Condition, now time.Time) *Settlement {
	lateDays := lateDaysBetween(deadline, now)

	lateRate := p.LatePenaltyPerDay.Mul(decimal.NewFromInt(lateDays))
	if lateRate.GreaterThan(p.PenaltyCap) {
		lateRate = p.PenaltyCap
	}

	damageRate := decimal.Zero
	if conditionAfter == ConditionDamaged {
		damageRate = p.DamagePenaltyRate
	}

	totalRate := lateRate.Add(damageRate)
	if totalRate.GreaterThan(p.PenaltyCap) {
		totalRate = p.PenaltyCap
	}

	penalty := depositPaid.Multiply(totalRate)
	refund := depositPaid.MustSubtract(penalty)

	borrowerReward := valueobject.ZeroCredits()
	if lateDays == 0 && conditionAfter != ConditionDamaged {
		borrowerReward = valueobject.NewCredits(p.BorrowerReward)
	}

	return &Settlement{
		LateDays:       lateDays,
		PenaltyRate:    totalRate,
		Penalty:        penalty,
		Refund:         refund,
		OwnerReward:    valueobject.NewCredits(p.OwnerReward),
		BorrowerReward: borrowerReward,
	}
}

// lateDaysBetween returns ceil((now - deadline) / 1 day), floored at zero
func lateDaysBetween(deadline, now time.Time) int64 {
	overdue := now.Unix() - deadline.Unix()
	if overdue <= 0 {
		return 0
	}
	return (overdue + secondsPerDay - 1) / secondsPerDay
}
