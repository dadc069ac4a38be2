package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bookloop/backend/internal/domain/ledger"
	"github.com/bookloop/backend/internal/domain/shared/valueobject"
	"github.com/bookloop/backend/internal/infrastructure/persistence"
)

// escrowCustodian is the internal account that parks held deposits
// between hold and release.
const escrowCustodian = "escrow:custodian"

type ledgerAccount struct {
	Address   string          `gorm:"primaryKey;size:128"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,8);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ledgerAccount) TableName() string {
	return "ledger_accounts"
}

type escrowHold struct {
	Ref        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Payer      string          `gorm:"not null;size:128"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	Released   bool            `gorm:"not null;default:false"`
	CreatedAt  time.Time
	ReleasedAt *time.Time
}

func (escrowHold) TableName() string {
	return "escrow_holds"
}

// ledgerEntry is one journal line. Every value movement writes one, so
// the account balances stay auditable against the journal.
type ledgerEntry struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	EntryType   string          `gorm:"not null;size:32"`
	FromAccount string          `gorm:"not null;size:128;index"`
	ToAccount   string          `gorm:"not null;size:128;index"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,8);not null"`
	EscrowRef   *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt   time.Time
}

func (ledgerEntry) TableName() string {
	return "ledger_entries"
}

const (
	entryDeposit       = "deposit"
	entryTransfer      = "transfer"
	entryEscrowHold    = "escrow_hold"
	entryEscrowRelease = "escrow_release"
)

// GormAdapter implements the ledger adapter on the relational ledger
// of record. It resolves its connection from the context the same way
// the repositories do, so value movement commits with the lending
// state transition that caused it.
type GormAdapter struct {
	db *gorm.DB
}

// NewGormAdapter creates a new ledger adapter
func NewGormAdapter(db *gorm.DB) *GormAdapter {
	return &GormAdapter{db: db}
}

// Migrate creates or updates the ledger schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ledgerAccount{}, &escrowHold{}, &ledgerEntry{})
}

func (a *GormAdapter) conn(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return a.db
}

// credit adds to an account balance, creating the account row on first
// contact. The relative update keeps concurrent credits from losing
// increments.
func credit(db *gorm.DB, address string, amount decimal.Decimal) error {
	result := db.Model(&ledgerAccount{}).
		Where("address = ?", address).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	now := time.Now()
	err := db.Create(&ledgerAccount{
		Address:   address,
		Balance:   amount,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the seed race; the row exists now
		return db.Model(&ledgerAccount{}).
			Where("address = ?", address).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error
	}
	return err
}

// debit removes from an account balance. Unless the account is exempt
// from balance checks, the guard in the WHERE clause makes the check
// and the debit one atomic statement.
func debit(db *gorm.DB, address string, amount decimal.Decimal, allowNegative bool) error {
	if allowNegative {
		if err := credit(db, address, decimal.Zero); err != nil {
			return err
		}
		return db.Model(&ledgerAccount{}).
			Where("address = ?", address).
			UpdateColumn("balance", gorm.Expr("balance - ?", amount)).Error
	}

	result := db.Model(&ledgerAccount{}).
		Where("address = ? AND balance >= ?", address, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: account %s needs %s", ledger.ErrInsufficientFunds, address, amount)
	}
	return nil
}

func journal(db *gorm.DB, entryType, from, to string, amount decimal.Decimal, ref *uuid.UUID) error {
	return db.Create(&ledgerEntry{
		EntryType:   entryType,
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
		EscrowRef:   ref,
		CreatedAt:   time.Now(),
	}).Error
}

// Deposit credits an account from the external on-ramp
func (a *GormAdapter) Deposit(ctx context.Context, to string, amount valueobject.Money) error {
	db := a.conn(ctx).WithContext(ctx)
	if err := credit(db, to, amount.Amount()); err != nil {
		return err
	}
	return journal(db, entryDeposit, "", to, amount.Amount(), nil)
}

// Transfer moves value between accounts. The treasury account mints on
// demand and is exempt from the balance guard.
func (a *GormAdapter) Transfer(ctx context.Context, from, to string, amount valueobject.Money) error {
	db := a.conn(ctx).WithContext(ctx)
	if err := debit(db, from, amount.Amount(), from == ledger.TreasuryAccount); err != nil {
		return err
	}
	if err := credit(db, to, amount.Amount()); err != nil {
		return err
	}
	return journal(db, entryTransfer, from, to, amount.Amount(), nil)
}

// EscrowHold debits the payer and parks the value with the custodian
// account until released
func (a *GormAdapter) EscrowHold(ctx context.Context, payer string, amount valueobject.Money) (ledger.EscrowRef, error) {
	db := a.conn(ctx).WithContext(ctx)

	if err := debit(db, payer, amount.Amount(), false); err != nil {
		return uuid.Nil, err
	}
	if err := credit(db, escrowCustodian, amount.Amount()); err != nil {
		return uuid.Nil, err
	}

	hold := &escrowHold{
		Ref:       uuid.New(),
		Payer:     payer,
		Amount:    amount.Amount(),
		CreatedAt: time.Now(),
	}
	if err := db.Create(hold).Error; err != nil {
		return uuid.Nil, err
	}
	if err := journal(db, entryEscrowHold, payer, escrowCustodian, amount.Amount(), &hold.Ref); err != nil {
		return uuid.Nil, err
	}
	return hold.Ref, nil
}

// EscrowRelease pays a held deposit out to the given splits. The
// splits must cover the held amount exactly and a hold releases at
// most once; marking it released first makes a concurrent release
// lose on the guarded update.
func (a *GormAdapter) EscrowRelease(ctx context.Context, ref ledger.EscrowRef, splits []ledger.Split) error {
	db := a.conn(ctx).WithContext(ctx)

	var hold escrowHold
	if err := db.First(&hold, "ref = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.ErrEscrowNotFound
		}
		return err
	}
	if hold.Released {
		return ledger.ErrEscrowReleased
	}

	total := decimal.Zero
	for _, split := range splits {
		if split.Amount.IsNegative() {
			return ledger.ErrSplitMismatch
		}
		total = total.Add(split.Amount.Amount())
	}
	if !total.Equal(hold.Amount) {
		return fmt.Errorf("%w: held %s, splits sum to %s", ledger.ErrSplitMismatch, hold.Amount, total)
	}

	now := time.Now()
	result := db.Model(&escrowHold{}).
		Where("ref = ? AND released = ?", ref, false).
		Updates(map[string]any{"released": true, "released_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrEscrowReleased
	}

	for _, split := range splits {
		if split.Amount.IsZero() {
			continue
		}
		if err := debit(db, escrowCustodian, split.Amount.Amount(), false); err != nil {
			return err
		}
		if err := credit(db, split.Payee, split.Amount.Amount()); err != nil {
			return err
		}
		if err := journal(db, entryEscrowRelease, escrowCustodian, split.Payee, split.Amount.Amount(), &hold.Ref); err != nil {
			return err
		}
	}
	return nil
}

// Balance returns an account's current balance. Unknown accounts have
// a zero balance.
func (a *GormAdapter) Balance(ctx context.Context, address string) (valueobject.Money, error) {
	var account ledgerAccount
	err := a.conn(ctx).WithContext(ctx).First(&account, "address = ?", address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return valueobject.ZeroCredits(), nil
		}
		return valueobject.Money{}, err
	}
	return valueobject.NewCredits(account.Balance), nil
}

var _ ledger.Adapter = (*GormAdapter)(nil)
