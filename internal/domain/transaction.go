package domain

import (
	"github.com/shopspring/decimal"
)

// ClientID identifies a client account.
type ClientID uint16

// TransactionID identifies a transaction. Unique across the whole store for
// the lifetime of a run.
type TransactionID uint32

type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeDispute    TransactionType = "dispute"
	TypeResolve    TransactionType = "resolve"
	TypeChargeback TransactionType = "chargeback"
)

// Transaction is the wire form of a record as the input boundary delivers it.
// Amount is present for deposits and withdrawals and absent otherwise.
type Transaction struct {
	Type   TransactionType
	Client ClientID
	TX     TransactionID
	Amount *decimal.Decimal
}

// StoredTransaction is the internal form. Kind tags the variant: only
// deposits and withdrawals carry an amount, and only deposits carry the
// dispute flag. Dispute, resolve and chargeback records are instructions
// against a prior deposit and are never persisted as ledger entries.
type StoredTransaction struct {
	Kind         TransactionType
	ID           TransactionID
	ClientID     ClientID
	Amount       decimal.Decimal
	UnderDispute bool
}

// ToStored converts a wire record to the internal form. A missing amount on a
// deposit or withdrawal defaults to zero.
func (t Transaction) ToStored() StoredTransaction {
	stored := StoredTransaction{
		Kind:     t.Type,
		ID:       t.TX,
		ClientID: t.Client,
	}
	if t.Amount != nil {
		stored.Amount = *t.Amount
	}
	return stored
}

// IsInvalid reports whether the record must be rejected outright. Only a
// deposit or withdrawal with a strictly negative amount is invalid.
func (s StoredTransaction) IsInvalid() bool {
	switch s.Kind {
	case TypeDeposit, TypeWithdrawal:
		return s.Amount.IsNegative()
	default:
		return false
	}
}

// Persistable reports whether the record is a durable ledger entry rather
// than an instruction.
func (s StoredTransaction) Persistable() bool {
	return s.Kind == TypeDeposit || s.Kind == TypeWithdrawal
}
