package domain

import (
	"errors"
	"time"
)

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TypePemasukan   TransactionType = "PEMASUKAN"
	TypePengeluaran TransactionType = "PENGELUARAN"
)

var ErrTransactionNotFound = errors.New("transaction not found")
var ErrInvalidTransaction = errors.New("invalid transaction")

// ValidTransactionType reports whether t is a known transaction type.
func ValidTransactionType(t TransactionType) bool {
	return t == TypePemasukan || t == TypePengeluaran
}

// Transaction is a single bookkeeping entry recorded by a cashier.
// Amount is in whole rupiah; there are no fractional IDR amounts.
type Transaction struct {
	ID              string          `json:"id" bson:"_id,omitempty"`
	Type            TransactionType `json:"type" bson:"type"`
	Channel         string          `json:"channel" bson:"channel"`
	Amount          int64           `json:"amount" bson:"amount"`
	TransactionDate time.Time       `json:"transactionDate" bson:"transaction_date"`
	Note            string          `json:"note,omitempty" bson:"note,omitempty"`
	Attachment      string          `json:"file,omitempty" bson:"attachment,omitempty"`
	CreatedBy       string          `json:"createdBy" bson:"created_by"`
	IsDeleted       bool            `json:"isDeleted" bson:"is_deleted"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" bson:"updated_at"`
}
