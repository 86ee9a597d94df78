package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts go out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// AmountScale is the number of fraction digits kept for money.
const AmountScale = 2

type PaymentType string

const (
	PaymentCard     PaymentType = "CARD"
	PaymentCash     PaymentType = "CASH"
	PaymentTransfer PaymentType = "TRANSFER"
)

var PaymentTypes = []PaymentType{PaymentCard, PaymentCash, PaymentTransfer}

func (p PaymentType) Valid() bool {
	for _, t := range PaymentTypes {
		if p == t {
			return true
		}
	}
	return false
}

// ParsePaymentType accepts any letter case.
func ParsePaymentType(s string) (PaymentType, error) {
	p := PaymentType(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", InvalidArgument("Invalid payment type: %s", s)
	}
	return p, nil
}

// Transaction is a monetary event attributed to exactly one seller.
// Only Seller.ID is read when a transaction is created.
type Transaction struct {
	ID              int64           `json:"id"`
	Seller          *Seller         `json:"seller"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentType     PaymentType     `json:"paymentType" binding:"required"`
	TransactionDate DateTime        `json:"transactionDate"`
}

// SellerID returns the id of the owning seller, 0 when unset.
func (t *Transaction) SellerID() int64 {
	if t.Seller == nil {
		return 0
	}
	return t.Seller.ID
}
