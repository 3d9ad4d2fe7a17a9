package entity

import "github.com/shopspring/decimal"

type BalanceCheck struct {
	Available  decimal.Decimal
	Required   decimal.Decimal
	Currency   string
	Sufficient bool
}

func NewBalanceCheck(available, required decimal.Decimal, currency string) *BalanceCheck {
	return &BalanceCheck{
		Available:  available,
		Required:   required,
		Currency:   currency,
		Sufficient: available.GreaterThanOrEqual(required),
	}
}
