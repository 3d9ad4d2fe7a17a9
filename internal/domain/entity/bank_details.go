package entity

import (
	"strings"

	"github.com/Xausdorf/paycrew/internal/domain/payerr"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

func (t AccountType) Valid() bool {
	return t == AccountTypeChecking || t == AccountTypeSavings
}

type BankDetails struct {
	RoutingNumber     string      `json:"routing_number"`
	AccountNumber     string      `json:"account_number"`
	AccountType       AccountType `json:"account_type"`
	AccountHolderName string      `json:"account_holder_name"`
}

// Validate checks the structural rules of a US ACH destination. Missing fields
// are reported, never filled in.
func (b BankDetails) Validate() error {
	if !isDigits(b.RoutingNumber) || len(b.RoutingNumber) != 9 {
		return payerr.Validation(payerr.CodeInvalidPayee, "routing number must be exactly 9 digits")
	}
	if !isDigits(b.AccountNumber) || len(b.AccountNumber) < 4 || len(b.AccountNumber) > 17 {
		return payerr.Validation(payerr.CodeInvalidPayee, "account number must be 4 to 17 digits")
	}
	if !b.AccountType.Valid() {
		return payerr.Validation(payerr.CodeInvalidPayee, "account type must be checking or savings")
	}
	if strings.TrimSpace(b.AccountHolderName) == "" {
		return payerr.Validation(payerr.CodeInvalidPayee, "account holder name is required")
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
