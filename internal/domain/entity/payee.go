package entity

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Xausdorf/paycrew/internal/domain/payerr"
)

type PayeeType string

const (
	PayeeTypeUSACH         PayeeType = "US_ACH"
	PayeeTypeCryptoAddress PayeeType = "CRYPTO_ADDRESS"
)

func (t PayeeType) Valid() bool {
	return t == PayeeTypeUSACH || t == PayeeTypeCryptoAddress
}

// Payee is a provider owned payment destination. The workflow only keeps a
// read-only reference to it by id.
type Payee struct {
	id            string
	payeeType     PayeeType
	name          string
	contactEmail  string
	bankDetails   *BankDetails
	cryptoAddress string
}

func ReconstructPayee(
	id string,
	payeeType PayeeType,
	name, contactEmail string,
	bank *BankDetails,
	cryptoAddress string,
) *Payee {
	return &Payee{
		id:            id,
		payeeType:     payeeType,
		name:          name,
		contactEmail:  contactEmail,
		bankDetails:   bank,
		cryptoAddress: cryptoAddress,
	}
}

func (p *Payee) ID() string {
	return p.id
}

func (p *Payee) Type() PayeeType {
	return p.payeeType
}

func (p *Payee) Name() string {
	return p.name
}

func (p *Payee) ContactEmail() string {
	return p.contactEmail
}

func (p *Payee) BankDetails() *BankDetails {
	return p.bankDetails
}

func (p *Payee) CryptoAddress() string {
	return p.cryptoAddress
}

// ValidateCryptoAddress accepts hex encoded EVM addresses.
func ValidateCryptoAddress(addr string) error {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return payerr.Validation(payerr.CodeInvalidPayee, "invalid crypto address %q", addr)
	}
	return nil
}
