package payman

import (
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
)

type balanceResponse struct {
	SpendableBalance decimal.Decimal `json:"spendableBalance"`
	Currency         string          `json:"currency"`
}

type contactDetails struct {
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type destination struct {
	ID                string          `json:"id,omitempty"`
	Type              string          `json:"type"`
	Name              string          `json:"name,omitempty"`
	AccountHolderName string          `json:"accountHolderName,omitempty"`
	AccountNumber     string          `json:"accountNumber,omitempty"`
	RoutingNumber     string          `json:"routingNumber,omitempty"`
	AccountType       string          `json:"accountType,omitempty"`
	Address           string          `json:"address,omitempty"`
	Currency          string          `json:"currency,omitempty"`
	ContactDetails    *contactDetails `json:"contactDetails,omitempty"`
}

type sendRequest struct {
	AmountDecimal        decimal.Decimal `json:"amountDecimal"`
	Currency             string          `json:"currency,omitempty"`
	PaymentDestinationID string          `json:"paymentDestinationId,omitempty"`
	PaymentDestination   *destination    `json:"paymentDestination,omitempty"`
	CustomerID           string          `json:"customerId,omitempty"`
	CustomerEmail        string          `json:"customerEmail,omitempty"`
	CustomerName         string          `json:"customerName,omitempty"`
	Memo                 string          `json:"memo,omitempty"`
}

type sendResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type checkoutRequest struct {
	AmountDecimal decimal.Decimal `json:"amountDecimal"`
	Currency      string          `json:"currency,omitempty"`
	CustomerID    string          `json:"customerId"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	Memo          string          `json:"memo,omitempty"`
}

type checkoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

type errorResponse struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func toDestination(p provider.NewPayee) *destination {
	d := &destination{
		Type:     string(p.Type),
		Name:     p.Name,
		Address:  p.CryptoAddress,
		Currency: p.Currency,
	}
	if b := p.BankDetails; b != nil {
		d.AccountHolderName = b.AccountHolderName
		d.AccountNumber = b.AccountNumber
		d.RoutingNumber = b.RoutingNumber
		d.AccountType = string(b.AccountType)
	}
	if c := p.Contact; c != nil {
		d.ContactDetails = &contactDetails{Email: c.Email, PhoneNumber: c.Phone}
	}
	return d
}

func (d destination) toPayee() *entity.Payee {
	var bank *entity.BankDetails
	if d.AccountNumber != "" || d.RoutingNumber != "" {
		bank = &entity.BankDetails{
			RoutingNumber:     d.RoutingNumber,
			AccountNumber:     d.AccountNumber,
			AccountType:       entity.AccountType(d.AccountType),
			AccountHolderName: d.AccountHolderName,
		}
	}
	var email string
	if d.ContactDetails != nil {
		email = d.ContactDetails.Email
	}
	return entity.ReconstructPayee(d.ID, entity.PayeeType(d.Type), d.Name, email, bank, d.Address)
}
