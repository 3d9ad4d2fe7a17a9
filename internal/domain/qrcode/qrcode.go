package qrcode

import "github.com/Xausdorf/paycrew/internal/domain/payerr"

var ErrEmptyContent = payerr.New(payerr.KindValidation, payerr.CodeInvalidRequest, "qr content is empty")

// Generator renders content as a PNG image.
type Generator interface {
	Generate(content string) ([]byte, error)
}
