package http

import (
	"errors"
	"net/http"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/repository"
	"github.com/Xausdorf/paycrew/internal/usecase/transfer"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, transfer.ErrAsyncOff):
		return http.StatusNotImplemented
	}
	pe, ok := payerr.From(err)
	if !ok {
		return http.StatusInternalServerError
	}
	return statusForKind(pe.Kind(), pe.Code())
}

func statusForKind(kind payerr.Kind, code payerr.Code) int {
	switch kind {
	case payerr.KindValidation:
		if code == payerr.CodeInvalidPayee {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case payerr.KindProviderBusiness:
		switch code {
		case payerr.CodeInsufficientFunds:
			return http.StatusPaymentRequired
		case payerr.CodeNotFound:
			return http.StatusNotFound
		default:
			return http.StatusConflict
		}
	case payerr.KindProviderTransport:
		switch code {
		case payerr.CodeTimeout, payerr.CodeRateLimited, payerr.CodeCanceled:
			return http.StatusServiceUnavailable
		default:
			return http.StatusBadGateway
		}
	case payerr.KindWorkflowState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// statusForRun picks the status of a workflow response. Failed runs carry the
// status of their error kind.
func statusForRun(resp *transfer.Response) int {
	switch resp.Status {
	case entity.PaymentConfirmed:
		return http.StatusOK
	case entity.PaymentFailed:
		return statusForKind(resp.ErrorKind, resp.ErrorCode)
	default:
		return http.StatusAccepted
	}
}
