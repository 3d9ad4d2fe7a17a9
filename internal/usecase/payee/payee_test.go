package payee_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
	"github.com/Xausdorf/paycrew/internal/domain/provider/mocks"
	"github.com/Xausdorf/paycrew/internal/usecase/payee"
)

func bankFor(name string) entity.BankDetails {
	return entity.BankDetails{
		RoutingNumber:     "011000015",
		AccountNumber:     "1234567890",
		AccountType:       entity.AccountTypeChecking,
		AccountHolderName: name,
	}
}

func TestResolver_ReturnsExistingPayeeWithoutCreating(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	existing := entity.ReconstructPayee("payee-1", entity.PayeeTypeUSACH, "John Doe", "john@example.com", nil, "")

	client.EXPECT().
		SearchPayees(gomock.Any(), provider.PayeeSearch{ContactEmail: "john@example.com", Type: entity.PayeeTypeUSACH}).
		Return([]*entity.Payee{existing}, nil).
		Times(2)
	client.EXPECT().AddPayee(gomock.Any(), gomock.Any()).Times(0)

	r := payee.NewResolver(client)

	first, err := r.Resolve(context.Background(), "John Doe", "john@example.com", bankFor("John Doe"))
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "John Doe", "john@example.com", bankFor("John Doe"))
	require.NoError(t, err)

	assert.Equal(t, "payee-1", first)
	assert.Equal(t, first, second)
}

func TestResolver_FallsBackToNameSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	existing := entity.ReconstructPayee("payee-2", entity.PayeeTypeUSACH, "john doe", "", nil, "")

	client.EXPECT().
		SearchPayees(gomock.Any(), provider.PayeeSearch{Name: "John Doe", Type: entity.PayeeTypeUSACH}).
		Return([]*entity.Payee{existing}, nil)

	id, err := payee.NewResolver(client).Resolve(context.Background(), "John Doe", "", bankFor("John Doe"))

	require.NoError(t, err)
	assert.Equal(t, "payee-2", id)
}

func TestResolver_CreatesUSACHPayeeWhenMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	bank := bankFor("John Doe")

	other := entity.ReconstructPayee("payee-x", entity.PayeeTypeUSACH, "Someone", "someone@example.com", nil, "")
	client.EXPECT().SearchPayees(gomock.Any(), gomock.Any()).Return([]*entity.Payee{other}, nil)
	client.EXPECT().
		AddPayee(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p provider.NewPayee) (*entity.Payee, error) {
			assert.Equal(t, entity.PayeeTypeUSACH, p.Type)
			assert.Equal(t, "John Doe", p.Name)
			require.NotNil(t, p.BankDetails)
			assert.Equal(t, bank, *p.BankDetails)
			require.NotNil(t, p.Contact)
			assert.Equal(t, "john@example.com", p.Contact.Email)
			return entity.ReconstructPayee("payee-new", p.Type, p.Name, p.Contact.Email, p.BankDetails, ""), nil
		})

	id, err := payee.NewResolver(client).Resolve(context.Background(), "John Doe", "john@example.com", bank)

	require.NoError(t, err)
	assert.Equal(t, "payee-new", id)
}

func TestResolver_LookupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	cause := payerr.Transport(payerr.CodeServerError, nil, "503")

	client.EXPECT().SearchPayees(gomock.Any(), gomock.Any()).Return(nil, cause)
	client.EXPECT().AddPayee(gomock.Any(), gomock.Any()).Times(0)

	_, err := payee.NewResolver(client).Resolve(context.Background(), "John Doe", "john@example.com", bankFor("John Doe"))

	require.Error(t, err)
	assert.ErrorIs(t, err, payee.ErrLookup)
	assert.ErrorIs(t, err, cause)
}

func TestResolver_CreationErrorKeepsValidationKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	bad := bankFor("John Doe")
	bad.RoutingNumber = "123"

	client.EXPECT().SearchPayees(gomock.Any(), gomock.Any()).Return(nil, nil)
	client.EXPECT().AddPayee(gomock.Any(), gomock.Any()).
		Return(nil, payerr.Validation(payerr.CodeInvalidPayee, "routing number must be exactly 9 digits"))

	_, err := payee.NewResolver(client).Resolve(context.Background(), "John Doe", "", bad)

	require.Error(t, err)
	assert.ErrorIs(t, err, payee.ErrCreation)
	assert.Equal(t, payerr.KindValidation, payerr.KindOf(err))
}

func TestResolver_EmptyCreatedID(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().SearchPayees(gomock.Any(), gomock.Any()).Return(nil, nil)
	client.EXPECT().AddPayee(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := payee.NewResolver(client).Resolve(context.Background(), "John Doe", "", bankFor("John Doe"))

	assert.True(t, errors.Is(err, payee.ErrCreation))
}
