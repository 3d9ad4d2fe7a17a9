package balance_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
	"github.com/Xausdorf/paycrew/internal/domain/provider/mocks"
	"github.com/Xausdorf/paycrew/internal/usecase/balance"
)

func TestVerifier_Check(t *testing.T) {
	cases := []struct {
		name       string
		available  string
		amount     string
		sufficient bool
	}{
		{"enough", "500.00", "100.00", true},
		{"exact cents", "100.00", "100.00", true},
		{"one cent short", "99.99", "100.00", false},
		{"short", "50.00", "100.00", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mocks.NewMockClient(ctrl)
			client.EXPECT().
				GetBalance(gomock.Any(), provider.BalanceQuery{CustomerID: "cus_1", Currency: "USD"}).
				Return(&provider.Balance{Available: decimal.RequireFromString(tc.available)}, nil)

			v := balance.NewVerifier(client, "cus_1", "")
			res, err := v.Check(context.Background(), decimal.RequireFromString(tc.amount))

			require.NoError(t, err)
			assert.Equal(t, tc.sufficient, res.Sufficient)
			assert.Equal(t, "USD", res.Currency)
			assert.True(t, res.Available.Equal(decimal.RequireFromString(tc.available)))
		})
	}
}

func TestVerifier_QueryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	cause := payerr.Business(payerr.CodeUnauthorized, "bad api secret")
	client.EXPECT().GetBalance(gomock.Any(), gomock.Any()).Return(nil, cause)

	res, err := balance.NewVerifier(client, "", "USD").Check(context.Background(), decimal.NewFromInt(1))

	assert.Nil(t, res)
	assert.ErrorIs(t, err, balance.ErrQuery)
	assert.ErrorIs(t, err, cause)
}

func TestVerifier_EmptyResponseIsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().GetBalance(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := balance.NewVerifier(client, "", "USD").Check(context.Background(), decimal.NewFromInt(1))

	assert.ErrorIs(t, err, balance.ErrQuery)
}
