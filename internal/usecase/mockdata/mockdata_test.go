package mockdata_test

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/usecase/mockdata"
)

var (
	routingRe = regexp.MustCompile(`^\d{9}$`)
	accountRe = regexp.MustCompile(`^\d{10,12}$`)
)

func TestGenerator_OutputShape(t *testing.T) {
	gen := mockdata.NewSeededGenerator(42)

	for range 500 {
		bank := gen.Generate("John Doe")

		require.Regexp(t, routingRe, bank.RoutingNumber)
		require.Regexp(t, accountRe, bank.AccountNumber)
		require.True(t, bank.AccountType.Valid())
		require.Equal(t, "John Doe", bank.AccountHolderName)
		require.True(t, mockdata.ValidRoutingChecksum(bank.RoutingNumber), bank.RoutingNumber)
		require.NoError(t, bank.Validate())
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := mockdata.NewSeededGenerator(7).Generate("Jane Roe")
	b := mockdata.NewSeededGenerator(7).Generate("Jane Roe")
	assert.Equal(t, a, b)
}

func TestGenerator_CoversBothAccountTypes(t *testing.T) {
	gen := mockdata.NewSeededGenerator(1)
	seen := map[entity.AccountType]bool{}
	for range 100 {
		seen[gen.Generate("x").AccountType] = true
	}
	assert.True(t, seen[entity.AccountTypeChecking])
	assert.True(t, seen[entity.AccountTypeSavings])
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	gen := mockdata.NewGenerator(nil)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				bank := gen.Generate("Concurrent")
				assert.Regexp(t, routingRe, bank.RoutingNumber)
			}
		}()
	}
	wg.Wait()
}

func TestValidRoutingChecksum(t *testing.T) {
	assert.True(t, mockdata.ValidRoutingChecksum("011000015"))
	assert.False(t, mockdata.ValidRoutingChecksum("011000016"))
	assert.False(t, mockdata.ValidRoutingChecksum("0110000"))
	assert.False(t, mockdata.ValidRoutingChecksum("01100001a"))
}
