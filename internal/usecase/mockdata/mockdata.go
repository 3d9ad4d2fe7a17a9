// Package mockdata produces plausible US bank account details for recipients
// that arrive without any.
package mockdata

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
)

const (
	minAccountDigits = 10
	maxAccountDigits = 12
)

// Generator is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed>>1)
	}
	return &Generator{rnd: rand.New(src)}
}

// NewSeededGenerator returns a deterministic generator, handy in tests.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.NewPCG(seed, seed))
}

func (g *Generator) Generate(recipientName string) entity.BankDetails {
	g.mu.Lock()
	defer g.mu.Unlock()

	accountType := entity.AccountTypeChecking
	if g.rnd.IntN(2) == 1 {
		accountType = entity.AccountTypeSavings
	}

	return entity.BankDetails{
		RoutingNumber:     g.routingNumber(),
		AccountNumber:     g.accountNumber(),
		AccountType:       accountType,
		AccountHolderName: strings.TrimSpace(recipientName),
	}
}

// routingNumber starts with a Federal Reserve district prefix (01-12) and ends
// with a valid ABA check digit.
func (g *Generator) routingNumber() string {
	var d [9]int
	district := 1 + g.rnd.IntN(12)
	d[0], d[1] = district/10, district%10
	for i := 2; i < 8; i++ {
		d[i] = g.rnd.IntN(10)
	}
	sum := 3*(d[0]+d[3]+d[6]) + 7*(d[1]+d[4]+d[7]) + (d[2] + d[5])
	d[8] = (10 - sum%10) % 10

	var b strings.Builder
	for _, v := range d {
		b.WriteByte(byte('0' + v))
	}
	return b.String()
}

func (g *Generator) accountNumber() string {
	n := minAccountDigits + g.rnd.IntN(maxAccountDigits-minAccountDigits+1)
	var b strings.Builder
	b.WriteByte(byte('1' + g.rnd.IntN(9)))
	for i := 1; i < n; i++ {
		b.WriteByte(byte('0' + g.rnd.IntN(10)))
	}
	return b.String()
}

// ValidRoutingChecksum reports whether a 9 digit routing number passes the
// ABA checksum.
func ValidRoutingChecksum(routing string) bool {
	if len(routing) != 9 {
		return false
	}
	var d [9]int
	for i, r := range routing {
		if r < '0' || r > '9' {
			return false
		}
		d[i] = int(r - '0')
	}
	sum := 3*(d[0]+d[3]+d[6]) + 7*(d[1]+d[4]+d[7]) + (d[2] + d[5] + d[8])
	return sum%10 == 0
}
