package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

var (
	// balanceMapPool provides pooled per-currency sums for split balancing
	balanceMapPool = sync.Pool{
		New: func() any {
			return make(map[string]decimal.Decimal, 4) // most transactions use one or two currencies
		},
	}
)

// getBalanceMap retrieves a pooled balance map
func getBalanceMap() map[string]decimal.Decimal {
	return balanceMapPool.Get().(map[string]decimal.Decimal)
}

// putBalanceMap clears and returns a balance map to the pool
func putBalanceMap(m map[string]decimal.Decimal) {
	clear(m)
	balanceMapPool.Put(m)
}
