package app

import (
	"context"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
)

// TokenSet is an immutable set of token addresses.
type TokenSet map[common.Address]struct{}

// NewTokenSet resolves symbols through reg. Unknown symbols are a
// configuration error.
func NewTokenSet(reg *asset.Registry, symbols []string) (TokenSet, error) {
	set := make(TokenSet, len(symbols))
	for _, sym := range symbols {
		a, ok := reg.GetBySymbol(strings.ToUpper(sym))
		if !ok {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext("unknown token "+sym))
		}
		set[a.Address()] = struct{}{}
	}
	return set, nil
}

// Contains reports whether addr is in the set.
func (s TokenSet) Contains(addr common.Address) bool {
	_, ok := s[addr]
	return ok
}

// BorrowableRegistry holds the tokens with confirmed flash liquidity: the
// configured list intersected with the pool's live reserves.
type BorrowableRegistry struct {
	mu         sync.RWMutex
	configured TokenSet
	live       TokenSet
}

// NewBorrowableRegistry starts out trusting the configured list until the
// first Refresh.
func NewBorrowableRegistry(configured TokenSet) *BorrowableRegistry {
	return &BorrowableRegistry{configured: configured, live: configured}
}

// Refresh intersects the configured tokens with the reserves list. On error
// the previous set is kept.
func (r *BorrowableRegistry) Refresh(ctx context.Context, reserves ReserveQuerier) (int, error) {
	list, err := reserves.ReservesList(ctx)
	if err != nil {
		return r.Len(), err
	}

	live := make(TokenSet, len(r.configured))
	for _, addr := range list {
		if r.configured.Contains(addr) {
			live[addr] = struct{}{}
		}
	}

	r.mu.Lock()
	r.live = live
	r.mu.Unlock()
	return len(live), nil
}

// Contains reports whether addr can be flash borrowed.
func (r *BorrowableRegistry) Contains(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live.Contains(addr)
}

// Len returns the number of borrowable tokens.
func (r *BorrowableRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}
