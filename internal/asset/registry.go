package asset

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry is a thread-safe registry of the tokens the bot trades.
type Registry struct {
	chainID  uint64
	byAddr   map[common.Address]*Asset
	bySymbol map[string]*Asset
	order    []*Asset
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry for one chain.
func NewRegistry(chainID uint64) *Registry {
	return &Registry{
		chainID:  chainID,
		byAddr:   make(map[common.Address]*Asset),
		bySymbol: make(map[string]*Asset),
	}
}

// ChainID returns the chain this registry belongs to.
func (r *Registry) ChainID() uint64 {
	return r.chainID
}

// Register adds a token. Symbols are case-insensitive and must be unique.
func (r *Registry) Register(a *Asset) error {
	if a == nil {
		return ErrNilAsset
	}
	if a.ChainID() != r.chainID {
		return fmt.Errorf("asset: %s is on chain %d, registry is chain %d", a.Symbol(), a.ChainID(), r.chainID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToUpper(a.Symbol())
	if _, exists := r.byAddr[a.Address()]; exists {
		return fmt.Errorf("asset: %s already registered", a.Address().Hex())
	}
	if _, exists := r.bySymbol[key]; exists {
		return fmt.Errorf("asset: symbol %s already registered", a.Symbol())
	}

	r.byAddr[a.Address()] = a
	r.bySymbol[key] = a
	r.order = append(r.order, a)
	return nil
}

// GetToken retrieves a token by contract address.
func (r *Registry) GetToken(address common.Address) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byAddr[address]
	return a, ok
}

// GetBySymbol retrieves a token by symbol.
func (r *Registry) GetBySymbol(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.bySymbol[strings.ToUpper(symbol)]
	return a, ok
}

// All returns the tokens in registration order.
func (r *Registry) All() []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Asset, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered tokens.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
