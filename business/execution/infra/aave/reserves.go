// Package aave reads Aave v3 reserve liquidity for the liquidity gate.
package aave

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/cache"
)

// PoolABI is the subset of the Aave v3 Pool the bot reads.
const PoolABI = `[
	{"inputs":[],"name":"getReservesList","outputs":[{"internalType":"address[]","name":"","type":"address[]"}],"stateMutability":"view","type":"function"}
]`

// DataProviderABI is the subset of the Aave v3 PoolDataProvider the bot reads.
const DataProviderABI = `[
	{"inputs":[{"internalType":"address","name":"asset","type":"address"}],"name":"getReserveTokensAddresses","outputs":[{"internalType":"address","name":"aTokenAddress","type":"address"},{"internalType":"address","name":"stableDebtTokenAddress","type":"address"},{"internalType":"address","name":"variableDebtTokenAddress","type":"address"}],"stateMutability":"view","type":"function"}
]`

// ContractCaller performs read-only calls.
type ContractCaller interface {
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// BalanceReader reads ERC20 balances.
type BalanceReader interface {
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
}

// Reserves answers reserve queries against an Aave v3 deployment. The
// borrowable amount of a reserve is the underlying balance held by its
// aToken.
type Reserves struct {
	caller       ContractCaller
	balances     BalanceReader
	pool         common.Address
	dataProvider common.Address
	poolABI      abi.ABI
	providerABI  abi.ABI

	aTokens *cache.Cache[common.Address, common.Address]
}

// NewReserves creates a reserve reader.
func NewReserves(caller ContractCaller, balances BalanceReader, pool, dataProvider common.Address) (*Reserves, error) {
	poolABI, err := abi.JSON(strings.NewReader(PoolABI))
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	providerABI, err := abi.JSON(strings.NewReader(DataProviderABI))
	if err != nil {
		return nil, fmt.Errorf("parse data provider abi: %w", err)
	}

	return &Reserves{
		caller:       caller,
		balances:     balances,
		pool:         pool,
		dataProvider: dataProvider,
		poolABI:      poolABI,
		providerABI:  providerABI,
		aTokens:      cache.New[common.Address, common.Address](0),
	}, nil
}

// ReservesList returns every asset listed in the pool.
func (r *Reserves) ReservesList(ctx context.Context) ([]common.Address, error) {
	out, err := r.call(ctx, r.pool, r.poolABI, "getReservesList")
	if err != nil {
		return nil, err
	}
	list, ok := out[0].([]common.Address)
	if !ok {
		return nil, decodeErr("getReservesList", fmt.Errorf("unexpected type %T", out[0]))
	}
	return list, nil
}

// ReserveBalance returns how much of token the pool can lend right now.
func (r *Reserves) ReserveBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	aToken, err := r.aToken(ctx, token)
	if err != nil {
		return nil, err
	}
	bal, err := r.balances.BalanceOf(ctx, token, aToken)
	if err != nil {
		return nil, apperror.New(apperror.CodeLiquidityQueryFailed,
			apperror.WithContext(token.Hex()), apperror.WithCause(err))
	}
	return bal, nil
}

// Close releases the aToken cache.
func (r *Reserves) Close() {
	r.aTokens.Close()
}

func (r *Reserves) aToken(ctx context.Context, token common.Address) (common.Address, error) {
	if a, ok := r.aTokens.Get(ctx, token); ok {
		return a, nil
	}

	out, err := r.call(ctx, r.dataProvider, r.providerABI, "getReserveTokensAddresses", token)
	if err != nil {
		return common.Address{}, err
	}
	a, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, decodeErr("getReserveTokensAddresses", fmt.Errorf("unexpected type %T", out[0]))
	}
	if a == (common.Address{}) {
		return common.Address{}, apperror.New(apperror.CodeLiquidityQueryFailed,
			apperror.WithContext(token.Hex()+" is not an aave reserve"))
	}

	r.aTokens.Set(ctx, token, a, 0)
	return a, nil
}

func (r *Reserves) call(ctx context.Context, to common.Address, contract abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	raw, err := r.caller.Call(ctx, to, data)
	if err != nil {
		return nil, apperror.New(apperror.CodeLiquidityQueryFailed,
			apperror.WithContext(method), apperror.WithCause(err))
	}

	out, err := contract.Unpack(method, raw)
	if err != nil {
		return nil, decodeErr(method, err)
	}
	if len(out) == 0 {
		return nil, decodeErr(method, fmt.Errorf("empty output"))
	}
	return out, nil
}

func decodeErr(method string, cause error) error {
	return apperror.New(apperror.CodeLiquidityQueryFailed,
		apperror.WithContext("decode "+method), apperror.WithCause(cause))
}
