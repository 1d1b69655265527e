package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	arbitrageDomain "github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	blockchainDomain "github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/business/execution/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/notify"
)

// ReserveQuerier reads the lending protocol's reserves.
type ReserveQuerier interface {
	// ReserveBalance returns the amount of token available to borrow.
	ReserveBalance(ctx context.Context, token common.Address) (*big.Int, error)
	// ReservesList returns every token the pool lists as a reserve.
	ReservesList(ctx context.Context) ([]common.Address, error)
}

// FlashExecutor submits the flash-loan execution call.
type FlashExecutor interface {
	ExecuteFlashLoan(ctx context.Context, token common.Address, amount *big.Int, gas blockchainDomain.GasParams) (*blockchainDomain.Receipt, error)
}

// ArbitrageExecutor submits the wallet-funded execution call. Address is the
// contract approved as token spender.
type ArbitrageExecutor interface {
	Address() common.Address
	ExecuteArbitrage(ctx context.Context, token common.Address, amount *big.Int, gas blockchainDomain.GasParams) (*blockchainDomain.Receipt, error)
}

// Tokens is the ERC20 surface the direct path needs.
type Tokens interface {
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int, gas blockchainDomain.GasParams) (*blockchainDomain.Receipt, error)
}

// GasEstimator prices transactions.
type GasEstimator interface {
	Estimate(ctx context.Context, tier blockchainDomain.SpeedTier) (blockchainDomain.GasParams, error)
}

// Journal appends every execution result.
type Journal interface {
	Record(ctx context.Context, opp arbitrageDomain.Opportunity, result domain.Result) error
}

// Notifier delivers operator notifications.
type Notifier interface {
	Notify(ctx context.Context, event notify.Event) error
}
