// Package app contains application services and port definitions for the blockchain context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
)

// ContractCaller performs read-only contract calls. Reverts are reported
// with apperror.CodeExecutionReverted, everything else as a transport error.
type ContractCaller interface {
	Call(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// GasEstimator prices transactions for a speed tier.
type GasEstimator interface {
	Estimate(ctx context.Context, tier domain.SpeedTier) (domain.GasParams, error)
}

// TokenMetadata reads ERC20 metadata.
type TokenMetadata interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	Symbol(ctx context.Context, token common.Address) (string, error)
}

// TokenService is the ERC20 surface used by execution.
type TokenService interface {
	TokenMetadata
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int, gas domain.GasParams) (*domain.Receipt, error)
}

// TxSender signs and submits transactions from the operator wallet.
type TxSender interface {
	From() common.Address
	Send(ctx context.Context, to common.Address, data []byte, gas domain.GasParams) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*domain.Receipt, error)
}

// ConnectionMonitor reports RPC health for readiness checks.
type ConnectionMonitor interface {
	State() domain.ConnectionState
}
