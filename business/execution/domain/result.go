// Package domain contains the core domain types for the execution context.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
)

// Strategy is the path an opportunity was executed through.
type Strategy string

const (
	StrategyNone   Strategy = "none"
	StrategyFlash  Strategy = "flash"
	StrategyDirect Strategy = "direct"
)

// ErrorKind classifies why an execution did not succeed.
type ErrorKind string

const (
	KindNone                  ErrorKind = ""
	KindLiquidityInsufficient ErrorKind = "liquidity_insufficient"
	KindUnsafeToken           ErrorKind = "unsafe_token"
	KindInsufficientBalance   ErrorKind = "insufficient_wallet_balance"
	KindExecutionReverted     ErrorKind = "execution_reverted"
	KindApprovalFailed        ErrorKind = "approval_failed"
	KindTransport             ErrorKind = "transport_error"
	KindConfiguration         ErrorKind = "configuration_missing"
	KindExecutionDisabled     ErrorKind = "execution_disabled"
	KindUnknown               ErrorKind = "unknown"
)

// kindOrder lists codes from most to least specific. An error chain is
// classified by the first code it carries.
var kindOrder = []struct {
	code apperror.Code
	kind ErrorKind
}{
	{apperror.CodeUnsafeToken, KindUnsafeToken},
	{apperror.CodeInsufficientWalletBalance, KindInsufficientBalance},
	{apperror.CodeLiquidityInsufficient, KindLiquidityInsufficient},
	{apperror.CodeApprovalFailed, KindApprovalFailed},
	{apperror.CodeExecutionReverted, KindExecutionReverted},
	{apperror.CodeExecutionDisabled, KindExecutionDisabled},
	{apperror.CodeCircuitOpen, KindExecutionDisabled},
	{apperror.CodeConfigurationMissing, KindConfiguration},
	{apperror.CodeConfigurationError, KindConfiguration},
	{apperror.CodeSignerUnavailable, KindConfiguration},
	{apperror.CodeTransportError, KindTransport},
	{apperror.CodeChainConnectionFailed, KindTransport},
	{apperror.CodeContractCallFailed, KindTransport},
	{apperror.CodeGasEstimationFailed, KindTransport},
	{apperror.CodeReceiptTimeout, KindTransport},
}

// KindFromError maps err to an ErrorKind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, k := range kindOrder {
		if apperror.HasCode(err, k.code) {
			return k.kind
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransport
	}
	return KindUnknown
}

// Result is the terminal outcome for one opportunity.
type Result struct {
	Success     bool
	Skipped     bool // abandoned without submitting anything
	Strategy    Strategy
	FellBack    bool // flash failed and direct was attempted
	Amount      asset.Amount
	Size        LiquiditySize
	TxHash      common.Hash
	GasCost     *GasCost
	ErrorKind   ErrorKind
	Err         error
	CompletedAt time.Time
}

// Succeeded builds a successful result.
func Succeeded(strategy Strategy, amount asset.Amount, hash common.Hash, cost *GasCost) Result {
	return Result{
		Success:     true,
		Strategy:    strategy,
		Amount:      amount,
		TxHash:      hash,
		GasCost:     cost,
		CompletedAt: time.Now(),
	}
}

// Failed builds a failed result classified from err.
func Failed(strategy Strategy, amount asset.Amount, err error) Result {
	return Result{
		Strategy:    strategy,
		Amount:      amount,
		ErrorKind:   KindFromError(err),
		Err:         err,
		CompletedAt: time.Now(),
	}
}

// Skip builds a skipped result. Skips are not failures.
func Skip(err error) Result {
	return Result{
		Skipped:     true,
		Strategy:    StrategyNone,
		ErrorKind:   KindFromError(err),
		Err:         err,
		CompletedAt: time.Now(),
	}
}

// Outcome is a short label for logs and metrics.
func (r Result) Outcome() string {
	switch {
	case r.Success:
		return "success"
	case r.Skipped:
		return "skipped"
	default:
		return "failure"
	}
}

// CountsTowardBreaker reports whether the result must be recorded by the
// execution breaker. Skips never are.
func (r Result) CountsTowardBreaker() bool {
	return !r.Skipped
}
