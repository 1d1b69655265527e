package app

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	blockchainDomain "github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/business/execution/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"github.com/fd1az/dex-arbitrage-bot/internal/retry"
)

// SelectorConfig holds the selector's collaborators.
type SelectorConfig struct {
	Flash      FlashExecutor // nil disables the flash path
	Direct     ArbitrageExecutor
	Tokens     Tokens
	Gas        GasEstimator
	Gate       *LiquidityGate
	Limits     *Limits
	Borrowable *BorrowableRegistry
	Allowlist  TokenSet
	Owner      common.Address
	GasSpeed   blockchainDomain.SpeedTier
	Retry      retry.Policy // reads only; submissions are never retried
}

// Selector picks between flash and direct execution for one opportunity
// and runs the chosen path. It submits at most two execution calls: a flash
// attempt and one direct fallback.
type Selector struct {
	cfg    SelectorConfig
	logger logger.LoggerInterface
}

// NewSelector creates a Selector.
func NewSelector(cfg SelectorConfig, log logger.LoggerInterface) *Selector {
	return &Selector{cfg: cfg, logger: log}
}

// Execute trades amount of its asset and returns the terminal result.
func (s *Selector) Execute(ctx context.Context, amount asset.Amount) domain.Result {
	token := amount.Asset()

	if s.cfg.Flash == nil || !s.cfg.Borrowable.Contains(token.Address()) {
		capped, err := s.directAmount(amount)
		if err != nil {
			return domain.Failed(domain.StrategyDirect, amount, err)
		}
		s.logger.Debug(ctx, "token not borrowable, executing direct",
			"token", token.Symbol(), "amount", capped.String())
		return s.attemptDirect(ctx, capped)
	}

	if !s.cfg.Allowlist.Contains(token.Address()) {
		return domain.Skip(apperror.New(apperror.CodeUnsafeToken,
			apperror.WithContext(token.Symbol())))
	}

	size, err := s.cfg.Gate.Size(ctx, amount)
	if err != nil {
		s.logger.Warn(ctx, "flash loan could not be sized, executing direct",
			"token", token.Symbol(), "amount", amount.String(), "error", err)
		return s.attemptDirect(ctx, amount)
	}

	if size.Insufficient() {
		s.logger.Info(ctx, "reserve cannot fund flash loan, executing direct",
			"token", token.Symbol(), "amount", amount.String())
		res := s.attemptDirect(ctx, amount)
		res.Size = size
		return res
	}

	res := s.attemptFlash(ctx, size)
	if res.Success {
		return res
	}

	s.logger.Warn(ctx, "flash execution failed, falling back to direct",
		"token", token.Symbol(),
		"error_kind", string(res.ErrorKind),
		"error", res.Err)

	direct := s.attemptDirect(ctx, amount)
	direct.FellBack = true
	direct.Size = size
	return direct
}

func (s *Selector) attemptFlash(ctx context.Context, size domain.LiquiditySize) domain.Result {
	amount := size.Amount

	gas, err := s.estimateGas(ctx)
	if err != nil {
		res := domain.Failed(domain.StrategyFlash, amount, err)
		res.Size = size
		return res
	}

	receipt, err := s.cfg.Flash.ExecuteFlashLoan(ctx, amount.Asset().Address(), amount.Raw(), gas)
	res := s.finish(domain.StrategyFlash, amount, gas, receipt, err)
	res.Size = size
	return res
}

func (s *Selector) attemptDirect(ctx context.Context, amount asset.Amount) domain.Result {
	token := amount.Asset()

	gas, err := s.estimateGas(ctx)
	if err != nil {
		return domain.Failed(domain.StrategyDirect, amount, err)
	}

	balance, err := retry.Do(ctx, s.cfg.Retry, func(ctx context.Context) (asset.Amount, error) {
		raw, err := s.cfg.Tokens.BalanceOf(ctx, token.Address(), s.cfg.Owner)
		if err != nil {
			return asset.Amount{}, err
		}
		return asset.NewAmount(token, raw), nil
	})
	if err != nil {
		return domain.Failed(domain.StrategyDirect, amount, err)
	}

	if cmp, err := balance.Cmp(amount); err != nil || cmp < 0 {
		if err == nil {
			err = apperror.New(apperror.CodeInsufficientWalletBalance,
				apperror.WithContext(fmt.Sprintf("%s: have %s, need %s",
					token.Symbol(), balance.String(), amount.String())))
		}
		return domain.Failed(domain.StrategyDirect, amount, err)
	}

	spender := s.cfg.Direct.Address()
	if _, err := s.cfg.Tokens.Approve(ctx, token.Address(), spender, amount.Raw(), gas); err != nil {
		return domain.Failed(domain.StrategyDirect, amount,
			apperror.New(apperror.CodeApprovalFailed,
				apperror.WithCause(err),
				apperror.WithContext(token.Symbol())))
	}

	receipt, err := s.cfg.Direct.ExecuteArbitrage(ctx, token.Address(), amount.Raw(), gas)
	return s.finish(domain.StrategyDirect, amount, gas, receipt, err)
}

func (s *Selector) finish(strategy domain.Strategy, amount asset.Amount, gas blockchainDomain.GasParams, receipt *blockchainDomain.Receipt, err error) domain.Result {
	if err != nil {
		res := domain.Failed(strategy, amount, err)
		if receipt != nil {
			res.TxHash = receipt.TxHash
		}
		return res
	}
	return domain.Succeeded(strategy, amount, receipt.TxHash,
		domain.NewGasCost(receipt.GasUsed, gas.MaxFeePerGas))
}

func (s *Selector) estimateGas(ctx context.Context) (blockchainDomain.GasParams, error) {
	return retry.Do(ctx, s.cfg.Retry, func(ctx context.Context) (blockchainDomain.GasParams, error) {
		return s.cfg.Gas.Estimate(ctx, s.cfg.GasSpeed)
	})
}

// directAmount caps amount by the token's direct limit. A zero limit means
// uncapped.
func (s *Selector) directAmount(amount asset.Amount) (asset.Amount, error) {
	limit, err := s.cfg.Limits.DirectCap(amount.Asset())
	if err != nil {
		return asset.Amount{}, err
	}
	if !limit.IsPositive() {
		return amount, nil
	}
	return amount.Min(limit)
}
