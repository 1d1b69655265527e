package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/app"
	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/cache"
)

// ERC20ABI covers the calls the bot makes against tokens.
const ERC20ABI = `[
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

// Submitter sends a signed transaction and waits for it to be mined.
// *app.ChainService satisfies it.
type Submitter interface {
	SendAndConfirm(ctx context.Context, to common.Address, data []byte, gas domain.GasParams) (*domain.Receipt, error)
}

// ERC20 implements app.TokenService. Metadata is immutable on chain and is
// cached for the lifetime of the process.
type ERC20 struct {
	caller    app.ContractCaller
	submitter Submitter
	abi       abi.ABI

	decimals *cache.Cache[common.Address, uint8]
	symbols  *cache.Cache[common.Address, string]
}

var _ app.TokenService = (*ERC20)(nil)

// NewERC20 creates the token service. submitter may be nil in monitor-only
// mode, in which case Approve fails with SIGNER_UNAVAILABLE.
func NewERC20(caller app.ContractCaller, submitter Submitter) (*ERC20, error) {
	parsed, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	return &ERC20{
		caller:    caller,
		submitter: submitter,
		abi:       parsed,
		decimals:  cache.New[common.Address, uint8](0),
		symbols:   cache.New[common.Address, string](0),
	}, nil
}

// Decimals returns the token's decimals.
func (e *ERC20) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	if d, ok := e.decimals.Get(ctx, token); ok {
		return d, nil
	}

	out, err := e.call(ctx, token, "decimals")
	if err != nil {
		return 0, metadataErr(token, "decimals", err)
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, metadataErr(token, "decimals", fmt.Errorf("unexpected type %T", out[0]))
	}

	e.decimals.Set(ctx, token, d, 0)
	return d, nil
}

// Symbol returns the token's symbol.
func (e *ERC20) Symbol(ctx context.Context, token common.Address) (string, error) {
	if s, ok := e.symbols.Get(ctx, token); ok {
		return s, nil
	}

	out, err := e.call(ctx, token, "symbol")
	if err != nil {
		return "", metadataErr(token, "symbol", err)
	}
	s, ok := out[0].(string)
	if !ok {
		return "", metadataErr(token, "symbol", fmt.Errorf("unexpected type %T", out[0]))
	}

	e.symbols.Set(ctx, token, s, 0)
	return s, nil
}

// BalanceOf returns owner's raw balance of token.
func (e *ERC20) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := e.call(ctx, token, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext(fmt.Sprintf("balanceOf %s: unexpected type %T", token.Hex(), out[0])))
	}
	return bal, nil
}

// Approve lets spender pull amount of token from the operator wallet.
func (e *ERC20) Approve(ctx context.Context, token, spender common.Address, amount *big.Int, gas domain.GasParams) (*domain.Receipt, error) {
	if e.submitter == nil {
		return nil, apperror.New(apperror.CodeSignerUnavailable, apperror.WithContext("approve"))
	}

	data, err := e.abi.Pack("approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("pack approve: %w", err)
	}

	receipt, err := e.submitter.SendAndConfirm(ctx, token, data, gas)
	if err != nil {
		return receipt, apperror.New(apperror.CodeApprovalFailed,
			apperror.WithContext(fmt.Sprintf("%s for %s", token.Hex(), spender.Hex())),
			apperror.WithCause(err))
	}
	return receipt, nil
}

// Close releases the metadata caches.
func (e *ERC20) Close() {
	e.decimals.Close()
	e.symbols.Close()
}

func (e *ERC20) call(ctx context.Context, token common.Address, method string, args ...any) ([]any, error) {
	data, err := e.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	raw, err := e.caller.Call(ctx, token, data)
	if err != nil {
		return nil, err
	}

	out, err := e.abi.Unpack(method, raw)
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext(fmt.Sprintf("decode %s from %s", method, token.Hex())),
			apperror.WithCause(err))
	}
	if len(out) == 0 {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithContext(fmt.Sprintf("empty %s from %s", method, token.Hex())))
	}
	return out, nil
}

func metadataErr(token common.Address, field string, cause error) error {
	return apperror.New(apperror.CodeTokenMetadataFailed,
		apperror.WithContext(fmt.Sprintf("%s of %s", field, token.Hex())),
		apperror.WithCause(cause))
}
