// Package contracts submits calls to the deployed execution contracts.
package contracts

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

// FlashLoanABI is the flash-loan execution entry point.
const FlashLoanABI = `[
	{"inputs":[{"internalType":"address","name":"asset","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"executeFlashLoan","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// ArbitrageABI is the wallet-funded execution entry point.
const ArbitrageABI = `[
	{"inputs":[{"internalType":"address","name":"token","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"}],"name":"executeArbitrage","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// Submitter sends a signed transaction and waits for it to be mined.
type Submitter interface {
	SendAndConfirm(ctx context.Context, to common.Address, data []byte, gas domain.GasParams) (*domain.Receipt, error)
}

type contract struct {
	address   common.Address
	method    string
	abi       abi.ABI
	submitter Submitter
}

func newContract(address common.Address, definition, method string, submitter Submitter) (contract, error) {
	if submitter == nil {
		return contract{}, apperror.New(apperror.CodeSignerUnavailable, apperror.WithContext(method))
	}
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		return contract{}, fmt.Errorf("parse %s abi: %w", method, err)
	}
	return contract{address: address, method: method, abi: parsed, submitter: submitter}, nil
}

func (c contract) submit(ctx context.Context, token common.Address, amount *big.Int, gas domain.GasParams) (*domain.Receipt, error) {
	data, err := c.abi.Pack(c.method, token, amount)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", c.method, err)
	}
	return c.submitter.SendAndConfirm(ctx, c.address, data, gas)
}

// FlashLoan calls executeFlashLoan on the flash contract.
type FlashLoan struct {
	contract
}

// NewFlashLoan binds the flash contract at address.
func NewFlashLoan(address common.Address, submitter Submitter) (*FlashLoan, error) {
	c, err := newContract(address, FlashLoanABI, "executeFlashLoan", submitter)
	if err != nil {
		return nil, err
	}
	return &FlashLoan{c}, nil
}

// ExecuteFlashLoan borrows amount of token and runs the arbitrage in one
// transaction.
func (f *FlashLoan) ExecuteFlashLoan(ctx context.Context, token common.Address, amount *big.Int, gas domain.GasParams) (*domain.Receipt, error) {
	return f.submit(ctx, token, amount, gas)
}

// Arbitrage calls executeArbitrage on the arbitrage contract.
type Arbitrage struct {
	contract
}

// NewArbitrage binds the arbitrage contract at address.
func NewArbitrage(address common.Address, submitter Submitter) (*Arbitrage, error) {
	c, err := newContract(address, ArbitrageABI, "executeArbitrage", submitter)
	if err != nil {
		return nil, err
	}
	return &Arbitrage{c}, nil
}

// Address is the contract the operator approves as token spender.
func (a *Arbitrage) Address() common.Address {
	return a.address
}

// ExecuteArbitrage pulls amount of token from the wallet and runs the trade.
func (a *Arbitrage) ExecuteArbitrage(ctx context.Context, token common.Address, amount *big.Int, gas domain.GasParams) (*domain.Receipt, error) {
	return a.submit(ctx, token, amount, gas)
}
