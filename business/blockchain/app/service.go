package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

// ChainService submits transactions and turns failed receipts into errors.
type ChainService struct {
	sender TxSender
}

// NewChainService creates a new ChainService.
func NewChainService(sender TxSender) *ChainService {
	return &ChainService{sender: sender}
}

// From returns the operator address.
func (s *ChainService) From() common.Address {
	return s.sender.From()
}

// SendAndConfirm submits a transaction and waits for it to be mined.
// A mined transaction with status 0 is reported as EXECUTION_REVERTED and the
// receipt is still returned.
func (s *ChainService) SendAndConfirm(ctx context.Context, to common.Address, data []byte, gas domain.GasParams) (*domain.Receipt, error) {
	hash, err := s.sender.Send(ctx, to, data, gas)
	if err != nil {
		return nil, err
	}

	receipt, err := s.sender.WaitForReceipt(ctx, hash)
	if err != nil {
		return &domain.Receipt{TxHash: hash}, err
	}

	if !receipt.Succeeded {
		return receipt, apperror.New(apperror.CodeExecutionReverted,
			apperror.WithContext(hash.Hex()))
	}

	return receipt, nil
}
