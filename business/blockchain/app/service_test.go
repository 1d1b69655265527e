package app

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

type fakeSender struct {
	sendErr error
	receipt *domain.Receipt
}

func (f *fakeSender) From() common.Address { return common.HexToAddress("0x01") }

func (f *fakeSender) Send(context.Context, common.Address, []byte, domain.GasParams) (common.Hash, error) {
	return common.HexToHash("0xabc"), f.sendErr
}

func (f *fakeSender) WaitForReceipt(context.Context, common.Hash) (*domain.Receipt, error) {
	return f.receipt, nil
}

func TestSendAndConfirm(t *testing.T) {
	errSend := errors.New("nonce too low")

	tests := []struct {
		name     string
		sender   *fakeSender
		wantCode apperror.Code
		wantErr  error
	}{
		{
			name:   "mined ok",
			sender: &fakeSender{receipt: &domain.Receipt{Succeeded: true}},
		},
		{
			name:     "mined reverted",
			sender:   &fakeSender{receipt: &domain.Receipt{Succeeded: false}},
			wantCode: apperror.CodeExecutionReverted,
		},
		{
			name:    "send fails",
			sender:  &fakeSender{sendErr: errSend},
			wantErr: errSend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewChainService(tt.sender)
			_, err := svc.SendAndConfirm(context.Background(), common.Address{}, nil, domain.GasParams{})

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.wantCode != "":
				if apperror.GetCode(err) != tt.wantCode {
					t.Errorf("code = %s, want %s", apperror.GetCode(err), tt.wantCode)
				}
			default:
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}
