package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/app"
	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
)

// TransactorConfig holds submission settings.
type TransactorConfig struct {
	ChainID        *big.Int
	CallTimeout    time.Duration
	ReceiptTimeout time.Duration
	PollInterval   time.Duration
}

// Transactor signs EIP-1559 transactions with the operator key and submits them.
type Transactor struct {
	backend Backend
	config  TransactorConfig
	logger  logger.LoggerInterface
	opts    *bind.TransactOpts

	// Serializes nonce assignment.
	sendMu sync.Mutex

	tracer trace.Tracer
}

var _ app.TxSender = (*Transactor)(nil)

// NewTransactor creates a transactor for key.
func NewTransactor(backend Backend, key *ecdsa.PrivateKey, cfg TransactorConfig, log logger.LoggerInterface) (*Transactor, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(key, cfg.ChainID)
	if err != nil {
		return nil, apperror.New(apperror.CodeSignerUnavailable, apperror.WithCause(err))
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}

	return &Transactor{
		backend: backend,
		config:  cfg,
		logger:  log,
		opts:    opts,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// From returns the operator address.
func (t *Transactor) From() common.Address {
	return t.opts.From
}

// Send signs and broadcasts a call to `to` with calldata and gas parameters.
func (t *Transactor) Send(ctx context.Context, to common.Address, data []byte, gas domain.GasParams) (common.Hash, error) {
	ctx, span := t.tracer.Start(ctx, "tx.send",
		trace.WithAttributes(
			attribute.String("to", to.Hex()),
			attribute.String("tier", string(gas.Tier)),
		))
	defer span.End()

	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	callCtx, cancel := t.withTimeout(ctx)
	defer cancel()

	nonce, err := t.backend.PendingNonceAt(callCtx, t.opts.From)
	if err != nil {
		return common.Hash{}, t.fail(span, "nonce", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   t.config.ChainID,
		Nonce:     nonce,
		GasTipCap: gas.MaxPriorityFeePerGas,
		GasFeeCap: gas.MaxFeePerGas,
		Gas:       gas.GasLimit,
		To:        &to,
		Value:     new(big.Int),
		Data:      data,
	})

	signed, err := t.opts.Signer(t.opts.From, tx)
	if err != nil {
		return common.Hash{}, t.fail(span, "sign", err)
	}

	if err := t.backend.SendTransaction(callCtx, signed); err != nil {
		return common.Hash{}, t.fail(span, "send", err)
	}

	span.SetAttributes(attribute.String("tx_hash", signed.Hash().Hex()))
	span.SetStatus(codes.Ok, "sent")
	t.logger.Info(ctx, "transaction sent", "tx", signed.Hash().Hex(), "to", to.Hex(), "nonce", nonce)

	return signed.Hash(), nil
}

// WaitForReceipt polls until the transaction is mined or ReceiptTimeout elapses.
func (t *Transactor) WaitForReceipt(ctx context.Context, hash common.Hash) (*domain.Receipt, error) {
	ctx, span := t.tracer.Start(ctx, "tx.wait",
		trace.WithAttributes(attribute.String("tx_hash", hash.Hex())))
	defer span.End()

	if t.config.ReceiptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.ReceiptTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(t.config.PollInterval)
	defer ticker.Stop()

	for {
		r, err := t.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			receipt := &domain.Receipt{
				TxHash:    hash,
				GasUsed:   r.GasUsed,
				Succeeded: r.Status == types.ReceiptStatusSuccessful,
			}
			if r.BlockNumber != nil {
				receipt.BlockNumber = r.BlockNumber.Uint64()
			}
			span.SetAttributes(attribute.Bool("succeeded", receipt.Succeeded))
			return receipt, nil
		case !errors.Is(err, ethereum.NotFound):
			t.logger.Debug(ctx, "receipt poll failed", "tx", hash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			err := apperror.New(apperror.CodeReceiptTimeout,
				apperror.WithContext(hash.Hex()), apperror.WithCause(ctx.Err()))
			span.RecordError(err)
			span.SetStatus(codes.Error, "timeout")
			return nil, err
		case <-ticker.C:
		}
	}
}

func (t *Transactor) fail(span trace.Span, step string, err error) error {
	appErr := apperror.New(apperror.CodeTransportError,
		apperror.WithContext("tx "+step), apperror.WithCause(err))
	if IsRevert(err) {
		appErr = apperror.New(apperror.CodeExecutionReverted,
			apperror.WithContext("tx "+step), apperror.WithCause(err))
	}
	span.RecordError(appErr)
	span.SetStatus(codes.Error, step)
	return appErr
}

func (t *Transactor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.config.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.config.CallTimeout)
}
