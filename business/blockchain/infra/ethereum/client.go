// Package ethereum provides the go-ethereum backed adapters of the blockchain context.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/app"
	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/circuitbreaker"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"github.com/fd1az/dex-arbitrage-bot/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/dex-arbitrage-bot/business/blockchain/infra/ethereum"
	meterName  = "github.com/fd1az/dex-arbitrage-bot/business/blockchain/infra/ethereum"
)

// Backend is the subset of *ethclient.Client the adapters use.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var _ Backend = (*ethclient.Client)(nil)

// ClientConfig holds RPC transport settings.
type ClientConfig struct {
	CallTimeout       time.Duration
	RequestsPerMinute int
	Burst             int
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		CallTimeout:       10 * time.Second,
		RequestsPerMinute: 600,
		Burst:             20,
	}
}

type clientMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// Client is the read side of the chain provider. Every call is rate limited,
// bounded by a per-call timeout and guarded by a circuit breaker.
type Client struct {
	backend Backend
	config  ClientConfig
	logger  logger.LoggerInterface
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *clientMetrics
}

var _ app.ContractCaller = (*Client)(nil)

// Dial connects to rpcURL and wraps the connection.
func Dial(ctx context.Context, rpcURL string, cfg ClientConfig, log logger.LoggerInterface) (*Client, *ethclient.Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, apperror.New(apperror.CodeChainConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("dial rpc"))
	}

	c, err := NewClient(eth, cfg, log)
	if err != nil {
		eth.Close()
		return nil, nil, err
	}
	return c, eth, nil
}

// NewClient wraps an existing backend.
func NewClient(backend Backend, cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	c := &Client{
		backend: backend,
		config:  cfg,
		logger:  log,
		limiter: ratelimit.New(cfg.RequestsPerMinute, cfg.Burst),
		tracer:  otel.Tracer(tracerName),
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("rpc-call")
	// A revert is a healthy node answering "no"; only transport failures trip the breaker.
	cbCfg.IsSuccessful = func(err error) bool { return err == nil || IsRevert(err) }
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		c.logger.Warn(context.Background(), "rpc circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	c.cb = circuitbreaker.New[[]byte](cbCfg)

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.calls, err = meter.Int64Counter(
		"rpc_calls_total",
		metric.WithDescription("Total eth_call requests by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	c.metrics.duration, err = meter.Float64Histogram(
		"rpc_call_duration_ms",
		metric.WithDescription("eth_call latency"),
		metric.WithUnit("ms"),
	)
	return err
}

// Call executes eth_call against the latest block.
func (c *Client) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "rpc.call",
		trace.WithAttributes(attribute.String("to", to.Hex())))
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}

	start := time.Now()
	out, err := c.cb.Execute(func() ([]byte, error) {
		callCtx, cancel := c.withTimeout(ctx)
		defer cancel()
		return c.backend.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	})
	elapsed := float64(time.Since(start).Milliseconds())

	outcome := "ok"
	switch {
	case err == nil:
	case IsRevert(err):
		outcome = "revert"
		err = apperror.New(apperror.CodeExecutionReverted,
			apperror.WithContext(to.Hex()), apperror.WithCause(err))
	case apperror.GetCode(err) == apperror.CodeCircuitOpen:
		outcome = "circuit_open"
	default:
		outcome = "error"
		err = apperror.New(apperror.CodeTransportError,
			apperror.WithContext(to.Hex()), apperror.WithCause(err))
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	c.metrics.calls.Add(ctx, 1, attrs)
	c.metrics.duration.Record(ctx, elapsed, attrs)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}

	span.SetStatus(codes.Ok, outcome)
	return out, nil
}

// LatestHeader returns the latest block header.
func (c *Client) LatestHeader(ctx context.Context) (*types.Header, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	h, err := c.backend.HeaderByNumber(callCtx, nil)
	if err != nil {
		return nil, apperror.New(apperror.CodeTransportError,
			apperror.WithContext("latest header"), apperror.WithCause(err))
	}
	return h, nil
}

// SuggestGasTipCap returns the node's priority fee suggestion.
func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	tip, err := c.backend.SuggestGasTipCap(callCtx)
	if err != nil {
		return nil, apperror.New(apperror.CodeTransportError,
			apperror.WithContext("suggest tip cap"), apperror.WithCause(err))
	}
	return tip, nil
}

// State maps the breaker state to a connection state.
func (c *Client) State() domain.ConnectionState {
	switch c.cb.State() {
	case gobreaker.StateOpen:
		return domain.StateDisconnected
	case gobreaker.StateHalfOpen:
		return domain.StateDegraded
	default:
		return domain.StateConnected
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.config.CallTimeout)
}

// IsRevert reports whether err is a contract revert rather than a transport failure.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}
	if apperror.HasCode(err, apperror.CodeExecutionReverted) {
		return true
	}

	// Nodes attach the revert payload as error data.
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}
