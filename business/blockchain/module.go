// Package blockchain implements the blockchain bounded context: RPC access,
// gas pricing, ERC20 calls and transaction submission.
package blockchain

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/app"
	blockchainDI "github.com/fd1az/dex-arbitrage-bot/business/blockchain/di"
	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/infra/ethereum"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
	"github.com/fd1az/dex-arbitrage-bot/internal/di"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
	"github.com/fd1az/dex-arbitrage-bot/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Client (private - wrapped by the public ports below)
	di.RegisterToken(c, blockchainDI.Client, func(sr di.ServiceRegistry) *ethereum.Client {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		eth := sr.Get(monolith.ServiceEthClient).(*ethclient.Client)

		clientCfg := ethereum.DefaultClientConfig()
		if cfg.Chain.CallTimeout > 0 {
			clientCfg.CallTimeout = cfg.Chain.CallTimeout
		}
		clientCfg.RequestsPerMinute = cfg.Chain.RateLimitPerMin
		clientCfg.Burst = cfg.Chain.RateLimitBurst

		client, err := ethereum.NewClient(eth, clientCfg, log)
		if err != nil {
			panic("failed to create rpc client: " + err.Error())
		}
		return client
	})

	// Register GasOracle (private)
	di.RegisterToken(c, blockchainDI.GasOracle, func(sr di.ServiceRegistry) *ethereum.GasOracle {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		oracleCfg := ethereum.DefaultGasOracleConfig()
		if cfg.Execution.GasCacheTTL > 0 {
			oracleCfg.CacheTTL = cfg.Execution.GasCacheTTL
		}
		if cfg.Execution.GasLimit > 0 {
			oracleCfg.GasLimit = cfg.Execution.GasLimit
		}

		oracle, err := ethereum.NewGasOracle(oracleCfg, blockchainDI.GetClient(sr), log)
		if err != nil {
			panic("failed to create gas oracle: " + err.Error())
		}
		return oracle
	})

	// Register ChainService (public, nil in monitor-only mode)
	di.RegisterToken(c, blockchainDI.ChainService, func(sr di.ServiceRegistry) *app.ChainService {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		key := sr.Get(monolith.ServiceSigningKey).(*ecdsa.PrivateKey)
		if key == nil {
			return nil
		}
		eth := sr.Get(monolith.ServiceEthClient).(*ethclient.Client)

		tx, err := ethereum.NewTransactor(eth, key, ethereum.TransactorConfig{
			ChainID:        new(big.Int).SetUint64(cfg.Chain.ChainID),
			CallTimeout:    cfg.Chain.CallTimeout,
			ReceiptTimeout: cfg.Chain.ReceiptTimeout,
			PollInterval:   cfg.Chain.ReceiptPollEvery,
		}, log)
		if err != nil {
			panic("failed to create transactor: " + err.Error())
		}
		return app.NewChainService(tx)
	})

	// Register ERC20 (private)
	di.RegisterToken(c, blockchainDI.ERC20, func(sr di.ServiceRegistry) *ethereum.ERC20 {
		var submitter ethereum.Submitter
		if svc := blockchainDI.GetChainService(sr); svc != nil {
			submitter = svc
		}

		token, err := ethereum.NewERC20(blockchainDI.GetClient(sr), submitter)
		if err != nil {
			panic("failed to create erc20 service: " + err.Error())
		}
		return token
	})

	// Public ports
	di.RegisterToken(c, blockchainDI.ContractCaller, func(sr di.ServiceRegistry) app.ContractCaller {
		return blockchainDI.GetClient(sr)
	})
	di.RegisterToken(c, blockchainDI.Connection, func(sr di.ServiceRegistry) app.ConnectionMonitor {
		return blockchainDI.GetClient(sr)
	})
	di.RegisterToken(c, blockchainDI.GasEstimator, func(sr di.ServiceRegistry) app.GasEstimator {
		return blockchainDI.GetGasOracle(sr)
	})
	di.RegisterToken(c, blockchainDI.TokenService, func(sr di.ServiceRegistry) app.TokenService {
		return blockchainDI.GetERC20(sr)
	})

	return nil
}

// Startup resolves token decimals that were left out of the configuration and
// verifies the ones that were given.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()
	tokens := blockchainDI.GetTokenService(mono.Services())

	if err := ResolveTokens(ctx, cfg, mono.AssetRegistry(), tokens, log); err != nil {
		return err
	}

	if svc := blockchainDI.GetChainService(mono.Services()); svc != nil {
		log.Info(ctx, "signer loaded", "address", svc.From().Hex())
	} else {
		log.Info(ctx, "no signer loaded, monitor-only")
	}

	log.Info(ctx, "blockchain module started", "tokens", mono.AssetRegistry().Count())
	return nil
}

// ResolveTokens fills the registry with tokens whose decimals must be read
// from chain and warns when configured decimals disagree with the contract.
func ResolveTokens(ctx context.Context, cfg *config.Config, reg *asset.Registry, meta app.TokenMetadata, log logger.LoggerInterface) error {
	for _, t := range cfg.Tokens {
		addr := t.AddressHex()

		decimals, err := meta.Decimals(ctx, addr)
		if err != nil {
			if t.Decimals == 0 {
				return err
			}
			log.Warn(ctx, "could not verify token decimals", "token", t.Symbol, "error", err)
			continue
		}

		if t.Decimals != 0 {
			if decimals != t.Decimals {
				log.Warn(ctx, "configured decimals differ from contract",
					"token", t.Symbol, "configured", t.Decimals, "contract", decimals)
			}
			continue
		}

		a := asset.NewAsset(asset.NewTokenAssetID(reg.ChainID(), addr), t.Symbol, decimals)
		if err := reg.Register(a); err != nil {
			return err
		}
		log.Debug(ctx, "token decimals resolved", "token", t.Symbol, "decimals", decimals)
	}
	return nil
}
