// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
	"github.com/fd1az/dex-arbitrage-bot/internal/di"
	"github.com/fd1az/dex-arbitrage-bot/internal/keystore"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
)

// Shared service names registered before any module.
const (
	ServiceConfig        = "config"
	ServiceLogger        = "logger"
	ServiceEthClient     = "ethClient"
	ServiceAssetRegistry = "assetRegistry"
	ServiceSigningKey    = "signingKey"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	EthClient() *ethclient.Client
	AssetRegistry() *asset.Registry
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	ethClient     *ethclient.Client
	assetRegistry *asset.Registry
	container     di.Container
}

// New creates a new Monolith instance. The signing key is loaded only when
// execution is enabled; a nil key is registered otherwise.
func New(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	assetRegistry, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	var key *ecdsa.PrivateKey
	if cfg.ExecutionEnabled() {
		key, err = keystore.Load(keystore.Source{
			RawHex:   cfg.Chain.PrivateKey,
			File:     cfg.Chain.KeyFile,
			Password: cfg.Chain.KeyPassword,
		})
		if err != nil {
			return nil, err
		}
	}

	ethClient, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
	if err != nil {
		return nil, apperror.New(apperror.CodeChainConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("dial rpc"))
	}

	container := di.NewContainer()

	// Register global services
	container.Register(ServiceConfig, cfg)
	container.Register(ServiceLogger, log)
	container.Register(ServiceEthClient, ethClient)
	container.Register(ServiceAssetRegistry, assetRegistry)
	container.Register(ServiceSigningKey, key)

	return &app{
		config:        cfg,
		logger:        log,
		ethClient:     ethClient,
		assetRegistry: assetRegistry,
		container:     container,
	}, nil
}

// BuildRegistry registers every configured token whose decimals are known.
// Tokens with decimals 0 are resolved from the chain by the blockchain module.
func BuildRegistry(cfg *config.Config) (*asset.Registry, error) {
	reg := asset.NewRegistry(cfg.Chain.ChainID)
	for _, t := range cfg.Tokens {
		if t.Decimals == 0 {
			continue
		}
		a := asset.NewAsset(asset.NewTokenAssetID(cfg.Chain.ChainID, t.AddressHex()), t.Symbol, t.Decimals)
		if err := reg.Register(a); err != nil {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext(fmt.Sprintf("token %s", t.Symbol)),
				apperror.WithCause(err))
		}
	}
	return reg, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) EthClient() *ethclient.Client {
	return a.ethClient
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules. Service factories panic on
// wiring errors; those are returned as configuration errors.
func (a *app) StartModules(ctx context.Context, modules ...Module) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext(fmt.Sprint(r)))
		}
	}()

	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	if a.ethClient != nil {
		a.ethClient.Close()
	}
	return nil
}
