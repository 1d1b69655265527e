// Package di contains dependency injection tokens for the blockchain context.
package di

import (
	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/app"
	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/infra/ethereum"
	"github.com/fd1az/dex-arbitrage-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ContractCaller = di.NewToken[app.ContractCaller]("blockchain.ContractCaller")
	TokenService   = di.NewToken[app.TokenService]("blockchain.TokenService")
	GasEstimator   = di.NewToken[app.GasEstimator]("blockchain.GasEstimator")
	Connection     = di.NewToken[app.ConnectionMonitor]("blockchain.Connection")
	// ChainService is nil when no signing key is loaded.
	ChainService = di.NewToken[*app.ChainService]("blockchain.ChainService")
)

// Private dependency tokens - internal to blockchain module
var (
	Client    = di.NewToken[*ethereum.Client]("blockchain:client")
	GasOracle = di.NewToken[*ethereum.GasOracle]("blockchain:gasOracle")
	ERC20     = di.NewToken[*ethereum.ERC20]("blockchain:erc20")
)

// Helper functions for type-safe access
func GetContractCaller(c di.ServiceRegistry) app.ContractCaller {
	return di.GetToken(c, ContractCaller)
}

func GetTokenService(c di.ServiceRegistry) app.TokenService {
	return di.GetToken(c, TokenService)
}

func GetGasEstimator(c di.ServiceRegistry) app.GasEstimator {
	return di.GetToken(c, GasEstimator)
}

func GetConnection(c di.ServiceRegistry) app.ConnectionMonitor {
	return di.GetToken(c, Connection)
}

func GetChainService(c di.ServiceRegistry) *app.ChainService {
	return di.GetToken(c, ChainService)
}

func GetClient(c di.ServiceRegistry) *ethereum.Client {
	return di.GetToken(c, Client)
}

func GetGasOracle(c di.ServiceRegistry) *ethereum.GasOracle {
	return di.GetToken(c, GasOracle)
}

func GetERC20(c di.ServiceRegistry) *ethereum.ERC20 {
	return di.GetToken(c, ERC20)
}
