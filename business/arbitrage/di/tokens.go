// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/app"
	"github.com/fd1az/dex-arbitrage-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Monitor = di.NewToken[*app.Monitor]("arbitrage.Monitor")
	Tracker = di.NewToken[*app.PerformanceTracker]("arbitrage.Tracker")
)

// Private dependency tokens - internal to arbitrage module
var (
	Store      = di.NewToken[app.PerformanceStore]("arbitrage:store")
	Analyzer   = di.NewToken[*app.Analyzer]("arbitrage:analyzer")
	Triangular = di.NewToken[*app.TriangularAnalyzer]("arbitrage:triangular")
	Reporters  = di.NewToken[[]app.Reporter]("arbitrage:reporters")
)

// Helper functions for type-safe access
func GetMonitor(c di.ServiceRegistry) *app.Monitor {
	return di.GetToken(c, Monitor)
}

func GetTracker(c di.ServiceRegistry) *app.PerformanceTracker {
	return di.GetToken(c, Tracker)
}

func GetStore(c di.ServiceRegistry) app.PerformanceStore {
	return di.GetToken(c, Store)
}

func GetAnalyzer(c di.ServiceRegistry) *app.Analyzer {
	return di.GetToken(c, Analyzer)
}

func GetTriangular(c di.ServiceRegistry) *app.TriangularAnalyzer {
	return di.GetToken(c, Triangular)
}

func GetReporters(c di.ServiceRegistry) []app.Reporter {
	return di.GetToken(c, Reporters)
}
