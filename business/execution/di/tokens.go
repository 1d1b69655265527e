// Package di contains dependency injection tokens for the execution context.
package di

import (
	"github.com/fd1az/dex-arbitrage-bot/business/execution/app"
	"github.com/fd1az/dex-arbitrage-bot/business/execution/infra/aave"
	"github.com/fd1az/dex-arbitrage-bot/business/execution/infra/journal"
	"github.com/fd1az/dex-arbitrage-bot/internal/di"
	"github.com/fd1az/dex-arbitrage-bot/internal/notify"
)

// Public service tokens - exposed to other modules
var (
	Service = di.NewToken[*app.Service]("execution.Service")
	Breaker = di.NewToken[*app.Breaker]("execution.Breaker")
	// Journal is nil when journal.path is empty.
	Journal = di.NewToken[*journal.SQLite]("execution.Journal")
)

// Private dependency tokens - internal to execution module
var (
	Limits     = di.NewToken[*app.Limits]("execution:limits")
	Reserves   = di.NewToken[*aave.Reserves]("execution:reserves")
	Borrowable = di.NewToken[*app.BorrowableRegistry]("execution:borrowable")
	Selector   = di.NewToken[*app.Selector]("execution:selector")
	Notifier   = di.NewToken[*notify.Dispatcher]("execution:notifier")
)

// Helper functions for type-safe access
func GetService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, Service)
}

func GetBreaker(c di.ServiceRegistry) *app.Breaker {
	return di.GetToken(c, Breaker)
}

func GetJournal(c di.ServiceRegistry) *journal.SQLite {
	return di.GetToken(c, Journal)
}

func GetLimits(c di.ServiceRegistry) *app.Limits {
	return di.GetToken(c, Limits)
}

func GetReserves(c di.ServiceRegistry) *aave.Reserves {
	return di.GetToken(c, Reserves)
}

func GetBorrowable(c di.ServiceRegistry) *app.BorrowableRegistry {
	return di.GetToken(c, Borrowable)
}

func GetSelector(c di.ServiceRegistry) *app.Selector {
	return di.GetToken(c, Selector)
}

func GetNotifier(c di.ServiceRegistry) *notify.Dispatcher {
	return di.GetToken(c, Notifier)
}
