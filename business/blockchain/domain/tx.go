package domain

import "github.com/ethereum/go-ethereum/common"

// Receipt is the outcome of a mined transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Succeeded   bool
}

// ConnectionState represents the health of the RPC connection as seen by
// the call breaker.
type ConnectionState string

const (
	StateConnected    ConnectionState = "connected"
	StateDegraded     ConnectionState = "degraded"
	StateDisconnected ConnectionState = "disconnected"
)
