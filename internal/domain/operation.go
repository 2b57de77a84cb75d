package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationKind names the three user-initiated wallet operations.
type OperationKind string

const (
	OperationDeposit  OperationKind = "deposit"
	OperationWithdraw OperationKind = "withdraw"
	OperationSwap     OperationKind = "swap"
)

func (k OperationKind) String() string { return string(k) }

// OperationState is the lifecycle of a single operation instance.
// Transitions: Idle -> Validating -> Processing -> Committed | Rejected.
// The latency phase itself has no failure mode; Processing can still end
// Rejected when the ledger re-check at commit fails.
type OperationState string

const (
	StateIdle       OperationState = "idle"
	StateValidating OperationState = "validating"
	StateProcessing OperationState = "processing"
	StateCommitted  OperationState = "committed"
	StateRejected   OperationState = "rejected"
)

// Receipt describes a committed operation.
type Receipt struct {
	ID          string
	Kind        OperationKind
	AssetID     string
	ToAssetID   string
	Amount      decimal.Decimal
	Received    decimal.Decimal
	CommittedAt time.Time
}
