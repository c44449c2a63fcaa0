// Package events carries wallet notifications from producers (UTXO
// processing, accounts) to any number of subscribers.
package events

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies the type of a wallet event.
type Kind int

const (
	// Balance reports a changed context balance.
	Balance Kind = iota
	// Pending reports an added entry that is unconfirmed or a coinbase
	// output still subject to maturity.
	Pending
	// Maturity reports an added entry that is confirmed and spendable.
	Maturity
	// Spent reports an entry removed because it was spent.
	Spent
	// Reorg reports an entry removed because its block was reorganized away.
	Reorg
	// Error reports a failed context update; Err carries the cause.
	Error
)

var kindNames = map[Kind]string{
	Balance:   "balance",
	Pending:   "pending",
	Maturity:  "maturity",
	Spent:     "spent",
	Reorg:     "reorg",
	Error:     "error",
}

// String returns the event kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one wallet notification.
type Event struct {
	Kind      Kind
	ContextID uuid.UUID
	Balance   uint64 // context balance after the change, in satoshis
	Outpoint  string // affected output as "txid:vout", empty if none
	Err       error
}
