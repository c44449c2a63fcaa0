// Package tx defines the fee and destination value types that parameterize
// transaction construction.
package tx

import "fmt"

// DustLimit is the minimum P2PKH output value in satoshis.
const DustLimit = uint64(546)

// FeeKind says who bears an additional fee.
type FeeKind int

const (
	// FeeNone adds nothing on top of the network fee.
	FeeNone FeeKind = iota
	// FeeSenderPays adds the amount on top of the outputs.
	FeeSenderPays
	// FeeReceiverPays deducts the amount from the outputs.
	FeeReceiverPays
)

// Fees is an immutable priority fee applied to the final transaction.
type Fees struct {
	kind   FeeKind
	amount uint64
}

// NoFees returns the zero fee.
func NoFees() Fees { return Fees{} }

// SenderPays returns a fee of amount satoshis paid on top of the outputs.
func SenderPays(amount uint64) Fees {
	if amount == 0 {
		return NoFees()
	}
	return Fees{kind: FeeSenderPays, amount: amount}
}

// ReceiverPays returns a fee of amount satoshis deducted from the outputs.
func ReceiverPays(amount uint64) Fees {
	if amount == 0 {
		return NoFees()
	}
	return Fees{kind: FeeReceiverPays, amount: amount}
}

// Kind returns who bears the fee.
func (f Fees) Kind() FeeKind { return f.kind }

// Amount returns the fee in satoshis.
func (f Fees) Amount() uint64 { return f.amount }

// IsNone reports whether no additional fee applies.
func (f Fees) IsNone() bool { return f.kind == FeeNone }

// String formats the fee for logs.
func (f Fees) String() string {
	switch f.kind {
	case FeeSenderPays:
		return fmt.Sprintf("sender pays %d sat", f.amount)
	case FeeReceiverPays:
		return fmt.Sprintf("receiver pays %d sat", f.amount)
	default:
		return "none"
	}
}
