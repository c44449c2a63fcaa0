package tx

import (
	"fmt"
	"math/bits"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
)

// PaymentOutput pays Amount satoshis to Address.
type PaymentOutput struct {
	Address *script.Address
	Amount  uint64
}

// LockingScript returns the P2PKH locking script for the output.
func (o PaymentOutput) LockingScript() (*script.Script, error) {
	if o.Address == nil {
		return nil, fmt.Errorf("%w: nil address", ErrInvalidOutput)
	}
	s, err := p2pkh.Lock(o.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH lock script: %w", ErrScriptBuild, err)
	}
	return s, nil
}

// PaymentDestination is where the final transaction sends its funds. With no
// outputs it means "change only": everything goes back to the change address.
type PaymentDestination struct {
	outputs []PaymentOutput
}

// Change returns the change-only destination.
func Change() PaymentDestination { return PaymentDestination{} }

// NewPaymentOutputs returns a destination paying each output. The outputs are
// copied; an empty list is the change-only destination.
func NewPaymentOutputs(outputs ...PaymentOutput) PaymentDestination {
	if len(outputs) == 0 {
		return Change()
	}
	return PaymentDestination{outputs: append([]PaymentOutput(nil), outputs...)}
}

// IsChange reports whether the destination is change-only.
func (d PaymentDestination) IsChange() bool { return len(d.outputs) == 0 }

// Outputs returns a copy of the payment outputs.
func (d PaymentDestination) Outputs() []PaymentOutput {
	return append([]PaymentOutput(nil), d.outputs...)
}

// Amount returns the total paid to the outputs, which is 0 for change. The
// sum wraps on overflow; Validate rejects such destinations.
func (d PaymentDestination) Amount() uint64 {
	var total uint64
	for _, o := range d.outputs {
		total += o.Amount
	}
	return total
}

// Validate checks every output has an address and at least DustLimit
// satoshis, and that the total fits in a uint64.
func (d PaymentDestination) Validate() error {
	var total, carry uint64
	for i, o := range d.outputs {
		if o.Address == nil {
			return fmt.Errorf("%w: output[%d] has nil address", ErrInvalidOutput, i)
		}
		if o.Amount < DustLimit {
			return fmt.Errorf("%w: output[%d] amount %d below dust limit %d", ErrInvalidOutput, i, o.Amount, DustLimit)
		}
		if total, carry = bits.Add64(total, o.Amount, 0); carry != 0 {
			return fmt.Errorf("%w: output total overflows at output[%d]", ErrInvalidAmount, i)
		}
	}
	return nil
}
