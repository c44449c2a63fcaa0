// Package generator assembles the settings that start a transaction
// construction session: where the inputs come from, where the funds go,
// the priority fee, the payload and the signing parameters.
//
// A Settings value is built by exactly one of NewWithAccount, NewWithContext
// or NewWithSource, optionally marked as an internal transfer with
// TransferTo, and then handed to the transaction generator, which takes its
// output source with TakeUtxoSource.
package generator

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"

	"github.com/bitfsorg/bitfs-txgen/events"
	"github.com/bitfsorg/bitfs-txgen/tx"
	"github.com/bitfsorg/bitfs-txgen/utxo"
	"github.com/bitfsorg/bitfs-txgen/wallet"
)

// Settings is the immutable input of one transaction generator run.
type Settings struct {
	networkType wallet.NetworkType
	multiplexer *events.Multiplexer

	utxoSource    utxo.Source
	sourceContext *utxo.Context

	sigOpCount        uint8
	minimumSignatures uint16
	changeAddress     *script.Address

	// final* fields apply only to the last transaction of a chain.
	finalPriorityFee tx.Fees
	finalDestination tx.PaymentDestination
	finalPayload     []byte

	destinationContext *utxo.Context
}

// NewWithAccount builds settings spending from acct's UTXO context. The
// network comes from the context; change address and signing parameters
// come from the account; events go to the wallet multiplexer.
func NewWithAccount(
	acct Account,
	destination tx.PaymentDestination,
	priorityFee tx.Fees,
	payload []byte,
) (*Settings, error) {
	if acct == nil {
		return nil, fmt.Errorf("%w: nil account", ErrResolution)
	}
	ctx := acct.UtxoContext()
	networkType, err := contextNetworkType(ctx)
	if err != nil {
		return nil, err
	}
	changeAddress, err := acct.ChangeAddress()
	if err != nil {
		return nil, fmt.Errorf("%w: account change address: %w", ErrResolution, err)
	}

	return &Settings{
		networkType:       networkType,
		multiplexer:       acct.Multiplexer(),
		utxoSource:        utxo.NewIterator(ctx),
		sourceContext:     ctx,
		sigOpCount:        acct.SigOpCount(),
		minimumSignatures: acct.MinimumSignatures(),
		changeAddress:     changeAddress,
		finalPriorityFee:  priorityFee,
		finalDestination:  destination,
		finalPayload:      bytes.Clone(payload),
	}, nil
}

// NewWithContext builds settings spending from ctx with explicit change
// address and signing parameters. mux may be nil.
func NewWithContext(
	ctx *utxo.Context,
	changeAddress *script.Address,
	sigOpCount uint8,
	minimumSignatures uint16,
	destination tx.PaymentDestination,
	priorityFee tx.Fees,
	payload []byte,
	mux *events.Multiplexer,
) (*Settings, error) {
	networkType, err := contextNetworkType(ctx)
	if err != nil {
		return nil, err
	}

	return &Settings{
		networkType:       networkType,
		multiplexer:       mux,
		utxoSource:        utxo.NewIterator(ctx),
		sourceContext:     ctx,
		sigOpCount:        sigOpCount,
		minimumSignatures: minimumSignatures,
		changeAddress:     changeAddress,
		finalPriorityFee:  priorityFee,
		finalDestination:  destination,
		finalPayload:      bytes.Clone(payload),
	}, nil
}

// NewWithSource builds settings over a caller-supplied output source, which
// the settings take ownership of. A nil source behaves as an empty one.
//
// The network is read from the change address prefix. Nothing checks that
// the entries produced by src belong to that network; callers must ensure it.
func NewWithSource(
	src utxo.Source,
	changeAddress *script.Address,
	sigOpCount uint8,
	minimumSignatures uint16,
	destination tx.PaymentDestination,
	priorityFee tx.Fees,
	payload []byte,
	mux *events.Multiplexer,
) (*Settings, error) {
	networkType, err := wallet.NetworkTypeOfAddress(changeAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: change address network: %w", ErrResolution, err)
	}
	if src == nil {
		src = utxo.FromEntries()
	}

	return &Settings{
		networkType:       networkType,
		multiplexer:       mux,
		utxoSource:        src,
		sigOpCount:        sigOpCount,
		minimumSignatures: minimumSignatures,
		changeAddress:     changeAddress,
		finalPriorityFee:  priorityFee,
		finalDestination:  destination,
		finalPayload:      bytes.Clone(payload),
	}, nil
}

// TransferTo marks the settings as a transfer into dst: the generator
// credits the produced outputs to dst instead of treating them as an
// external payment. It returns a new value and consumes s, whose output
// source moves to the result; s must not be used afterwards.
func (s *Settings) TransferTo(dst *utxo.Context) *Settings {
	out := *s
	out.destinationContext = dst
	s.utxoSource = nil
	return &out
}

// TakeUtxoSource hands the output source to the generator. It returns false
// once the source has been taken, including by TransferTo.
func (s *Settings) TakeUtxoSource() (utxo.Source, bool) {
	src := s.utxoSource
	s.utxoSource = nil
	return src, src != nil
}

// Validate checks the signing parameters. The constructors do not call it;
// it is for the generator to run before estimating sizes.
func (s *Settings) Validate() error {
	if s.sigOpCount < 1 {
		return fmt.Errorf("%w: sig op count must be >= 1", ErrInvalidSigning)
	}
	if s.minimumSignatures < 1 {
		return fmt.Errorf("%w: minimum signatures must be >= 1", ErrInvalidSigning)
	}
	return nil
}

// NetworkType returns the network the transaction targets.
func (s *Settings) NetworkType() wallet.NetworkType { return s.networkType }

// Multiplexer returns the event multiplexer, or nil.
func (s *Settings) Multiplexer() *events.Multiplexer { return s.multiplexer }

// SourceContext returns the context being spent from, or nil when the
// settings were built from a bare source.
func (s *Settings) SourceContext() *utxo.Context { return s.sourceContext }

// DestinationContext returns the transfer destination, or nil.
func (s *Settings) DestinationContext() *utxo.Context { return s.destinationContext }

// IsTransfer reports whether TransferTo set a destination context.
func (s *Settings) IsTransfer() bool { return s.destinationContext != nil }

// SigOpCount returns the signature operations per input.
func (s *Settings) SigOpCount() uint8 { return s.sigOpCount }

// MinimumSignatures returns the multisig threshold.
func (s *Settings) MinimumSignatures() uint16 { return s.minimumSignatures }

// ChangeAddress returns where remainders go.
func (s *Settings) ChangeAddress() *script.Address { return s.changeAddress }

// FinalPriorityFee returns the fee added to the last transaction.
func (s *Settings) FinalPriorityFee() tx.Fees { return s.finalPriorityFee }

// FinalDestination returns the outputs of the last transaction.
func (s *Settings) FinalDestination() tx.PaymentDestination { return s.finalDestination }

// FinalPayload returns a copy of the payload, or nil.
func (s *Settings) FinalPayload() []byte { return bytes.Clone(s.finalPayload) }

// contextNetworkType resolves the network type of ctx's processor.
func contextNetworkType(ctx *utxo.Context) (wallet.NetworkType, error) {
	if ctx == nil {
		return 0, fmt.Errorf("%w: nil utxo context", ErrResolution)
	}
	n, err := ctx.NetworkID()
	if err != nil {
		return 0, fmt.Errorf("%w: context %s network: %w", ErrResolution, ctx.ID(), err)
	}
	return n.Type(), nil
}
