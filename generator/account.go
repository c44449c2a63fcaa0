package generator

import (
	"github.com/bsv-blockchain/go-sdk/script"

	"github.com/bitfsorg/bitfs-txgen/events"
	"github.com/bitfsorg/bitfs-txgen/utxo"
	"github.com/bitfsorg/bitfs-txgen/wallet"
)

// Account is what NewWithAccount needs from a wallet account.
type Account interface {
	// UtxoContext returns the context the account spends from.
	UtxoContext() *utxo.Context
	// Multiplexer returns the wallet-level event multiplexer.
	Multiplexer() *events.Multiplexer
	// NetworkID returns the network the account operates on.
	NetworkID() (*wallet.NetworkConfig, error)
	// ChangeAddress returns the address remainders are sent back to.
	ChangeAddress() (*script.Address, error)
	// SigOpCount is the expected number of signature operations per input.
	SigOpCount() uint8
	// MinimumSignatures is the multisig threshold, 1 for single-key accounts.
	MinimumSignatures() uint16
}
