// Package account implements wallet accounts backed by an HD key tree.
package account

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/bitfs-txgen/events"
	"github.com/bitfsorg/bitfs-txgen/generator"
	"github.com/bitfsorg/bitfs-txgen/utxo"
	"github.com/bitfsorg/bitfs-txgen/wallet"
)

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("account: required parameter is nil")

	// ErrAddressDerivation indicates an account address could not be derived.
	ErrAddressDerivation = errors.New("account: address derivation failed")
)

// HDAccount is a single-key-per-address account at m/44'/236'/index'.
// Change goes to the internal chain at the current change index.
type HDAccount struct {
	wallet *wallet.Wallet
	index  uint32
	ctx    *utxo.Context
	mux    *events.Multiplexer
	logger logrus.FieldLogger

	mu          sync.Mutex
	changeIndex uint32
}

// Compile-time interface check.
var _ generator.Account = (*HDAccount)(nil)

// Option configures an HDAccount.
type Option func(*HDAccount)

// WithLogger sets the account logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *HDAccount) { a.logger = l }
}

// WithChangeIndex starts the internal chain at i instead of 0.
func WithChangeIndex(i uint32) Option {
	return func(a *HDAccount) { a.changeIndex = i }
}

// New creates an account over w at BIP44 account index, spending from ctx.
// mux is the wallet-level multiplexer and may be nil.
func New(w *wallet.Wallet, index uint32, ctx *utxo.Context, mux *events.Multiplexer, opts ...Option) (*HDAccount, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: wallet", ErrNilParam)
	}
	if ctx == nil {
		return nil, fmt.Errorf("%w: utxo context", ErrNilParam)
	}
	a := &HDAccount{wallet: w, index: index, ctx: ctx, mux: mux}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		a.logger = l
	}
	a.logger = a.logger.WithFields(logrus.Fields{
		"account":    index,
		"context_id": ctx.ID().String(),
	})
	return a, nil
}

// Index returns the BIP44 account index.
func (a *HDAccount) Index() uint32 { return a.index }

// UtxoContext implements generator.Account.
func (a *HDAccount) UtxoContext() *utxo.Context { return a.ctx }

// Multiplexer implements generator.Account.
func (a *HDAccount) Multiplexer() *events.Multiplexer { return a.mux }

// NetworkID implements generator.Account. It is the network of the UTXO context.
func (a *HDAccount) NetworkID() (*wallet.NetworkConfig, error) { return a.ctx.NetworkID() }

// SigOpCount implements generator.Account.
func (a *HDAccount) SigOpCount() uint8 { return 1 }

// MinimumSignatures implements generator.Account.
func (a *HDAccount) MinimumSignatures() uint16 { return 1 }

// ChangeAddress implements generator.Account. The address is encoded for the
// network of the UTXO context, so it fails while that network is unbound.
func (a *HDAccount) ChangeAddress() (*script.Address, error) {
	a.mu.Lock()
	i := a.changeIndex
	a.mu.Unlock()
	return a.address(wallet.InternalChain, i)
}

// ReceiveAddress returns the external-chain address at i.
func (a *HDAccount) ReceiveAddress(i uint32) (*script.Address, error) {
	return a.address(wallet.ExternalChain, i)
}

// AdvanceChange moves to the next change address and returns its index.
func (a *HDAccount) AdvanceChange() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.changeIndex++
	return a.changeIndex
}

func (a *HDAccount) address(chain, i uint32) (*script.Address, error) {
	network, err := a.ctx.NetworkID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAddressDerivation, err)
	}
	pub, err := a.wallet.DerivePubKey(a.index, chain, i)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAddressDerivation, err)
	}
	addr, err := wallet.AddressFromPublicKey(pub, network.Type())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAddressDerivation, err)
	}

	a.logger.WithFields(logrus.Fields{
		"chain":   chain,
		"index":   i,
		"network": network.Name,
		"address": addr.AddressString,
	}).Debug("derived account address")
	return addr, nil
}
