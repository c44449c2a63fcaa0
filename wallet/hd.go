package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

const (
	// BIP44 path constants.
	PurposeBIP44 = 44
	CoinTypeBSV  = 236

	// Chain indices.
	ExternalChain = 0 // Receive addresses
	InternalChain = 1 // Change addresses

	// BIP32 hardened offset.
	Hardened = 0x80000000
)

// Wallet is an HD key tree. Accounts live at m/44'/236'/account'.
type Wallet struct {
	masterKey *bip32.ExtendedKey
	network   *NetworkConfig
}

// KeyPair holds a derived public/private key pair.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Path       string         `json:"path"` // Human-readable derivation path
}

// NewWallet creates a new Wallet from a BIP39 seed.
// A nil network defaults to MainNet; it only selects the extended key
// serialization, addresses are encoded for the network of the spending context.
func NewWallet(seed []byte, network *NetworkConfig) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if network == nil {
		network = &MainNet
	}

	net := &chaincfg.TestNet
	if network.Type() == Mainnet {
		net = &chaincfg.MainNet
	}

	masterKey, err := bip32.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	return &Wallet{
		masterKey: masterKey,
		network:   network,
	}, nil
}

// Network returns the wallet's network configuration.
func (w *Wallet) Network() *NetworkConfig {
	return w.network
}

// DeriveKey derives the key pair at m/44'/236'/account'/chain/index.
func (w *Wallet) DeriveKey(account, chain, index uint32) (*KeyPair, error) {
	if account >= Hardened || chain >= Hardened || index >= Hardened {
		return nil, fmt.Errorf("%w: account=%d chain=%d index=%d", ErrIndexOutOfRange, account, chain, index)
	}

	key := w.masterKey
	var err error
	for _, step := range []struct {
		name  string
		child uint32
	}{
		{"purpose", PurposeBIP44 + Hardened},
		{"coin type", CoinTypeBSV + Hardened},
		{"account", account + Hardened},
		{"chain", chain},
		{"index", index},
	} {
		key, err = key.Child(step.child)
		if err != nil {
			return nil, fmt.Errorf("%w: %s derivation: %w", ErrDerivationFailed, step.name, err)
		}
	}

	return extKeyToKeyPair(key, fmt.Sprintf("m/44'/236'/%d'/%d/%d", account, chain, index))
}

// DerivePubKey is DeriveKey without the private half.
func (w *Wallet) DerivePubKey(account, chain, index uint32) (*ec.PublicKey, error) {
	kp, err := w.DeriveKey(account, chain, index)
	if err != nil {
		return nil, err
	}
	return kp.PublicKey, nil
}

// extKeyToKeyPair converts a BIP32 extended key to a KeyPair.
func extKeyToKeyPair(extKey *bip32.ExtendedKey, path string) (*KeyPair, error) {
	privKey, err := extKey.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to extract EC private key: %w", ErrDerivationFailed, err)
	}

	pubKey := privKey.PubKey()
	if pubKey == nil {
		return nil, fmt.Errorf("%w: failed to derive public key", ErrDerivationFailed)
	}

	return &KeyPair{
		PrivateKey: privKey,
		PublicKey:  pubKey,
		Path:       path,
	}, nil
}
