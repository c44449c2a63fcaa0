package wallet

import (
	"encoding/json"
	"fmt"
	"os"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
)

// NetworkType is the address-level network class. Several named networks
// share one type because they share the P2PKH version byte.
type NetworkType uint8

const (
	// Mainnet addresses use version byte 0x00.
	Mainnet NetworkType = iota
	// Testnet addresses use version byte 0x6f (testnet, teratestnet, regtest).
	Testnet
)

// String returns the lower-case network type name.
func (t NetworkType) String() string {
	switch t {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// AddressVersion returns the P2PKH version byte for this network type.
func (t NetworkType) AddressVersion() byte {
	if t == Mainnet {
		return MainNet.AddressVersion
	}
	return TestNet.AddressVersion
}

// NetworkConfig defines network parameters for a BSV network.
type NetworkConfig struct {
	Name           string   `json:"name"`
	AddressVersion byte     `json:"address_version"`
	P2SHVersion    byte     `json:"p2sh_version"`
	DefaultPort    uint16   `json:"default_port"`
	RPCPort        uint16   `json:"rpc_port"`
	DNSSeeds       []string `json:"seeds"`
	GenesisHash    string   `json:"genesis_hash"`
}

// Type maps the named network to its address-level network type.
func (n *NetworkConfig) Type() NetworkType {
	if n.AddressVersion == MainNet.AddressVersion {
		return Mainnet
	}
	return Testnet
}

// String returns the network name.
func (n *NetworkConfig) String() string { return n.Name }

// Predefined network configurations.
var (
	MainNet = NetworkConfig{
		Name:           "mainnet",
		AddressVersion: 0x00,
		P2SHVersion:    0x05,
		DefaultPort:    8333,
		RPCPort:        8332,
		DNSSeeds:       []string{"seed.bitcoinsv.io", "seed.satoshisvision.network"},
		GenesisHash:    "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
	}

	TestNet = NetworkConfig{
		Name:           "testnet",
		AddressVersion: 0x6f,
		P2SHVersion:    0xc4,
		DefaultPort:    18333,
		RPCPort:        18332,
		DNSSeeds:       []string{"testnet-seed.bitcoinsv.io"},
		GenesisHash:    "000000000933ea01ad0ee984209779baaec3ced90fa3f408719526f8d77f4943",
	}

	// TeraTestNet is experimental; parameters pending BSV official confirmation.
	TeraTestNet = NetworkConfig{
		Name:           "teratestnet",
		AddressVersion: 0x6f,
		P2SHVersion:    0xc4,
		DNSSeeds:       []string{},
	}

	RegTest = NetworkConfig{
		Name:           "regtest",
		AddressVersion: 0x6f,
		P2SHVersion:    0xc4,
		DefaultPort:    18444,
		RPCPort:        18443,
		GenesisHash:    "0f9188f13cb7b2c71f2a335e3a4fc328bf5beb436012afca590b1a11466e2206",
	}
)

// predefined maps network names to their configs.
var predefined = map[string]*NetworkConfig{
	"mainnet":     &MainNet,
	"testnet":     &TestNet,
	"teratestnet": &TeraTestNet,
	"regtest":     &RegTest,
}

// GetNetwork returns a predefined network by name.
// If the name is not predefined, it returns ErrInvalidNetwork.
func GetNetwork(name string) (*NetworkConfig, error) {
	if net, ok := predefined[name]; ok {
		return net, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

// LoadCustomNetwork loads a NetworkConfig from a JSON file.
func LoadCustomNetwork(path string) (*NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to read network config: %w", err)
	}

	var config NetworkConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("wallet: failed to parse network config: %w", err)
	}

	if config.Name == "" {
		return nil, fmt.Errorf("%w: network config must have a name", ErrInvalidNetwork)
	}

	return &config, nil
}

// NetworkTypeOfAddress infers the network type from the version byte of a
// P2PKH address. The address string is re-parsed, so a hand-built Address
// with a malformed string is rejected.
func NetworkTypeOfAddress(addr *script.Address) (NetworkType, error) {
	if addr == nil {
		return 0, fmt.Errorf("%w: nil address", ErrUnknownAddressPrefix)
	}

	parsed, err := script.NewAddressFromString(addr.AddressString)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrUnknownAddressPrefix, addr.AddressString, err)
	}

	// go-sdk does not expose the version byte, so compare against the
	// canonical encoding for each prefix.
	for _, t := range []NetworkType{Mainnet, Testnet} {
		enc, err := script.NewAddressFromPublicKeyHash(parsed.PublicKeyHash, t == Mainnet)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %w", ErrUnknownAddressPrefix, addr.AddressString, err)
		}
		if enc.AddressString == parsed.AddressString {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAddressPrefix, addr.AddressString)
}

// AddressFromPublicKey encodes a P2PKH address for pubKey on network type t.
func AddressFromPublicKey(pubKey *ec.PublicKey, t NetworkType) (*script.Address, error) {
	if pubKey == nil {
		return nil, fmt.Errorf("%w: nil public key", ErrDerivationFailed)
	}
	addr, err := script.NewAddressFromPublicKey(pubKey, t == Mainnet)
	if err != nil {
		return nil, fmt.Errorf("%w: address encoding: %w", ErrDerivationFailed, err)
	}
	return addr, nil
}
