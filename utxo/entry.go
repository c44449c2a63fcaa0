// Package utxo tracks spendable outputs per spending context and exposes them
// to transaction construction as single-pass output-reference sources.
package utxo

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// TxIDLen is the length of a transaction ID.
const TxIDLen = 32

// Outpoint identifies a transaction output.
type Outpoint struct {
	TxID []byte `json:"txid"` // 32 bytes
	Vout uint32 `json:"vout"`
}

// Validate checks the TxID length.
func (o Outpoint) Validate() error {
	if len(o.TxID) != TxIDLen {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidOutpoint, len(o.TxID))
	}
	return nil
}

// Key returns TxID || big-endian Vout, the storage key of the outpoint.
func (o Outpoint) Key() []byte {
	k := make([]byte, len(o.TxID)+4)
	copy(k, o.TxID)
	binary.BigEndian.PutUint32(k[len(o.TxID):], o.Vout)
	return k
}

// String formats the outpoint as "txid:vout".
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", hex.EncodeToString(o.TxID), o.Vout)
}

// Entry is a spendable output tracked by a Context. A *Entry is the output
// reference handed to transaction construction; entries are not mutated
// after insertion so references may be shared freely.
type Entry struct {
	Outpoint     Outpoint `json:"outpoint"`
	Amount       uint64   `json:"amount"`        // satoshis
	ScriptPubKey []byte   `json:"script_pubkey"` // locking script bytes
	BlockHeight  uint64   `json:"block_height"`  // 0 if unconfirmed
	Coinbase     bool     `json:"coinbase"`
}
