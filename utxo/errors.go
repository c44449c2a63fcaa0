package utxo

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("utxo: required parameter is nil")

	// ErrNetworkNotBound indicates the processor has not been bound to a network yet.
	ErrNetworkNotBound = errors.New("utxo: processor is not bound to a network")

	// ErrInvalidOutpoint indicates an outpoint whose TxID is not 32 bytes.
	ErrInvalidOutpoint = errors.New("utxo: outpoint TxID must be 32 bytes")

	// ErrDuplicateEntry indicates the outpoint is already tracked by the context.
	ErrDuplicateEntry = errors.New("utxo: entry already tracked")

	// ErrEntryNotFound indicates the outpoint is not tracked by the context.
	ErrEntryNotFound = errors.New("utxo: entry not found")

	// ErrNoStore indicates a persistence operation on a processor without a store.
	ErrNoStore = errors.New("utxo: processor has no store")
)
