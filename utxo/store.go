package utxo

import "github.com/google/uuid"

// Store persists the entries of spending contexts.
type Store interface {
	// PutEntry stores e under contextID, replacing any entry with the same outpoint.
	PutEntry(contextID uuid.UUID, e *Entry) error
	// DeleteEntry removes the entry at op. Missing entries are not an error.
	DeleteEntry(contextID uuid.UUID, op Outpoint) error
	// LoadEntries returns all entries stored for contextID, in key order.
	LoadEntries(contextID uuid.UUID) ([]*Entry, error)
	// Contexts lists the ids of all contexts with stored entries.
	Contexts() ([]uuid.UUID, error)
}
