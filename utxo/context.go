package utxo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/bitfs-txgen/events"
	"github.com/bitfsorg/bitfs-txgen/wallet"
)

// Context is the live set of spendable outputs for one address/account
// scope. Entries are kept sorted by amount, smallest first. A Context is
// shared by reference and safe for concurrent use.
type Context struct {
	id        uuid.UUID
	processor *Processor
	logger    logrus.FieldLogger

	mu      sync.RWMutex
	entries []*Entry
	index   map[string]*Entry
	balance uint64
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithID sets the context id, used to reopen a persisted context.
func WithID(id uuid.UUID) ContextOption {
	return func(c *Context) { c.id = id }
}

// NewContext creates an empty context attached to processor p.
func NewContext(p *Processor, opts ...ContextOption) (*Context, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: processor", ErrNilParam)
	}
	c := &Context{
		id:        uuid.New(),
		processor: p,
		index:     make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = p.logger.WithField("context_id", c.id.String())
	return c, nil
}

// ID returns the context id.
func (c *Context) ID() uuid.UUID { return c.id }

// Processor returns the processor the context belongs to.
func (c *Context) Processor() *Processor { return c.processor }

// NetworkID returns the network of the context's processor.
func (c *Context) NetworkID() (*wallet.NetworkConfig, error) {
	return c.processor.NetworkID()
}

// Insert adds an entry. The entry is written to the processor's store, if
// any, before it becomes visible. Subscribers get Pending for unconfirmed
// and coinbase entries and Maturity for confirmed ones, then Balance.
func (c *Context) Insert(e *Entry) error {
	if e == nil {
		return fmt.Errorf("%w: entry", ErrNilParam)
	}
	if err := e.Outpoint.Validate(); err != nil {
		return err
	}
	key := string(e.Outpoint.Key())

	c.mu.Lock()
	if _, ok := c.index[key]; ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, e.Outpoint)
	}
	if s := c.processor.store; s != nil {
		if err := s.PutEntry(c.id, e); err != nil {
			c.mu.Unlock()
			err = fmt.Errorf("utxo: persist entry %s: %w", e.Outpoint, err)
			c.notifyError(e.Outpoint, err)
			return err
		}
	}
	c.insertLocked(key, e)
	balance := c.balance
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"outpoint": e.Outpoint.String(),
		"amount":   e.Amount,
	}).Debug("utxo entry added")
	c.processor.notify(events.Event{Kind: arrivalKind(e), ContextID: c.id, Balance: balance, Outpoint: e.Outpoint.String()})
	c.processor.notify(events.Event{Kind: events.Balance, ContextID: c.id, Balance: balance})
	return nil
}

// Remove stops tracking the entry at op because it has been spent.
func (c *Context) Remove(op Outpoint) error {
	return c.remove(op, events.Spent)
}

// Reorg stops tracking the entry at op because the block that confirmed it
// is no longer on the best chain.
func (c *Context) Reorg(op Outpoint) error {
	return c.remove(op, events.Reorg)
}

func (c *Context) remove(op Outpoint, kind events.Kind) error {
	key := string(op.Key())

	c.mu.Lock()
	e, ok := c.index[key]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEntryNotFound, op)
	}
	if s := c.processor.store; s != nil {
		if err := s.DeleteEntry(c.id, op); err != nil {
			c.mu.Unlock()
			err = fmt.Errorf("utxo: delete entry %s: %w", op, err)
			c.notifyError(op, err)
			return err
		}
	}
	delete(c.index, key)
	for i, cur := range c.entries {
		if cur == e {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}
	c.balance -= e.Amount
	balance := c.balance
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"outpoint": op.String(),
		"reason":   kind.String(),
	}).Debug("utxo entry removed")
	c.processor.notify(events.Event{Kind: kind, ContextID: c.id, Balance: balance, Outpoint: op.String()})
	c.processor.notify(events.Event{Kind: events.Balance, ContextID: c.id, Balance: balance})
	return nil
}

// Load replaces the in-memory entries with the ones persisted for this context.
func (c *Context) Load() error {
	s := c.processor.store
	if s == nil {
		return ErrNoStore
	}
	loaded, err := s.LoadEntries(c.id)
	if err != nil {
		return fmt.Errorf("utxo: load context %s: %w", c.id, err)
	}

	c.mu.Lock()
	c.entries = nil
	c.index = make(map[string]*Entry, len(loaded))
	c.balance = 0
	for _, e := range loaded {
		key := string(e.Outpoint.Key())
		if _, dup := c.index[key]; dup {
			continue
		}
		c.insertLocked(key, e)
	}
	n, balance := len(c.entries), c.balance
	c.mu.Unlock()

	c.logger.WithField("entries", n).Info("utxo context loaded")
	c.processor.notify(events.Event{Kind: events.Balance, ContextID: c.id, Balance: balance})
	return nil
}

// Len returns the number of tracked entries.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Balance returns the sum of tracked amounts in satoshis.
func (c *Context) Balance() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balance
}

// At returns the i-th entry in amount order.
func (c *Context) At(i int) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.entries) {
		return nil, false
	}
	return c.entries[i], true
}

// Entries returns a snapshot of the tracked entries in amount order.
func (c *Context) Entries() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// arrivalKind is Pending until an entry is confirmed. Coinbase outputs stay
// Pending because their maturity depends on the chain tip, which the
// context does not track.
func arrivalKind(e *Entry) events.Kind {
	if e.BlockHeight == 0 || e.Coinbase {
		return events.Pending
	}
	return events.Maturity
}

func (c *Context) notifyError(op Outpoint, err error) {
	c.logger.WithField("outpoint", op.String()).WithError(err).Error("utxo context update failed")
	c.processor.notify(events.Event{Kind: events.Error, ContextID: c.id, Outpoint: op.String(), Err: err})
}

// insertLocked places e in amount order. Caller holds c.mu.
func (c *Context) insertLocked(key string, e *Entry) {
	i := sort.Search(len(c.entries), func(i int) bool { return c.entries[i].Amount > e.Amount })
	c.entries = append(c.entries, nil)
	copy(c.entries[i+1:], c.entries[i:])
	c.entries[i] = e
	c.index[key] = e
	c.balance += e.Amount
}
