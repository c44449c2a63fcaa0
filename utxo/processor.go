package utxo

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/bitfs-txgen/events"
	"github.com/bitfsorg/bitfs-txgen/wallet"
)

// Processor is shared by all contexts of one wallet. It owns the network
// binding, the optional persistent store and the event multiplexer.
type Processor struct {
	mu      sync.RWMutex
	network *wallet.NetworkConfig

	store  Store
	mux    *events.Multiplexer
	logger logrus.FieldLogger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithStore persists every context of the processor in s.
func WithStore(s Store) ProcessorOption {
	return func(p *Processor) { p.store = s }
}

// WithMultiplexer publishes context changes to mux.
func WithMultiplexer(mux *events.Multiplexer) ProcessorOption {
	return func(p *Processor) { p.mux = mux }
}

// WithLogger sets the logger used by the processor and its contexts.
func WithLogger(l logrus.FieldLogger) ProcessorOption {
	return func(p *Processor) { p.logger = l }
}

// NewProcessor creates a processor that is not yet bound to a network.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.logger = l
	}
	return p
}

// BindNetwork sets the network the processor operates on. Passing nil unbinds it.
func (p *Processor) BindNetwork(n *wallet.NetworkConfig) {
	p.mu.Lock()
	p.network = n
	p.mu.Unlock()

	if n != nil {
		p.logger.WithField("network", n.Name).Info("utxo processor bound to network")
	}
}

// NetworkID returns the bound network or ErrNetworkNotBound.
func (p *Processor) NetworkID() (*wallet.NetworkConfig, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.network == nil {
		return nil, ErrNetworkNotBound
	}
	return p.network, nil
}

// Multiplexer returns the processor's event multiplexer, or nil.
func (p *Processor) Multiplexer() *events.Multiplexer { return p.mux }

// Store returns the processor's store, or nil.
func (p *Processor) Store() Store { return p.store }

func (p *Processor) notify(ev events.Event) {
	if p.mux != nil {
		p.mux.Broadcast(ev)
	}
}
