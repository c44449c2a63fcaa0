// Command txgen-inspect assembles generator settings from a stored UTXO
// context and prints what a transaction generator run would start from.
//
// Usage:
//
//	txgen-inspect [-datadir dir]                       list stored contexts
//	txgen-inspect -keystore file -create-keystore      create a wallet keystore
//	txgen-inspect -context id (-change addr | -keystore file [-account n])
//	              [-pay addr=bsv ...] [-fee bsv -fee-mode sender|receiver]
//	              [-payload hex] [-source] [-transfer id]
//
// The keystore password is read from TXGEN_KEYSTORE_PASSWORD.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bitfsorg/bitfs-txgen/account"
	"github.com/bitfsorg/bitfs-txgen/config"
	"github.com/bitfsorg/bitfs-txgen/events"
	"github.com/bitfsorg/bitfs-txgen/generator"
	"github.com/bitfsorg/bitfs-txgen/tx"
	"github.com/bitfsorg/bitfs-txgen/utxo"
	"github.com/bitfsorg/bitfs-txgen/wallet"
)

// storeFileName is the bbolt database inside the data directory.
const storeFileName = "utxo.db"

// passwordEnv holds the keystore password.
const passwordEnv = "TXGEN_KEYSTORE_PASSWORD"

var errUsage = errors.New("usage")

// payments collects repeated -pay addr=amount flags.
type payments []string

func (p *payments) String() string { return strings.Join(*p, ",") }

func (p *payments) Set(v string) error {
	*p = append(*p, v)
	return nil
}

type options struct {
	dataDir  string
	context  string
	change   string
	pays     payments
	fee      string
	feeMode  string
	payload  string
	source   bool
	transfer string

	keystore       string
	createKeystore bool
	account        uint
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "txgen-inspect:", err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, error) {
	var o options
	fs := flag.NewFlagSet("txgen-inspect", flag.ContinueOnError)
	fs.StringVar(&o.dataDir, "datadir", config.DefaultDataDir(), "data directory")
	fs.StringVar(&o.context, "context", "", "UTXO context id to spend from")
	fs.StringVar(&o.change, "change", "", "change address")
	fs.Var(&o.pays, "pay", "payment output as address=amount in BSV (repeatable)")
	fs.StringVar(&o.fee, "fee", "0", "priority fee in BSV")
	fs.StringVar(&o.feeMode, "fee-mode", "sender", "who pays the priority fee: sender or receiver")
	fs.StringVar(&o.payload, "payload", "", "hex payload for the final transaction")
	fs.BoolVar(&o.source, "source", false, "build from a snapshot of the context's outputs instead of the context")
	fs.StringVar(&o.transfer, "transfer", "", "destination context id for an internal transfer")
	fs.StringVar(&o.keystore, "keystore", "", "sealed wallet seed; spends through an HD account instead of -change")
	fs.BoolVar(&o.createKeystore, "create-keystore", false, "generate a new mnemonic and write it to -keystore")
	fs.UintVar(&o.account, "account", 0, "BIP44 account index used with -keystore")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %q", errUsage, fs.Args())
	}
	if o.keystore != "" {
		switch {
		case o.change != "":
			return nil, fmt.Errorf("%w: -change and -keystore are exclusive", errUsage)
		case o.source:
			return nil, fmt.Errorf("%w: -source and -keystore are exclusive", errUsage)
		case o.account >= wallet.Hardened:
			return nil, fmt.Errorf("%w: -account %d out of range", errUsage, o.account)
		}
	} else if o.createKeystore {
		return nil, fmt.Errorf("%w: -create-keystore needs -keystore", errUsage)
	}
	return &o, nil
}

func run(args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(o.dataDir)
	if err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	network, err := cfg.NetworkConfig()
	if err != nil {
		return err
	}

	if o.createKeystore {
		return createKeystore(stdout, o.keystore)
	}

	store, err := utxo.OpenBoltStore(filepath.Join(cfg.DataDir, storeFileName))
	if err != nil {
		return err
	}
	defer store.Close()

	if o.context == "" {
		return listContexts(stdout, store)
	}

	mux := events.New()
	defer mux.Close()
	proc := utxo.NewProcessor(
		utxo.WithStore(store),
		utxo.WithMultiplexer(mux),
		utxo.WithLogger(logger),
	)
	proc.BindNetwork(network)

	ctx, err := openContext(proc, o.context)
	if err != nil {
		return err
	}
	log := logger.WithFields(logrus.Fields{
		"context_id": ctx.ID().String(),
		"network":    network.Name,
	})
	log.WithField("entries", ctx.Len()).Debug("loaded utxo context")

	s, err := buildSettings(o, cfg, ctx, mux, log)
	if err != nil {
		return err
	}
	if o.transfer != "" {
		dst, err := openContext(proc, o.transfer)
		if err != nil {
			return err
		}
		s = s.TransferTo(dst)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if err := s.FinalDestination().Validate(); err != nil {
		return err
	}

	log.Info("assembled generator settings")
	return printSettings(stdout, s)
}

func listContexts(w io.Writer, store *utxo.BoltStore) error {
	ids, err := store.Contexts()
	if err != nil {
		return err
	}
	for _, id := range ids {
		entries, err := store.LoadEntries(id)
		if err != nil {
			return err
		}
		var balance uint64
		for _, e := range entries {
			balance += e.Amount
		}
		fmt.Fprintf(w, "%s\t%d outputs\t%s BSV\n", id, len(entries), tx.FormatAmount(balance))
	}
	return nil
}

func openContext(proc *utxo.Processor, rawID string) (*utxo.Context, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: context id %q: %w", errUsage, rawID, err)
	}
	ctx, err := utxo.NewContext(proc, utxo.WithID(id))
	if err != nil {
		return nil, err
	}
	if err := ctx.Load(); err != nil {
		return nil, err
	}
	return ctx, nil
}

func buildSettings(o *options, cfg config.Config, ctx *utxo.Context, mux *events.Multiplexer, log logrus.FieldLogger) (*generator.Settings, error) {
	dest, err := parseDestination(o.pays)
	if err != nil {
		return nil, err
	}
	fee, err := parseFee(o.fee, o.feeMode)
	if err != nil {
		return nil, err
	}
	var payload []byte
	if o.payload != "" {
		if payload, err = hex.DecodeString(o.payload); err != nil {
			return nil, fmt.Errorf("%w: payload: %w", errUsage, err)
		}
	}

	if o.keystore != "" {
		acct, err := openAccount(o.keystore, uint32(o.account), ctx, mux, log)
		if err != nil {
			return nil, err
		}
		return generator.NewWithAccount(acct, dest, fee, payload)
	}

	if o.change == "" {
		return nil, fmt.Errorf("%w: -change or -keystore is required", errUsage)
	}
	change, err := script.NewAddressFromString(o.change)
	if err != nil {
		return nil, fmt.Errorf("%w: change address: %w", errUsage, err)
	}
	if o.source {
		src := utxo.FromEntries(ctx.Entries()...)
		return generator.NewWithSource(src, change, cfg.SigOpCount, cfg.MinimumSignatures, dest, fee, payload, mux)
	}
	return generator.NewWithContext(ctx, change, cfg.SigOpCount, cfg.MinimumSignatures, dest, fee, payload, mux)
}

func keystorePassword() (string, error) {
	pw := os.Getenv(passwordEnv)
	if pw == "" {
		return "", fmt.Errorf("%w: %s is not set", errUsage, passwordEnv)
	}
	return pw, nil
}

// openAccount unseals the keystore and opens the HD account spending from ctx.
func openAccount(path string, index uint32, ctx *utxo.Context, mux *events.Multiplexer, log logrus.FieldLogger) (*account.HDAccount, error) {
	pw, err := keystorePassword()
	if err != nil {
		return nil, err
	}
	seed, err := wallet.ReadKeystore(path, pw)
	if err != nil {
		return nil, err
	}
	network, err := ctx.NetworkID()
	if err != nil {
		return nil, err
	}
	w, err := wallet.NewWallet(seed, network)
	if err != nil {
		return nil, err
	}
	return account.New(w, index, ctx, mux, account.WithLogger(log))
}

// createKeystore writes a fresh 12-word wallet to path and prints the
// mnemonic once. An existing keystore is never overwritten.
func createKeystore(w io.Writer, path string) error {
	pw, err := keystorePassword()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: keystore %s already exists", errUsage, path)
	}
	mnemonic, err := wallet.GenerateMnemonic(wallet.Mnemonic12Words)
	if err != nil {
		return err
	}
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return err
	}
	if err := wallet.WriteKeystore(path, seed, pw); err != nil {
		return err
	}
	fmt.Fprintf(w, "keystore:      %s\n", path)
	fmt.Fprintf(w, "mnemonic:      %s\n", mnemonic)
	return nil
}

func parseDestination(pays payments) (tx.PaymentDestination, error) {
	outputs := make([]tx.PaymentOutput, 0, len(pays))
	for _, p := range pays {
		rawAddr, rawAmount, ok := strings.Cut(p, "=")
		if !ok {
			return tx.PaymentDestination{}, fmt.Errorf("%w: -pay %q: want address=amount", errUsage, p)
		}
		addr, err := script.NewAddressFromString(strings.TrimSpace(rawAddr))
		if err != nil {
			return tx.PaymentDestination{}, fmt.Errorf("%w: -pay address: %w", errUsage, err)
		}
		amount, err := tx.ParseAmount(strings.TrimSpace(rawAmount))
		if err != nil {
			return tx.PaymentDestination{}, err
		}
		outputs = append(outputs, tx.PaymentOutput{Address: addr, Amount: amount})
	}
	return tx.NewPaymentOutputs(outputs...), nil
}

func parseFee(rawAmount, mode string) (tx.Fees, error) {
	amount, err := tx.ParseAmount(rawAmount)
	if err != nil {
		return tx.Fees{}, err
	}
	switch mode {
	case "sender":
		return tx.SenderPays(amount), nil
	case "receiver":
		return tx.ReceiverPays(amount), nil
	default:
		return tx.Fees{}, fmt.Errorf("%w: -fee-mode %q: want sender or receiver", errUsage, mode)
	}
}

func printSettings(w io.Writer, s *generator.Settings) error {
	fmt.Fprintf(w, "network:       %s\n", s.NetworkType())
	if ctx := s.SourceContext(); ctx != nil {
		fmt.Fprintf(w, "source:        context %s\n", ctx.ID())
	} else {
		fmt.Fprintf(w, "source:        output sequence\n")
	}
	if dst := s.DestinationContext(); dst != nil {
		fmt.Fprintf(w, "transfer to:   context %s\n", dst.ID())
	}
	fmt.Fprintf(w, "change:        %s\n", s.ChangeAddress().AddressString)
	fmt.Fprintf(w, "sig ops:       %d\n", s.SigOpCount())
	fmt.Fprintf(w, "min sigs:      %d\n", s.MinimumSignatures())
	fmt.Fprintf(w, "priority fee:  %s\n", s.FinalPriorityFee())

	dest := s.FinalDestination()
	if dest.IsChange() {
		fmt.Fprintf(w, "destination:   change\n")
	} else {
		for _, out := range dest.Outputs() {
			fmt.Fprintf(w, "pay:           %s %s BSV\n", out.Address.AddressString, tx.FormatAmount(out.Amount))
		}
	}
	fmt.Fprintf(w, "payload:       %d bytes\n", len(s.FinalPayload()))

	// Inspection drains the source; the settings are not reused afterwards.
	src, ok := s.TakeUtxoSource()
	if !ok {
		return errors.New("settings have no output source")
	}
	var n int
	var total uint64
	for e := range utxo.Seq(src) {
		n++
		total += e.Amount
	}
	fmt.Fprintf(w, "inputs:        %d outputs, %s BSV\n", n, tx.FormatAmount(total))
	return nil
}
