package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"utreexo.dev/node/chainparams"
	"utreexo.dev/node/selector"
	"utreexo.dev/node/store"
)

// disqualificationBanPenalty is folded into a peer's persisted ban score
// each time the selector drops it within one run. It is not itself a
// consensus constant (spec has no normative ban-score threshold), just a
// fixed step large enough that a few repeated disqualifications across
// restarts accumulate into an operator-visible signal.
const disqualificationBanPenalty int32 = 10

// recordDisqualifications folds one selector run's disqualifications into
// the store's persisted ban scores, keyed by peer address (selector.PeerID
// is an opaque string a real transport would set to the peer's address).
func recordDisqualifications(db *store.DB, disqualified map[selector.PeerID]string) error {
	for id := range disqualified {
		if _, err := db.IncreaseBanScore(string(id), disqualificationBanPenalty); err != nil {
			return fmt.Errorf("record ban score for %s: %w", id, err)
		}
	}
	return nil
}

type multiStringFlag []string

func (m *multiStringFlag) String() string {
	if m == nil {
		return ""
	}
	return strings.Join(*m, ",")
}

func (m *multiStringFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	defaults := DefaultConfig()
	var peers multiStringFlag

	cfg := defaults
	fs := flag.NewFlagSet("utreexod", flag.ContinueOnError)
	fs.SetOutput(stderr)

	peerCSV := fs.String("peers", "", "bootstrap peers, comma-separated host:port")
	fs.Var(&peers, "peer", "single bootstrap peer host:port (repeatable)")
	fs.StringVar(&cfg.Network, "network", defaults.Network, "network name (mainnet/testnet/testnet4/signet/regtest)")
	fs.StringVar(&cfg.DataDir, "datadir", defaults.DataDir, "node data directory")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&cfg.GenesisHeaderHex, "genesis-header", "", "hex-encoded 80-byte height-0 header")
	fs.BoolVar(&cfg.VerifyScript, "verify-script", false, "run script execution during block validation")
	dryRun := fs.Bool("dry-run", false, "print effective config and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Peers = NormalizePeers(append([]string{*peerCSV}, peers...)...)
	if err := ValidateConfig(cfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 2
	}

	logger := newLogger(stdout, cfg.LogLevel)

	if err := printConfig(stdout, cfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "config encode failed: %v\n", err)
		return 1
	}
	if *dryRun {
		return 0
	}

	params, err := chainparams.Lookup(chainparams.Network(cfg.Network))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "network lookup failed: %v\n", err)
		return 2
	}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		_, _ = fmt.Fprintf(stderr, "datadir create failed: %v\n", err)
		return 2
	}
	db, err := store.Open(cfg.DataDir, cfg.Network)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "store open failed: %v\n", err)
		return 2
	}
	defer func() { _ = db.Close() }()

	if db.Manifest() == nil {
		if cfg.GenesisHeaderHex == "" {
			_, _ = fmt.Fprintln(stderr, "store has no saved tip yet; -genesis-header is required to bootstrap it")
			return 2
		}
		genesis, err := parseGenesisHeader(cfg.GenesisHeaderHex)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "genesis header parse failed: %v\n", err)
			return 2
		}
		if err := db.InitGenesis(params, genesis); err != nil {
			_, _ = fmt.Fprintf(stderr, "genesis init failed: %v\n", err)
			return 2
		}
		logger.Info().Str("network", cfg.Network).Msg("initialized a fresh datadir at genesis")
	}

	genesisHeader, ok, err := db.GetHeader(params.GenesisHash)
	if err != nil || !ok {
		_, _ = fmt.Fprintf(stderr, "store missing its own genesis header: ok=%v err=%v\n", ok, err)
		return 2
	}

	chain, err := db.LoadChain(params, genesisHeader)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "chain replay failed: %v\n", err)
		return 2
	}
	stump, _, err := db.GetAccumulator()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "accumulator load failed: %v\n", err)
		return 2
	}

	banned, err := db.ListBanScores()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "ban score load failed: %v\n", err)
		return 2
	}
	logger.Info().
		Uint64("tip_height", chain.Tip().Height).
		Uint64("accumulator_leaves", stump.Leaves).
		Int("peers_configured", len(cfg.Peers)).
		Int("peers_with_ban_score", len(banned)).
		Msg("store loaded")

	if len(cfg.Peers) == 0 {
		_, _ = fmt.Fprintln(stdout, "utreexod: no peers configured, nothing to select; waiting for shutdown signal")
	} else {
		// Dialing cfg.Peers into live selector.Source implementations is
		// the P2P transport collaborator's job (spec §6 names the wire
		// protocol as a collaborator, not something this binary opens
		// sockets for itself). Once a caller supplies those sources,
		// selector.Run drives IBD exactly as selector/select.go documents,
		// and recordDisqualifications above folds its Result.Disqualified
		// into the store so a disqualified peer stays scored across
		// restarts instead of being re-trusted on the next run.
		_, _ = fmt.Fprintf(stdout, "utreexod: %d peer(s) configured; connect them to live selector.Source implementations and call selector.Run to drive IBD\n", len(cfg.Peers))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("utreexod running")
	<-ctx.Done()
	logger.Info().Msg("utreexod stopped")
	return 0
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).Level(lvl).With().Timestamp().Logger()
}

func printConfig(w io.Writer, cfg Config) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
