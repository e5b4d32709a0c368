package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"utreexo.dev/node/chainparams"
	"utreexo.dev/node/consensus"
	"utreexo.dev/node/rpcerr"
)

// Config is utreexod's process configuration, following the teacher's
// flat-struct-plus-validator shape (node/config.go) narrowed to what this
// node actually needs: a header/accumulator store and a set of peers to
// select a chain from, not a full P2P listener or wallet config.
type Config struct {
	Network          string   `json:"network"`
	DataDir          string   `json:"data_dir"`
	LogLevel         string   `json:"log_level"`
	Peers            []string `json:"peers"`
	GenesisHeaderHex string   `json:"genesis_header_hex"`
	VerifyScript     bool     `json:"verify_script"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".utreexod"
	}
	return filepath.Join(home, ".utreexod")
}

func DefaultConfig() Config {
	return Config{
		Network:  string(chainparams.Regtest),
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
	}
}

// NormalizePeers dedups and flattens comma-separated/repeated peer flags
// into one ordered, unique list, exactly as the teacher's
// node.NormalizePeers does.
func NormalizePeers(raw ...string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, token := range raw {
		for _, p := range strings.Split(token, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig checks every field a flag can set, reusing rpcerr's
// address parser for peer addresses so the same stable failure shape the
// RPC surface promises also governs the config file/flags.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	if _, err := chainparams.Lookup(chainparams.Network(cfg.Network)); err != nil {
		return fmt.Errorf("invalid network: %w", err)
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	for _, peer := range cfg.Peers {
		if _, err := rpcerr.ParseAddress(peer); err != nil {
			return fmt.Errorf("invalid peer %q: %w", peer, err)
		}
	}
	if cfg.GenesisHeaderHex != "" {
		if _, err := parseGenesisHeader(cfg.GenesisHeaderHex); err != nil {
			return fmt.Errorf("invalid genesis_header_hex: %w", err)
		}
	}
	return nil
}

// parseGenesisHeader decodes the operator-supplied height-0 header. This
// node keeps no embedded table of historical genesis headers for every
// network (spec's persisted state is headers + accumulator only, starting
// from whatever genesis the operator points it at), so the genesis header
// is always an explicit input, verified against the chosen network's
// genesis hash before anything is persisted (store.DB.InitGenesis does
// that check).
func parseGenesisHeader(hexHeader string) (consensus.BlockHeader, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexHeader))
	if err != nil {
		return consensus.BlockHeader{}, fmt.Errorf("not valid hex: %w", err)
	}
	return consensus.ParseBlockHeader(raw)
}
