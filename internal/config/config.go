// Package config parses the engine's command-line surface with go-flags,
// mapping one-to-one onto the CLI flags, following
// cmd/houston/main.go's flags.NewParser(&opts, flags.Default) pattern and
// replacing globals.go's ad hoc Config struct (populated from environment
// variables) with declarative struct tags.
package config

import (
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Options is the full CLI surface: world seed, network toggles, world
// lifecycle flags, store location, and the idle auto-quit timeout.
type Options struct {
	Seed                uint64 `long:"seed" description:"world seed"`
	DisableNetwork      bool   `long:"disable-network" description:"run with peer transport disabled"`
	DisableAudio        bool   `long:"disable-audio" description:"run with the audio-stream event source disabled"`
	GenerateLocalWorld  bool   `long:"generate-local-world" description:"generate a fresh local-only world instead of loading a saved one"`
	ResetWorld          bool   `long:"reset-world" description:"wipe the persisted store before starting"`
	SeedIp              string `long:"seed-ip" description:"address of a seed peer to dial on startup"`
	StorePrefix         string `long:"store-prefix" default:"default" description:"directory name under which world/games/tournaments are persisted"`
	StoreUncompressed   bool   `long:"store-uncompressed" description:"disable LZ4 compression of persisted blobs"`
	NetworkPort         uint16 `long:"network-port" default:"7777" description:"TCP port the swarm transport listens on"`
	AutoQuitAfterSecs   uint64 `long:"auto-quit-after" description:"seconds of terminal-input idleness after which the process exits cleanly; 0 disables"`
	Debug               bool   `long:"debug" description:"enable debug-level logging"`
}

// Parse parses argv (typically os.Args[1:]) into an Options, returning the
// go-flags help/usage error unwrapped so callers can exit 0 on --help the
// way cmd/houston/main.go does.
func Parse(argv []string) (*Options, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "piratecrew"
	parser.LongDescription = "A persistent, peer-to-peer pirate-crew galaxy simulation engine."
	if _, err := parser.ParseArgs(argv); err != nil {
		return nil, err
	}
	return &opts, nil
}

// IsHelp reports whether err is go-flags' sentinel "help was printed, exit
// 0" error, the condition cmd/houston/main.go checks for before choosing
// its exit code.
func IsHelp(err error) bool {
	if flagsErr, ok := err.(*flags.Error); ok {
		return flagsErr.Type == flags.ErrHelp
	}
	return false
}

// Validate rejects option combinations the CLI surface's exit-code
// contract calls out as an unrecoverable error (invalid network port).
func (o *Options) Validate() error {
	if o.NetworkPort == 0 {
		return fmt.Errorf("config: --network-port must be nonzero")
	}
	return nil
}
