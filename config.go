package main

import (
	"flag"
	"path/filepath"
	"strings"
)

// Config holds the command line configuration.
type Config struct {
	TopologyPath string
	OutputDir    string

	DHCP           bool
	DHCPRangeStart string
	DHCPRangeEnd   string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		OutputDir: ".",
	}
}

// ParseFlags parses command line flags and returns a Config. The topology
// file path is the single positional argument.
func ParseFlags() Config {
	cfg := DefaultConfig()

	flag.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory to write the generated scripts")
	flag.BoolVar(&cfg.DHCP, "dhcp", cfg.DHCP, "Run a DHCP lease server for the first cloud node until interrupted")
	flag.StringVar(&cfg.DHCPRangeStart, "dhcp-range-start", cfg.DHCPRangeStart, "First leased address (default: derived from the cloud pool)")
	flag.StringVar(&cfg.DHCPRangeEnd, "dhcp-range-end", cfg.DHCPRangeEnd, "Last leased address (default: derived from the cloud pool)")

	flag.Parse()

	cfg.TopologyPath = flag.Arg(0)
	return cfg
}

// ScriptPaths returns the setup and cleanup script paths derived from the
// topology file name, e.g. topo.yaml -> topo.sh and cleanup_topo.sh.
func (c Config) ScriptPaths() (string, string) {
	base := strings.TrimSuffix(filepath.Base(c.TopologyPath), ".yaml")
	setup := filepath.Join(c.OutputDir, base+".sh")
	cleanup := filepath.Join(c.OutputDir, "cleanup_"+base+".sh")
	return setup, cleanup
}
