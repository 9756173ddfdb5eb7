package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

func main() {
	cfg := ParseFlags()

	if cfg.TopologyPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <topology.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	topo, err := LoadTopology(cfg.TopologyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading topology: %v\n", err)
		os.Exit(1)
	}

	compiler, err := NewCompiler(topo, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building compiler: %v\n", err)
		os.Exit(1)
	}

	setup, err := compiler.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling topology: %v\n", err)
		os.Exit(1)
	}
	cleanup := compiler.Cleanup()

	setupPath, cleanupPath := cfg.ScriptPaths()
	if err := WriteScript(setupPath, setup); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing setup script: %v\n", err)
		os.Exit(1)
	}
	if err := WriteScript(cleanupPath, cleanup); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing cleanup script: %v\n", err)
		os.Exit(1)
	}
	log.WithFields(log.Fields{
		"setup":   setupPath,
		"cleanup": cleanupPath,
	}).Info("scripts written")

	// Echo the setup script to stdout
	fmt.Println("#!/bin/bash")
	for _, c := range setup {
		fmt.Println(c.Cmd)
	}

	if cfg.DHCP {
		if err := runDHCP(cfg, topo); err != nil {
			fmt.Fprintf(os.Stderr, "Error running dhcp server: %v\n", err)
			os.Exit(1)
		}
	}
}

// runDHCP serves leases for the first cloud node's segment until the process
// is interrupted.
func runDHCP(cfg Config, topo *Topology) error {
	var cloud *Node
	for i := range topo.Nodes {
		if topo.Nodes[i].Type == "cloud" {
			cloud = &topo.Nodes[i]
			break
		}
	}
	if cloud == nil {
		return errors.New("no cloud node in topology")
	}

	pool := cloud.Pool
	if pool == nil {
		pool = &Pool{Network: DefaultPoolNetwork, PrefixIncrement: DefaultPoolPrefixIncrement}
	}

	start, end := cfg.DHCPRangeStart, cfg.DHCPRangeEnd
	if start == "" || end == "" {
		first, last, err := poolHostRange(pool)
		if err != nil {
			return err
		}
		if start == "" {
			start = first
		}
		if end == "" {
			end = last
		}
	}

	server, err := NewDHCPServer(start, end, vethName(cloud.Name, 0), cloud.Name)
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		server.Stop()
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	return server.Stop()
}
