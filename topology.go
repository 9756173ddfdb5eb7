package main

import (
	"net"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/henderiw/iputil"
	"github.com/pkg/errors"
)

// Topology is the declarative description of the emulated network.
type Topology struct {
	Nodes []Node `yaml:"nodes"`
	Links []Link `yaml:"links"`
}

// Node declares one emulated node, backed by a network namespace.
type Node struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Ports []Port `yaml:"ports"`
	Pool  *Pool  `yaml:"pool,omitempty"`
}

// Port declares addressing for one of a node's devices. The port's index in
// the node's list is the numeric suffix of the device name; port 0 is the
// node's default device.
type Port struct {
	IPAddress  string `yaml:"ip_address,omitempty"`
	Gateway    string `yaml:"gateway,omitempty"`
	Masquerade bool   `yaml:"masquerade,omitempty"`
}

// Pool configures the subnet allocator owned by a cloud node.
type Pool struct {
	Network         string `yaml:"network"`
	PrefixIncrement int    `yaml:"prefix_increment"`
}

// Link connects two node ports with a veth pair.
type Link struct {
	Source      Endpoint `yaml:"source"`
	Destination Endpoint `yaml:"destination"`
}

// Endpoint names one side of a link.
type Endpoint struct {
	Name string `yaml:"name"`
	Port *int   `yaml:"port,omitempty"`
}

// PortNum returns the endpoint's port index, defaulting to 0 when omitted.
func (e Endpoint) PortNum() int {
	if e.Port == nil {
		return 0
	}
	return *e.Port
}

// LoadTopology reads and validates a topology YAML file.
func LoadTopology(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var topo Topology
	if err := yaml.Unmarshal(data, &topo); err != nil {
		return nil, errors.Wrapf(err, "failed to parse topology %s", path)
	}

	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return &topo, nil
}

// Validate checks the topology invariants: unique node names, resolvable
// link endpoints, distinct endpoint devices, well-formed addresses. A
// topology that fails validation produces no operations at all.
func (t *Topology) Validate() error {
	names := make(map[string]bool)
	for _, node := range t.Nodes {
		if node.Name == "" {
			return errors.New("node with empty name")
		}
		if names[node.Name] {
			return errors.Errorf("duplicate node name %q", node.Name)
		}
		names[node.Name] = true

		for i, port := range node.Ports {
			if port.IPAddress != "" {
				pi, err := iputil.New(port.IPAddress)
				if err != nil {
					return errors.Wrapf(err, "node %s port %d: invalid ip_address %q", node.Name, i, port.IPAddress)
				}
				if !pi.IsIpv4() {
					return errors.Errorf("node %s port %d: ip_address %q is not IPv4", node.Name, i, port.IPAddress)
				}
			}
			if port.Gateway != "" && net.ParseIP(port.Gateway) == nil {
				return errors.Errorf("node %s port %d: invalid gateway %q", node.Name, i, port.Gateway)
			}
		}

		if node.Pool != nil {
			if _, err := NewSubnetAllocator(node.Pool.Network, node.Pool.PrefixIncrement); err != nil {
				return errors.Wrapf(err, "node %s: invalid pool", node.Name)
			}
		}
	}

	for i, link := range t.Links {
		if !names[link.Source.Name] {
			return errors.Errorf("link %d: unknown source node %q", i, link.Source.Name)
		}
		if !names[link.Destination.Name] {
			return errors.Errorf("link %d: unknown destination node %q", i, link.Destination.Name)
		}
		if link.Source.Name == link.Destination.Name && link.Source.PortNum() == link.Destination.PortNum() {
			return errors.Errorf("link %d: both endpoints resolve to device %s", i, vethName(link.Source.Name, link.Source.PortNum()))
		}
	}
	return nil
}
