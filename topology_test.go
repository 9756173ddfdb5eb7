package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func writeTopologyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadTopology(t *testing.T) {
	path := writeTopologyFile(t, `
nodes:
  - name: r1
    type: router
    ports:
      - ip_address: 10.0.0.1/24
      - ip_address: 10.0.1.1/24
        masquerade: true
  - name: c1
    type: host
    ports:
      - ip_address: 10.0.1.2/24
        gateway: 10.0.1.1
  - name: net
    type: cloud
    pool:
      network: 10.200.0.0/16
      prefix_increment: 8
    ports:
      - {}
links:
  - source: {name: r1, port: 1}
    destination: {name: c1}
`)

	topo, err := LoadTopology(path)
	require.NoError(t, err)

	require.Len(t, topo.Nodes, 3)
	assert.Equal(t, "router", topo.Nodes[0].Type)
	assert.True(t, topo.Nodes[0].Ports[1].Masquerade)
	assert.Equal(t, "10.0.1.1", topo.Nodes[1].Ports[0].Gateway)

	require.NotNil(t, topo.Nodes[2].Pool)
	assert.Equal(t, "10.200.0.0/16", topo.Nodes[2].Pool.Network)

	require.Len(t, topo.Links, 1)
	assert.Equal(t, 1, topo.Links[0].Source.PortNum())
	assert.Equal(t, 0, topo.Links[0].Destination.PortNum(), "omitted port defaults to 0")
}

func TestLoadTopologyMissingFile(t *testing.T) {
	_, err := LoadTopology(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		topo    Topology
		wantErr string
	}{
		{
			name: "valid",
			topo: Topology{
				Nodes: []Node{
					{Name: "a", Ports: []Port{{IPAddress: "10.0.0.1/24"}}},
					{Name: "b", Ports: []Port{{IPAddress: "10.0.0.2/24", Gateway: "10.0.0.1"}}},
				},
				Links: []Link{{Source: Endpoint{Name: "a"}, Destination: Endpoint{Name: "b"}}},
			},
		},
		{
			name: "duplicate node name",
			topo: Topology{
				Nodes: []Node{{Name: "a"}, {Name: "a"}},
			},
			wantErr: "duplicate node name",
		},
		{
			name: "empty node name",
			topo: Topology{
				Nodes: []Node{{Name: ""}},
			},
			wantErr: "empty name",
		},
		{
			name: "dangling source",
			topo: Topology{
				Nodes: []Node{{Name: "a"}},
				Links: []Link{{Source: Endpoint{Name: "ghost"}, Destination: Endpoint{Name: "a"}}},
			},
			wantErr: "unknown source node",
		},
		{
			name: "dangling destination",
			topo: Topology{
				Nodes: []Node{{Name: "a"}},
				Links: []Link{{Source: Endpoint{Name: "a"}, Destination: Endpoint{Name: "ghost"}}},
			},
			wantErr: "unknown destination node",
		},
		{
			name: "same device on both ends",
			topo: Topology{
				Nodes: []Node{{Name: "a"}},
				Links: []Link{{Source: Endpoint{Name: "a"}, Destination: Endpoint{Name: "a"}}},
			},
			wantErr: "both endpoints",
		},
		{
			name: "same node distinct ports is allowed",
			topo: Topology{
				Nodes: []Node{{Name: "a"}},
				Links: []Link{{Source: Endpoint{Name: "a"}, Destination: Endpoint{Name: "a", Port: intPtr(1)}}},
			},
		},
		{
			name: "malformed ip_address",
			topo: Topology{
				Nodes: []Node{{Name: "a", Ports: []Port{{IPAddress: "not-an-address"}}}},
			},
			wantErr: "invalid ip_address",
		},
		{
			name: "ipv6 ip_address",
			topo: Topology{
				Nodes: []Node{{Name: "a", Ports: []Port{{IPAddress: "2001:db8::1/64"}}}},
			},
			wantErr: "not IPv4",
		},
		{
			name: "malformed gateway",
			topo: Topology{
				Nodes: []Node{{Name: "a", Ports: []Port{{IPAddress: "10.0.0.1/24", Gateway: "gw"}}}},
			},
			wantErr: "invalid gateway",
		},
		{
			name: "invalid pool",
			topo: Topology{
				Nodes: []Node{{Name: "a", Type: "cloud", Pool: &Pool{Network: "10.0.0.0/24", PrefixIncrement: 16}}},
			},
			wantErr: "invalid pool",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.topo.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
