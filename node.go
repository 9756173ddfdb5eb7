package main

import (
	"fmt"

	"github.com/pkg/errors"
)

// nodeBehavior is the per-node configuration behavior selected by the node's
// declared type.
type nodeBehavior interface {
	// BuildNamespace produces the commands that create the node's namespace
	// and any node-internal devices.
	BuildNamespace() []Command

	// ConfigureVeths is called once per link endpoint; implementations act
	// only when name matches their own node.
	ConfigureVeths(name string, port int) []Command

	// ConfigureIP assigns an address, and a default route when gateway is
	// non-empty, to the device backing the given port.
	ConfigureIP(port int, ipAddress, gateway string) ([]Command, error)

	// ConfigureExtra is the node-level post-processing hook.
	ConfigureExtra(node Node) []Command
}

// hostNode is the default behavior: one namespace, directly addressed veths.
type hostNode struct {
	name string
}

func (h *hostNode) BuildNamespace() []Command {
	return buildNamespace(h.name)
}

func (h *hostNode) ConfigureVeths(name string, port int) []Command {
	return nil
}

func (h *hostNode) ConfigureIP(port int, ipAddress, gateway string) ([]Command, error) {
	if ipAddress == "" {
		return nil, nil
	}
	return h.configureDevice(vethName(h.name, port), ipAddress, gateway), nil
}

func (h *hostNode) ConfigureExtra(node Node) []Command {
	return nil
}

func (h *hostNode) configureDevice(device, ipAddress, gateway string) []Command {
	cmds := []Command{netnsExec(h.name, addIP(device, ipAddress))}
	if gateway != "" {
		cmds = append(cmds, netnsExec(h.name, addRoute("default", gateway)))
	}
	return cmds
}

// routerNode adds an internal bridge to which every non-default-port link is
// attached. Port 0 is the router's directly-addressed uplink and stays off
// the bridge.
type routerNode struct {
	hostNode
}

func (r *routerNode) BuildNamespace() []Command {
	br := bridgeName(r.name)
	return append(r.hostNode.BuildNamespace(),
		netnsExec(r.name, forwardIPv4()),
		netnsExec(r.name, addBridge(br)),
		netnsExec(r.name, linkUp(br)),
	)
}

func (r *routerNode) ConfigureVeths(name string, port int) []Command {
	if name != r.name || port == 0 {
		return r.hostNode.ConfigureVeths(name, port)
	}
	return append(r.hostNode.ConfigureVeths(name, port),
		netnsExec(r.name, attachToBridge(vethName(r.name, port), bridgeName(r.name))))
}

func (r *routerNode) ConfigureIP(port int, ipAddress, gateway string) ([]Command, error) {
	if port == 0 {
		return r.hostNode.ConfigureIP(port, ipAddress, gateway)
	}
	if ipAddress == "" {
		return nil, nil
	}
	// Bridged ports share the bridge's address domain, so the address goes
	// on the bridge device, not the individual veth.
	return r.configureDevice(bridgeName(r.name), ipAddress, gateway), nil
}

func (r *routerNode) ConfigureExtra(node Node) []Command {
	var cmds []Command
	for i, port := range node.Ports {
		if port.Masquerade {
			cmds = append(cmds, netnsExec(node.Name, masquerade(vethName(node.Name, i))))
		}
	}
	return cmds
}

// cloudNode behaves like a host but owns a subnet pool; a port declaring no
// static address draws the next block from the pool and takes its first
// host address.
type cloudNode struct {
	hostNode
	alloc *SubnetAllocator
}

func (c *cloudNode) ConfigureIP(port int, ipAddress, gateway string) ([]Command, error) {
	if ipAddress == "" {
		block, err := c.alloc.Next()
		if err != nil {
			return nil, errors.Wrapf(err, "cloud %s port %d", c.name, port)
		}
		ipAddress = fmt.Sprintf("%s/%d", block.Addr().Next(), block.Bits())
	}
	return c.hostNode.ConfigureIP(port, ipAddress, gateway)
}
