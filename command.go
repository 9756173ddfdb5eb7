package main

import "fmt"

// Command is a single primitive network configuration command.
type Command struct {
	Cmd string
}

// netnsExec scopes a namespace-local command to its namespace.
func netnsExec(namespace, cmd string) Command {
	return Command{Cmd: fmt.Sprintf("ip netns exec %s %s", namespace, cmd)}
}

// vethName returns the device name for a node's port.
// Naming must stay stable: anything reading the generated topology
// resolves devices as veth<node><port>.
func vethName(node string, port int) string {
	return fmt.Sprintf("veth%s%d", node, port)
}

// bridgeName returns the internal bridge device name for a router node.
func bridgeName(node string) string {
	return "br" + node
}

// buildNamespace allocates an isolated network namespace.
func buildNamespace(name string) []Command {
	return []Command{{Cmd: fmt.Sprintf("ip netns add %s", name)}}
}

// buildVethPair creates the veth pair for a link, moves each end into its
// owning namespace, and brings both ends up.
func buildVethPair(src, dst Endpoint) []Command {
	srcDev := vethName(src.Name, src.PortNum())
	dstDev := vethName(dst.Name, dst.PortNum())
	return []Command{
		{Cmd: fmt.Sprintf("ip link add %s type veth peer name %s", srcDev, dstDev)},
		{Cmd: fmt.Sprintf("ip link set %s netns %s", srcDev, src.Name)},
		{Cmd: fmt.Sprintf("ip link set %s netns %s", dstDev, dst.Name)},
		netnsExec(src.Name, linkUp(srcDev)),
		netnsExec(dst.Name, linkUp(dstDev)),
	}
}

// cleanNamespace tears down a namespace and everything inside it.
func cleanNamespace(name string) []Command {
	return []Command{{Cmd: fmt.Sprintf("ip netns del %s", name)}}
}

// The remaining emitters produce namespace-local command text; callers wrap
// them with netnsExec for the owning namespace.

func addBridge(name string) string {
	return fmt.Sprintf("ip link add %s type bridge", name)
}

func attachToBridge(device, bridge string) string {
	return fmt.Sprintf("ip link set %s master %s", device, bridge)
}

func linkUp(device string) string {
	return fmt.Sprintf("ip link set %s up", device)
}

func addIP(device, address string) string {
	return fmt.Sprintf("ip addr add %s dev %s", address, device)
}

func addRoute(network, nextHop string) string {
	return fmt.Sprintf("ip route add %s via %s", network, nextHop)
}

func masquerade(device string) string {
	return fmt.Sprintf("iptables -t nat -A POSTROUTING -o %s -j MASQUERADE", device)
}

func forwardIPv4() string {
	return "sysctl -w net.ipv4.ip_forward=1"
}
