package main

// behaviorFactory constructs the behavior variant for a node.
type behaviorFactory func(Node) (nodeBehavior, error)

func newHostNode(n Node) (nodeBehavior, error) {
	return &hostNode{name: n.Name}, nil
}

func newRouterNode(n Node) (nodeBehavior, error) {
	return &routerNode{hostNode{name: n.Name}}, nil
}

func newCloudNode(n Node) (nodeBehavior, error) {
	pool := n.Pool
	if pool == nil {
		pool = &Pool{Network: DefaultPoolNetwork, PrefixIncrement: DefaultPoolPrefixIncrement}
	}
	alloc, err := NewSubnetAllocator(pool.Network, pool.PrefixIncrement)
	if err != nil {
		return nil, err
	}
	return &cloudNode{hostNode: hostNode{name: n.Name}, alloc: alloc}, nil
}

// defaultBehaviors maps a node's declared type to its behavior variant.
func defaultBehaviors() map[string]behaviorFactory {
	return map[string]behaviorFactory{
		"host":   newHostNode,
		"router": newRouterNode,
		"cloud":  newCloudNode,
	}
}

// Compiler turns a validated topology into ordered setup and cleanup
// command sequences.
type Compiler struct {
	topo      *Topology
	behaviors []nodeBehavior // parallel to topo.Nodes
}

// NewCompiler instantiates the per-node behaviors through the given dispatch
// table; pass nil for the default table. Types absent from the table fall
// back to the host variant, so a minimally-described node stays valid.
func NewCompiler(topo *Topology, table map[string]behaviorFactory) (*Compiler, error) {
	if table == nil {
		table = defaultBehaviors()
	}

	behaviors := make([]nodeBehavior, 0, len(topo.Nodes))
	for _, node := range topo.Nodes {
		factory, ok := table[node.Type]
		if !ok {
			factory = newHostNode
		}
		b, err := factory(node)
		if err != nil {
			return nil, err
		}
		behaviors = append(behaviors, b)
	}
	return &Compiler{topo: topo, behaviors: behaviors}, nil
}

// Compile produces the setup sequence. Phases are fixed and never
// interleaved: namespaces exist before veths are moved into them, veths
// exist before they are bridged, and bridges exist before the addressing
// phase may target them.
func (c *Compiler) Compile() ([]Command, error) {
	var script []Command

	for _, b := range c.behaviors {
		script = append(script, b.BuildNamespace()...)
	}

	for _, link := range c.topo.Links {
		script = append(script, buildVethPair(link.Source, link.Destination)...)
	}

	// Each node filters endpoint calls to itself, so the call site stays
	// node-agnostic; source and destination sides run as separate passes.
	for _, link := range c.topo.Links {
		for _, b := range c.behaviors {
			script = append(script, b.ConfigureVeths(link.Source.Name, link.Source.PortNum())...)
		}
	}
	for _, link := range c.topo.Links {
		for _, b := range c.behaviors {
			script = append(script, b.ConfigureVeths(link.Destination.Name, link.Destination.PortNum())...)
		}
	}

	for i, node := range c.topo.Nodes {
		for portIdx, port := range node.Ports {
			cmds, err := c.behaviors[i].ConfigureIP(portIdx, port.IPAddress, port.Gateway)
			if err != nil {
				return nil, err
			}
			script = append(script, cmds...)
		}
	}

	for i, node := range c.topo.Nodes {
		script = append(script, c.behaviors[i].ConfigureExtra(node)...)
	}
	return script, nil
}

// Cleanup produces the teardown sequence: one namespace delete per node, in
// declared order. Deleting a namespace removes everything inside it, so no
// per-device teardown is needed.
func (c *Compiler) Cleanup() []Command {
	var script []Command
	for _, node := range c.topo.Nodes {
		script = append(script, cleanNamespace(node.Name)...)
	}
	return script
}
