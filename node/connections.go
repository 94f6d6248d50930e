package node

// Connections is an insertion-ordered name→Node map. Nodes keep one of
// these for inputs and one for outputs, so fan-out and fan-in order is
// deterministic even though the backing storage is a map.
type Connections struct {
	byName map[string]Node
	order  []string
}

// NewConnections returns an empty, ready-to-use Connections.
func NewConnections() *Connections {
	return &Connections{byName: make(map[string]Node)}
}

// Add registers peer under its own name. Re-adding the same name with the
// same node is idempotent; re-adding the same name with a different node
// replaces it in place without disturbing its position in Order.
func (c *Connections) Add(peer Node) {
	name := peer.Name()
	if _, ok := c.byName[name]; !ok {
		c.order = append(c.order, name)
	}
	c.byName[name] = peer
}

// Get returns the peer registered under name, or nil if absent.
func (c *Connections) Get(name string) Node {
	return c.byName[name]
}

// Len reports how many peers are connected.
func (c *Connections) Len() int {
	return len(c.order)
}

// Order returns peer names in insertion order. The returned slice is a
// copy; mutating it does not affect the Connections.
func (c *Connections) Order() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Each calls fn once per peer, in insertion order.
func (c *Connections) Each(fn func(name string, peer Node)) {
	for _, name := range c.order {
		fn(name, c.byName[name])
	}
}
