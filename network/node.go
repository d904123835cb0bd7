package network

import (
	"fmt"
	"sort"
)

// A MobilityModel reports the current position of a node.
type MobilityModel interface {
	Position() Vector
}

// ConstantMobility is a MobilityModel that keeps a node at a fixed position
// until SetPosition is called.
type ConstantMobility struct {
	pos Vector
}

// NewConstantMobility creates a ConstantMobility at the given position.
func NewConstantMobility(pos Vector) *ConstantMobility {
	return &ConstantMobility{pos: pos}
}

// Position returns the current position.
func (m *ConstantMobility) Position() Vector {
	return m.pos
}

// SetPosition moves the node to a new position.
func (m *ConstantMobility) SetPosition(pos Vector) {
	m.pos = pos
}

// A Node is a simulated network node. It may own net devices and a mobility
// model.
type Node struct {
	id       uint32
	mobility MobilityModel
	devices  []*NetDevice
}

// NewNode creates a node with the given ID.
func NewNode(id uint32) *Node {
	return &Node{id: id}
}

// ID returns the node ID.
func (n *Node) ID() uint32 {
	return n.id
}

// Mobility returns the mobility model of the node, or nil if the node has
// none.
func (n *Node) Mobility() MobilityModel {
	return n.mobility
}

// SetMobility installs a mobility model on the node.
func (n *Node) SetMobility(m MobilityModel) {
	n.mobility = m
}

// Devices returns the net devices installed on the node.
func (n *Node) Devices() []*NetDevice {
	return n.devices
}

// A NetDevice is a link-layer device installed on a node.
type NetDevice struct {
	node *Node
	addr HWAddr
}

// NewNetDevice creates a device on the given node and registers it with the
// node.
func NewNetDevice(node *Node, addr HWAddr) *NetDevice {
	d := &NetDevice{node: node, addr: addr}
	node.devices = append(node.devices, d)
	return d
}

// Node returns the node that owns the device.
func (d *NetDevice) Node() *Node {
	return d.node
}

// Address returns the hardware address of the device.
func (d *NetDevice) Address() HWAddr {
	return d.addr
}

// A Link is a declared point-to-point connection between two devices,
// recorded for topology output.
type Link struct {
	From *NetDevice
	To   *NetDevice
}

// A NodeList is an owned registry of the nodes and links in a simulation.
// Each run owns its list; there is no package-level registry.
type NodeList struct {
	nodes map[uint32]*Node
	links []Link
}

// NewNodeList creates an empty NodeList.
func NewNodeList() *NodeList {
	return &NodeList{nodes: make(map[uint32]*Node)}
}

// Add registers a node. Adding two nodes with the same ID is a programmer
// error.
func (l *NodeList) Add(n *Node) {
	if _, ok := l.nodes[n.ID()]; ok {
		panic(fmt.Sprintf("node %d already registered", n.ID()))
	}
	l.nodes[n.ID()] = n
}

// Get returns the node with the given ID, or nil.
func (l *NodeList) Get(id uint32) *Node {
	return l.nodes[id]
}

// Len returns the number of registered nodes.
func (l *NodeList) Len() int {
	return len(l.nodes)
}

// AddLink declares a point-to-point link between two devices.
func (l *NodeList) AddLink(from, to *NetDevice) {
	l.links = append(l.links, Link{From: from, To: to})
}

// Links returns the declared links in declaration order.
func (l *NodeList) Links() []Link {
	return l.links
}

// ForEach visits every node in ascending ID order.
func (l *NodeList) ForEach(visit func(n *Node)) {
	ids := make([]uint32, 0, len(l.nodes))
	for id := range l.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		visit(l.nodes[id])
	}
}
