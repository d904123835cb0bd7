package anim

import (
	"github.com/ankitraut99/Tocino/network"
	"github.com/ankitraut99/Tocino/sim"
)

// A formatter renders logical animation events into the external trace
// format. Two implementations exist: the structured XML form and the flat
// line-oriented legacy form. Both encode the same events; every open
// produced by a formatter has a matching close.
type formatter interface {
	AnimOpen() string
	AnimClose() string
	TopologyOpen(b TopoBounds) string
	TopologyClose() string
	Node(id uint32, pos network.Vector, label string) string
	Link(fromID, toID uint32) string
	PositionUpdate(id uint32, pos network.Vector) string
	PacketOpen(fromID uint32, fbTx, lbTx sim.VTimeInSec) string
	PacketClose() string
	WirelessPacketOpen(fromID uint32, fbTx, lbTx sim.VTimeInSec, signalRange float64) string
	WirelessPacketClose() string
	Rx(toID uint32, fbRx, lbRx sim.VTimeInSec) string
	Meta(info string) string
}
