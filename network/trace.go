package network

import "github.com/ankitraut99/Tocino/sim"

// Trace hook positions. Device models invoke these named notification
// points on the run's TraceSource; observers hook onto the source and
// dispatch on the position.
var (
	HookPosWifiPhyTxBegin = &sim.HookPos{Name: "WifiPhyTxBegin"}
	HookPosWifiPhyRxBegin = &sim.HookPos{Name: "WifiPhyRxBegin"}
	HookPosWifiMacRx      = &sim.HookPos{Name: "WifiMacRx"}
	HookPosWimaxTx        = &sim.HookPos{Name: "WimaxTx"}
	HookPosWimaxRx        = &sim.HookPos{Name: "WimaxRx"}
	HookPosLteTx          = &sim.HookPos{Name: "LteTx"}
	HookPosLteRx          = &sim.HookPos{Name: "LteRx"}
	HookPosCsmaPhyTxBegin = &sim.HookPos{Name: "CsmaPhyTxBegin"}
	HookPosCsmaPhyRxEnd   = &sim.HookPos{Name: "CsmaPhyRxEnd"}
	HookPosDevTx          = &sim.HookPos{Name: "DevTx"}

	HookPosCourseChange = &sim.HookPos{Name: "MobilityCourseChange"}
)

// A TxNotification describes a packet leaving a device.
type TxNotification struct {
	Context string
	Packet  *Packet
	Device  *NetDevice

	// First and last bit transmit times. Devices that do not model
	// serialization delay report the same value for both.
	FirstBitTxTime sim.VTimeInSec
	LastBitTxTime  sim.VTimeInSec

	// WifiRange is the signal range of a wireless transmission, in the
	// coordinate units of the topology. Zero for non-wireless devices.
	WifiRange float64

	// ExpectedReceivers is the number of receivers a fan-out transmission
	// expects to reach. Zero means unknown; the pending record then stays
	// until purged.
	ExpectedReceivers int
}

// An RxNotification describes a packet arriving at a device.
type RxNotification struct {
	Context string
	Packet  *Packet
	Device  *NetDevice

	FirstBitRxTime sim.VTimeInSec
	LastBitRxTime  sim.VTimeInSec
}

// A CourseChangeNotification announces that a node's mobility model
// changed course, so its position can be refreshed without waiting for the
// next poll.
type CourseChangeNotification struct {
	Node *Node
}

// A DevTxNotification describes a point-to-point transmission where both
// endpoints and both times are known at once.
type DevTxNotification struct {
	Context  string
	Packet   *Packet
	TxDevice *NetDevice
	RxDevice *NetDevice
	TxTime   sim.VTimeInSec
	RxTime   sim.VTimeInSec
}

// A TraceSource is the notification hub of a run. Device models publish
// transmit/receive notifications through it; observers subscribe by
// hooking onto it.
type TraceSource struct {
	sim.HookableBase
}

// NewTraceSource creates a TraceSource.
func NewTraceSource() *TraceSource {
	return &TraceSource{}
}

// Notify publishes a notification at the given hook position.
func (s *TraceSource) Notify(pos *sim.HookPos, item interface{}) {
	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   item,
	})
}
