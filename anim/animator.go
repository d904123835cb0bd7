package anim

import (
	"github.com/ankitraut99/Tocino/network"
	"github.com/ankitraut99/Tocino/recording"
	"github.com/ankitraut99/Tocino/sim"
	"github.com/ankitraut99/Tocino/sink"
)

// recorderTableName is the table animation events are mirrored into when a
// recorder is attached.
const recorderTableName = "anim_events"

// animEventEntry is the row shape for mirrored animation events.
type animEventEntry struct {
	Kind     string
	TimeSec  float64
	FromNode int64
	ToNode   int64
	UID      int64
	Info     string
}

// An Animator correlates transmit and receive notifications from a running
// simulation and records an ordered animation trace through its output
// sink. It subscribes to the run's trace source as a hook and runs a
// periodic position poll as an event handler; all work happens
// synchronously inside those callbacks.
//
// The invariant throughout is mutate-then-emit: correlation tables and
// position caches are updated before any bytes are written, so a failed or
// gated write never leaves the tables inconsistent with the stream.
type Animator struct {
	driver EventDriver
	nodes  *network.NodeList

	formatter formatter
	tagger    *Tagger
	tables    [numTechnologies]*pendingTable
	tracker   *positionTracker
	session   *outputSession
	window    timeWindow

	descriptions map[uint32]string
	recorder     recording.Recorder

	outputPath     string
	listenPort     uint16
	customSink     sink.Sink
	maxPktsPerFile uint64
	pollInterval   sim.VTimeInSec
	purgeMaxAge    sim.VTimeInSec
	metadata       bool
	showAll        bool

	started         bool
	wroteWirelessRx bool
}

// An EventDriver is the narrow surface the animator needs from the
// simulation engine: the current simulated time and the ability to
// schedule the recurring position poll.
type EventDriver interface {
	sim.TimeTeller
	sim.EventScheduler
}

// pollEvent triggers one position poll and pending-table purge.
type pollEvent struct {
	sim.EventBase
}

// Start opens the output sink and writes the topology preamble. With a
// socket destination this blocks until a peer connects. A sink that fails
// to open makes recording a permanent no-op for this run; the error is
// returned and stays queryable through Err, but the simulation itself is
// not disturbed.
func (a *Animator) Start() error {
	if a.started {
		return nil
	}

	s, err := a.openSink()
	if err != nil {
		a.session.err = err
		return err
	}
	a.session.sink = s

	a.writePreamble()

	a.started = true
	a.schedulePoll(a.driver.CurrentTime() + a.pollInterval)

	return nil
}

func (a *Animator) openSink() (sink.Sink, error) {
	switch {
	case a.customSink != nil:
		return a.customSink, nil
	case a.outputPath != "":
		a.session.basePath = a.outputPath
		return sink.NewFileSink(a.outputPath)
	default:
		return sink.NewSocketSink(a.listenPort)
	}
}

// Stop finishes the trace and closes the sink. If the run ended before any
// wireless reception, a synthetic no-op packet is written first so that
// the stream is never structurally empty. Stop is idempotent; callbacks
// arriving afterwards still update tables but write nothing.
func (a *Animator) Stop() {
	if a.session.ok() {
		if !a.wroteWirelessRx {
			a.writeDummyPacket()
		}
		a.session.write(a.formatter.AnimClose())
	}

	a.session.close()
	a.started = false
}

// Started reports whether the animator is actively recording.
func (a *Animator) Started() bool {
	return a.started
}

// Err returns the first sink error, or nil. Recording is a no-op once this
// is non-nil.
func (a *Animator) Err() error {
	return a.session.err
}

// TracePacketCount returns the number of packet events written to the
// current trace file.
func (a *Animator) TracePacketCount() uint64 {
	return a.session.filePkts
}

// TotalPacketCount returns the number of packet events written across all
// trace files of the run.
func (a *Animator) TotalPacketCount() uint64 {
	return a.session.totalPkts
}

// PendingCounts returns the number of pending transmit records per
// technology.
func (a *Animator) PendingCounts() map[string]int {
	counts := make(map[string]int, len(a.tables))
	for tech, table := range a.tables {
		counts[Technology(tech).String()] = table.Len()
	}
	return counts
}

// IsPending reports whether a transmit record is pending for the identity
// in the given technology table.
func (a *Animator) IsPending(tech Technology, uid uint64) bool {
	return a.tables[tech].IsPending(uid)
}

// Bounds returns the current topology bounds, before margin.
func (a *Animator) Bounds() TopoBounds {
	return a.tracker.bounds
}

// SetNodeDescription sets the free-text label of a node. The label is read
// when the node is declared in the output.
func (a *Animator) SetNodeDescription(id uint32, descr string) {
	a.descriptions[id] = descr
}

// Func dispatches trace-source notifications to the per-technology
// handlers. It implements sim.Hook.
func (a *Animator) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case network.HookPosWifiPhyTxBegin:
		a.recordTx(TechWifi, ctx.Item.(network.TxNotification))
	case network.HookPosWifiPhyRxBegin:
		// In show-all mode every frame the phy sees is recorded,
		// including chatty control traffic; the mac-accepted point is
		// then ignored to avoid double counting.
		if a.showAll {
			a.recordRx(TechWifi, ctx.Item.(network.RxNotification), true)
		}
	case network.HookPosWifiMacRx:
		if !a.showAll {
			a.recordRx(TechWifi, ctx.Item.(network.RxNotification), true)
		}
	case network.HookPosWimaxTx:
		a.recordTx(TechWimax, ctx.Item.(network.TxNotification))
	case network.HookPosWimaxRx:
		a.recordRx(TechWimax, ctx.Item.(network.RxNotification), true)
	case network.HookPosLteTx:
		a.recordTx(TechLte, ctx.Item.(network.TxNotification))
	case network.HookPosLteRx:
		a.recordRx(TechLte, ctx.Item.(network.RxNotification), true)
	case network.HookPosCsmaPhyTxBegin:
		a.recordTx(TechCsma, ctx.Item.(network.TxNotification))
	case network.HookPosCsmaPhyRxEnd:
		a.recordRx(TechCsma, ctx.Item.(network.RxNotification), false)
	case network.HookPosDevTx:
		a.devTx(ctx.Item.(network.DevTxNotification))
	case network.HookPosCourseChange:
		a.courseChange(ctx.Item.(network.CourseChangeNotification))
	}
}

// courseChange refreshes one node's position immediately instead of
// waiting for the next poll tick.
func (a *Animator) courseChange(n network.CourseChangeNotification) {
	pos, changed, known := a.tracker.update(n.Node)
	if !changed || !known {
		return
	}

	now := a.driver.CurrentTime()
	if !a.shouldEmit(now) {
		return
	}

	a.session.write(a.formatter.PositionUpdate(n.Node.ID(), pos))
	a.mirror("position", now, int64(n.Node.ID()), -1, -1, "")
}

// Handle runs the periodic poll. It implements sim.Handler.
func (a *Animator) Handle(e sim.Event) error {
	if _, ok := e.(*pollEvent); ok {
		a.poll()
	}
	return nil
}

func (a *Animator) schedulePoll(t sim.VTimeInSec) {
	evt := &pollEvent{EventBase: sim.MakeEventBase(t, a)}
	a.driver.Schedule(evt)
}

func (a *Animator) poll() {
	now := a.driver.CurrentTime()

	for _, table := range a.tables {
		table.Purge(now, a.purgeMaxAge)
	}

	a.pollPositions(now)

	if a.started {
		a.schedulePoll(now + a.pollInterval)
	}
}

func (a *Animator) pollPositions(now sim.VTimeInSec) {
	a.nodes.ForEach(func(n *network.Node) {
		pos, changed, known := a.tracker.update(n)
		if !changed || !known {
			return
		}
		if !a.shouldEmit(now) {
			return
		}

		a.session.write(a.formatter.PositionUpdate(n.ID(), pos))
		a.mirror("position", now, int64(n.ID()), -1, -1, "")
	})
}

func (a *Animator) recordTx(tech Technology, n network.TxNotification) {
	// Purge on the record path as well as on the poll, so the table stays
	// bounded even when no poll is running (failed sink open, stopped run).
	a.tables[tech].Purge(a.driver.CurrentTime(), a.purgeMaxAge)

	uid := a.tagger.Tag(n.Packet)

	rec := PendingTx{
		FromNodeID:     n.Device.Node().ID(),
		FirstBitTxTime: n.FirstBitTxTime,
		LastBitTxTime:  n.LastBitTxTime,
		WifiRange:      n.WifiRange,
	}
	a.tables[tech].RecordTx(uid, rec, n.ExpectedReceivers)

	a.tracker.update(n.Device.Node())
}

func (a *Animator) recordRx(
	tech Technology,
	n network.RxNotification,
	wireless bool,
) {
	a.tables[tech].Purge(a.driver.CurrentTime(), a.purgeMaxAge)

	uid, tagged := a.tagger.Peek(n.Packet)

	var rec PendingTx
	matched := false
	if tagged {
		rec, matched = a.tables[tech].RecordRx(uid)
	}

	toID := n.Device.Node().ID()
	a.tracker.update(n.Device.Node())

	if !matched {
		// No prior transmit observed (never tagged, dropped, or purged).
		// The receive fact is still serialized, with the transmit side
		// degraded to the receiver's own view.
		rec = PendingTx{
			FromNodeID:     toID,
			FirstBitTxTime: n.FirstBitRxTime,
			LastBitTxTime:  n.LastBitRxTime,
		}
	}

	a.emitPacket(rec, toID, n, wireless, int64(uid))
}

func (a *Animator) emitPacket(
	rec PendingTx,
	toID uint32,
	n network.RxNotification,
	wireless bool,
	uid int64,
) {
	now := a.driver.CurrentTime()
	if !a.shouldEmit(now) {
		return
	}

	kind := "packet"
	if wireless {
		kind = "wpacket"
		a.session.write(a.formatter.WirelessPacketOpen(
			rec.FromNodeID, rec.FirstBitTxTime, rec.LastBitTxTime,
			rec.WifiRange))
	} else {
		a.session.write(a.formatter.PacketOpen(
			rec.FromNodeID, rec.FirstBitTxTime, rec.LastBitTxTime))
	}

	info := ""
	if a.metadata {
		info = n.Packet.String()
		a.session.write(a.formatter.Meta(info))
	}

	a.session.write(a.formatter.Rx(toID, n.FirstBitRxTime, n.LastBitRxTime))

	if wireless {
		a.session.write(a.formatter.WirelessPacketClose())
		a.wroteWirelessRx = true
	} else {
		a.session.write(a.formatter.PacketClose())
	}

	a.mirror(kind, now, int64(rec.FromNodeID), int64(toID), uid, info)
	a.countPacketAndMaybeRotate()
}

func (a *Animator) devTx(n network.DevTxNotification) {
	// Tag so the identity stays stable across later hops.
	uid := a.tagger.Tag(n.Packet)

	fromID := n.TxDevice.Node().ID()
	toID := n.RxDevice.Node().ID()
	a.tracker.update(n.TxDevice.Node())
	a.tracker.update(n.RxDevice.Node())

	now := a.driver.CurrentTime()
	if !a.shouldEmit(now) {
		return
	}

	a.session.write(a.formatter.PacketOpen(fromID, n.TxTime, n.TxTime))

	info := ""
	if a.metadata {
		info = n.Packet.String()
		a.session.write(a.formatter.Meta(info))
	}

	a.session.write(a.formatter.Rx(toID, n.RxTime, n.RxTime))
	a.session.write(a.formatter.PacketClose())

	a.mirror("packet", now, int64(fromID), int64(toID), int64(uid), info)
	a.countPacketAndMaybeRotate()
}

func (a *Animator) shouldEmit(t sim.VTimeInSec) bool {
	return a.started && a.window.ShouldRecord(t) && a.session.ok()
}

func (a *Animator) countPacketAndMaybeRotate() {
	if !a.session.countPacket(a.maxPktsPerFile) {
		return
	}

	a.session.write(a.formatter.AnimClose())
	a.session.rotate()
	if a.session.ok() {
		a.writePreamble()
	}
}

// writePreamble declares the topology, nodes, and links. Each trace file
// starts with the preamble so that rotated files stand alone.
func (a *Animator) writePreamble() {
	// Make sure every node has an observed position before the bounds
	// are computed.
	type nodeDecl struct {
		id    uint32
		pos   network.Vector
		known bool
	}
	decls := []nodeDecl{}
	a.nodes.ForEach(func(n *network.Node) {
		pos, _, known := a.tracker.update(n)
		decls = append(decls, nodeDecl{id: n.ID(), pos: pos, known: known})
	})

	a.session.write(a.formatter.AnimOpen())
	a.session.write(a.formatter.TopologyOpen(a.tracker.bounds.WithMargin()))
	for _, d := range decls {
		if !d.known {
			// Without a position (no mobility model, synthesis off) the
			// node is omitted until it acquires one.
			continue
		}
		a.session.write(a.formatter.Node(d.id, d.pos, a.descriptions[d.id]))
	}
	a.session.write(a.formatter.TopologyClose())

	for _, link := range a.nodes.Links() {
		a.session.write(a.formatter.Link(
			link.From.Node().ID(), link.To.Node().ID()))
	}
}

// writeDummyPacket writes a synthetic no-op wireless packet so that a run
// without any wireless reception still produces a structurally complete
// stream.
func (a *Animator) writeDummyPacket() {
	a.session.write(a.formatter.WirelessPacketOpen(0, 0, 0, 0))
	a.session.write(a.formatter.Rx(0, 0, 0))
	a.session.write(a.formatter.WirelessPacketClose())
	a.wroteWirelessRx = true
}

func (a *Animator) mirror(
	kind string,
	t sim.VTimeInSec,
	from, to, uid int64,
	info string,
) {
	if a.recorder == nil {
		return
	}

	a.recorder.InsertData(recorderTableName, animEventEntry{
		Kind:     kind,
		TimeSec:  float64(t),
		FromNode: from,
		ToNode:   to,
		UID:      uid,
		Info:     info,
	})
}
