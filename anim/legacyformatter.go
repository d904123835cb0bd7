package anim

import (
	"fmt"
	"strings"

	"github.com/ankitraut99/Tocino/network"
	"github.com/ankitraut99/Tocino/sim"
)

// legacyFormatter renders events as flat, space-separated lines with
// single-word verbs. There is no nesting, so the open/close pairs of the
// structured form degenerate to one line and an empty close.
type legacyFormatter struct{}

func (legacyFormatter) AnimOpen() string {
	return ""
}

func (legacyFormatter) AnimClose() string {
	return ""
}

func (legacyFormatter) TopologyOpen(b TopoBounds) string {
	return fmt.Sprintf("v %.10f %.10f %.10f %.10f\n",
		b.MinX, b.MinY, b.MaxX, b.MaxY)
}

func (legacyFormatter) TopologyClose() string {
	return ""
}

func (legacyFormatter) Node(id uint32, pos network.Vector, label string) string {
	if label == "" {
		return fmt.Sprintf("n %d %.10f %.10f\n", id, pos.X, pos.Y)
	}
	return fmt.Sprintf("n %d %.10f %.10f %s\n",
		id, pos.X, pos.Y, strings.ReplaceAll(label, "\n", " "))
}

func (legacyFormatter) Link(fromID, toID uint32) string {
	return fmt.Sprintf("l %d %d\n", fromID, toID)
}

func (f legacyFormatter) PositionUpdate(id uint32, pos network.Vector) string {
	return f.Node(id, pos, "")
}

func (legacyFormatter) PacketOpen(fromID uint32, fbTx, lbTx sim.VTimeInSec) string {
	return fmt.Sprintf("p %d %.10f %.10f\n", fromID, fbTx, lbTx)
}

func (legacyFormatter) PacketClose() string {
	return ""
}

func (legacyFormatter) WirelessPacketOpen(
	fromID uint32,
	fbTx, lbTx sim.VTimeInSec,
	signalRange float64,
) string {
	return fmt.Sprintf("wp %d %.10f %.10f %.10f\n",
		fromID, fbTx, lbTx, signalRange)
}

func (legacyFormatter) WirelessPacketClose() string {
	return ""
}

func (legacyFormatter) Rx(toID uint32, fbRx, lbRx sim.VTimeInSec) string {
	return fmt.Sprintf("r %d %.10f %.10f\n", toID, fbRx, lbRx)
}

func (legacyFormatter) Meta(info string) string {
	return fmt.Sprintf("m %s\n", strings.ReplaceAll(info, "\n", " "))
}
