package anim

import (
	"fmt"
	"strings"

	"github.com/ankitraut99/Tocino/network"
	"github.com/ankitraut99/Tocino/sim"
)

// xmlFormatter renders events as nested XML elements. Attribute names are
// an implementation choice but stay stable for a run, so the stream can be
// replayed byte-exactly.
type xmlFormatter struct{}

var xmlAttrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
)

func (xmlFormatter) AnimOpen() string {
	return "<anim lp=\"0\">\n"
}

func (xmlFormatter) AnimClose() string {
	return "</anim>\n"
}

func (xmlFormatter) TopologyOpen(b TopoBounds) string {
	return fmt.Sprintf(
		"<topology minX=\"%.10f\" minY=\"%.10f\" maxX=\"%.10f\" maxY=\"%.10f\">\n",
		b.MinX, b.MinY, b.MaxX, b.MaxY)
}

func (xmlFormatter) TopologyClose() string {
	return "</topology>\n"
}

func (xmlFormatter) Node(id uint32, pos network.Vector, label string) string {
	if label == "" {
		return fmt.Sprintf(
			"<node lp=\"0\" id=\"%d\" locX=\"%.10f\" locY=\"%.10f\"/>\n",
			id, pos.X, pos.Y)
	}
	return fmt.Sprintf(
		"<node lp=\"0\" id=\"%d\" locX=\"%.10f\" locY=\"%.10f\" descr=\"%s\"/>\n",
		id, pos.X, pos.Y, xmlAttrEscaper.Replace(label))
}

func (xmlFormatter) Link(fromID, toID uint32) string {
	return fmt.Sprintf(
		"<link fromLp=\"0\" fromId=\"%d\" toLp=\"0\" toId=\"%d\"/>\n",
		fromID, toID)
}

func (f xmlFormatter) PositionUpdate(id uint32, pos network.Vector) string {
	return f.Node(id, pos, "")
}

func (xmlFormatter) PacketOpen(fromID uint32, fbTx, lbTx sim.VTimeInSec) string {
	return fmt.Sprintf(
		"<packet fromLp=\"0\" fromId=\"%d\" fbTx=\"%.10f\" lbTx=\"%.10f\">\n",
		fromID, fbTx, lbTx)
}

func (xmlFormatter) PacketClose() string {
	return "</packet>\n"
}

func (xmlFormatter) WirelessPacketOpen(
	fromID uint32,
	fbTx, lbTx sim.VTimeInSec,
	signalRange float64,
) string {
	return fmt.Sprintf(
		"<wpacket fromLp=\"0\" fromId=\"%d\" fbTx=\"%.10f\" lbTx=\"%.10f\" range=\"%.10f\">\n",
		fromID, fbTx, lbTx, signalRange)
}

func (xmlFormatter) WirelessPacketClose() string {
	return "</wpacket>\n"
}

func (xmlFormatter) Rx(toID uint32, fbRx, lbRx sim.VTimeInSec) string {
	return fmt.Sprintf(
		"<rx toLp=\"0\" toId=\"%d\" fbRx=\"%.10f\" lbRx=\"%.10f\"/>\n",
		toID, fbRx, lbRx)
}

func (xmlFormatter) Meta(info string) string {
	return fmt.Sprintf("<meta info=\"%s\"/>\n", xmlAttrEscaper.Replace(info))
}
