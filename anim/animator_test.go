package anim

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/ankitraut99/Tocino/network"
	"github.com/ankitraut99/Tocino/sim"
)

type memSink struct {
	buf     bytes.Buffer
	failing bool
	closed  int
}

func (s *memSink) Write(p []byte) (int, error) {
	if s.failing {
		return 0, errors.New("sink broken")
	}
	return s.buf.Write(p)
}

func (s *memSink) Close() error {
	s.closed++
	return nil
}

var _ = Describe("Animator", func() {
	var (
		ctrl   *gomock.Controller
		driver *MockEventDriver
		nodes  *network.NodeList
		source *network.TraceSource
		out    *memSink
		now    sim.VTimeInSec

		devA, devB, devC *network.NetDevice
	)

	addNode := func(id uint32, x, y float64) *network.NetDevice {
		n := network.NewNode(id)
		n.SetMobility(network.NewConstantMobility(network.Vector{X: x, Y: y}))
		nodes.Add(n)
		return network.NewNetDevice(n, network.HWAddr{0, 0, 0, 0, 0, byte(id)})
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		driver = NewMockEventDriver(ctrl)
		now = 0
		driver.EXPECT().CurrentTime().
			DoAndReturn(func() sim.VTimeInSec { return now }).
			AnyTimes()
		driver.EXPECT().Schedule(gomock.Any()).AnyTimes()

		nodes = network.NewNodeList()
		source = network.NewTraceSource()
		out = &memSink{}

		devA = addNode(1, 0, 0)
		devB = addNode(2, 10, 10)
		devC = addNode(3, 20, 0)
	})

	baseBuilder := func() Builder {
		return MakeBuilder().
			WithEventDriver(driver).
			WithNodeList(nodes).
			WithTraceSource(source).
			WithSink(out)
	}

	wifiTx := func(
		p *network.Packet,
		dev *network.NetDevice,
		t sim.VTimeInSec,
		expected int,
	) {
		now = t
		source.Notify(network.HookPosWifiPhyTxBegin, network.TxNotification{
			Packet:            p,
			Device:            dev,
			FirstBitTxTime:    t,
			LastBitTxTime:     t + 0.0005,
			WifiRange:         250,
			ExpectedReceivers: expected,
		})
	}

	wifiRx := func(p *network.Packet, dev *network.NetDevice, t sim.VTimeInSec) {
		now = t
		source.Notify(network.HookPosWifiMacRx, network.RxNotification{
			Packet:         p,
			Device:         dev,
			FirstBitRxTime: t,
			LastBitRxTime:  t + 0.0005,
		})
	}

	csmaTx := func(p *network.Packet, dev *network.NetDevice, t sim.VTimeInSec) {
		now = t
		source.Notify(network.HookPosCsmaPhyTxBegin, network.TxNotification{
			Packet:            p,
			Device:            dev,
			FirstBitTxTime:    t,
			LastBitTxTime:     t,
			ExpectedReceivers: 1,
		})
	}

	csmaRx := func(p *network.Packet, dev *network.NetDevice, t sim.VTimeInSec) {
		now = t
		source.Notify(network.HookPosCsmaPhyRxEnd, network.RxNotification{
			Packet:         p,
			Device:         dev,
			FirstBitRxTime: t,
			LastBitRxTime:  t,
		})
	}

	poll := func(a *Animator, t sim.VTimeInSec) {
		now = t
		err := a.Handle(&pollEvent{EventBase: sim.MakeEventBase(t, a)})
		Expect(err).To(BeNil())
	}

	It("should trace a unicast wireless exchange end to end", func() {
		a := baseBuilder().WithTimeWindow(0, 10).Build()
		Expect(a.Start()).To(Succeed())

		p := network.NewPacket(100)
		wifiTx(p, devA, 1.0, 1)
		wifiRx(p, devB, 1.2)
		a.Stop()

		s := out.buf.String()
		Expect(strings.Count(s, "<wpacket ")).To(Equal(1))
		Expect(s).To(ContainSubstring(
			"<wpacket fromLp=\"0\" fromId=\"1\" fbTx=\"1.0000000000\""))
		Expect(s).To(ContainSubstring(
			"<rx toLp=\"0\" toId=\"2\" fbRx=\"1.2000000000\""))
		Expect(s).To(HaveSuffix("</anim>\n"))

		Expect(a.IsPending(TechWifi, 1)).To(BeFalse())
		Expect(a.Bounds()).To(Equal(
			TopoBounds{MinX: 0, MinY: 0, MaxX: 20, MaxY: 10}))
		Expect(a.TotalPacketCount()).To(Equal(uint64(1)))
	})

	It("should declare all nodes and the topology in the preamble", func() {
		a := baseBuilder().
			WithNodeDescription(1, "gateway").
			Build()
		Expect(a.Start()).To(Succeed())

		s := out.buf.String()
		Expect(s).To(HavePrefix("<anim lp=\"0\">\n<topology "))
		Expect(strings.Count(s, "<node ")).To(Equal(3))
		Expect(s).To(ContainSubstring("id=\"1\""))
		Expect(s).To(ContainSubstring("descr=\"gateway\""))

		// Observed extent 20x10, padded by a tenth on each side.
		Expect(s).To(ContainSubstring(
			"<topology minX=\"-2.0000000000\" minY=\"-1.0000000000\" " +
				"maxX=\"22.0000000000\" maxY=\"11.0000000000\">"))
	})

	It("should keep a fan-out record until every receiver reports", func() {
		a := baseBuilder().Build()
		Expect(a.Start()).To(Succeed())

		p := network.NewPacket(100)
		wifiTx(p, devA, 1.0, 3)
		wifiRx(p, devB, 1.1)
		wifiRx(p, devC, 1.2)

		Expect(a.IsPending(TechWifi, 1)).To(BeTrue())
		Expect(strings.Count(out.buf.String(), "<wpacket ")).To(Equal(2))
	})

	It("should purge stale records and degrade late receives", func() {
		a := baseBuilder().Build()
		Expect(a.Start()).To(Succeed())

		p := network.NewPacket(100)
		wifiTx(p, devA, 1.0, 3)
		wifiRx(p, devB, 1.1)
		wifiRx(p, devC, 1.2)

		// 5.5s after transmit, past the 5s purge age.
		poll(a, 6.5)
		Expect(a.IsPending(TechWifi, 1)).To(BeFalse())

		wifiRx(p, devB, 7.0)

		s := out.buf.String()
		Expect(strings.Count(s, "<wpacket ")).To(Equal(3))
		// The transmit side is degraded to the receiver's own view.
		Expect(s).To(ContainSubstring(
			"<wpacket fromLp=\"0\" fromId=\"2\" fbTx=\"7.0000000000\""))
	})

	It("should correlate outside the window but emit only inside", func() {
		a := baseBuilder().WithTimeWindow(2, 10).Build()
		Expect(a.Start()).To(Succeed())

		p1 := network.NewPacket(100)
		wifiTx(p1, devA, 1.0, 1)
		wifiRx(p1, devB, 1.5)

		Expect(a.IsPending(TechWifi, 1)).To(BeFalse())
		Expect(out.buf.String()).NotTo(ContainSubstring("<wpacket "))

		p2 := network.NewPacket(100)
		wifiTx(p2, devA, 1.8, 1)
		wifiRx(p2, devB, 2.5)

		s := out.buf.String()
		Expect(strings.Count(s, "<wpacket ")).To(Equal(1))
		// Transmit metadata from outside the window survives.
		Expect(s).To(ContainSubstring("fbTx=\"1.8000000000\""))
	})

	It("should rotate trace files at the packet ceiling", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "trace.xml")

		a := MakeBuilder().
			WithEventDriver(driver).
			WithNodeList(nodes).
			WithTraceSource(source).
			WithOutputFile(path).
			WithMaxPktsPerFile(2).
			Build()
		Expect(a.Start()).To(Succeed())

		for i := 0; i < 3; i++ {
			p := network.NewPacket(100)
			csmaTx(p, devA, sim.VTimeInSec(1+i))
			csmaRx(p, devB, sim.VTimeInSec(1.5+float64(i)))
		}

		Expect(a.TracePacketCount()).To(Equal(uint64(1)))
		Expect(a.TotalPacketCount()).To(Equal(uint64(3)))
		a.Stop()

		first, err := os.ReadFile(path)
		Expect(err).To(BeNil())
		Expect(strings.Count(string(first), "<packet ")).To(Equal(2))
		Expect(string(first)).To(HaveSuffix("</anim>\n"))

		second, err := os.ReadFile(path + "-1")
		Expect(err).To(BeNil())
		Expect(string(second)).To(HavePrefix("<anim "))
		Expect(strings.Count(string(second), "<packet ")).To(Equal(1))
		Expect(string(second)).To(HaveSuffix("</anim>\n"))
	})

	It("should write a dummy wireless packet for an idle run", func() {
		a := baseBuilder().Build()
		Expect(a.Start()).To(Succeed())
		a.Stop()

		s := out.buf.String()
		Expect(s).To(ContainSubstring(
			"<wpacket fromLp=\"0\" fromId=\"0\" fbTx=\"0.0000000000\""))
		Expect(s).To(ContainSubstring("<rx toLp=\"0\" toId=\"0\""))
	})

	It("should stop exactly once", func() {
		a := baseBuilder().Build()
		Expect(a.Start()).To(Succeed())

		a.Stop()
		a.Stop()

		Expect(out.closed).To(Equal(1))
		Expect(strings.Count(out.buf.String(), "</anim>")).To(Equal(1))
	})

	It("should turn recording into a no-op after a sink failure", func() {
		out.failing = true
		a := baseBuilder().Build()

		a.Start()
		Expect(a.Err()).To(HaveOccurred())

		p := network.NewPacket(100)
		wifiTx(p, devA, 1.0, 1)
		wifiRx(p, devB, 1.2)
		poll(a, 1.5)
		a.Stop()

		Expect(a.TotalPacketCount()).To(Equal(uint64(0)))
		Expect(a.IsPending(TechWifi, 1)).To(BeFalse())
	})

	It("should emit position updates only for nodes that moved", func() {
		a := baseBuilder().Build()
		Expect(a.Start()).To(Succeed())
		preamble := strings.Count(out.buf.String(), "<node ")

		devA.Node().Mobility().(*network.ConstantMobility).
			SetPosition(network.Vector{X: 50, Y: 50})
		poll(a, 0.25)

		s := out.buf.String()
		Expect(strings.Count(s, "<node ")).To(Equal(preamble + 1))
		Expect(s).To(ContainSubstring("locX=\"50.0000000000\""))
	})

	It("should bound the pending tables when no poll is running", func() {
		path := filepath.Join(GinkgoT().TempDir(), "no", "such", "trace.xml")
		a := MakeBuilder().
			WithEventDriver(driver).
			WithNodeList(nodes).
			WithTraceSource(source).
			WithOutputFile(path).
			Build()
		Expect(a.Start()).NotTo(Succeed())

		for i := 0; i < 100; i++ {
			p := network.NewPacket(100)
			wifiTx(p, devA, sim.VTimeInSec(i), 1)
		}

		// With a 5s purge age only the transmits of the last five seconds
		// plus the newest one can remain.
		Expect(a.PendingCounts()["wifi"]).To(Equal(6))
		Expect(a.IsPending(TechWifi, 1)).To(BeFalse())
	})

	It("should purge on the receive path without waiting for a poll", func() {
		a := baseBuilder().Build()
		Expect(a.Start()).To(Succeed())

		p := network.NewPacket(100)
		wifiTx(p, devA, 1.0, 3)

		wifiRx(p, devB, 100.0)

		s := out.buf.String()
		Expect(s).To(ContainSubstring(
			"<wpacket fromLp=\"0\" fromId=\"2\" fbTx=\"100.0000000000\""))
		Expect(a.PendingCounts()["wifi"]).To(Equal(0))
	})

	It("should emit a position update on a course change", func() {
		a := baseBuilder().Build()
		Expect(a.Start()).To(Succeed())
		preamble := strings.Count(out.buf.String(), "<node ")

		m := devB.Node().Mobility().(*network.ConstantMobility)
		m.SetPosition(network.Vector{X: 30, Y: 40})
		now = 0.1
		source.Notify(network.HookPosCourseChange,
			network.CourseChangeNotification{Node: devB.Node()})

		// An unmoved node announcing a course change stays silent.
		source.Notify(network.HookPosCourseChange,
			network.CourseChangeNotification{Node: devA.Node()})

		s := out.buf.String()
		Expect(strings.Count(s, "<node ")).To(Equal(preamble + 1))
		Expect(s).To(ContainSubstring("locX=\"30.0000000000\""))
		Expect(a.Bounds().MaxY).To(Equal(40.0))
	})

	It("should include packet metadata when enabled", func() {
		a := baseBuilder().WithPacketMetadata().Build()
		Expect(a.Start()).To(Succeed())

		p := network.NewPacket(100)
		p.AddHeader("UDP")
		p.AddHeader("IPv4")
		wifiTx(p, devA, 1.0, 1)
		wifiRx(p, devB, 1.2)

		Expect(out.buf.String()).To(ContainSubstring(
			"<meta info=\"UDP/IPv4 (100 bytes)\"/>"))
	})

	It("should record phy frames instead of mac frames in show-all mode", func() {
		a := baseBuilder().WithShowAllFrames().Build()
		Expect(a.Start()).To(Succeed())

		p := network.NewPacket(100)
		wifiTx(p, devA, 1.0, 1)
		now = 1.1
		source.Notify(network.HookPosWifiPhyRxBegin, network.RxNotification{
			Packet:         p,
			Device:         devB,
			FirstBitRxTime: 1.1,
			LastBitRxTime:  1.1,
		})
		wifiRx(p, devB, 1.2)

		Expect(strings.Count(out.buf.String(), "<wpacket ")).To(Equal(1))
		Expect(out.buf.String()).To(ContainSubstring("fbRx=\"1.1000000000\""))
	})

	It("should ignore phy frames outside show-all mode", func() {
		a := baseBuilder().Build()
		Expect(a.Start()).To(Succeed())

		p := network.NewPacket(100)
		wifiTx(p, devA, 1.0, 1)
		now = 1.1
		source.Notify(network.HookPosWifiPhyRxBegin, network.RxNotification{
			Packet:         p,
			Device:         devB,
			FirstBitRxTime: 1.1,
			LastBitRxTime:  1.1,
		})

		Expect(out.buf.String()).NotTo(ContainSubstring("<wpacket "))
		Expect(a.IsPending(TechWifi, 1)).To(BeTrue())
	})

	It("should trace point-to-point transmissions and declared links", func() {
		nodes.AddLink(devA, devB)
		a := baseBuilder().Build()
		Expect(a.Start()).To(Succeed())

		now = 1.0
		source.Notify(network.HookPosDevTx, network.DevTxNotification{
			Packet:   network.NewPacket(100),
			TxDevice: devA,
			RxDevice: devB,
			TxTime:   1.0,
			RxTime:   1.05,
		})

		s := out.buf.String()
		Expect(s).To(ContainSubstring(
			"<link fromLp=\"0\" fromId=\"1\" toLp=\"0\" toId=\"2\"/>"))
		Expect(s).To(ContainSubstring(
			"<packet fromLp=\"0\" fromId=\"1\" fbTx=\"1.0000000000\""))
		Expect(s).To(ContainSubstring(
			"<rx toLp=\"0\" toId=\"2\" fbRx=\"1.0500000000\""))
	})

	It("should write flat lines in the legacy format", func() {
		a := baseBuilder().WithLegacyFormat().Build()
		Expect(a.Start()).To(Succeed())

		p := network.NewPacket(100)
		csmaTx(p, devA, 1.0)
		csmaRx(p, devB, 1.5)
		a.Stop()

		s := out.buf.String()
		Expect(s).To(HavePrefix("v "))
		Expect(s).To(ContainSubstring("\nn 1 "))
		Expect(s).To(ContainSubstring("\np 1 "))
		Expect(s).To(ContainSubstring("\nr 2 "))
		Expect(s).NotTo(ContainSubstring("<"))
	})

	It("should keep separate pending tables per technology", func() {
		a := baseBuilder().Build()
		Expect(a.Start()).To(Succeed())

		p := network.NewPacket(100)
		wifiTx(p, devA, 1.0, 1)

		// Same identity arriving on another technology's receive point must
		// not claim the wifi record.
		csmaRx(p, devB, 1.2)

		Expect(a.IsPending(TechWifi, 1)).To(BeTrue())
		Expect(a.PendingCounts()["wifi"]).To(Equal(1))
		Expect(a.PendingCounts()["csma"]).To(Equal(0))
	})
})
