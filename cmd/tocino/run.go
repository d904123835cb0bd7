package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ankitraut99/Tocino/anim"
	"github.com/ankitraut99/Tocino/monitoring"
	"github.com/ankitraut99/Tocino/network"
	"github.com/ankitraut99/Tocino/recording"
	"github.com/ankitraut99/Tocino/sim"
)

var (
	configPath string
	outputFile string
	legacy     bool
	runFor     float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the demonstration scenario and record its trace",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadRunConfig(configPath)
		if err != nil {
			return err
		}

		// Flags override the config file.
		if cmd.Flags().Changed("output") {
			cfg.OutputFile = outputFile
		}
		if cmd.Flags().Changed("legacy") {
			cfg.LegacyFormat = legacy
		}
		if cmd.Flags().Changed("run-for") {
			cfg.RunFor = runFor
		}

		return runScenario(cfg)
	},
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to the configuration file")
	runCmd.Flags().StringVarP(&outputFile, "output", "o", "",
		"trace output file")
	runCmd.Flags().BoolVar(&legacy, "legacy", false,
		"write the flat legacy line format")
	runCmd.Flags().Float64Var(&runFor, "run-for", 10,
		"simulated seconds to run")
	rootCmd.AddCommand(runCmd)
}

// fireEvent runs a closure at its scheduled time.
type fireEvent struct {
	sim.EventBase
	action func()
}

type fireHandler struct{}

func (fireHandler) Handle(e sim.Event) error {
	e.(*fireEvent).action()
	return nil
}

func runScenario(cfg runConfig) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	engine := sim.NewSerialEngine()
	nodes := network.NewNodeList()
	source := network.NewTraceSource()

	wifiDevs, csmaDevs, p2pDevs := buildTopology(nodes)

	b := anim.MakeBuilder().
		WithEventDriver(engine).
		WithNodeList(nodes).
		WithTraceSource(source).
		WithMaxPktsPerFile(cfg.MaxPktsPerFile).
		WithTimeWindow(
			sim.VTimeInSec(cfg.StartTime), sim.VTimeInSec(cfg.StopTime)).
		WithMobilityPollInterval(sim.VTimeInSec(cfg.PollInterval)).
		WithPurgeMaxAge(sim.VTimeInSec(cfg.PurgeMaxAge)).
		WithNodeDescription(wifiDevs[0].Node().ID(), "wifi-ap")

	if cfg.OutputFile != "" {
		b = b.WithOutputFile(cfg.OutputFile)
	}
	if cfg.ListenPort != 0 {
		b = b.WithListenPort(uint16(cfg.ListenPort))
	}
	if cfg.LegacyFormat {
		b = b.WithLegacyFormat()
	}
	if cfg.Metadata {
		b = b.WithPacketMetadata()
	}
	if cfg.ShowAllFrames {
		b = b.WithShowAllFrames()
	}

	var rec recording.Recorder
	if cfg.RecordTo != "" {
		rec = recording.New(cfg.RecordTo)
		b = b.WithRecorder(rec)
	}

	animator := b.Build()

	if cfg.MonitorPort > 0 {
		monitor := monitoring.NewMonitor().WithPortNumber(cfg.MonitorPort)
		monitor.RegisterEngine(engine)
		monitor.RegisterAnimator(animator)
		monitor.StartServer()
	}

	if err := animator.Start(); err != nil {
		return err
	}

	scheduleTraffic(engine, source, wifiDevs, csmaDevs, p2pDevs, cfg.RunFor)

	stopAt := sim.VTimeInSec(cfg.RunFor)
	engine.Schedule(&fireEvent{
		EventBase: sim.MakeEventBase(stopAt, fireHandler{}),
		action:    animator.Stop,
	})

	if err := engine.Run(); err != nil {
		return err
	}
	engine.Finished()

	if rec != nil {
		if err := rec.Close(); err != nil {
			return err
		}
	}

	if err := animator.Err(); err != nil {
		logrus.WithError(err).Warn("trace output was interrupted")
	}
	logrus.WithFields(logrus.Fields{
		"packets": animator.TotalPacketCount(),
		"until":   float64(engine.CurrentTime()),
	}).Info("run finished")

	return nil
}

// buildTopology creates four wifi nodes, two csma nodes, and a
// point-to-point pair.
func buildTopology(nodes *network.NodeList) (
	wifiDevs, csmaDevs, p2pDevs []*network.NetDevice,
) {
	positions := []network.Vector{
		{X: 50, Y: 50},
		{X: 20, Y: 80},
		{X: 80, Y: 80},
		{X: 50, Y: 10},
		{X: 120, Y: 40},
		{X: 120, Y: 60},
		{X: 160, Y: 40},
		{X: 160, Y: 60},
	}

	var id uint32
	addNode := func() *network.NetDevice {
		n := network.NewNode(id)
		n.SetMobility(network.NewConstantMobility(positions[id]))
		nodes.Add(n)
		id++
		return network.NewNetDevice(n, network.HWAddr{0, 0, 0, 0, 0, byte(id)})
	}

	for i := 0; i < 4; i++ {
		wifiDevs = append(wifiDevs, addNode())
	}
	for i := 0; i < 2; i++ {
		csmaDevs = append(csmaDevs, addNode())
	}
	for i := 0; i < 2; i++ {
		p2pDevs = append(p2pDevs, addNode())
	}
	nodes.AddLink(p2pDevs[0], p2pDevs[1])

	return wifiDevs, csmaDevs, p2pDevs
}

// scheduleTraffic fills the run with periodic wifi broadcasts, csma
// exchanges, and point-to-point transfers.
func scheduleTraffic(
	engine *sim.SerialEngine,
	source *network.TraceSource,
	wifiDevs, csmaDevs, p2pDevs []*network.NetDevice,
	runFor float64,
) {
	h := fireHandler{}
	at := func(t sim.VTimeInSec, action func()) {
		engine.Schedule(&fireEvent{
			EventBase: sim.MakeEventBase(t, h),
			action:    action,
		})
	}

	for t := 0.1; t < runFor-0.1; t += 0.5 {
		txTime := sim.VTimeInSec(t)

		p := network.NewPacket(512)
		p.AddHeader("UDP")
		p.AddHeader("IPv4")
		at(txTime, func() {
			source.Notify(network.HookPosWifiPhyTxBegin,
				network.TxNotification{
					Packet:            p,
					Device:            wifiDevs[0],
					FirstBitTxTime:    txTime,
					LastBitTxTime:     txTime + 0.0004,
					WifiRange:         100,
					ExpectedReceivers: len(wifiDevs) - 1,
				})
		})
		for i, dev := range wifiDevs[1:] {
			rxTime := txTime + sim.VTimeInSec(0.002+float64(i)*0.0001)
			dev := dev
			at(rxTime, func() {
				source.Notify(network.HookPosWifiMacRx,
					network.RxNotification{
						Packet:         p,
						Device:         dev,
						FirstBitRxTime: rxTime,
						LastBitRxTime:  rxTime + 0.0004,
					})
			})
		}

		c := network.NewPacket(1024)
		c.AddHeader("TCP")
		c.AddHeader("IPv4")
		csmaTx := txTime + 0.2
		csmaRx := csmaTx + 0.001
		at(csmaTx, func() {
			source.Notify(network.HookPosCsmaPhyTxBegin,
				network.TxNotification{
					Packet:            c,
					Device:            csmaDevs[0],
					FirstBitTxTime:    csmaTx,
					LastBitTxTime:     csmaTx + 0.0008,
					ExpectedReceivers: 1,
				})
		})
		at(csmaRx, func() {
			source.Notify(network.HookPosCsmaPhyRxEnd,
				network.RxNotification{
					Packet:         c,
					Device:         csmaDevs[1],
					FirstBitRxTime: csmaRx,
					LastBitRxTime:  csmaRx + 0.0008,
				})
		})

		d := network.NewPacket(256)
		devTxTime := txTime + 0.3
		at(devTxTime, func() {
			source.Notify(network.HookPosDevTx, network.DevTxNotification{
				Packet:   d,
				TxDevice: p2pDevs[0],
				RxDevice: p2pDevs[1],
				TxTime:   devTxTime,
				RxTime:   devTxTime + 0.005,
			})
		})
	}
}
