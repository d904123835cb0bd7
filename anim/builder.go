package anim

import (
	"math"

	"github.com/ankitraut99/Tocino/network"
	"github.com/ankitraut99/Tocino/recording"
	"github.com/ankitraut99/Tocino/sim"
	"github.com/ankitraut99/Tocino/sink"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// defaultMaxPktsPerFile is the packet-event ceiling per trace file before
// rotation.
const defaultMaxPktsPerFile = 100000

// Builder can be used to build an Animator.
type Builder struct {
	driver EventDriver
	nodes  *network.NodeList
	source *network.TraceSource

	outputPath     string
	listenPort     uint16
	customSink     sink.Sink
	maxPktsPerFile uint64
	legacy         bool

	startTime sim.VTimeInSec
	stopTime  sim.VTimeInSec

	pollInterval   sim.VTimeInSec
	purgeMaxAge    sim.VTimeInSec
	randomPosition bool
	rngSeed        int64
	metadata       bool
	showAll        bool

	descriptions  map[uint32]string
	recorder      recording.Recorder
	writeCallback func(string)
}

// MakeBuilder creates a Builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		maxPktsPerFile: defaultMaxPktsPerFile,
		stopTime:       sim.VTimeInSec(math.MaxFloat64),
		pollInterval:   0.25,
		purgeMaxAge:    5,
		randomPosition: true,
		rngSeed:        1,
		descriptions:   make(map[uint32]string),
	}
}

// WithEventDriver sets the engine surface used for time and poll
// scheduling.
func (b Builder) WithEventDriver(d EventDriver) Builder {
	b.driver = d
	return b
}

// WithNodeList sets the node registry of the run.
func (b Builder) WithNodeList(nodes *network.NodeList) Builder {
	b.nodes = nodes
	return b
}

// WithTraceSource sets the notification hub the animator subscribes to.
func (b Builder) WithTraceSource(source *network.TraceSource) Builder {
	b.source = source
	return b
}

// WithOutputFile records the trace to the file at path, rotating to
// "path-1", "path-2", ... once the per-file packet ceiling is reached.
func (b Builder) WithOutputFile(path string) Builder {
	b.outputPath = path
	return b
}

// WithMaxPktsPerFile sets the per-file packet-event ceiling.
func (b Builder) WithMaxPktsPerFile(n uint64) Builder {
	b.maxPktsPerFile = n
	return b
}

// WithListenPort records the trace to a peer that connects to the given
// TCP port. Opening the sink blocks until the peer connects.
func (b Builder) WithListenPort(port uint16) Builder {
	b.listenPort = port
	return b
}

// WithSink records the trace to a caller-provided sink. Rotation does not
// apply.
func (b Builder) WithSink(s sink.Sink) Builder {
	b.customSink = s
	return b
}

// WithLegacyFormat selects the flat line-oriented output format instead of
// the structured XML form.
func (b Builder) WithLegacyFormat() Builder {
	b.legacy = true
	return b
}

// WithTimeWindow limits serialization to events whose time falls in
// [start, stop]. Correlation state is maintained outside the window.
func (b Builder) WithTimeWindow(start, stop sim.VTimeInSec) Builder {
	b.startTime = start
	b.stopTime = stop
	return b
}

// WithMobilityPollInterval sets the position poll interval. A low interval
// slows the simulation down.
func (b Builder) WithMobilityPollInterval(interval sim.VTimeInSec) Builder {
	b.pollInterval = interval
	return b
}

// WithPurgeMaxAge sets how long an unclaimed transmit record survives
// before the periodic purge drops it.
func (b Builder) WithPurgeMaxAge(maxAge sim.VTimeInSec) Builder {
	b.purgeMaxAge = maxAge
	return b
}

// WithoutRandomPosition disables position synthesis for nodes that have no
// mobility model; such nodes are omitted from position output.
func (b Builder) WithoutRandomPosition() Builder {
	b.randomPosition = false
	return b
}

// WithRngSeed sets the seed for synthesized positions, keeping them
// deterministic across runs.
func (b Builder) WithRngSeed(seed int64) Builder {
	b.rngSeed = seed
	return b
}

// WithPacketMetadata enables writing packet metadata into the trace.
func (b Builder) WithPacketMetadata() Builder {
	b.metadata = true
	return b
}

// WithShowAllFrames records every frame the wireless phy sees, including
// chatty control traffic. Default is to record only mac-accepted frames.
func (b Builder) WithShowAllFrames() Builder {
	b.showAll = true
	return b
}

// WithNodeDescription sets a free-text label for a node.
func (b Builder) WithNodeDescription(id uint32, descr string) Builder {
	b.descriptions[id] = descr
	return b
}

// WithRecorder mirrors every recorded event into the given recorder.
func (b Builder) WithRecorder(r recording.Recorder) Builder {
	b.recorder = r
	return b
}

// WithWriteCallback registers a callback observing every fragment written
// to the sink.
func (b Builder) WithWriteCallback(cb func(string)) Builder {
	b.writeCallback = cb
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.driver == nil {
		panic("animator requires an event driver")
	}

	if b.nodes == nil {
		panic("animator requires a node list")
	}

	if b.source == nil {
		panic("animator requires a trace source")
	}

	destinations := 0
	if b.outputPath != "" {
		destinations++
	}
	if b.listenPort != 0 {
		destinations++
	}
	if b.customSink != nil {
		destinations++
	}
	if destinations > 1 {
		panic("output file, listen port, and custom sink are mutually exclusive")
	}

	if b.maxPktsPerFile == 0 {
		panic("max packets per trace file must be positive")
	}

	if b.stopTime < b.startTime {
		panic("capture stop time must not precede start time")
	}

	if b.pollInterval <= 0 {
		panic("mobility poll interval must be positive")
	}

	if b.purgeMaxAge <= 0 {
		panic("purge max age must be positive")
	}
}

// Build builds the Animator and subscribes it to the trace source.
// Malformed configuration fails here, before the run starts.
func (b Builder) Build() *Animator {
	b.parametersMustBeValid()

	if b.outputPath == "" && b.listenPort == 0 && b.customSink == nil {
		ext := ".xml"
		if b.legacy {
			ext = ".txt"
		}
		b.outputPath = "tocino_anim_" + xid.New().String() + ext
	}

	a := &Animator{
		driver:         b.driver,
		nodes:          b.nodes,
		tagger:         NewTagger(),
		tracker:        newPositionTracker(b.randomPosition, b.rngSeed),
		window:         timeWindow{start: b.startTime, stop: b.stopTime},
		descriptions:   b.descriptions,
		recorder:       b.recorder,
		outputPath:     b.outputPath,
		listenPort:     b.listenPort,
		customSink:     b.customSink,
		maxPktsPerFile: b.maxPktsPerFile,
		pollInterval:   b.pollInterval,
		purgeMaxAge:    b.purgeMaxAge,
		metadata:       b.metadata,
		showAll:        b.showAll,
	}

	a.formatter = xmlFormatter{}
	if b.legacy {
		a.formatter = legacyFormatter{}
	}

	for i := range a.tables {
		a.tables[i] = newPendingTable()
	}

	a.session = &outputSession{writeCallback: b.writeCallback}

	if b.recorder != nil {
		b.recorder.CreateTable(recorderTableName, animEventEntry{})
	}

	b.source.AcceptHook(a)

	atexit.Register(func() { a.Stop() })

	return a
}
