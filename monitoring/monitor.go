// Package monitoring turns a recording run into a small web server so the
// run state can be inspected and controlled from outside.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"

	"github.com/ankitraut99/Tocino/anim"
	"github.com/ankitraut99/Tocino/sim"
)

// EngineController is the engine surface the monitor needs.
type EngineController interface {
	sim.TimeTeller

	Pause()
	Continue()
}

// Monitor exposes the state of an animator and its engine over HTTP.
type Monitor struct {
	engine     EngineController
	animator   *anim.Animator
	portNumber int
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// rejected and a random port is used instead.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		logrus.Warnf(
			"port %d is not allowed for the monitoring server, using a random port",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that drives the run.
func (m *Monitor) RegisterEngine(e EngineController) {
	m.engine = e
}

// RegisterAnimator registers the animator to report on.
func (m *Monitor) RegisterAnimator(a *anim.Animator) {
	m.animator = a
}

// StartServer starts serving the monitoring API in the background.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/resource", m.listResources)

	actualPort := ":0"
	if m.portNumber > 0 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	logrus.WithField(
		"url",
		fmt.Sprintf("http://localhost:%d",
			listener.Addr().(*net.TCPAddr).Port),
	).Info("monitoring run")

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%.10f}", m.engine.CurrentTime())
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	w.WriteHeader(http.StatusOK)
}

type statusRsp struct {
	Started          bool           `json:"started"`
	Now              float64        `json:"now"`
	TracePacketCount uint64         `json:"trace_packet_count"`
	TotalPacketCount uint64         `json:"total_packet_count"`
	Pending          map[string]int `json:"pending"`
	SinkError        string         `json:"sink_error,omitempty"`
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	rsp := statusRsp{
		Started:          m.animator.Started(),
		Now:              float64(m.engine.CurrentTime()),
		TracePacketCount: m.animator.TracePacketCount(),
		TotalPacketCount: m.animator.TotalPacketCount(),
		Pending:          m.animator.PendingCounts(),
	}
	if err := m.animator.Err(); err != nil {
		rsp.SinkError = err.Error()
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		logrus.Fatal(err)
	}
}
