package anim

import (
	"fmt"

	"github.com/ankitraut99/Tocino/sim"
	"github.com/ankitraut99/Tocino/sink"
)

// A timeWindow gates which events are serialized. Events outside the
// window are still correlated, just not written.
type timeWindow struct {
	start, stop sim.VTimeInSec
}

// ShouldRecord reports whether an event at time t falls inside the window.
func (w timeWindow) ShouldRecord(t sim.VTimeInSec) bool {
	return t >= w.start && t <= w.stop
}

// An outputSession owns the current sink, the file rotation state, and the
// first write error. A run has one session; the sink inside it is replaced
// wholesale on rotation and closed exactly once at shutdown.
type outputSession struct {
	sink          sink.Sink
	writeCallback func(string)

	// basePath is the file name without rotation suffix. Empty for
	// non-file backends, which never rotate.
	basePath string
	fileSeq  int

	filePkts  uint64
	totalPkts uint64

	err error
}

// write pushes a serialized fragment to the sink. After the first error
// the session becomes a silent no-op; the simulation must not be
// disturbed by a dead sink.
func (s *outputSession) write(str string) {
	if s.err != nil || s.sink == nil || str == "" {
		return
	}

	if _, err := s.sink.Write([]byte(str)); err != nil {
		s.err = err
		return
	}

	if s.writeCallback != nil {
		s.writeCallback(str)
	}
}

// ok reports whether the session can still accept writes.
func (s *outputSession) ok() bool {
	return s.err == nil && s.sink != nil
}

// countPacket counts one serialized packet event and reports whether the
// per-file ceiling was reached, in which case the caller must rotate.
func (s *outputSession) countPacket(maxPerFile uint64) (needRotation bool) {
	s.filePkts++
	s.totalPkts++

	return s.basePath != "" && s.filePkts >= maxPerFile
}

// rotate closes the current file and opens the next one in the sequence.
// Rotation is transparent to correlation state: pending records are keyed
// independently of file identity.
func (s *outputSession) rotate() {
	if s.basePath == "" || !s.ok() {
		return
	}

	s.sink.Close()
	s.sink = nil

	s.fileSeq++
	next, err := sink.NewFileSink(
		fmt.Sprintf("%s-%d", s.basePath, s.fileSeq))
	if err != nil {
		s.err = err
		return
	}

	s.sink = next
	s.filePkts = 0
}

// close closes the sink exactly once.
func (s *outputSession) close() {
	if s.sink == nil {
		return
	}
	s.sink.Close()
	s.sink = nil
}
