package anim

import "github.com/ankitraut99/Tocino/sim"

// A PendingTx is the transmit-side metadata captured when a tagged packet
// leaves a device, kept until the matching receive notifications claim it
// or until it is purged as stale.
type PendingTx struct {
	FromNodeID     uint32
	FirstBitTxTime sim.VTimeInSec
	LastBitTxTime  sim.VTimeInSec

	// WifiRange is the signal range of a wireless transmission. Zero for
	// wired technologies.
	WifiRange float64

	// outstanding is the number of receivers still expected to report.
	// Zero means the fan-out is unknown; the record then stays until
	// purged.
	outstanding int
}

// A pendingTable maps packet identities to transmit metadata for one link
// technology. At most one record exists per identity at any time.
type pendingTable struct {
	entries map[uint64]PendingTx
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[uint64]PendingTx)}
}

// RecordTx stores the transmit metadata for an identity. An existing
// record is overwritten: re-transmission of the same tagged packet is
// valid and the last writer wins.
func (t *pendingTable) RecordTx(uid uint64, rec PendingTx, expectedReceivers int) {
	rec.outstanding = expectedReceivers
	t.entries[uid] = rec
}

// IsPending reports whether a record exists for the identity.
func (t *pendingTable) IsPending(uid uint64) bool {
	_, ok := t.entries[uid]
	return ok
}

// RecordRx claims the transmit metadata for one receive notification. For
// a fan-out record the outstanding-receiver count is decremented and the
// record is deleted only when it reaches zero. A miss returns ok=false;
// the caller still serializes the receive fact, with degraded transmit
// metadata.
func (t *pendingTable) RecordRx(uid uint64) (PendingTx, bool) {
	rec, ok := t.entries[uid]
	if !ok {
		return PendingTx{}, false
	}

	if rec.outstanding > 0 {
		rec.outstanding--
		if rec.outstanding == 0 {
			delete(t.entries, uid)
		} else {
			t.entries[uid] = rec
		}
	}

	return rec, true
}

// Purge removes every record whose transmit time is older than maxAge
// relative to now. This is the only defense against unbounded growth when
// expected receivers never materialize; a receive arriving after the purge
// is treated as unmatched.
func (t *pendingTable) Purge(now, maxAge sim.VTimeInSec) int {
	purged := 0
	for uid, rec := range t.entries {
		if now-rec.FirstBitTxTime > maxAge {
			delete(t.entries, uid)
			purged++
		}
	}
	return purged
}

// Len returns the number of pending records.
func (t *pendingTable) Len() int {
	return len(t.entries)
}
