package anim

import "github.com/ankitraut99/Tocino/network"

// animTagKey is the byte-tag key under which packets carry their identity.
const animTagKey = "anim-uid"

// A Tagger assigns each packet a run-unique 64-bit identity, carried as a
// byte tag so that later receive notifications can be matched back to the
// transmit notification that first observed the packet.
//
// Each run owns its Tagger instance; identities start at 1 and are never
// reused within a run.
type Tagger struct {
	nextUID uint64
}

// NewTagger creates a Tagger with a fresh counter.
func NewTagger() *Tagger {
	return &Tagger{}
}

// Tag returns the identity of the packet. If the packet already carries an
// identity tag, that identity is returned unchanged, so observing the same
// packet at multiple points always yields the same identity. Otherwise the
// next identity is allocated and attached.
func (t *Tagger) Tag(p *network.Packet) uint64 {
	if uid, ok := t.Peek(p); ok {
		return uid
	}

	t.nextUID++
	p.AttachByteTag(animTagKey, network.Uint64ByteTag(t.nextUID))

	return t.nextUID
}

// Peek returns the identity of the packet without allocating one. The
// second return value is false if the packet was never tagged.
func (t *Tagger) Peek(p *network.Packet) (uint64, bool) {
	data, ok := p.PeekByteTag(animTagKey)
	if !ok {
		return 0, false
	}
	return network.Uint64FromByteTag(data)
}
