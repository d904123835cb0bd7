package network

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// A Packet is a simulated data unit. Beside its payload size and protocol
// headers, a packet carries byte tags: auxiliary metadata that travels with
// the packet through the simulated stack, survives copying, and is ignored
// by protocol logic.
type Packet struct {
	size    uint32
	headers []string
	tags    map[string][]byte
}

// NewPacket creates a packet with the given payload size in bytes.
func NewPacket(size uint32) *Packet {
	return &Packet{size: size}
}

// Size returns the payload size in bytes.
func (p *Packet) Size() uint32 {
	return p.size
}

// AddHeader records a protocol header description on the packet.
func (p *Packet) AddHeader(header string) {
	p.headers = append(p.headers, header)
}

// AttachByteTag attaches auxiliary data to the packet under the given key.
// Attaching under an existing key replaces the previous data.
func (p *Packet) AttachByteTag(key string, data []byte) {
	if p.tags == nil {
		p.tags = make(map[string][]byte)
	}
	p.tags[key] = append([]byte(nil), data...)
}

// PeekByteTag returns the data attached under the given key.
func (p *Packet) PeekByteTag(key string) ([]byte, bool) {
	data, ok := p.tags[key]
	return data, ok
}

// Copy duplicates the packet, including its byte tags.
func (p *Packet) Copy() *Packet {
	c := &Packet{
		size:    p.size,
		headers: append([]string(nil), p.headers...),
	}
	for key, data := range p.tags {
		c.AttachByteTag(key, data)
	}
	return c
}

// String describes the packet headers and size, used when packet metadata
// capture is enabled.
func (p *Packet) String() string {
	if len(p.headers) == 0 {
		return fmt.Sprintf("%d bytes", p.size)
	}
	return fmt.Sprintf("%s (%d bytes)", strings.Join(p.headers, "/"), p.size)
}

// Uint64ByteTag encodes a 64-bit value as byte-tag data.
func Uint64ByteTag(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

// Uint64FromByteTag decodes a 64-bit value from byte-tag data.
func Uint64FromByteTag(data []byte) (uint64, bool) {
	if len(data) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(data), true
}
