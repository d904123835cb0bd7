// Package sink provides byte sinks for trace output. A sink either writes
// every byte it is given or reports an error; a short write is never
// silently treated as success.
package sink

import "io"

// A Sink is a destination for trace bytes.
type Sink interface {
	// Write writes the whole buffer, retrying partial writes. It returns
	// the number of bytes written and the first error encountered.
	Write(p []byte) (int, error)

	// Close releases the underlying handle. Closing twice is allowed.
	Close() error
}

// writeAll pushes the whole buffer through w, retrying partial writes. A
// write that makes no progress is reported as an error, never as success.
func writeAll(w interface {
	Write(p []byte) (int, error)
}, p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := w.Write(p[written:])
		written += n
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}
