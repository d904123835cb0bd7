package sink

import "os"

// A FileSink writes trace bytes to a file. The file is created on open,
// truncating any previous content.
type FileSink struct {
	file   *os.File
	closed bool
}

// NewFileSink opens the file at path for writing.
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileSink{file: file}, nil
}

// Write writes the whole buffer to the file.
func (s *FileSink) Write(p []byte) (int, error) {
	return writeAll(s.file, p)
}

// Close closes the file. Closing twice is a no-op.
func (s *FileSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}
