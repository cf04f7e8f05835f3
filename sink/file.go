package sink

import (
	"fmt"
	"os"
)

// File mirrors a stream's records to an append-only file. It ignores
// the topic descriptor entirely: a file sink carries one stream's raw
// records back to back, with no framing beyond what the caller already
// wrote into the record.
type File struct {
	f *os.File
}

// OpenFile opens (creating if necessary) path for append. Passing
// "/dev/stdout" is the documented way to mirror a stream to standard
// output.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("sink: open %q: %w", path, err)
	}
	return &File{f: f}, nil
}

// Write appends payload to the file.
func (fs *File) Write(payload []byte) error {
	_, err := fs.f.Write(payload)
	return err
}

// Close closes the underlying file.
func (fs *File) Close() error {
	return fs.f.Close()
}
