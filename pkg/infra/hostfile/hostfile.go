package hostfile

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
)

// Source is a read-only view of a host executable. The whole file is held in
// memory so that parsing and concurrent entry extraction can use lock-free
// positional reads; the host file itself is never mutated.
type Source struct {
	path string
	data []byte
}

// Open reads the host file at path into a Source
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read host file", goerr.V("path", path))
	}

	return &Source{path: path, data: data}, nil
}

// FromBytes wraps an in-memory byte range as a Source
func FromBytes(data []byte) *Source {
	return &Source{path: "<memory>", data: data}
}

// Path returns the host file path
func (s *Source) Path() string {
	return s.path
}

// Len returns the host file length in bytes
func (s *Source) Len() uint64 {
	return uint64(len(s.data))
}

// Bytes returns the full host file contents. Callers must not mutate it.
func (s *Source) Bytes() []byte {
	return s.data
}

// Slice returns the n bytes starting at off, bounds-checked
func (s *Source) Slice(off, n uint64) ([]byte, error) {
	end := off + n
	if end < off || end > uint64(len(s.data)) {
		return nil, goerr.New("byte range exceeds host file",
			goerr.V("offset", off),
			goerr.V("length", n),
			goerr.V("file_size", len(s.data)),
		)
	}
	return s.data[off:end], nil
}
