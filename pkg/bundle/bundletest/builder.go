// Package bundletest builds synthetic host files with embedded bundles for
// tests.
package bundletest

import (
	"bytes"
	"encoding/binary"

	"github.com/bundletools/unbundle/pkg/domain/model"
	"github.com/klauspost/compress/flate"
)

var signature = []byte(".net core bundle")

// Entry describes one file to embed
type Entry struct {
	Path     string
	Data     []byte
	Type     model.FileType
	Compress bool
	// TypeByte overrides the entry's type tag when nonzero, to emit
	// unrecognized values
	TypeByte byte
}

// Builder assembles a synthetic host file: padding, entry payloads, header,
// entry table, then the 8-byte header-offset pointer followed by the
// signature. Entry offsets are absolute within the host file.
type Builder struct {
	Major    uint32
	Minor    uint32
	BundleID string
	Flags    uint64
	Entries  []Entry

	// Padding is the number of leading zero bytes standing in for the
	// host's executable sections
	Padding int

	// CountOverride lies about the file count in the header when nonzero
	CountOverride uint32

	// OmitSignature leaves out the trailing pointer+signature so the host
	// is only usable with an explicit offset
	OmitSignature bool
}

// Build returns the host file bytes and the bundle header's absolute offset
func (b *Builder) Build() ([]byte, uint64) {
	major := b.Major
	if major == 0 {
		major = 6
	}
	bundleID := b.BundleID
	if bundleID == "" {
		bundleID = "test-bundle-id"
	}

	host := make([]byte, b.Padding)

	type placed struct {
		entry  Entry
		offset uint64
		size   uint64
		csize  uint64
	}
	records := make([]placed, 0, len(b.Entries))
	for _, e := range b.Entries {
		p := placed{entry: e, offset: uint64(len(host)), size: uint64(len(e.Data))}
		payload := e.Data
		if e.Compress {
			payload = Deflate(e.Data)
			p.csize = uint64(len(payload))
		}
		host = append(host, payload...)
		records = append(records, p)
	}

	headerOffset := uint64(len(host))

	count := uint32(len(b.Entries))
	if b.CountOverride != 0 {
		count = b.CountOverride
	}

	host = binary.LittleEndian.AppendUint32(host, major)
	host = binary.LittleEndian.AppendUint32(host, b.Minor)
	host = binary.LittleEndian.AppendUint32(host, count)
	host = appendPathString(host, bundleID)
	if major >= 2 {
		host = binary.LittleEndian.AppendUint64(host, 0) // depsJsonOffset
		host = binary.LittleEndian.AppendUint64(host, 0) // depsJsonSize
		host = binary.LittleEndian.AppendUint64(host, 0) // runtimeConfigJsonOffset
		host = binary.LittleEndian.AppendUint64(host, 0) // runtimeConfigJsonSize
		host = binary.LittleEndian.AppendUint64(host, b.Flags)
	}

	for _, p := range records {
		host = binary.LittleEndian.AppendUint64(host, p.offset)
		host = binary.LittleEndian.AppendUint64(host, p.size)
		host = binary.LittleEndian.AppendUint64(host, p.csize)
		typeByte := byte(p.entry.Type)
		if p.entry.TypeByte != 0 {
			typeByte = p.entry.TypeByte
		}
		host = append(host, typeByte)
		host = appendPathString(host, p.entry.Path)
	}

	if !b.OmitSignature {
		host = binary.LittleEndian.AppendUint64(host, headerOffset)
		host = append(host, signature...)
	}

	return host, headerOffset
}

// Deflate compresses data as a raw deflate stream
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		panic(err)
	}
	if _, err := w.Write(data); err != nil {
		panic(err)
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func appendPathString(dst []byte, s string) []byte {
	n := len(s)
	for n >= 0x80 {
		dst = append(dst, byte(n)|0x80)
		n >>= 7
	}
	dst = append(dst, byte(n))
	return append(dst, s...)
}
