package model

// FileType is the one-byte type tag of a bundle entry
type FileType byte

const (
	FileTypeUnknown FileType = iota
	FileTypeAssembly
	FileTypeNativeBinary
	FileTypeDepsJson
	FileTypeRuntimeConfigJson
	FileTypeSymbols

	fileTypeLast
)

// FileTypeFromByte maps a raw type byte to a FileType. Unrecognized values
// become FileTypeUnknown; the entry is still extractable byte-for-byte since
// the type only affects reporting.
func FileTypeFromByte(b byte) FileType {
	if FileType(b) >= fileTypeLast {
		return FileTypeUnknown
	}
	return FileType(b)
}

func (t FileType) String() string {
	switch t {
	case FileTypeAssembly:
		return "assembly"
	case FileTypeNativeBinary:
		return "native"
	case FileTypeDepsJson:
		return "deps.json"
	case FileTypeRuntimeConfigJson:
		return "runtimeconfig.json"
	case FileTypeSymbols:
		return "symbols"
	default:
		return "unknown"
	}
}

// FileEntry is one packed file's metadata record. Offset addresses the host
// file (absolute by default; see bundle.WithRelativeOffsets). Size is the
// decompressed length; CompressedSize == 0 means the entry is stored raw.
type FileEntry struct {
	Offset         uint64
	Size           uint64
	CompressedSize uint64
	Type           FileType
	RelativePath   string
}

// IsCompressed reports whether the entry's payload is a deflate stream
func (e FileEntry) IsCompressed() bool {
	return e.CompressedSize != 0
}

// DataSize is the number of bytes the entry occupies in the host file
func (e FileEntry) DataSize() uint64 {
	if e.IsCompressed() {
		return e.CompressedSize
	}
	return e.Size
}
