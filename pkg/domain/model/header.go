package model

// Location is an offset/size pair pointing into the host file
type Location struct {
	Offset uint64
	Size   uint64
}

// IsValid reports whether the location points at actual data
func (l Location) IsValid() bool {
	return l.Offset != 0
}

// Bundle header flags
const (
	// FlagNetcoreApp3Compat marks bundles built in .NET Core 3 compatibility mode
	FlagNetcoreApp3Compat uint64 = 1 << 0
)

// BundleHeader is the fixed-layout header at the bundle's start offset.
// The deps.json / runtimeconfig.json locations and the flags word are only
// present on disk when MajorVersion >= 2; otherwise they stay zero.
type BundleHeader struct {
	MajorVersion      uint32
	MinorVersion      uint32
	FileCount         uint32
	BundleID          string
	DepsJson          Location
	RuntimeConfigJson Location
	Flags             uint64
}
