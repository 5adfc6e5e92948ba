package bundle

import (
	"bytes"
	"encoding/binary"

	"github.com/bundletools/unbundle/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// signature marks the bundle's location inside the host file. The absolute
// header offset is stored as a little-endian uint64 in the 8 bytes
// immediately preceding the marker.
var signature = []byte(".net core bundle")

const offsetPointerSize = 8

// FindBundleOffset scans the host bytes for the bundle signature and returns
// the absolute offset of the bundle header. The bundle is appended after the
// host's normal sections, so the scan runs backward from end-of-file.
func FindBundleOffset(data []byte) (uint64, error) {
	idx := bytes.LastIndex(data, signature)
	if idx < 0 {
		return 0, goerr.Wrap(types.ErrBundleNotFound, "no signature in host file",
			goerr.V("file_size", len(data)),
		)
	}
	if idx < offsetPointerSize {
		return 0, goerr.Wrap(types.ErrBundleNotFound, "signature has no room for offset pointer",
			goerr.V("signature_offset", idx),
		)
	}

	offset := binary.LittleEndian.Uint64(data[idx-offsetPointerSize : idx])
	if offset >= uint64(len(data)) {
		return 0, goerr.Wrap(types.ErrCorruptHeader, "header offset points outside host file",
			goerr.V("offset", offset),
			goerr.V("file_size", len(data)),
		)
	}

	return offset, nil
}
