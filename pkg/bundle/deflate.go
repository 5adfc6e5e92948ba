package bundle

import (
	"bytes"
	"io"

	"github.com/bundletools/unbundle/pkg/domain/model"
	"github.com/bundletools/unbundle/pkg/domain/types"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/m-mizutani/goerr/v2"
)

// decompress inflates an entry's compressed byte range and verifies the
// result is exactly entry.Size bytes. Some bundles carry zlib-wrapped
// streams, others raw deflate; zlib framing is tried first and raw deflate
// used as a fallback.
func decompress(entry model.FileEntry, src []byte) ([]byte, error) {
	out, zerr := inflateZlib(src)
	if zerr != nil {
		var ferr error
		out, ferr = inflateRaw(src)
		if ferr != nil {
			return nil, goerr.Wrap(types.ErrDecompression, "entry stream is corrupted",
				goerr.V("entry", entry.RelativePath),
				goerr.V("offset", entry.Offset),
				goerr.V("zlib_error", zerr.Error()),
				goerr.V("deflate_error", ferr.Error()),
			)
		}
	}

	if uint64(len(out)) != entry.Size {
		return nil, goerr.Wrap(types.ErrCorruptEntry, "decompressed length mismatch",
			goerr.V("entry", entry.RelativePath),
			goerr.V("expected", entry.Size),
			goerr.V("actual", len(out)),
		)
	}

	return out, nil
}

func inflateZlib(src []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func inflateRaw(src []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()
	return io.ReadAll(r)
}
