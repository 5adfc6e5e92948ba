package bundle

import (
	"github.com/bundletools/unbundle/pkg/domain/model"
	"github.com/bundletools/unbundle/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// parseEntries decodes exactly count entry records immediately following the
// header. A read running past the source bounds fails with
// types.ErrCorruptHeader; an unrecognized type byte does not abort the decode,
// the entry is kept with FileTypeUnknown.
func parseEntries(c *Cursor, count uint32) ([]model.FileEntry, error) {
	entries := make([]model.FileEntry, 0, count)

	for i := uint32(0); i < count; i++ {
		entry, err := parseEntry(c)
		if err != nil {
			return nil, goerr.Wrap(types.ErrCorruptHeader, "entry table exceeds source bounds",
				goerr.V("entry_index", i),
				goerr.V("file_count", count),
				goerr.V("offset", c.Pos()),
				goerr.V("cause", err.Error()),
			)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseEntry(c *Cursor) (model.FileEntry, error) {
	var e model.FileEntry
	var err error

	if e.Offset, err = c.U64("entry.offset"); err != nil {
		return e, err
	}
	if e.Size, err = c.U64("entry.size"); err != nil {
		return e, err
	}
	if e.CompressedSize, err = c.U64("entry.compressedSize"); err != nil {
		return e, err
	}

	typeByte, err := c.U8("entry.type")
	if err != nil {
		return e, err
	}
	e.Type = model.FileTypeFromByte(typeByte)

	if e.RelativePath, err = c.PathString("entry.relativePath"); err != nil {
		return e, err
	}

	return e, nil
}
