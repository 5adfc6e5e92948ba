package bundle

import (
	"context"

	"github.com/bundletools/unbundle/pkg/domain/model"
	"github.com/bundletools/unbundle/pkg/domain/types"
	"github.com/bundletools/unbundle/pkg/infra/hostfile"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Bundle is a single-file application bundle embedded in a host file. It
// moves through an explicit lifecycle: Unopened -> Located -> HeaderParsed ->
// EntriesParsed -> Ready -> (Extracting -> Done | Failed). Failed is terminal
// and keeps the triggering error; nothing retries automatically.
type Bundle struct {
	src *hostfile.Source

	offset      uint64
	offsetSet   bool // explicit offset supplied, scanner is bypassed
	relativeOff bool // entry offsets are relative to the bundle start

	state   types.BundleState
	header  *model.BundleHeader
	entries []model.FileEntry
	err     error
}

// Option configures a Bundle before parsing
type Option func(*Bundle)

// WithOffset supplies an explicit bundle-header offset, bypassing the
// signature scanner. The offset is not validated beyond bounds checks at
// parse time.
func WithOffset(offset uint64) Option {
	return func(b *Bundle) {
		b.offset = offset
		b.offsetSet = true
	}
}

// WithRelativeOffsets treats entry offsets as relative to the bundle's start
// offset instead of absolute within the host file. This is the single switch
// for the offset interpretation; nothing else in the pipeline depends on it.
func WithRelativeOffsets() Option {
	return func(b *Bundle) {
		b.relativeOff = true
	}
}

// New creates an unopened Bundle over a host file source
func New(src *hostfile.Source, opts ...Option) *Bundle {
	b := &Bundle{
		src:   src,
		state: types.StateUnopened,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current lifecycle state
func (b *Bundle) State() types.BundleState {
	return b.state
}

// Err returns the error that moved the bundle to Failed, if any
func (b *Bundle) Err() error {
	return b.err
}

// Offset returns the bundle-header offset. Valid once Located.
func (b *Bundle) Offset() uint64 {
	return b.offset
}

// Header returns the parsed header. Valid once HeaderParsed.
func (b *Bundle) Header() *model.BundleHeader {
	return b.header
}

// Entries returns the entry table in on-disk order. Valid once EntriesParsed.
func (b *Bundle) Entries() []model.FileEntry {
	return b.entries
}

// Source returns the underlying host file source
func (b *Bundle) Source() *hostfile.Source {
	return b.src
}

func (b *Bundle) fail(err error) error {
	b.state = types.StateFailed
	b.err = err
	return err
}

// Locate resolves the bundle's start offset, either from the explicit offset
// supplied via WithOffset or by scanning for the signature.
func (b *Bundle) Locate(ctx context.Context) error {
	if b.state != types.StateUnopened {
		return goerr.Wrap(types.ErrInvalidState, "bundle already located",
			goerr.V("state", b.state),
		)
	}

	logger := ctxlog.From(ctx)

	if b.offsetSet {
		logger.Debug("using explicit bundle offset", "offset", b.offset)
		b.state = types.StateLocated
		return nil
	}

	offset, err := FindBundleOffset(b.src.Bytes())
	if err != nil {
		return b.fail(err)
	}

	logger.Debug("located bundle by signature scan", "offset", offset)
	b.offset = offset
	b.state = types.StateLocated
	return nil
}

// Parse decodes the header and entry table at the located offset and moves
// the bundle to Ready.
func (b *Bundle) Parse(ctx context.Context) error {
	if b.state != types.StateLocated {
		return goerr.Wrap(types.ErrInvalidState, "bundle must be located before parsing",
			goerr.V("state", b.state),
		)
	}

	logger := ctxlog.From(ctx)
	cursor := NewCursor(b.src.Bytes())
	if err := cursor.Seek(b.offset); err != nil {
		return b.fail(err)
	}

	header, err := parseHeader(cursor)
	if err != nil {
		return b.fail(err)
	}
	b.header = header
	b.state = types.StateHeaderParsed

	logger.Debug("parsed bundle header",
		"bundle_id", header.BundleID,
		"version", header.MajorVersion,
		"file_count", header.FileCount,
	)

	entries, err := parseEntries(cursor, header.FileCount)
	if err != nil {
		return b.fail(err)
	}
	b.entries = entries
	b.state = types.StateEntriesParsed

	b.state = types.StateReady
	return nil
}

// EntryPayload reads an entry's source bytes and decompresses them when the
// entry is flagged as compressed. The result is always exactly entry.Size
// bytes.
func (b *Bundle) EntryPayload(entry model.FileEntry) ([]byte, error) {
	offset := entry.Offset
	if b.relativeOff {
		offset += b.offset
	}

	raw, err := b.src.Slice(offset, entry.DataSize())
	if err != nil {
		return nil, goerr.Wrap(types.ErrCorruptEntry, "entry data exceeds host file",
			goerr.V("entry", entry.RelativePath),
			goerr.V("offset", offset),
			goerr.V("length", entry.DataSize()),
		)
	}

	if !entry.IsCompressed() {
		return raw, nil
	}
	return decompress(entry, raw)
}

// BeginExtract moves the bundle from Ready to Extracting
func (b *Bundle) BeginExtract() error {
	if b.state != types.StateReady {
		return goerr.Wrap(types.ErrInvalidState, "bundle is not ready for extraction",
			goerr.V("state", b.state),
		)
	}
	b.state = types.StateExtracting
	return nil
}

// FinishExtract moves the bundle to Done, or to Failed with err
func (b *Bundle) FinishExtract(err error) {
	if err != nil {
		b.fail(err)
		return
	}
	b.state = types.StateDone
}
