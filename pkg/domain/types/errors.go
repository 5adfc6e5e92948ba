package types

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy for bundle parsing and extraction. Call sites wrap these with
// goerr.Wrap and attach the offending field name and byte offset via goerr.V,
// so callers can report precise diagnostics without re-deriving them.
var (
	// ErrTruncatedRead means a decode step needed more bytes than remain
	ErrTruncatedRead = goerr.New("truncated read")

	// ErrBundleNotFound means the signature scan found no bundle marker
	ErrBundleNotFound = goerr.New("bundle signature not found")

	// ErrUnsupportedVersion means the header's major version is outside the supported set
	ErrUnsupportedVersion = goerr.New("unsupported bundle version")

	// ErrCorruptHeader means the header or entry table is structurally broken
	ErrCorruptHeader = goerr.New("corrupt bundle header")

	// ErrCorruptEntry means an entry's decompressed length did not match its record
	ErrCorruptEntry = goerr.New("corrupt bundle entry")

	// ErrDecompression means the deflate stream itself failed to decode
	ErrDecompression = goerr.New("decompression failed")

	// ErrPathSafety means an entry's relative path would escape the output root
	ErrPathSafety = goerr.New("entry path escapes output root")

	// ErrPartialExtraction aggregates per-entry failures of a best-effort run
	ErrPartialExtraction = goerr.New("some entries failed to extract")

	// ErrInvalidState means an operation was called outside its lifecycle stage
	ErrInvalidState = goerr.New("invalid bundle state")
)
