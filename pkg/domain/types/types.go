package types

// Version is the application version, overridden at build time via ldflags
var Version = "dev"

// BundleState represents the lifecycle stage of a Bundle
type BundleState string

const (
	StateUnopened      BundleState = "unopened"
	StateLocated       BundleState = "located"
	StateHeaderParsed  BundleState = "header_parsed"
	StateEntriesParsed BundleState = "entries_parsed"
	StateReady         BundleState = "ready"
	StateExtracting    BundleState = "extracting"
	StateDone          BundleState = "done"
	StateFailed        BundleState = "failed"
)

// ExtractMode controls how the orchestrator reacts to per-entry failures
type ExtractMode int

const (
	// ModeBestEffort attempts every entry and aggregates failures into the report
	ModeBestEffort ExtractMode = iota
	// ModeFailFast aborts the whole run on the first entry failure
	ModeFailFast
	// ModeDryRun validates and decompresses every entry but writes nothing
	ModeDryRun
)

func (m ExtractMode) String() string {
	switch m {
	case ModeBestEffort:
		return "best-effort"
	case ModeFailFast:
		return "fail-fast"
	case ModeDryRun:
		return "dry-run"
	default:
		return "unknown"
	}
}
