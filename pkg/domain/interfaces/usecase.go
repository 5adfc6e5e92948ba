package interfaces

import (
	"context"

	"github.com/bundletools/unbundle/pkg/domain/model"
	"github.com/bundletools/unbundle/pkg/domain/types"
)

// ExtractUseCase defines the operations of the extraction orchestrator
type ExtractUseCase interface {
	// ExtractAll extracts every entry under outDir and returns per-entry
	// outcomes in entry-table order. In best-effort mode the returned error
	// wraps types.ErrPartialExtraction when any entry failed.
	ExtractAll(ctx context.Context, outDir string, mode types.ExtractMode) (*model.ExtractionReport, error)

	// ExtractOne extracts a single entry under outDir without touching the
	// rest of the bundle.
	ExtractOne(ctx context.Context, entry model.FileEntry, outDir string) error

	// Inspect returns the parsed header and entry table without filesystem writes
	Inspect(ctx context.Context) (*model.BundleHeader, []model.FileEntry, error)
}
