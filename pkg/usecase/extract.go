package usecase

import (
	"context"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"

	"github.com/bundletools/unbundle/pkg/bundle"
	"github.com/bundletools/unbundle/pkg/domain/interfaces"
	"github.com/bundletools/unbundle/pkg/domain/model"
	"github.com/bundletools/unbundle/pkg/domain/types"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

type extractUseCase struct {
	bundle  *bundle.Bundle
	workers int

	// guards the created-directories cache shared by workers
	mu   sync.Mutex
	dirs map[string]struct{}
}

// Option configures the extraction use case
type Option func(*extractUseCase)

// WithWorkers sets the size of the extraction worker pool
func WithWorkers(n int) Option {
	return func(uc *extractUseCase) {
		if n > 0 {
			uc.workers = n
		}
	}
}

// NewExtract creates an ExtractUseCase over a parsed bundle
func NewExtract(b *bundle.Bundle, opts ...Option) interfaces.ExtractUseCase {
	uc := &extractUseCase{
		bundle:  b,
		workers: defaultWorkers,
		dirs:    map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ExtractAll extracts every entry of the bundle under outDir. Path-safety
// validation runs sequentially first; entries that pass are fanned out over a
// bounded worker pool, since they reference disjoint read ranges and write to
// disjoint output paths. Cancellation is checked before dispatching each
// entry: in-flight entries finish and a partial report is returned.
func (uc *extractUseCase) ExtractAll(ctx context.Context, outDir string, mode types.ExtractMode) (*model.ExtractionReport, error) {
	logger := ctxlog.From(ctx)

	if err := uc.bundle.BeginExtract(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(outDir)
	if err != nil {
		uc.bundle.FinishExtract(err)
		return nil, goerr.Wrap(err, "failed to resolve output directory", goerr.V("dir", outDir))
	}
	if mode != types.ModeDryRun {
		if err := os.MkdirAll(root, 0o755); err != nil {
			uc.bundle.FinishExtract(err)
			return nil, goerr.Wrap(err, "failed to create output directory", goerr.V("dir", root))
		}
	}

	entries := uc.bundle.Entries()
	results := make([]model.EntryResult, len(entries))

	// Sequential pre-pass: every output path is validated before any worker
	// touches the filesystem.
	paths := make([]string, len(entries))
	for i, entry := range entries {
		results[i].Entry = entry
		dst, err := safeOutputPath(root, entry.RelativePath)
		if err != nil {
			results[i].Err = err
			continue
		}
		paths[i] = dst
	}

	logger.Info("starting extraction",
		"entries", len(entries),
		"output", root,
		"mode", mode.String(),
		"workers", uc.workers,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)

	for i := range entries {
		if results[i].Err != nil {
			continue // rejected by path safety, never scheduled
		}
		if gctx.Err() != nil {
			results[i].Err = goerr.Wrap(gctx.Err(), "entry not scheduled",
				goerr.V("entry", entries[i].RelativePath),
			)
			continue
		}

		i := i
		g.Go(func() (gerr error) {
			defer func() {
				if r := recover(); r != nil {
					results[i].Err = goerr.New("panic during entry extraction",
						goerr.V("entry", entries[i].RelativePath),
						goerr.V("recover", r),
						goerr.V("stack", string(debug.Stack())),
					)
					if mode == types.ModeFailFast {
						gerr = results[i].Err
					}
				}
			}()

			err := uc.extractEntry(gctx, entries[i], paths[i], mode)
			results[i].Err = err
			if err == nil && mode != types.ModeDryRun {
				results[i].Path = paths[i]
			}
			if err != nil && mode == types.ModeFailFast {
				return err
			}
			return nil
		})
	}

	waitErr := g.Wait()
	report := &model.ExtractionReport{Results: results}

	var runErr error
	switch {
	case waitErr != nil:
		runErr = waitErr
	case report.Failed() > 0:
		runErr = goerr.Wrap(types.ErrPartialExtraction, "extraction finished with failures",
			goerr.V("failed", report.Failed()),
			goerr.V("succeeded", report.Succeeded()),
		)
	}

	uc.bundle.FinishExtract(runErr)

	logger.Info("extraction finished",
		"succeeded", report.Succeeded(),
		"failed", report.Failed(),
	)

	return report, runErr
}

// ExtractOne extracts a single entry under outDir without touching the rest
// of the bundle.
func (uc *extractUseCase) ExtractOne(ctx context.Context, entry model.FileEntry, outDir string) error {
	if uc.bundle.State() != types.StateReady {
		return goerr.Wrap(types.ErrInvalidState, "bundle is not ready for extraction",
			goerr.V("state", uc.bundle.State()),
		)
	}

	root, err := filepath.Abs(outDir)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve output directory", goerr.V("dir", outDir))
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create output directory", goerr.V("dir", root))
	}

	dst, err := safeOutputPath(root, entry.RelativePath)
	if err != nil {
		return err
	}

	return uc.extractEntry(ctx, entry, dst, types.ModeBestEffort)
}

// Inspect returns the parsed header and entry table
func (uc *extractUseCase) Inspect(ctx context.Context) (*model.BundleHeader, []model.FileEntry, error) {
	switch uc.bundle.State() {
	case types.StateEntriesParsed, types.StateReady, types.StateExtracting, types.StateDone:
		return uc.bundle.Header(), uc.bundle.Entries(), nil
	default:
		return nil, nil, goerr.Wrap(types.ErrInvalidState, "bundle is not parsed",
			goerr.V("state", uc.bundle.State()),
		)
	}
}

// extractEntry reads (and if needed decompresses) one entry and writes it to
// dst via a temp file in the same directory followed by an atomic rename, so
// a crash mid-write never leaves a half-written file at the final path.
func (uc *extractUseCase) extractEntry(ctx context.Context, entry model.FileEntry, dst string, mode types.ExtractMode) error {
	logger := ctxlog.From(ctx)

	payload, err := uc.bundle.EntryPayload(entry)
	if err != nil {
		return err
	}

	if mode == types.ModeDryRun {
		logger.Debug("validated entry",
			"path", entry.RelativePath,
			"size", len(payload),
		)
		return nil
	}

	if err := uc.ensureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	tmp := dst + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write temp file",
			goerr.V("entry", entry.RelativePath),
			goerr.V("tmp", tmp),
		)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return goerr.Wrap(err, "failed to finalize output file",
			goerr.V("entry", entry.RelativePath),
			goerr.V("path", dst),
		)
	}

	logger.Debug("extracted entry",
		"path", entry.RelativePath,
		"type", entry.Type.String(),
		"size", len(payload),
	)
	return nil
}

func (uc *extractUseCase) ensureDir(dir string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, ok := uc.dirs[dir]; ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("dir", dir))
	}
	uc.dirs[dir] = struct{}{}
	return nil
}
