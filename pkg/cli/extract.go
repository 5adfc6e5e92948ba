package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bundletools/unbundle/pkg/bundle"
	"github.com/bundletools/unbundle/pkg/cli/config"
	"github.com/bundletools/unbundle/pkg/domain/model"
	"github.com/bundletools/unbundle/pkg/infra/hostfile"
	"github.com/bundletools/unbundle/pkg/usecase"
	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"
)

// Exit codes: location/version/header failures abort before any entry is
// attempted and exit with 2; per-entry failures exit with 1.
const (
	exitCodeEntryFailure  = 1
	exitCodeBundleFailure = 2
)

func cmdExtract() *cli.Command {
	var (
		bundleCfg  config.Bundle
		extractCfg config.Extract
	)

	flags := append(bundleCfg.Flags(), extractCfg.Flags()...)

	return &cli.Command{
		Name:      "extract",
		Aliases:   []string{"x"},
		Usage:     "Extract all bundle entries into an output directory",
		ArgsUsage: "<host-file> <output-dir>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return cli.Exit("usage: unbundle extract <host-file> <output-dir>", exitCodeBundleFailure)
			}
			hostPath := c.Args().Get(0)
			outDir := c.Args().Get(1)

			logger := ctxlog.From(ctx)

			b, err := openBundle(ctx, hostPath, &bundleCfg)
			if err != nil {
				logger.Error("Failed to open bundle", "error", err, "path", hostPath)
				return cli.Exit(err.Error(), exitCodeBundleFailure)
			}

			uc := usecase.NewExtract(b, usecase.WithWorkers(extractCfg.Workers))
			report, err := uc.ExtractAll(ctx, outDir, extractCfg.Mode())
			if report != nil {
				printReport(os.Stdout, report, extractCfg.DryRun)
			}
			if err != nil {
				logger.Error("Extraction failed", "error", err)
				return cli.Exit(err.Error(), exitCodeEntryFailure)
			}

			return nil
		},
	}
}

// openBundle opens the host file and drives the bundle through locate+parse
func openBundle(ctx context.Context, hostPath string, cfg *config.Bundle) (*bundle.Bundle, error) {
	src, err := hostfile.Open(hostPath)
	if err != nil {
		return nil, err
	}

	var opts []bundle.Option
	offset, ok, err := cfg.ParseOffset()
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, bundle.WithOffset(offset))
	}
	if cfg.RelativeOffsets {
		opts = append(opts, bundle.WithRelativeOffsets())
	}

	b := bundle.New(src, opts...)
	if err := b.Locate(ctx); err != nil {
		return nil, err
	}
	if err := b.Parse(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func printReport(w io.Writer, report *model.ExtractionReport, dryRun bool) {
	okMark := color.New(color.FgGreen).Sprint("ok")
	if dryRun {
		okMark = color.New(color.FgYellow).Sprint("ok (dry-run)")
	}
	failMark := color.New(color.FgRed).Sprint("failed")

	for _, res := range report.Results {
		if res.OK() {
			fmt.Fprintf(w, "  %-12s %s\n", okMark, res.Entry.RelativePath)
		} else {
			fmt.Fprintf(w, "  %-12s %s: %v\n", failMark, res.Entry.RelativePath, res.Err)
		}
	}

	summary := fmt.Sprintf("%d/%d entries extracted", report.Succeeded(), len(report.Results))
	if report.Failed() > 0 {
		fmt.Fprintln(w, color.New(color.FgRed, color.Bold).Sprint(summary))
	} else {
		fmt.Fprintln(w, color.New(color.FgGreen, color.Bold).Sprint(summary))
	}
}
