package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bundletools/unbundle/pkg/cli/config"
	"github.com/bundletools/unbundle/pkg/domain/model"
	"github.com/bundletools/unbundle/pkg/usecase"
	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"
)

func cmdInspect() *cli.Command {
	var bundleCfg config.Bundle

	return &cli.Command{
		Name:      "inspect",
		Aliases:   []string{"i"},
		Usage:     "Show bundle header and entry table without extracting",
		ArgsUsage: "<host-file>",
		Flags:     bundleCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return cli.Exit("usage: unbundle inspect <host-file>", exitCodeBundleFailure)
			}

			logger := ctxlog.From(ctx)

			b, err := openBundle(ctx, c.Args().Get(0), &bundleCfg)
			if err != nil {
				logger.Error("Failed to open bundle", "error", err)
				return cli.Exit(err.Error(), exitCodeBundleFailure)
			}

			header, entries, err := usecase.NewExtract(b).Inspect(ctx)
			if err != nil {
				return cli.Exit(err.Error(), exitCodeBundleFailure)
			}

			printBundleInfo(os.Stdout, b.Offset(), header, entries)
			return nil
		},
	}
}

func printBundleInfo(w io.Writer, offset uint64, header *model.BundleHeader, entries []model.FileEntry) {
	bold := color.New(color.Bold)

	bold.Fprintln(w, "Bundle")
	fmt.Fprintf(w, "  ID:      %s\n", header.BundleID)
	fmt.Fprintf(w, "  Version: %d.%d\n", header.MajorVersion, header.MinorVersion)
	fmt.Fprintf(w, "  Offset:  0x%x\n", offset)
	fmt.Fprintf(w, "  Files:   %d\n", header.FileCount)
	fmt.Fprintf(w, "  Flags:   0x%x\n", header.Flags)
	if header.DepsJson.IsValid() {
		fmt.Fprintf(w, "  deps.json:          0x%x (%d bytes)\n", header.DepsJson.Offset, header.DepsJson.Size)
	}
	if header.RuntimeConfigJson.IsValid() {
		fmt.Fprintf(w, "  runtimeconfig.json: 0x%x (%d bytes)\n", header.RuntimeConfigJson.Offset, header.RuntimeConfigJson.Size)
	}

	bold.Fprintln(w, "Entries")
	for _, e := range entries {
		compression := "stored"
		if e.IsCompressed() {
			compression = fmt.Sprintf("deflate (%d bytes)", e.CompressedSize)
		}
		fmt.Fprintf(w, "  0x%08x %10d  %-18s %-22s %s\n",
			e.Offset, e.Size, e.Type.String(), compression, e.RelativePath)
	}
}
