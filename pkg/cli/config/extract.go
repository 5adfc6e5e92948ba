package config

import (
	"github.com/bundletools/unbundle/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Extract holds extraction configuration
type Extract struct {
	DryRun   bool
	FailFast bool
	Workers  int
}

// Flags returns CLI flags for extraction behavior
func (c *Extract) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Validate and decompress every entry without writing files",
			Destination: &c.DryRun,
		},
		&cli.BoolFlag{
			Name:        "fail-fast",
			Usage:       "Abort the whole run on the first entry failure",
			Destination: &c.FailFast,
		},
		&cli.IntFlag{
			Name:        "workers",
			Usage:       "Number of parallel extraction workers",
			Value:       4,
			Destination: &c.Workers,
			Sources:     cli.EnvVars("UNBUNDLE_WORKERS"),
		},
	}
}

// Mode maps the flags to an extraction mode. Dry-run wins over fail-fast.
func (c *Extract) Mode() types.ExtractMode {
	switch {
	case c.DryRun:
		return types.ModeDryRun
	case c.FailFast:
		return types.ModeFailFast
	default:
		return types.ModeBestEffort
	}
}
