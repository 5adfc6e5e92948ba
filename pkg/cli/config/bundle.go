package config

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Bundle holds bundle-location configuration
type Bundle struct {
	Offset          string
	RelativeOffsets bool
}

// Flags returns CLI flags for bundle location
func (c *Bundle) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "offset",
			Usage:       "Bundle header offset, decimal or 0xHEX (skips signature scan)",
			Destination: &c.Offset,
			Sources:     cli.EnvVars("UNBUNDLE_OFFSET"),
		},
		&cli.BoolFlag{
			Name:        "relative-offsets",
			Usage:       "Treat entry offsets as relative to the bundle start",
			Destination: &c.RelativeOffsets,
			Sources:     cli.EnvVars("UNBUNDLE_RELATIVE_OFFSETS"),
		},
	}
}

// ParseOffset parses the offset flag. The second return value reports
// whether an offset was supplied at all.
func (c *Bundle) ParseOffset() (uint64, bool, error) {
	s := strings.TrimSpace(c.Offset)
	if s == "" {
		return 0, false, nil
	}

	// base 0 accepts both decimal and 0x-prefixed hex
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false, goerr.Wrap(err, "invalid bundle offset", goerr.V("offset", s))
	}
	return v, true, nil
}
