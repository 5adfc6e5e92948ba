package bundle

import (
	"github.com/bundletools/unbundle/pkg/domain/model"
	"github.com/bundletools/unbundle/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

var supportedMajorVersions = map[uint32]struct{}{
	1: {},
	2: {},
	6: {},
}

// parseHeader decodes the fixed-layout bundle header at the cursor's current
// position. The version check runs before anything else is decoded so that
// incompatible bundles fail fast.
func parseHeader(c *Cursor) (*model.BundleHeader, error) {
	major, err := c.U32("majorVersion")
	if err != nil {
		return nil, err
	}
	minor, err := c.U32("minorVersion")
	if err != nil {
		return nil, err
	}
	count, err := c.U32("fileCount")
	if err != nil {
		return nil, err
	}

	if _, ok := supportedMajorVersions[major]; !ok {
		return nil, goerr.Wrap(types.ErrUnsupportedVersion, "bundle version is not supported",
			goerr.V("major", major),
			goerr.V("minor", minor),
		)
	}
	if count == 0 {
		return nil, goerr.Wrap(types.ErrCorruptHeader, "bundle has no embedded files",
			goerr.V("offset", c.Pos()),
		)
	}

	hdr := &model.BundleHeader{
		MajorVersion: major,
		MinorVersion: minor,
		FileCount:    count,
	}

	if hdr.BundleID, err = c.PathString("bundleId"); err != nil {
		return nil, err
	}

	// v1 headers stop after the bundle ID
	if major < 2 {
		return hdr, nil
	}

	if hdr.DepsJson.Offset, err = c.U64("depsJsonOffset"); err != nil {
		return nil, err
	}
	if hdr.DepsJson.Size, err = c.U64("depsJsonSize"); err != nil {
		return nil, err
	}
	if hdr.RuntimeConfigJson.Offset, err = c.U64("runtimeConfigJsonOffset"); err != nil {
		return nil, err
	}
	if hdr.RuntimeConfigJson.Size, err = c.U64("runtimeConfigJsonSize"); err != nil {
		return nil, err
	}
	if hdr.Flags, err = c.U64("flags"); err != nil {
		return nil, err
	}

	return hdr, nil
}
