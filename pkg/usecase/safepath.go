package usecase

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bundletools/unbundle/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// safeOutputPath joins root with an entry's forward-slash relative path and
// rejects any result that would resolve outside root: absolute paths,
// drive-letter paths, and ".." traversal segments.
func safeOutputPath(root, rel string) (string, error) {
	if rel == "" {
		return "", goerr.Wrap(types.ErrPathSafety, "entry has empty path")
	}
	if strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, "\\") {
		return "", goerr.Wrap(types.ErrPathSafety, "entry path is absolute",
			goerr.V("path", rel),
		)
	}
	if hasDriveLetter(rel) {
		return "", goerr.Wrap(types.ErrPathSafety, "entry path has a drive letter",
			goerr.V("path", rel),
		)
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", goerr.Wrap(types.ErrPathSafety, "entry path traverses above output root",
			goerr.V("path", rel),
		)
	}

	dst := filepath.Join(root, filepath.FromSlash(clean))
	if dst != root && !strings.HasPrefix(dst, root+string(os.PathSeparator)) {
		return "", goerr.Wrap(types.ErrPathSafety, "entry path escapes output root",
			goerr.V("path", rel),
			goerr.V("resolved", dst),
		)
	}

	return dst, nil
}

func hasDriveLetter(p string) bool {
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
