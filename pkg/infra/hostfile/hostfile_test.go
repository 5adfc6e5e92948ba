package hostfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bundletools/unbundle/pkg/infra/hostfile"
	"github.com/m-mizutani/gt"
)

func TestOpen(t *testing.T) {
	t.Run("reads the whole file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "host.bin")
		want := []byte("host file contents")
		gt.NoError(t, os.WriteFile(path, want, 0o644))

		src, err := hostfile.Open(path)
		gt.NoError(t, err)
		gt.Equal(t, src.Path(), path)
		gt.Equal(t, src.Len(), uint64(len(want)))
		gt.Equal(t, src.Bytes(), want)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := hostfile.Open(filepath.Join(t.TempDir(), "nope"))
		gt.Error(t, err)
	})
}

func TestSource_Slice(t *testing.T) {
	src := hostfile.FromBytes([]byte{0, 1, 2, 3, 4, 5, 6, 7})

	t.Run("in bounds", func(t *testing.T) {
		b, err := src.Slice(2, 3)
		gt.NoError(t, err)
		gt.Equal(t, b, []byte{2, 3, 4})
	})

	t.Run("zero length at end", func(t *testing.T) {
		b, err := src.Slice(8, 0)
		gt.NoError(t, err)
		gt.Equal(t, len(b), 0)
	})

	t.Run("out of bounds", func(t *testing.T) {
		_, err := src.Slice(6, 3)
		gt.Error(t, err)
	})

	t.Run("overflowing range", func(t *testing.T) {
		_, err := src.Slice(^uint64(0), 2)
		gt.Error(t, err)
	})
}
