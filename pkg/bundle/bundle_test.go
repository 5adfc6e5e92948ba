package bundle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bundletools/unbundle/pkg/bundle"
	"github.com/bundletools/unbundle/pkg/bundle/bundletest"
	"github.com/bundletools/unbundle/pkg/domain/model"
	"github.com/bundletools/unbundle/pkg/domain/types"
	"github.com/bundletools/unbundle/pkg/infra/hostfile"
	"github.com/m-mizutani/gt"
)

func TestBundle_LocateAndParse(t *testing.T) {
	ctx := context.Background()

	t.Run("v6 bundle with compressed entry", func(t *testing.T) {
		builder := &bundletest.Builder{
			BundleID: "abc123",
			Padding:  64,
			Flags:    model.FlagNetcoreApp3Compat,
			Entries: []bundletest.Entry{
				{Path: "app.dll", Data: []byte("assembly bytes"), Type: model.FileTypeAssembly},
				{Path: "app.deps.json", Data: []byte(`{"runtimeTarget":{}}`), Type: model.FileTypeDepsJson, Compress: true},
			},
		}
		host, offset := builder.Build()

		b := bundle.New(hostfile.FromBytes(host))
		gt.Equal(t, b.State(), types.StateUnopened)

		gt.NoError(t, b.Locate(ctx))
		gt.Equal(t, b.State(), types.StateLocated)
		gt.Equal(t, b.Offset(), offset)

		gt.NoError(t, b.Parse(ctx))
		gt.Equal(t, b.State(), types.StateReady)

		header := b.Header()
		gt.Equal(t, header.MajorVersion, uint32(6))
		gt.Equal(t, header.BundleID, "abc123")
		gt.Equal(t, header.FileCount, uint32(2))
		gt.Equal(t, header.Flags, model.FlagNetcoreApp3Compat)

		entries := b.Entries()
		gt.Equal(t, len(entries), 2)
		gt.Equal(t, entries[0].RelativePath, "app.dll")
		gt.Equal(t, entries[0].Type, model.FileTypeAssembly)
		gt.Equal(t, entries[0].IsCompressed(), false)
		gt.Equal(t, entries[1].RelativePath, "app.deps.json")
		gt.Equal(t, entries[1].IsCompressed(), true)

		// fileCount equals the number of decodable entries
		gt.Equal(t, int(header.FileCount), len(entries))
	})

	t.Run("v1 bundle has no location fields", func(t *testing.T) {
		builder := &bundletest.Builder{
			Major: 1,
			Entries: []bundletest.Entry{
				{Path: "a.dll", Data: []byte("x"), Type: model.FileTypeAssembly},
			},
		}
		host, _ := builder.Build()

		b := bundle.New(hostfile.FromBytes(host))
		gt.NoError(t, b.Locate(ctx))
		gt.NoError(t, b.Parse(ctx))

		header := b.Header()
		gt.Equal(t, header.MajorVersion, uint32(1))
		gt.Equal(t, header.DepsJson.IsValid(), false)
		gt.Equal(t, header.RuntimeConfigJson.IsValid(), false)
		gt.Equal(t, header.Flags, uint64(0))
	})

	t.Run("unsupported version is rejected before entries", func(t *testing.T) {
		builder := &bundletest.Builder{
			Major: 9,
			Entries: []bundletest.Entry{
				{Path: "a.dll", Data: []byte("x"), Type: model.FileTypeAssembly},
			},
		}
		host, _ := builder.Build()

		b := bundle.New(hostfile.FromBytes(host))
		gt.NoError(t, b.Locate(ctx))

		err := b.Parse(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrUnsupportedVersion))
		gt.Equal(t, b.State(), types.StateFailed)
		gt.Equal(t, b.Err(), err)
	})

	t.Run("explicit offset bypasses the scanner", func(t *testing.T) {
		builder := &bundletest.Builder{
			Padding:       32,
			OmitSignature: true,
			Entries: []bundletest.Entry{
				{Path: "a.dll", Data: []byte("data"), Type: model.FileTypeAssembly},
			},
		}
		host, offset := builder.Build()

		// without the explicit offset the scan fails
		noOffset := bundle.New(hostfile.FromBytes(host))
		err := noOffset.Locate(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrBundleNotFound))

		b := bundle.New(hostfile.FromBytes(host), bundle.WithOffset(offset))
		gt.NoError(t, b.Locate(ctx))
		gt.NoError(t, b.Parse(ctx))
		gt.Equal(t, b.Header().FileCount, uint32(1))
	})

	t.Run("explicit offset at invalid header", func(t *testing.T) {
		builder := &bundletest.Builder{
			Padding: 64,
			Entries: []bundletest.Entry{
				{Path: "a.dll", Data: []byte("data"), Type: model.FileTypeAssembly},
			},
		}
		host, _ := builder.Build()

		// offset 0 points into the padding: major version 0 is unsupported
		b := bundle.New(hostfile.FromBytes(host), bundle.WithOffset(0))
		gt.NoError(t, b.Locate(ctx))

		err := b.Parse(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrUnsupportedVersion))
	})

	t.Run("entry table running past the source is corrupt", func(t *testing.T) {
		builder := &bundletest.Builder{
			OmitSignature: true,
			CountOverride: 3,
			Entries: []bundletest.Entry{
				{Path: "a.dll", Data: []byte("data"), Type: model.FileTypeAssembly},
			},
		}
		host, offset := builder.Build()

		b := bundle.New(hostfile.FromBytes(host), bundle.WithOffset(offset))
		gt.NoError(t, b.Locate(ctx))

		err := b.Parse(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrCorruptHeader))
		gt.Equal(t, b.State(), types.StateFailed)
	})

	t.Run("unknown type byte maps to Unknown and is retained", func(t *testing.T) {
		builder := &bundletest.Builder{
			Entries: []bundletest.Entry{
				{Path: "weird.bin", Data: []byte("data"), TypeByte: 0xee},
			},
		}
		host, _ := builder.Build()

		b := bundle.New(hostfile.FromBytes(host))
		gt.NoError(t, b.Locate(ctx))
		gt.NoError(t, b.Parse(ctx))

		entries := b.Entries()
		gt.Equal(t, len(entries), 1)
		gt.Equal(t, entries[0].Type, model.FileTypeUnknown)
		gt.Equal(t, entries[0].RelativePath, "weird.bin")
	})

	t.Run("parse before locate is invalid", func(t *testing.T) {
		host, _ := (&bundletest.Builder{
			Entries: []bundletest.Entry{{Path: "a", Data: []byte("x")}},
		}).Build()

		b := bundle.New(hostfile.FromBytes(host))
		err := b.Parse(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrInvalidState))
	})
}

func TestBundle_EntryPayload(t *testing.T) {
	ctx := context.Background()

	t.Run("stored entry is returned verbatim", func(t *testing.T) {
		want := []byte("raw assembly bytes")
		host, _ := (&bundletest.Builder{
			Entries: []bundletest.Entry{
				{Path: "a.dll", Data: want, Type: model.FileTypeAssembly},
			},
		}).Build()

		b := bundle.New(hostfile.FromBytes(host))
		gt.NoError(t, b.Locate(ctx))
		gt.NoError(t, b.Parse(ctx))

		got, err := b.EntryPayload(b.Entries()[0])
		gt.NoError(t, err)
		gt.Equal(t, got, want)
	})

	t.Run("compressed entry round-trips", func(t *testing.T) {
		want := []byte(`{"runtimeOptions":{"tfm":"net6.0"}}`)
		host, _ := (&bundletest.Builder{
			Entries: []bundletest.Entry{
				{Path: "cfg.json", Data: want, Type: model.FileTypeRuntimeConfigJson, Compress: true},
			},
		}).Build()

		b := bundle.New(hostfile.FromBytes(host))
		gt.NoError(t, b.Locate(ctx))
		gt.NoError(t, b.Parse(ctx))

		entry := b.Entries()[0]
		gt.True(t, entry.IsCompressed())

		got, err := b.EntryPayload(entry)
		gt.NoError(t, err)
		gt.Equal(t, got, want)
		gt.Equal(t, uint64(len(got)), entry.Size)
	})

	t.Run("entry range outside host file is corrupt", func(t *testing.T) {
		host, _ := (&bundletest.Builder{
			Entries: []bundletest.Entry{
				{Path: "a.dll", Data: []byte("x"), Type: model.FileTypeAssembly},
			},
		}).Build()

		b := bundle.New(hostfile.FromBytes(host))
		gt.NoError(t, b.Locate(ctx))
		gt.NoError(t, b.Parse(ctx))

		bogus := b.Entries()[0]
		bogus.Offset = uint64(len(host)) + 100

		_, err := b.EntryPayload(bogus)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrCorruptEntry))
	})

	t.Run("relative offsets shift the read base", func(t *testing.T) {
		// build a bundle whose entry offsets are bundle-relative by hand:
		// payload sits right before the header, so relative offset =
		// absolute - headerOffset is negative territory; instead place the
		// bundle at offset 0 where absolute == relative.
		host, offset := (&bundletest.Builder{
			Entries: []bundletest.Entry{
				{Path: "a.dll", Data: []byte("payload"), Type: model.FileTypeAssembly},
			},
		}).Build()
		gt.Equal(t, offset > 0, true)

		abs := bundle.New(hostfile.FromBytes(host))
		gt.NoError(t, abs.Locate(ctx))
		gt.NoError(t, abs.Parse(ctx))

		// with absolute interpretation the payload reads correctly
		got, err := abs.EntryPayload(abs.Entries()[0])
		gt.NoError(t, err)
		gt.Equal(t, got, []byte("payload"))

		// with relative interpretation the same entry reads shifted data
		rel := bundle.New(hostfile.FromBytes(host), bundle.WithRelativeOffsets())
		gt.NoError(t, rel.Locate(ctx))
		gt.NoError(t, rel.Parse(ctx))

		shifted, err := rel.EntryPayload(rel.Entries()[0])
		if err == nil {
			gt.V(t, shifted).NotEqual([]byte("payload"))
		}
	})
}

func TestBundle_ExtractLifecycle(t *testing.T) {
	ctx := context.Background()

	host, _ := (&bundletest.Builder{
		Entries: []bundletest.Entry{
			{Path: "a.dll", Data: []byte("x"), Type: model.FileTypeAssembly},
		},
	}).Build()

	b := bundle.New(hostfile.FromBytes(host))
	gt.NoError(t, b.Locate(ctx))
	gt.NoError(t, b.Parse(ctx))

	t.Run("begin requires ready", func(t *testing.T) {
		gt.NoError(t, b.BeginExtract())
		gt.Equal(t, b.State(), types.StateExtracting)

		err := b.BeginExtract()
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrInvalidState))
	})

	t.Run("finish moves to done", func(t *testing.T) {
		b.FinishExtract(nil)
		gt.Equal(t, b.State(), types.StateDone)
	})
}
