// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lyxtab/pkg/types"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "state", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndLookup(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	mod := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)

	_, ok, err := l.Lookup(ctx, "tables/a.lyx")
	require.NoError(t, err)
	assert.False(t, ok)

	rec := types.ConversionRecord{
		LyXPath:       "tables/a.lyx",
		TexPath:       "tables/a.tex",
		Status:        types.ConversionDone,
		Environment:   "tabular",
		Lines:         7,
		SourceModTime: mod,
		ConvertedAt:   mod.Add(time.Minute),
	}
	require.NoError(t, l.Record(ctx, rec))

	got, ok, err := l.Lookup(ctx, "tables/a.lyx")
	require.NoError(t, err)
	require.True(t, ok)

	abs, _ := filepath.Abs("tables/a.lyx")
	assert.Equal(t, abs, got.LyXPath)
	assert.Equal(t, "tables/a.tex", got.TexPath)
	assert.Equal(t, types.ConversionDone, got.Status)
	assert.Equal(t, "tabular", got.Environment)
	assert.Equal(t, 7, got.Lines)
	assert.True(t, got.SourceModTime.Equal(mod))
	assert.True(t, got.ConvertedAt.Equal(mod.Add(time.Minute)))

	// Absolute and relative spellings share a row.
	_, ok, err = l.Lookup(ctx, abs)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRecord_Replaces(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, types.ConversionRecord{LyXPath: "a.lyx", Status: types.ConversionFailed, Error: "boom"}))
	require.NoError(t, l.Record(ctx, types.ConversionRecord{LyXPath: "a.lyx", Status: types.ConversionDone, Lines: 3}))

	recs, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, types.ConversionDone, recs[0].Status)
	assert.Empty(t, recs[0].Error)
}

func TestUnchanged(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	mod := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, l.Record(ctx, types.ConversionRecord{LyXPath: "done.lyx", Status: types.ConversionDone, SourceModTime: mod}))
	require.NoError(t, l.Record(ctx, types.ConversionRecord{LyXPath: "empty.lyx", Status: types.ConversionEmpty, SourceModTime: mod}))
	require.NoError(t, l.Record(ctx, types.ConversionRecord{LyXPath: "failed.lyx", Status: types.ConversionFailed, SourceModTime: mod}))

	tests := []struct {
		name string
		path string
		mod  time.Time
		want bool
	}{
		{"same mod time", "done.lyx", mod, true},
		{"same instant in another zone", "done.lyx", mod.In(time.FixedZone("x", 3600)), true},
		{"empty result counts as done", "empty.lyx", mod, true},
		{"touched since", "done.lyx", mod.Add(time.Second), false},
		{"failures are retried next run", "failed.lyx", mod, false},
		{"never recorded", "new.lyx", mod, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Unchanged(ctx, tt.path, tt.mod)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_Ordered(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	dir := t.TempDir()

	for _, name := range []string{"c.lyx", "a.lyx", "b.lyx"} {
		require.NoError(t, l.Record(ctx, types.ConversionRecord{
			LyXPath: filepath.Join(dir, name),
			Status:  types.ConversionDone,
		}))
	}

	recs, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, filepath.Join(dir, "a.lyx"), recs[0].LyXPath)
	assert.Equal(t, filepath.Join(dir, "c.lyx"), recs[2].LyXPath)
	assert.True(t, recs[0].SourceModTime.IsZero())
}
