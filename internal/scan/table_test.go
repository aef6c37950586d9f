package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/polarscan/internal/render"
	"github.com/banshee-data/polarscan/internal/timeutil"
)

func newTestTable() (*Table, *render.Recorder) {
	rec := render.NewRecorder()
	driver := render.NewDriver(rec, render.WithClock(timeutil.NewMockClock(time.Unix(0, 0))))
	return NewTable(driver), rec
}

func TestTable_UpsertNewAngle(t *testing.T) {
	table, rec := newTestTable()

	prev, replaced := table.Upsert(90, 22.6)
	assert.False(t, replaced)
	assert.Equal(t, render.NoHandle, prev)

	e, ok := table.Lookup(90)
	require.True(t, ok)
	assert.Equal(t, 22.6, e.Distance)
	assert.NotEqual(t, render.NoHandle, e.Handle)
	assert.Equal(t, 1, rec.Count(render.OpSet))
	assert.Equal(t, 0, rec.Count(render.OpClear))
}

func TestTable_UpsertReplacesExisting(t *testing.T) {
	table, rec := newTestTable()

	table.Upsert(0, 22.6)
	first, _ := table.Lookup(0)

	prev, replaced := table.Upsert(0, 18.8)
	require.True(t, replaced)
	assert.Equal(t, first.Handle, prev)

	second, ok := table.Lookup(0)
	require.True(t, ok)
	assert.Equal(t, 18.8, second.Distance)
	assert.NotEqual(t, first.Handle, second.Handle)

	// exactly one clear/set pair for the replacement and one live point
	assert.Equal(t, 2, rec.Count(render.OpSet))
	assert.Equal(t, 1, rec.Count(render.OpClear))
	live := rec.Live()
	require.Len(t, live, 1)
	assert.Equal(t, 18.8, live[second.Handle].R)
	assert.Equal(t, 1, table.Len())
}

func TestTable_IndependentAngles(t *testing.T) {
	table, rec := newTestTable()

	for angle := 0; angle < 360; angle += 15 {
		table.Upsert(angle, float64(angle))
	}
	// second sweep overwrites every angle
	for angle := 345; angle >= 0; angle -= 15 {
		table.Upsert(angle, float64(angle)+1)
	}

	assert.Equal(t, 24, table.Len())
	assert.Len(t, rec.Live(), 24, "one live point per angle")
	assert.Equal(t, 24, rec.Count(render.OpClear))

	e, ok := table.Lookup(345)
	require.True(t, ok)
	assert.Equal(t, 346.0, e.Distance)

	_, ok = table.Lookup(7)
	assert.False(t, ok)
}

func TestTable_Snapshot(t *testing.T) {
	table, _ := newTestTable()
	table.Upsert(270, 3)
	table.Upsert(0, 1)
	table.Upsert(90, 2)
	table.Upsert(0, 4)

	assert.Equal(t, []Point{{0, 4}, {90, 2}, {270, 3}}, table.Snapshot())
	assert.Empty(t, NewTable(nil).Snapshot())
}
