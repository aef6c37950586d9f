// Package scan keeps the latest accepted distance for each angle of the sweep
// together with the handle of its rendered point.
package scan

import (
	"sort"

	"github.com/banshee-data/polarscan/internal/render"
)

// Replacer creates and releases rendered points on behalf of the table.
// *render.Driver satisfies it.
type Replacer interface {
	Replace(old render.Handle, angle int, distance float64) (released, fresh render.Handle)
}

// Entry is the state held for one angle.
type Entry struct {
	Distance float64
	Handle   render.Handle
}

// Point is an angle and its latest distance.
type Point struct {
	Angle    int
	Distance float64
}

// Table maps angles to their latest entry. It is not safe for concurrent use;
// the acquisition loop is its only caller.
type Table struct {
	renderer Replacer
	entries  map[int]Entry
}

// NewTable returns an empty table that draws through r.
func NewTable(r Replacer) *Table {
	return &Table{
		renderer: r,
		entries:  make(map[int]Entry),
	}
}

// Upsert installs distance at angle. When the angle already held a point its
// handle is released through the renderer before the new one is drawn, and
// the released handle is returned with replaced set.
func (t *Table) Upsert(angle int, distance float64) (previous render.Handle, replaced bool) {
	old, ok := t.entries[angle]
	if ok {
		delete(t.entries, angle)
	}
	released, fresh := t.renderer.Replace(old.Handle, angle, distance)
	t.entries[angle] = Entry{Distance: distance, Handle: fresh}
	return released, ok
}

// Lookup returns the entry for angle.
func (t *Table) Lookup(angle int) (Entry, bool) {
	e, ok := t.entries[angle]
	return e, ok
}

// Len returns the number of angles holding a point.
func (t *Table) Len() int {
	return len(t.entries)
}

// Snapshot returns every held point ordered by angle.
func (t *Table) Snapshot() []Point {
	out := make([]Point, 0, len(t.entries))
	for angle, e := range t.entries {
		out = append(out, Point{Angle: angle, Distance: e.Distance})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Angle < out[j].Angle })
	return out
}
