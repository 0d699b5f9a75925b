package schedule

import (
	"github.com/campboard/campboard/internal/roster"
)

// Structural edits to camps/allKids. Assignment keys are positional against
// the sorted lists, so every list mutation here reconciles the grid in the
// same step: insertions remap shifted camp indexes, removals cascade (re-key
// and prune) and the surviving lists stay sorted. Callers must never mutate
// Camps or AllKids directly.
//
// There is no rename primitive. Renaming a camp or kid is remove-old plus
// add-new, which intentionally drops the old name's assignments; the model
// cannot tell a rename apart from removing one entry and adding another.

// AddCamp inserts a camp name, remapping existing assignment keys to the
// camp's new sorted positions. No-op on blank or duplicate names.
func (d *Document) AddCamp(name string) bool {
	newCamps, changed := roster.Add(d.Camps, name)
	if !changed {
		return false
	}
	// Insertion shifts every camp at or after the insertion point up by one.
	perm := make(map[int]int, len(d.Camps))
	for i, camp := range d.Camps {
		perm[i] = roster.Index(newCamps, camp)
	}
	d.Assignment = d.Assignment.reindexCamps(perm)
	d.Camps = newCamps
	return true
}

// RemoveCamp deletes a camp by name. Cells of the removed camp are dropped
// and every camp past it is re-keyed down by one, so no assignment references
// an out-of-range index afterwards. Returns false when the camp is unknown.
func (d *Document) RemoveCamp(name string) bool {
	idx := roster.Index(d.Camps, name)
	if idx < 0 {
		return false
	}
	perm := make(map[int]int, len(d.Camps))
	for i := range d.Camps {
		switch {
		case i == idx:
			perm[i] = -1
		case i > idx:
			perm[i] = i - 1
		default:
			perm[i] = i
		}
	}
	d.Assignment = d.Assignment.reindexCamps(perm)
	d.Camps, _ = roster.Remove(d.Camps, name)
	return true
}

// AddKid inserts a kid name into allKids. Attendee lists store names, not
// indexes, so the grid needs no remapping. No-op on blank or duplicate names.
func (d *Document) AddKid(name string) bool {
	var changed bool
	d.AllKids, changed = roster.Add(d.AllKids, name)
	return changed
}

// RemoveKid deletes a kid name from allKids and prunes it from every attendee
// list. Cells emptied by the prune stay present as explicit empty lists.
// Returns false when the name is unknown.
func (d *Document) RemoveKid(name string) bool {
	var changed bool
	d.AllKids, changed = roster.Remove(d.AllKids, name)
	if !changed {
		return false
	}
	d.Assignment.pruneKid(name)
	return true
}
