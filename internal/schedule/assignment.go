package schedule

import (
	"sort"
	"strconv"
	"strings"
)

// AssignmentMap is the sparse (camp, week) -> attendee grid stored on a
// schedule document. Keys are positional: the camp index refers to the
// current position in the document's sorted camps list and the week index is
// zero-based from the document start date. Keys are serialized as "c-w"
// strings because document stores only accept string map keys.
//
// An absent key and a present-but-empty list both mean "nobody assigned";
// readers must treat them identically.
type AssignmentMap map[string][]string

// NewAssignmentMap returns an empty, ready-to-use map.
func NewAssignmentMap() AssignmentMap {
	return AssignmentMap{}
}

// CellKey encodes a (campIndex, weekIndex) pair as the stored map key.
func CellKey(campIndex, weekIndex int) string {
	return strconv.Itoa(campIndex) + "-" + strconv.Itoa(weekIndex)
}

// ParseCellKey decodes a stored map key. ok is false for malformed keys.
func ParseCellKey(key string) (campIndex, weekIndex int, ok bool) {
	c, w, found := strings.Cut(key, "-")
	if !found {
		return 0, 0, false
	}
	ci, err := strconv.Atoi(c)
	if err != nil || ci < 0 {
		return 0, 0, false
	}
	wi, err := strconv.Atoi(w)
	if err != nil || wi < 0 {
		return 0, 0, false
	}
	return ci, wi, true
}

// Get returns the attendee list for one cell. The result is a copy; callers
// may mutate it freely. Missing cells yield an empty list.
func (m AssignmentMap) Get(campIndex, weekIndex int) []string {
	kids := m[CellKey(campIndex, weekIndex)]
	out := make([]string, len(kids))
	copy(out, kids)
	return out
}

// Set replaces the full attendee list for exactly one cell. The list is
// stored with set semantics: duplicates are dropped, first occurrence order
// is kept. Every other cell is left untouched. An empty list is stored as an
// explicit empty list, meaning "this cell is currently empty".
func (m AssignmentMap) Set(campIndex, weekIndex int, kids []string) {
	seen := make(map[string]bool, len(kids))
	out := make([]string, 0, len(kids))
	for _, k := range kids {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	m[CellKey(campIndex, weekIndex)] = out
}

// WeekEntry is one camp's non-empty assignment within a single week.
type WeekEntry struct {
	CampIndex int
	Kids      []string
}

// ForEachInWeek returns the non-empty cells of one week in ascending camp
// order. Empty-but-present cells are skipped, same as absent ones.
func (m AssignmentMap) ForEachInWeek(weekIndex int) []WeekEntry {
	out := []WeekEntry{}
	for key, kids := range m {
		c, w, ok := ParseCellKey(key)
		if !ok || w != weekIndex || len(kids) == 0 {
			continue
		}
		cp := make([]string, len(kids))
		copy(cp, kids)
		out = append(out, WeekEntry{CampIndex: c, Kids: cp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CampIndex < out[j].CampIndex })
	return out
}

// Clone returns a deep copy.
func (m AssignmentMap) Clone() AssignmentMap {
	out := make(AssignmentMap, len(m))
	for k, kids := range m {
		cp := make([]string, len(kids))
		copy(cp, kids)
		out[k] = cp
	}
	return out
}

// reindexCamps rewrites every camp index through perm. Cells whose camp index
// maps to -1 are dropped; unknown indexes are dropped too (they reference a
// camp that no longer exists).
func (m AssignmentMap) reindexCamps(perm map[int]int) AssignmentMap {
	out := make(AssignmentMap, len(m))
	for key, kids := range m {
		c, w, ok := ParseCellKey(key)
		if !ok {
			continue
		}
		nc, known := perm[c]
		if !known || nc < 0 {
			continue
		}
		cp := make([]string, len(kids))
		copy(cp, kids)
		out[CellKey(nc, w)] = cp
	}
	return out
}

// pruneKid removes name from every attendee list. Lists emptied by the prune
// stay present as explicit empty lists so the cell unambiguously reads as
// "currently empty" rather than "unknown".
func (m AssignmentMap) pruneKid(name string) {
	for key, kids := range m {
		out := kids[:0:0]
		for _, k := range kids {
			if k != name {
				out = append(out, k)
			}
		}
		if out == nil {
			out = []string{}
		}
		m[key] = out
	}
}
