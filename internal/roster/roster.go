// Package roster implements the sorted, duplicate-free name lists used for
// both the per-account kid roster and the camps/kids lists on a schedule.
// All functions are pure: inputs are never mutated, results are fresh slices.
package roster

import (
	"sort"
	"strings"
)

// Add inserts name into list keeping lexicographic order. It is a no-op when
// the name is blank (after trimming) or already present (case-sensitive exact
// match). The boolean reports whether the list changed.
func Add(list []string, name string) ([]string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || Contains(list, name) {
		return list, false
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, name)
	sort.Strings(out)
	return out, true
}

// Remove deletes the exact match of name from list. Absent names are not an
// error; the boolean reports whether the list changed.
func Remove(list []string, name string) ([]string, bool) {
	idx := Index(list, name)
	if idx < 0 {
		return list, false
	}
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:idx]...)
	out = append(out, list[idx+1:]...)
	return out, true
}

// Contains reports whether name is present (exact match).
func Contains(list []string, name string) bool {
	return Index(list, name) >= 0
}

// Index returns the position of name in list, or -1 when absent.
func Index(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return -1
}

// Normalize returns list deduplicated and lexicographically sorted.
func Normalize(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Unscheduled returns the roster names that have no schedule yet, judged by
// exact match against the kid names of the schedules the account can see.
func Unscheduled(kids []string, scheduledKidNames []string) []string {
	out := make([]string, 0, len(kids))
	for _, k := range kids {
		if !Contains(scheduledKidNames, k) {
			out = append(out, k)
		}
	}
	return out
}
