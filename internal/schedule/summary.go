package schedule

// WeekSummary is one week of a kid's itinerary.
type WeekSummary struct {
	WeekIndex int      `json:"weekIndex"`
	Label     string   `json:"label"` // calendar label of the week start, "Jun 2" style
	Attending bool     `json:"attending"`
	Camp      string   `json:"camp,omitempty"`
	CoKids    []string `json:"coKids"`
}

// Summarize projects a per-kid, per-week itinerary from the document: for
// each week the camp the kid attends (the lowest camp index whose attendee
// list contains the kid; a double-booked kid silently resolves to the first
// match) and the other names in that cell. Weeks with no match carry
// Attending=false. The projection is pure and deterministic: identical
// documents always produce identical output.
func Summarize(d *Document, kid string) []WeekSummary {
	out := make([]WeekSummary, 0, d.WeekCount)
	for w := 0; w < d.WeekCount; w++ {
		entry := WeekSummary{
			WeekIndex: w,
			Label:     d.WeekStart(w).Format("Jan 2"),
			CoKids:    []string{},
		}
		for _, cell := range d.Assignment.ForEachInWeek(w) {
			if !containsName(cell.Kids, kid) {
				continue
			}
			entry.Attending = true
			if cell.CampIndex < len(d.Camps) {
				entry.Camp = d.Camps[cell.CampIndex]
			}
			for _, k := range cell.Kids {
				if k != kid {
					entry.CoKids = append(entry.CoKids, k)
				}
			}
			break // first match wins
		}
		out = append(out, entry)
	}
	return out
}

func containsName(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}
