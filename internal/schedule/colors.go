package schedule

import "github.com/campboard/campboard/internal/roster"

// Palette is the fixed, ordered set of display color tokens for kids. A kid's
// color is purely a function of its rank in the sorted allKids list; it is
// never persisted. Inserting a kid ahead of others shifts their colors, which
// is accepted: the grid recolors consistently on every render.
var Palette = []string{
	"#E57373", // red
	"#64B5F6", // blue
	"#81C784", // green
	"#FFD54F", // amber
	"#BA68C8", // purple
	"#4DB6AC", // teal
	"#FF8A65", // deep orange
	"#A1887F", // brown
	"#90A4AE", // blue grey
	"#F06292", // pink
}

// ColorFor returns palette[rank mod len(palette)] where rank is the kid's
// position in sortedKids. Unknown kids fall back to the first palette entry.
func ColorFor(kid string, sortedKids []string) string {
	idx := roster.Index(sortedKids, kid)
	if idx < 0 {
		idx = 0
	}
	return Palette[idx%len(Palette)]
}
