package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteShape(t *testing.T) {
	require.GreaterOrEqual(t, len(Palette), 8)
	seen := map[string]bool{}
	for _, c := range Palette {
		require.False(t, seen[c], "palette tokens must be distinct")
		seen[c] = true
	}
}

func TestColorForIsRankModPalette(t *testing.T) {
	kids := []string{"Ann", "Bo", "Cy"}
	assert.Equal(t, Palette[0], ColorFor("Ann", kids))
	assert.Equal(t, Palette[1], ColorFor("Bo", kids))
	assert.Equal(t, Palette[2], ColorFor("Cy", kids))

	// rank wraps around the palette
	many := make([]string, len(Palette)+1)
	for i := range many {
		many[i] = string(rune('A' + i))
	}
	assert.Equal(t, Palette[0], ColorFor(many[len(Palette)], many))
}

// Inserting a kid ahead of an existing one shifts that kid's color by the
// mod-rotation rule.
func TestColorShiftsOnInsertion(t *testing.T) {
	kids := []string{"Bo", "Cy"}
	assert.Equal(t, Palette[0], ColorFor("Bo", kids))

	kids = []string{"Ann", "Bo", "Cy"}
	assert.Equal(t, Palette[1], ColorFor("Bo", kids))
	assert.Equal(t, Palette[2], ColorFor("Cy", kids))
}

func TestColorForUnknownKid(t *testing.T) {
	assert.Equal(t, Palette[0], ColorFor("Nobody", []string{"Ann"}))
}
