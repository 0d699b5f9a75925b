package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	d := New("Ann", "owner-1", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 3)
	d.AddCamp("Art")
	d.AddCamp("Soccer")
	d.AddKid("Bo")
	d.Assignment.Set(0, 0, []string{"Ann", "Bo"}) // Art, week 1
	d.Assignment.Set(1, 2, []string{"Ann"})       // Soccer, week 3

	got := Summarize(d, "Ann")
	require.Len(t, got, 3)

	assert.Equal(t, WeekSummary{WeekIndex: 0, Label: "Jun 1", Attending: true, Camp: "Art", CoKids: []string{"Bo"}}, got[0])
	assert.Equal(t, WeekSummary{WeekIndex: 1, Label: "Jun 8", Attending: false, CoKids: []string{}}, got[1])
	assert.Equal(t, WeekSummary{WeekIndex: 2, Label: "Jun 15", Attending: true, Camp: "Soccer", CoKids: []string{}}, got[2])
}

// A kid double-booked across camps in the same week resolves to the lowest
// camp index, silently.
func TestSummarizeFirstMatchWins(t *testing.T) {
	d := New("Ann", "owner-1", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 1)
	d.AddCamp("Art")
	d.AddCamp("Soccer")
	d.Assignment.Set(0, 0, []string{"Ann"})
	d.Assignment.Set(1, 0, []string{"Ann", "Bo"})

	got := Summarize(d, "Ann")
	require.Len(t, got, 1)
	assert.Equal(t, "Art", got[0].Camp)
	assert.Empty(t, got[0].CoKids, "co-attendees come from the winning cell only")
}

func TestSummarizeDeterministic(t *testing.T) {
	d := New("Ann", "owner-1", time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC), 8)
	d.AddCamp("Art")
	d.AddCamp("Chess")
	d.AddCamp("Soccer")
	for _, k := range []string{"Bo", "Cy", "Dee"} {
		d.AddKid(k)
	}
	d.Assignment.Set(0, 0, []string{"Ann", "Bo", "Cy"})
	d.Assignment.Set(2, 4, []string{"Dee", "Ann"})
	d.Assignment.Set(1, 7, []string{"Ann"})

	first := Summarize(d, "Ann")
	second := Summarize(d, "Ann")
	assert.Equal(t, first, second)
}

func TestSummarizeUnknownKid(t *testing.T) {
	d := New("Ann", "owner-1", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), 2)
	d.AddCamp("Art")
	d.Assignment.Set(0, 0, []string{"Ann"})

	got := Summarize(d, "Nobody")
	require.Len(t, got, 2)
	for _, wk := range got {
		assert.False(t, wk.Attending)
		assert.Empty(t, wk.Camp)
	}
}

func TestWeekStartIsUTC(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	d := New("Ann", "owner-1", time.Date(2026, 6, 1, 22, 0, 0, 0, loc), 2)
	assert.Equal(t, time.UTC, d.WeekStart(0).Location())
	assert.Equal(t, d.WeekStart(0).AddDate(0, 0, 7), d.WeekStart(1))
}
