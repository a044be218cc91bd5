// Package diet maps an Ayurvedic constitution and season to a static meal
// plan. Lookups are pure and the tables are never mutated.
package diet

import (
	"strings"
	"time"
)

const (
	Vata     = "VATA"
	Pitta    = "PITTA"
	Kapha    = "KAPHA"
	Tridosha = "TRIDOSHA"
)

const (
	Spring  = "SPRING"
	Summer  = "SUMMER"
	Monsoon = "MONSOON"
	Autumn  = "AUTUMN"
	Winter  = "WINTER"
)

var (
	Constitutions = []string{Vata, Pitta, Kapha, Tridosha}
	Seasons       = []string{Spring, Summer, Monsoon, Autumn, Winter}
)

type Meals struct {
	Morning []string `json:"morning"`
	Lunch   []string `json:"lunch"`
	Evening []string `json:"evening"`
}

type Template struct {
	Constitution string   `json:"constitution"`
	Season       string   `json:"season"`
	Meals        Meals    `json:"meals"`
	Guidelines   []string `json:"guidelines"`
	Restrictions []string `json:"restrictions"`
}

// Lookup returns the template for constitution and season, matched
// case-insensitively. Unknown pairs fall back to TRIDOSHA/SPRING; the second
// result reports whether the exact pair was found.
func Lookup(constitution, season string) (Template, bool) {
	c := strings.ToUpper(strings.TrimSpace(constitution))
	s := strings.ToUpper(strings.TrimSpace(season))
	if bySeason, ok := templates[c]; ok {
		if t, ok := bySeason[s]; ok {
			return t.with(c, s), true
		}
	}
	return templates[Tridosha][Spring].with(Tridosha, Spring), false
}

// Get is Lookup without the match flag.
func Get(constitution, season string) Template {
	t, _ := Lookup(constitution, season)
	return t
}

type seasonRange struct {
	season   string
	from, to time.Month
}

// Ranges are checked in order, so a boundary month belongs to the earlier
// season: May is SPRING, July is SUMMER, September is MONSOON.
var seasonRanges = []seasonRange{
	{Spring, time.February, time.May},
	{Summer, time.May, time.July},
	{Monsoon, time.July, time.September},
	{Autumn, time.September, time.November},
}

// SeasonForMonth derives the season of a calendar month.
func SeasonForMonth(month time.Month) string {
	for _, r := range seasonRanges {
		if month >= r.from && month <= r.to {
			return r.season
		}
	}
	return Winter
}

func CurrentSeason(now time.Time) string {
	return SeasonForMonth(now.Month())
}

func (t template) with(constitution, season string) Template {
	return Template{
		Constitution: constitution,
		Season:       season,
		Meals: Meals{
			Morning: clone(t.morning),
			Lunch:   clone(t.lunch),
			Evening: clone(t.evening),
		},
		Guidelines:   clone(t.guidelines),
		Restrictions: clone(t.restrictions),
	}
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
