package client

import (
	"sort"
	"strings"

	"github.com/ayush/argumetrics/internal/models"
)

// AllArchetypes disables the archetype filter.
const AllArchetypes = "all"

// FilterArguments keeps arguments matching archetype (or any, for "" and
// "all") whose title or description contains search, case-insensitively.
func FilterArguments(list []models.Argument, archetype, search string) []models.Argument {
	search = strings.ToLower(strings.TrimSpace(search))
	out := []models.Argument{}
	for _, a := range list {
		if archetype != "" && !strings.EqualFold(archetype, AllArchetypes) && string(a.Archetype) != archetype {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Title), search) &&
			!strings.Contains(strings.ToLower(a.Description), search) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Recent returns the n newest arguments, newest first.
func Recent(list []models.Argument, n int) []models.Argument {
	sorted := append([]models.Argument(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// NoDominantArchetype is reported when there are no arguments.
const NoDominantArchetype = "None"

// Summary is the headline of the dashboard and report views.
type Summary struct {
	Total    int
	Dominant string
}

// Summarize totals list and picks the archetype with the highest count in
// report. Ties go to the archetype listed first in models.Archetypes.
func Summarize(list []models.Argument, report []models.ArchetypeCount) Summary {
	s := Summary{Total: len(list), Dominant: NoDominantArchetype}
	best := 0
	for _, archetype := range models.Archetypes {
		for _, row := range report {
			if row.Archetype == archetype && row.Count > best {
				best = row.Count
				s.Dominant = string(archetype)
			}
		}
	}
	return s
}
