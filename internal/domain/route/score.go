package route

import "strings"

// Count selects how keyword hits are tallied.
type Count int

const (
	// CountEntries counts each keyword entry at most once per query.
	CountEntries Count = iota
	// CountOccurrences counts every non-overlapping occurrence of each entry.
	CountOccurrences
)

// Score is one route's keyword score.
type Score struct {
	Route string
	Value int
}

// Scores holds keyword scores in registry declaration order.
type Scores []Score

// Best returns the highest score; ties go to the earliest declared route.
func (s Scores) Best() Score {
	var best Score
	for i, sc := range s {
		if i == 0 || sc.Value > best.Value {
			best = sc
		}
	}
	return best
}

// Map returns scores keyed by route name.
func (s Scores) Map() map[string]int {
	m := make(map[string]int, len(s))
	for _, sc := range s {
		m[sc.Route] = sc.Value
	}
	return m
}

// ScoreQuery scores query against every route by case-insensitive substring
// containment. No tokenization: "music" matches inside "musical".
func ScoreQuery(query string, reg *Registry, mode Count) Scores {
	q := strings.ToLower(query)
	out := make(Scores, 0, reg.Len())
	for _, r := range reg.routes {
		hits := 0
		for _, kw := range r.keywords {
			switch mode {
			case CountOccurrences:
				hits += strings.Count(q, kw)
			default:
				if strings.Contains(q, kw) {
					hits++
				}
			}
		}
		out = append(out, Score{Route: r.name, Value: hits * r.weight})
	}
	return out
}
