package domain

// ScoringConfig holds routing constants shared by the router and its stores.
type ScoringConfig struct {
	// Normalization is K in confidence = min(score/K, 1).
	Normalization     float64
	DefaultConfidence float64
	HistoryCap        int
	QueryLogMaxChars  int
	CountOccurrences  bool
}

// DefaultScoringConfig returns the canonical routing constants.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Normalization:     5,
		DefaultConfidence: 0.1,
		HistoryCap:        100,
		QueryLogMaxChars:  50,
	}
}
