// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package recommend

// Strategy identifies which recommendation path served a request. Exposed in
// metrics labels and API responses, so the string values are part of the
// contract.
type Strategy string

const (
	// StrategyDirect ranks the user's own albums by aggregated signal weight.
	StrategyDirect Strategy = "direct"
	// StrategyRelated expands seed artists through related artists.
	StrategyRelated Strategy = "related"
	// StrategyColdStart serves new releases to users without usable history.
	StrategyColdStart Strategy = "cold_start"
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	return string(s)
}

// ChooseStrategy picks the recommendation strategy from the shape of the
// available data:
//
//   - no signals at all, or no album could be enriched: cold start
//   - at least one seed artist with a catalog ID: related-artist expansion
//   - otherwise: direct ranking of the user's own albums
//
// Pure so the decision table can be tested exhaustively.
func ChooseStrategy(signalCount, enrichedCount, seedCount int) Strategy {
	if signalCount == 0 || enrichedCount == 0 {
		return StrategyColdStart
	}
	if seedCount > 0 {
		return StrategyRelated
	}
	return StrategyDirect
}
