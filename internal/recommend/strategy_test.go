// Resonata - Social Music Review and Recommendation Platform
// Copyright 2026 Resonata contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/resonata-fm/resonata

package recommend

import "testing"

func TestChooseStrategy(t *testing.T) {
	tests := []struct {
		name     string
		signals  int
		enriched int
		seeds    int
		want     Strategy
	}{
		{"no signals", 0, 0, 0, StrategyColdStart},
		{"signals but nothing enriched", 5, 0, 0, StrategyColdStart},
		{"no signals but seeds somehow present", 0, 0, 3, StrategyColdStart},
		{"enriched without seeds", 3, 3, 0, StrategyDirect},
		{"enriched with seeds", 3, 3, 2, StrategyRelated},
		{"single album single seed", 1, 1, 1, StrategyRelated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChooseStrategy(tt.signals, tt.enriched, tt.seeds)
			if got != tt.want {
				t.Errorf("ChooseStrategy(%d, %d, %d) = %s, want %s",
					tt.signals, tt.enriched, tt.seeds, got, tt.want)
			}
		})
	}
}

func TestStrategyString(t *testing.T) {
	if StrategyDirect.String() != "direct" {
		t.Errorf("StrategyDirect.String() = %q", StrategyDirect.String())
	}
	if StrategyRelated.String() != "related" {
		t.Errorf("StrategyRelated.String() = %q", StrategyRelated.String())
	}
	if StrategyColdStart.String() != "cold_start" {
		t.Errorf("StrategyColdStart.String() = %q", StrategyColdStart.String())
	}
}

func TestDedupListFirstWriteWins(t *testing.T) {
	list := newDedupList(4)
	list.add(Recommendation{AlbumID: "a1", Reason: "first"})
	list.add(Recommendation{AlbumID: "a2", Reason: "second"})
	list.add(Recommendation{AlbumID: "a1", Reason: "late duplicate"})
	list.add(Recommendation{AlbumID: "", Reason: "missing id"})

	items := list.items(0)
	if len(items) != 2 {
		t.Fatalf("expected 2 unique items, got %d", len(items))
	}
	if items[0].AlbumID != "a1" || items[0].Reason != "first" {
		t.Errorf("first entry = %+v, want a1 with original reason", items[0])
	}
	if items[1].AlbumID != "a2" {
		t.Errorf("second entry = %+v, want a2", items[1])
	}
}

func TestDedupListLimit(t *testing.T) {
	list := newDedupList(4)
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		list.add(Recommendation{AlbumID: id})
	}

	items := list.items(2)
	if len(items) != 2 {
		t.Fatalf("expected 2 items after limit, got %d", len(items))
	}
	if items[0].AlbumID != "a1" || items[1].AlbumID != "a2" {
		t.Errorf("limit kept %q, %q, want first-seen order", items[0].AlbumID, items[1].AlbumID)
	}
}
