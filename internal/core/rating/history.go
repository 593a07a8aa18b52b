package rating

import "league-predictor/internal/core/league"

// History is an ordered log of rating snapshots, one per (stage, match
// number) a team played. Each snapshot holds the post-update ratings of
// the players that were eligible for that series plus a synthetic entry
// under the team's own name summarizing its strongest roster.
type History struct {
	order []league.MatchKey
	snaps map[league.MatchKey]map[string]Rating
}

func newHistory() *History {
	return &History{snaps: make(map[league.MatchKey]map[string]Rating)}
}

func (h *History) at(key league.MatchKey) map[string]Rating {
	if snap, ok := h.snaps[key]; ok {
		return snap
	}
	snap := make(map[string]Rating)
	h.snaps[key] = snap
	h.order = append(h.order, key)
	return snap
}

// Keys returns the snapshot keys in the order they were first written.
func (h *History) Keys() []league.MatchKey {
	out := make([]league.MatchKey, len(h.order))
	copy(out, h.order)
	return out
}

// At returns the snapshot for a key, or nil if none was recorded.
func (h *History) At(key league.MatchKey) map[string]Rating {
	return h.snaps[key]
}
