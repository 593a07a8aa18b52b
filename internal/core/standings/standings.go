// Package standings maintains the running league standings by replaying
// games in chronological order. Counters live in explicit maps owned by the
// Tracker; reads go through zero-default accessors and never insert.
package standings

import (
	"strings"

	"league-predictor/internal/core/league"
)

// Pair orders two teams. Head-to-head counters are antisymmetric in it:
// the count for {A,B} is always the negation of the count for {B,A}.
type Pair struct {
	A, B string
}

// Counters is the stage-scoped slice of standings the simulator mutates
// per iteration. Clone before mutating.
type Counters struct {
	Wins       map[string]int
	MapDiffs   map[string]int
	HeadToHead map[Pair]int
}

// Clone returns a deep copy.
func (c Counters) Clone() Counters {
	return Counters{
		Wins:       cloneInts(c.Wins),
		MapDiffs:   cloneInts(c.MapDiffs),
		HeadToHead: clonePairs(c.HeadToHead),
	}
}

// Tracker replays games into win/loss, map-differential and head-to-head
// counters. Global counters persist for the tracker's lifetime;
// stage-scoped counters reset when a brand-new stage begins. Entering a
// title sub-stage (an id that textually extends the current stage id)
// keeps all stage counters.
type Tracker struct {
	stage     string
	baseStage string

	mapDiffs   map[string]int
	headToHead map[Pair]int

	wins          map[string]int
	losses        map[string]int
	stageMapDiffs map[string]int
	stageH2H      map[Pair]int
	titleWins     map[string]int
	titleLosses   map[string]int

	matchID  int
	hasMatch bool
	score    map[string]int

	// stage -> team -> match ids, in the order the team played them
	matchHistory map[string]map[string][]int
}

func NewTracker() *Tracker {
	return &Tracker{
		mapDiffs:      make(map[string]int),
		headToHead:    make(map[Pair]int),
		wins:          make(map[string]int),
		losses:        make(map[string]int),
		stageMapDiffs: make(map[string]int),
		stageH2H:      make(map[Pair]int),
		titleWins:     make(map[string]int),
		titleLosses:   make(map[string]int),
		score:         make(map[string]int),
		matchHistory:  make(map[string]map[string][]int),
	}
}

// Update folds one game into the standings. Games must arrive in
// chronological order; replaying out of order changes stage-transition
// behavior.
func (t *Tracker) Update(g league.Game) {
	t.updateStage(g.Stage)
	t.updateMatch(g.MatchID, g.Teams)

	if !g.Decisive() {
		return
	}

	winner, loser := g.WinnerLoser()
	diff := g.Score[0] - g.Score[1]
	if diff < 0 {
		diff = -diff
	}
	isTitle := g.Format == league.FormatTitle

	// Global diffs accumulate the within-map score margin. Stage-scoped
	// diffs count maps won minus maps lost: the simulator folds sampled
	// series into them as maps-won differentials, so they must share that
	// unit.
	t.mapDiffs[winner] += diff
	t.mapDiffs[loser] -= diff
	t.headToHead[Pair{winner, loser}] += diff
	t.headToHead[Pair{loser, winner}] -= diff

	if !isTitle {
		t.stageMapDiffs[winner]++
		t.stageMapDiffs[loser]--
		t.stageH2H[Pair{winner, loser}]++
		t.stageH2H[Pair{loser, winner}]--
	}

	// Series attribution. A win from a tied running score decides the
	// series in the winner's favor. A win from one map behind only avoids
	// elimination: the provisional attribution recorded when the opponent
	// pulled ahead must be retracted, since the series continues.
	switch {
	case t.score[winner] == t.score[loser]:
		if isTitle {
			t.titleWins[winner]++
			t.titleLosses[loser]++
		} else {
			t.wins[winner]++
			t.losses[loser]++
		}
	case t.score[winner] == t.score[loser]-1:
		if isTitle {
			t.titleWins[loser]--
			t.titleLosses[winner]--
		} else {
			t.wins[loser]--
			t.losses[winner]--
		}
	}

	t.score[winner]++
}

func (t *Tracker) updateStage(stage string) {
	if stage == t.stage {
		return
	}
	if t.stage != "" && strings.HasPrefix(stage, t.stage) {
		// Title sub-stage of the running stage: keep every counter.
		t.baseStage = t.stage
		t.stage = stage
		return
	}

	t.baseStage = stage
	t.stage = stage

	t.wins = make(map[string]int)
	t.losses = make(map[string]int)
	t.stageMapDiffs = make(map[string]int)
	t.stageH2H = make(map[Pair]int)
	t.titleWins = make(map[string]int)
	t.titleLosses = make(map[string]int)
}

func (t *Tracker) updateMatch(matchID int, teams [2]string) {
	if t.hasMatch && matchID == t.matchID {
		return
	}
	t.hasMatch = true
	t.matchID = matchID
	t.score = map[string]int{teams[0]: 0, teams[1]: 0}

	perTeam, ok := t.matchHistory[t.stage]
	if !ok {
		perTeam = make(map[string][]int)
		t.matchHistory[t.stage] = perTeam
	}
	for _, team := range teams {
		perTeam[team] = append(perTeam[team], matchID)
	}
}

// Stage returns the current stage id, or "" before any game was replayed.
func (t *Tracker) Stage() string { return t.stage }

// BaseStage returns the current stage id without any title-substage suffix.
func (t *Tracker) BaseStage() string { return t.baseStage }

// StageFinished reports whether both title-match losses of the stage have
// been recorded, i.e. the playoff bracket is complete.
func (t *Tracker) StageFinished() bool {
	total := 0
	for _, n := range t.titleLosses {
		total += n
	}
	return total == 2
}

// MatchNumber returns how many series the team has started in the current
// stage, which is the 1-based number of its latest series.
func (t *Tracker) MatchNumber(team string) int {
	return len(t.matchHistory[t.stage][team])
}

func (t *Tracker) MapDiff(team string) int         { return t.mapDiffs[team] }
func (t *Tracker) HeadToHead(a, b string) int      { return t.headToHead[Pair{a, b}] }
func (t *Tracker) StageWins(team string) int       { return t.wins[team] }
func (t *Tracker) StageLosses(team string) int     { return t.losses[team] }
func (t *Tracker) StageMapDiff(team string) int    { return t.stageMapDiffs[team] }
func (t *Tracker) StageHeadToHead(a, b string) int { return t.stageH2H[Pair{a, b}] }
func (t *Tracker) TitleWins(team string) int       { return t.titleWins[team] }
func (t *Tracker) TitleLosses(team string) int     { return t.titleLosses[team] }

// StageCounters returns a copy of the stage-scoped counters the simulator
// seeds its iterations with.
func (t *Tracker) StageCounters() Counters {
	return Counters{
		Wins:       t.wins,
		MapDiffs:   t.stageMapDiffs,
		HeadToHead: t.stageH2H,
	}.Clone()
}

// TitleCounters returns a copy of the title win/loss counters.
func (t *Tracker) TitleCounters() (wins, losses map[string]int) {
	return cloneInts(t.titleWins), cloneInts(t.titleLosses)
}

func cloneInts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePairs(m map[Pair]int) map[Pair]int {
	out := make(map[Pair]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
