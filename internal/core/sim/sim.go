// Package sim estimates each team's chance of finishing in the top three
// of a stage and of taking the stage title. Deterministic bound tightening
// settles teams that are already clinched or eliminated; everything else
// is resolved by Monte Carlo sampling of the remaining schedule.
package sim

import (
	"math/rand"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"league-predictor/internal/core/series"
	"league-predictor/internal/core/standings"
	"league-predictor/internal/telemetry"
)

// DefaultIterations is the Monte Carlo sample count when none is configured.
const DefaultIterations = 100000

// Chance is a qualification verdict: either deterministically resolved to
// a definite yes/no, or an empirical probability from simulation.
type Chance struct {
	Resolved bool
	Definite bool
	P        float64
}

func Certain(v bool) Chance     { return Chance{Resolved: true, Definite: v} }
func Simulated(p float64) Chance { return Chance{P: p} }

// Value collapses the verdict to a probability.
func (c Chance) Value() float64 {
	if c.Resolved {
		if c.Definite {
			return 1
		}
		return 0
	}
	return c.P
}

// Outcome holds the per-team verdicts of one simulation run.
type Outcome struct {
	Top3 map[string]Chance
	Top1 map[string]Chance
}

// GameOdds is one remaining series with its precomputed sampling table.
type GameOdds struct {
	Teams  [2]string
	scores []series.Score
	cum    []float64
}

// NewGameOdds builds the cumulative-weight table for weighted sampling.
// Zero-mass scores are dropped so the support reflects reachable outcomes.
func NewGameOdds(teams [2]string, dist series.Dist) GameOdds {
	scores := make([]series.Score, 0, len(dist))
	for s, mass := range dist {
		if mass > 0 {
			scores = append(scores, s)
		}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].A != scores[j].A {
			return scores[i].A < scores[j].A
		}
		return scores[i].B < scores[j].B
	})

	cum := make([]float64, len(scores))
	total := 0.0
	for i, s := range scores {
		total += dist[s]
		cum[i] = total
	}
	return GameOdds{Teams: teams, scores: scores, cum: cum}
}

// Sample draws one series score from the distribution.
func (g GameOdds) Sample(rng *rand.Rand) series.Score {
	total := g.cum[len(g.cum)-1]
	i := sort.SearchFloat64s(g.cum, rng.Float64()*total)
	if i >= len(g.scores) {
		i = len(g.scores) - 1
	}
	return g.scores[i]
}

// diffBounds returns the extreme map differentials the first team can take
// from this series.
func (g GameOdds) diffBounds() (lo, hi int) {
	if len(g.scores) == 0 {
		return 0, 0
	}
	lo, hi = g.scores[0].Diff(), g.scores[0].Diff()
	for _, s := range g.scores[1:] {
		d := s.Diff()
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi
}

// Stage is the simulation input: the stage's counters and schedule copied
// out of the live tracker, plus the model's pairwise series win
// probabilities for tie-breaks (regular) and title-bracket resolution.
type Stage struct {
	Teams         []string
	Counters      standings.Counters
	TitleWins     map[string]int
	TitleLosses   map[string]int
	StageFinished bool
	Remaining     []GameOdds
	PWins         map[standings.Pair]float64
	PWinsTitle    map[standings.Pair]float64
}

type Config struct {
	Iterations int
	Workers    int
	Seed       int64
}

// Run resolves every team's top-3 and title chances.
func Run(st Stage, cfg Config) Outcome {
	start := time.Now()
	defer func() {
		telemetry.Metrics.SimulationsRun.Inc()
		telemetry.Metrics.SimLatency.Record(time.Since(start))
	}()

	iters := cfg.Iterations
	if iters <= 0 {
		iters = DefaultIterations
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > iters {
		workers = iters
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	out := Outcome{
		Top3: make(map[string]Chance, len(st.Teams)),
		Top1: make(map[string]Chance, len(st.Teams)),
	}
	resolveBounds(st, out)

	needSim := false
	for _, team := range st.Teams {
		if !out.Top3[team].Resolved || !out.Top1[team].Resolved {
			needSim = true
			break
		}
	}
	if !needSim {
		return out
	}

	top3Counts, top1Counts := simulate(st, iters, workers, seed)
	for _, team := range st.Teams {
		if !out.Top3[team].Resolved {
			out.Top3[team] = Simulated(float64(top3Counts[team]) / float64(iters))
		}
		if !out.Top1[team].Resolved {
			out.Top1[team] = Simulated(float64(top1Counts[team]) / float64(iters))
		}
	}
	return out
}

type bound struct {
	wins int
	diff int
}

func boundLess(a, b bound) bool {
	if a.wins != b.wins {
		return a.wins < b.wins
	}
	return a.diff < b.diff
}

// resolveBounds settles teams whose stage fate no longer depends on the
// remaining games. Worst case loses every remaining series by the largest
// possible margin; best case wins every one by the largest margin. A team
// whose best case trails the third-largest worst case is out of the top
// three; a team whose worst case beats the fourth-largest best case is in.
func resolveBounds(st Stage, out Outcome) {
	if len(st.Teams) == 0 {
		return
	}

	mins := make(map[string]bound, len(st.Teams))
	maxs := make(map[string]bound, len(st.Teams))
	for _, team := range st.Teams {
		b := bound{wins: st.Counters.Wins[team], diff: st.Counters.MapDiffs[team]}
		mins[team], maxs[team] = b, b
	}
	for _, g := range st.Remaining {
		lo, hi := g.diffBounds()
		for i, team := range g.Teams {
			gLo, gHi := lo, hi
			if i == 1 {
				gLo, gHi = -hi, -lo
			}
			mn := mins[team]
			mn.diff += gLo
			mins[team] = mn
			mx := maxs[team]
			mx.wins++
			mx.diff += gHi
			maxs[team] = mx
		}
	}

	markClinched := func(team string) {
		out.Top3[team] = Certain(true)
		switch {
		case st.TitleLosses[team] > 0:
			out.Top1[team] = Certain(false)
		case st.StageFinished:
			out.Top1[team] = Certain(true)
		}
	}

	if len(st.Teams) < 4 {
		// Everyone trivially finishes top three.
		for _, team := range st.Teams {
			markClinched(team)
		}
		return
	}

	minList := make([]bound, 0, len(st.Teams))
	maxList := make([]bound, 0, len(st.Teams))
	for _, team := range st.Teams {
		minList = append(minList, mins[team])
		maxList = append(maxList, maxs[team])
	}
	sort.Slice(minList, func(i, j int) bool { return boundLess(minList[j], minList[i]) })
	sort.Slice(maxList, func(i, j int) bool { return boundLess(maxList[j], maxList[i]) })

	thirdWorst := minList[2]
	fourthBest := maxList[3]
	for _, team := range st.Teams {
		if boundLess(maxs[team], thirdWorst) {
			out.Top3[team] = Certain(false)
			out.Top1[team] = Certain(false)
			continue
		}
		if boundLess(fourthBest, mins[team]) {
			markClinched(team)
		}
	}
}

type tally struct {
	top3 map[string]int
	top1 map[string]int
}

// simulate runs the Monte Carlo iterations across a worker pool. Each
// worker owns a seeded generator, so a fixed seed reproduces results for a
// fixed worker count. Tallies merge by summation.
func simulate(st Stage, iters, workers int, seed int64) (map[string]int, map[string]int) {
	results := make([]tally, workers)
	per := iters / workers
	extra := iters % workers

	var eg errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		n := per
		if w < extra {
			n++
		}
		eg.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(w)))
			results[w] = runIterations(st, n, rng)
			return nil
		})
	}
	_ = eg.Wait()
	telemetry.Metrics.SimIterations.Add(int64(iters))

	top3 := make(map[string]int, len(st.Teams))
	top1 := make(map[string]int, len(st.Teams))
	for _, t := range results {
		for team, n := range t.top3 {
			top3[team] += n
		}
		for team, n := range t.top1 {
			top1[team] += n
		}
	}
	return top3, top1
}

func runIterations(st Stage, n int, rng *rand.Rand) tally {
	t := tally{top3: make(map[string]int), top1: make(map[string]int)}
	for i := 0; i < n; i++ {
		c := st.Counters.Clone()
		for _, g := range st.Remaining {
			s := g.Sample(rng)
			diff := s.Diff()
			winner := g.Teams[0]
			if s.B > s.A {
				winner = g.Teams[1]
			}
			c.Wins[winner]++
			c.MapDiffs[g.Teams[0]] += diff
			c.MapDiffs[g.Teams[1]] -= diff
			c.HeadToHead[standings.Pair{A: g.Teams[0], B: g.Teams[1]}] += diff
			c.HeadToHead[standings.Pair{A: g.Teams[1], B: g.Teams[0]}] -= diff
		}

		ranked := rankTeams(st.Teams, c, st.PWins, rng)
		limit := 3
		if len(ranked) < limit {
			limit = len(ranked)
		}
		for _, team := range ranked[:limit] {
			t.top3[team]++
		}
		if len(ranked) == 0 {
			continue
		}
		t.top1[champion(st, ranked, rng)]++
	}
	return t
}

// champion plays the title bracket: third challenges second, the survivor
// challenges first. Title series already decided this stage are reused
// instead of sampled.
func champion(st Stage, ranked []string, rng *rand.Rand) string {
	first := ranked[0]
	var second, third string
	if len(ranked) > 1 {
		second = ranked[1]
	}
	if len(ranked) > 2 {
		third = ranked[2]
	}

	if third != "" {
		switch {
		case st.TitleWins[second] > 0:
		case st.TitleWins[third] > 0:
			second = third
		case rng.Float64() < st.PWinsTitle[standings.Pair{A: third, B: second}]:
			second = third
		}
	}
	if second != "" {
		switch {
		case st.TitleWins[first] > 0:
		case st.TitleWins[second] > 1:
			first = second
		case rng.Float64() < st.PWinsTitle[standings.Pair{A: second, B: first}]:
			first = second
		}
	}
	return first
}

// rankTeams orders teams best first by stage wins then stage map diff.
// Fully tied groups are settled pairwise: head-to-head sign first, then a
// weighted coin flip on the pair's series win probability. The probabilistic
// resolver runs as an insertion pass outside the main sort so the sort's
// comparison stays consistent.
func rankTeams(teams []string, c standings.Counters, pWins map[standings.Pair]float64, rng *rand.Rand) []string {
	ranked := make([]string, len(teams))
	copy(ranked, teams)
	sort.SliceStable(ranked, func(i, j int) bool {
		wi, wj := c.Wins[ranked[i]], c.Wins[ranked[j]]
		if wi != wj {
			return wi > wj
		}
		return c.MapDiffs[ranked[i]] > c.MapDiffs[ranked[j]]
	})

	beats := func(a, b string) bool {
		if d := c.HeadToHead[standings.Pair{A: a, B: b}]; d != 0 {
			return d > 0
		}
		return rng.Float64() < pWins[standings.Pair{A: a, B: b}]
	}

	for i := 0; i < len(ranked); {
		j := i + 1
		for j < len(ranked) &&
			c.Wins[ranked[j]] == c.Wins[ranked[i]] &&
			c.MapDiffs[ranked[j]] == c.MapDiffs[ranked[i]] {
			j++
		}
		for k := i + 1; k < j; k++ {
			for l := k; l > i && beats(ranked[l], ranked[l-1]); l-- {
				ranked[l], ranked[l-1] = ranked[l-1], ranked[l]
			}
		}
		i = j
	}
	return ranked
}
