package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"league-predictor/internal/core/league"
	"league-predictor/internal/core/standings"
)

func decisiveGame(stage string, id int, a, b string, sa, sb int) league.Game {
	return league.Game{
		Stage:    stage,
		MatchID:  id,
		Format:   league.FormatRegular,
		Drawable: false,
		Teams:    [2]string{a, b},
		Score:    [2]int{sa, sb},
	}
}

func TestMapDiffLeaderGetsAlphaEdge(t *testing.T) {
	tr := standings.NewTracker()
	tr.Update(decisiveGame("stage1", 1, "SHD", "NYE", 3, 1))

	m := NewMapDiff(0.2, 0.1, tr)
	p := m.Predict([2]string{"SHD", "NYE"}, [2]league.Roster{}, false)
	assert.InDelta(t, 0.7, p.Win, 1e-12)
	assert.Zero(t, p.Draw)

	p = m.Predict([2]string{"NYE", "SHD"}, [2]league.Roster{}, false)
	assert.InDelta(t, 0.3, p.Win, 1e-12)
}

func TestMapDiffTieFallsBackToHeadToHead(t *testing.T) {
	tr := standings.NewTracker()
	// A perfect cycle leaves every team at zero map differential, so the
	// SHD vs NYE call comes down to their head-to-head record.
	tr.Update(decisiveGame("stage1", 1, "SHD", "NYE", 2, 1))
	tr.Update(decisiveGame("stage1", 2, "NYE", "LAV", 2, 1))
	tr.Update(decisiveGame("stage1", 3, "LAV", "SHD", 2, 1))

	m := NewMapDiff(0.2, 0.1, tr)

	p := m.Predict([2]string{"SHD", "NYE"}, [2]league.Roster{}, false)
	assert.InDelta(t, 0.5+0.1, p.Win, 1e-12)

	p = m.Predict([2]string{"NYE", "SHD"}, [2]league.Roster{}, false)
	assert.InDelta(t, 0.5-0.1, p.Win, 1e-12)
}

func TestMapDiffNoSignalIsCoinFlip(t *testing.T) {
	tr := standings.NewTracker()
	m := NewMapDiff(0.2, 0.1, tr)

	p := m.Predict([2]string{"SHD", "NYE"}, [2]league.Roster{}, true)
	assert.Equal(t, 0.5, p.Win)
	assert.Equal(t, 0.5, p.Loss())
}
