package rating

import (
	"league-predictor/internal/core/league"
	"league-predictor/internal/core/standings"
)

// MapDiff is the heuristic model: a team with the larger global map
// differential wins with probability 0.5+alpha regardless of the margin;
// equal differentials fall back to the sign of the pair's head-to-head
// differential with offset beta. It never predicts draws and needs no
// training.
type MapDiff struct {
	alpha     float64
	beta      float64
	standings *standings.Tracker
}

func NewMapDiff(alpha, beta float64, tr *standings.Tracker) *MapDiff {
	return &MapDiff{alpha: alpha, beta: beta, standings: tr}
}

func (m *MapDiff) Predict(teams [2]string, _ [2]league.Roster, _ bool) Prediction {
	d1 := m.standings.MapDiff(teams[0])
	d2 := m.standings.MapDiff(teams[1])

	var pWin float64
	switch {
	case d1 > d2:
		pWin = 0.5 + m.alpha
	case d1 < d2:
		pWin = 0.5 - m.alpha
	default:
		record := m.standings.HeadToHead(teams[0], teams[1])
		switch {
		case record > 0:
			pWin = 0.5 + m.beta
		case record < 0:
			pWin = 0.5 - m.beta
		default:
			pWin = 0.5
		}
	}

	return Prediction{Win: pWin}
}

func (m *MapDiff) Train(league.Game) {}
