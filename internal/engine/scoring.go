package engine

import (
	"github.com/scoreit/handball/internal/config"
	"github.com/scoreit/handball/internal/store"
)

// ScoringRule maps a finished game to the standing points one of its teams
// earned. The engine never infers a winner from the goal counts: only the
// submitted winner field decides.
type ScoringRule func(g *store.Game, teamID int64) int64

// WinnerTakesOne awards 1 point to the winning team and nothing otherwise.
// Games without a winner contribute no points to either side.
func WinnerTakesOne(g *store.Game, teamID int64) int64 {
	if g.WinnerTeamID != nil && *g.WinnerTeamID == teamID {
		return 1
	}
	return 0
}

// TwoOneZero awards 2 points for a win, 1 to each side of a winner-less game,
// and 0 for a loss.
func TwoOneZero(g *store.Game, teamID int64) int64 {
	if g.WinnerTeamID == nil {
		return 1
	}
	if *g.WinnerTeamID == teamID {
		return 2
	}
	return 0
}

// RuleFromConfig resolves a configured rule name. Unknown names fall back to
// the default; config validation rejects them before this is reached.
func RuleFromConfig(name string) ScoringRule {
	switch name {
	case config.ScoringTwoOneZero:
		return TwoOneZero
	default:
		return WinnerTakesOne
	}
}
