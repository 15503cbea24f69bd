package standings

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/scoreit/handball/internal/db"
	"github.com/scoreit/handball/internal/store"
)

// TeamStanding is one row of a group's table. Score is the stored standing
// score maintained by the engine; the match statistics and the rank are
// derived from the group's games at read time.
type TeamStanding struct {
	TeamID         int64  `json:"teamId"`
	TeamName       string `json:"teamName"`
	Score          int64  `json:"score"`
	MatchesPlayed  int    `json:"matchesPlayed"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	Draws          int    `json:"draws"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Rank           int    `json:"rank"`
}

type teamStats struct {
	TeamStanding
	headToHeadWins     map[int64]int
	headToHeadGoalDiff map[int64]int
}

// Calculate builds the group's table: one row per standing relation, stats
// summed over the group's games, ranked by score with head-to-head and goal
// difference tiebreakers.
func Calculate(ctx context.Context, s *store.Store, groupID int64) ([]TeamStanding, error) {
	if s == nil {
		return nil, errors.New("store is required")
	}
	if groupID <= 0 {
		return nil, errors.New("group ID is required")
	}

	relations, err := s.ListGroupTeams(ctx, groupID)
	if err != nil {
		return nil, err
	}

	teams := make(map[int64]*teamStats, len(relations))
	for _, rel := range relations {
		team, err := s.GetTeam(ctx, rel.TeamID)
		if err != nil {
			return nil, err
		}
		teams[rel.TeamID] = &teamStats{
			TeamStanding: TeamStanding{
				TeamID:   rel.TeamID,
				TeamName: team.Name,
				Score:    rel.Score,
			},
			headToHeadWins:     make(map[int64]int),
			headToHeadGoalDiff: make(map[int64]int),
		}
	}

	games, err := s.ListGamesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	for i := range games {
		game := &games[i]
		for _, teamID := range []int64{game.HomeTeamID, game.AwayTeamID} {
			entry, ok := teams[teamID]
			if !ok {
				// Standing row not created yet; the engine upserts it with the
				// game, so this means the game predates the relation. Skip.
				continue
			}

			teamGoals, opponentGoals, opponentID := resolveGameGoals(game, teamID)

			entry.MatchesPlayed++
			entry.GoalsFor += teamGoals
			entry.GoalsAgainst += opponentGoals
			entry.GoalDifference = entry.GoalsFor - entry.GoalsAgainst

			switch {
			case game.WinnerTeamID == nil:
				entry.Draws++
			case *game.WinnerTeamID == teamID:
				entry.Wins++
				entry.headToHeadWins[opponentID]++
			default:
				entry.Losses++
			}
			entry.headToHeadGoalDiff[opponentID] += teamGoals - opponentGoals
		}
	}

	ordered := make([]*teamStats, 0, len(teams))
	for _, team := range teams {
		ordered = append(ordered, team)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].TeamName < ordered[j].TeamName
	})

	sortByTiebreakers(ordered)

	result := make([]TeamStanding, 0, len(ordered))
	for i, team := range ordered {
		team.Rank = i + 1
		result = append(result, team.TeamStanding)
	}
	return result, nil
}

func resolveGameGoals(game *store.Game, teamID int64) (int, int, int64) {
	if teamID == game.HomeTeamID {
		return int(game.ScoreHome), int(game.ScoreAway), game.AwayTeamID
	}
	return int(game.ScoreAway), int(game.ScoreHome), game.HomeTeamID
}

// sortByTiebreakers reorders runs of equal-score teams by head-to-head wins,
// then overall goal difference, then head-to-head goal difference, then name.
func sortByTiebreakers(ordered []*teamStats) {
	if len(ordered) < 2 {
		return
	}

	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && ordered[end].Score == ordered[start].Score {
			end++
		}

		if end-start > 1 {
			group := ordered[start:end]
			groupSet := make(map[int64]struct{}, len(group))
			for _, team := range group {
				groupSet[team.TeamID] = struct{}{}
			}

			sort.SliceStable(group, func(i, j int) bool {
				headToHeadWinsI := headToHeadWins(group[i], groupSet)
				headToHeadWinsJ := headToHeadWins(group[j], groupSet)
				if headToHeadWinsI != headToHeadWinsJ {
					return headToHeadWinsI > headToHeadWinsJ
				}
				if group[i].GoalDifference != group[j].GoalDifference {
					return group[i].GoalDifference > group[j].GoalDifference
				}
				headToHeadDiffI := headToHeadGoalDiff(group[i], groupSet)
				headToHeadDiffJ := headToHeadGoalDiff(group[j], groupSet)
				if headToHeadDiffI != headToHeadDiffJ {
					return headToHeadDiffI > headToHeadDiffJ
				}
				return group[i].TeamName < group[j].TeamName
			})
		}

		start = end
	}
}

func headToHeadWins(team *teamStats, group map[int64]struct{}) int {
	total := 0
	for opponentID, wins := range team.headToHeadWins {
		if _, ok := group[opponentID]; ok {
			total += wins
		}
	}
	return total
}

func headToHeadGoalDiff(team *teamStats, group map[int64]struct{}) int {
	total := 0
	for opponentID, diff := range team.headToHeadGoalDiff {
		if _, ok := group[opponentID]; ok {
			total += diff
		}
	}
	return total
}

// SnapshotPositions persists the current rank of every team in the group onto
// its standing relation. Ranks and writes share one transaction, so a reader
// never sees a half-updated table.
func SnapshotPositions(ctx context.Context, database *db.DB, groupID int64) error {
	if database == nil {
		return errors.New("database is required")
	}
	return database.RunInTx(ctx, func(txdb *db.DB) error {
		table, err := Calculate(ctx, txdb.Store, groupID)
		if err != nil {
			return err
		}
		for _, row := range table {
			rel, err := txdb.Store.FindGroupTeam(ctx, groupID, row.TeamID)
			if err != nil {
				return fmt.Errorf("standing for team %d: %w", row.TeamID, err)
			}
			if err := txdb.Store.SetGroupTeamPosition(ctx, rel.ID, int64(row.Rank)); err != nil {
				return err
			}
		}
		return nil
	})
}

// SnapshotAllPositions runs SnapshotPositions for every group with standings.
func SnapshotAllPositions(ctx context.Context, database *db.DB) error {
	if database == nil {
		return errors.New("database is required")
	}
	groupIDs, err := database.Store.ListGroupIDs(ctx)
	if err != nil {
		return err
	}
	for _, groupID := range groupIDs {
		if err := SnapshotPositions(ctx, database, groupID); err != nil {
			return fmt.Errorf("snapshot group %d: %w", groupID, err)
		}
	}
	return nil
}
