package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type CreateGameParams struct {
	Number          *int64
	Start           time.Time
	ScoreHome       int64
	ScoreAway       int64
	DurationMinutes int64
	HomeTeamID      int64
	AwayTeamID      int64
	RefereeID       *int64
	TimerID         *int64
	SecretaryID     *int64
	SupervisorID    *int64
	WinnerTeamID    *int64
	GroupID         *int64
	SiteID          *int64
}

func (s *Store) CreateGame(ctx context.Context, params CreateGameParams) (*Game, error) {
	if params.DurationMinutes == 0 {
		params.DurationMinutes = 60
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games (number, start_time, score_home, score_away, duration_minutes,
		                    home_team_id, away_team_id, referee_id, timer_id, secretary_id,
		                    supervisor_id, winner_team_id, group_id, site_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		toNullInt64(params.Number), params.Start, params.ScoreHome, params.ScoreAway,
		params.DurationMinutes, params.HomeTeamID, params.AwayTeamID,
		toNullInt64(params.RefereeID), toNullInt64(params.TimerID),
		toNullInt64(params.SecretaryID), toNullInt64(params.SupervisorID),
		toNullInt64(params.WinnerTeamID), toNullInt64(params.GroupID), toNullInt64(params.SiteID))
	if err != nil {
		return nil, mapError("create game", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create game", err)
	}
	return s.GetGame(ctx, id)
}

const gameColumns = `id, number, start_time, score_home, score_away, duration_minutes,
	home_team_id, away_team_id, referee_id, timer_id, secretary_id, supervisor_id,
	winner_team_id, group_id, site_id, home_validated, away_validated, referee_validated,
	created_at`

func (s *Store) GetGame(ctx context.Context, id int64) (*Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	return scanGameRow(row.Scan)
}

func (s *Store) GetGameByNumber(ctx context.Context, number int64) (*Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE number = ?`, number)
	return scanGameRow(row.Scan)
}

// ListGamesByGroupTeam returns every game of a group in which the team played
// either side. The standings aggregation sums over this set, so replaying a
// game-created event cannot double-count.
func (s *Store) ListGamesByGroupTeam(ctx context.Context, groupID, teamID int64) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games
		 WHERE group_id = ? AND (home_team_id = ? OR away_team_id = ?)
		 ORDER BY start_time, id`, groupID, teamID, teamID)
	if err != nil {
		return nil, mapError("list group games", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		g, err := scanGameRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, mapError("list group games", rows.Err())
}

func (s *Store) ListGamesByGroup(ctx context.Context, groupID int64) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE group_id = ? ORDER BY start_time, id`, groupID)
	if err != nil {
		return nil, mapError("list group games", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		g, err := scanGameRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	return games, mapError("list group games", rows.Err())
}

func scanGameRow(scan func(dest ...any) error) (*Game, error) {
	var g Game
	var number, referee, timer, secretary, supervisor, winner, group, site sql.NullInt64
	if err := scan(&g.ID, &number, &g.Start, &g.ScoreHome, &g.ScoreAway, &g.DurationMinutes,
		&g.HomeTeamID, &g.AwayTeamID, &referee, &timer, &secretary, &supervisor,
		&winner, &group, &site, &g.HomeValidated, &g.AwayValidated, &g.RefereeValidated,
		&g.CreatedAt); err != nil {
		return nil, mapError("get game", err)
	}
	g.Number = fromNullInt64(number)
	g.RefereeID = fromNullInt64(referee)
	g.TimerID = fromNullInt64(timer)
	g.SecretaryID = fromNullInt64(secretary)
	g.SupervisorID = fromNullInt64(supervisor)
	g.WinnerTeamID = fromNullInt64(winner)
	g.GroupID = fromNullInt64(group)
	g.SiteID = fromNullInt64(site)
	return &g, nil
}

// Game validation flags are independent and one-way, like relation validation.

func (s *Store) SetGameHomeValidated(ctx context.Context, id int64) error {
	return s.setGameFlag(ctx, id, "home_validated")
}

func (s *Store) SetGameAwayValidated(ctx context.Context, id int64) error {
	return s.setGameFlag(ctx, id, "away_validated")
}

func (s *Store) SetGameRefereeValidated(ctx context.Context, id int64) error {
	return s.setGameFlag(ctx, id, "referee_validated")
}

func (s *Store) setGameFlag(ctx context.Context, id int64, column string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET `+column+` = TRUE WHERE id = ?`, id)
	if err != nil {
		return mapError("validate game", err)
	}
	return requireRow("validate game", res)
}

type CreateGamePlayerParams struct {
	GameID      int64
	PlayerID    int64
	TeamID      int64
	ShirtNumber *int64
}

func (s *Store) CreateGamePlayer(ctx context.Context, params CreateGamePlayerParams) (*GamePlayerRelation, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO game_player_relations (game_id, player_id, team_id, shirt_number)
		 VALUES (?, ?, ?, ?)`,
		params.GameID, params.PlayerID, params.TeamID, toNullInt64(params.ShirtNumber))
	if err != nil {
		return nil, mapError("create game player", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create game player", err)
	}
	return s.GetGamePlayer(ctx, id)
}

func (s *Store) GetGamePlayer(ctx context.Context, id int64) (*GamePlayerRelation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, game_id, player_id, team_id, shirt_number, created_at
		 FROM game_player_relations WHERE id = ?`, id)
	var rel GamePlayerRelation
	var shirt sql.NullInt64
	if err := row.Scan(&rel.ID, &rel.GameID, &rel.PlayerID, &rel.TeamID, &shirt, &rel.CreatedAt); err != nil {
		return nil, mapError("get game player", err)
	}
	rel.ShirtNumber = fromNullInt64(shirt)
	return &rel, nil
}

func (s *Store) ListGamePlayersByGame(ctx context.Context, gameID int64) ([]GamePlayerRelation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, player_id, team_id, shirt_number, created_at
		 FROM game_player_relations WHERE game_id = ? ORDER BY id`, gameID)
	if err != nil {
		return nil, mapError("list game players", err)
	}
	defer rows.Close()

	var rels []GamePlayerRelation
	for rows.Next() {
		var rel GamePlayerRelation
		var shirt sql.NullInt64
		if err := rows.Scan(&rel.ID, &rel.GameID, &rel.PlayerID, &rel.TeamID, &shirt, &rel.CreatedAt); err != nil {
			return nil, mapError("list game players", err)
		}
		rel.ShirtNumber = fromNullInt64(shirt)
		rels = append(rels, rel)
	}
	return rels, mapError("list game players", rows.Err())
}

type CreateEventParams struct {
	GameID    int64
	PersonID  int64
	TeamID    int64
	EventType string
	Time      int64
}

func (s *Store) CreateEvent(ctx context.Context, params CreateEventParams) (*Event, error) {
	switch params.EventType {
	case EventGoal, EventWarning, EventDisqualification, EventTimePenalty,
		EventTeamTimePenalty, EventPenaltyShotGoal, EventPenaltyShotMiss:
	default:
		return nil, fmt.Errorf("create event: type %q: %w", params.EventType, ErrInvariant)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (game_id, person_id, team_id, event_type, time)
		 VALUES (?, ?, ?, ?, ?)`,
		params.GameID, params.PersonID, params.TeamID, params.EventType, params.Time)
	if err != nil {
		return nil, mapError("create event", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create event", err)
	}
	var ev Event
	row := s.db.QueryRowContext(ctx,
		`SELECT id, game_id, person_id, team_id, event_type, time, created_at
		 FROM events WHERE id = ?`, id)
	if err := row.Scan(&ev.ID, &ev.GameID, &ev.PersonID, &ev.TeamID,
		&ev.EventType, &ev.Time, &ev.CreatedAt); err != nil {
		return nil, mapError("create event", err)
	}
	return &ev, nil
}

func (s *Store) ListEventsByGame(ctx context.Context, gameID int64) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, person_id, team_id, event_type, time, created_at
		 FROM events WHERE game_id = ? ORDER BY time, id`, gameID)
	if err != nil {
		return nil, mapError("list events", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.GameID, &ev.PersonID, &ev.TeamID,
			&ev.EventType, &ev.Time, &ev.CreatedAt); err != nil {
			return nil, mapError("list events", err)
		}
		events = append(events, ev)
	}
	return events, mapError("list events", rows.Err())
}
