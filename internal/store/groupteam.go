package store

import (
	"context"
	"database/sql"
)

// UpsertGroupTeamScore writes the team's absolute score inside the group,
// creating the standing row on first contact. The score is a full replacement,
// not an increment: callers recompute it from the group's games, which keeps
// the operation safe under event replay.
func (s *Store) UpsertGroupTeamScore(ctx context.Context, groupID, teamID, score int64) (*GroupTeamRelation, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_team_relations (group_id, team_id, score)
		 VALUES (?, ?, ?)
		 ON CONFLICT(group_id, team_id) DO UPDATE SET score = excluded.score`,
		groupID, teamID, score)
	if err != nil {
		return nil, mapError("upsert group team", err)
	}
	return s.FindGroupTeam(ctx, groupID, teamID)
}

// CreateGroupTeam enrolls a team in a group with a zero score. Unlike the
// score upsert it fails with ErrConflict when the team is already enrolled,
// so an explicit enrollment never resets an earned score.
func (s *Store) CreateGroupTeam(ctx context.Context, groupID, teamID int64) (*GroupTeamRelation, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO group_team_relations (group_id, team_id, score) VALUES (?, ?, 0)`,
		groupID, teamID)
	if err != nil {
		return nil, mapError("create group team", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create group team", err)
	}
	return s.GetGroupTeam(ctx, id)
}

const groupTeamColumns = `id, group_id, team_id, score, position, validated, created_at`

func (s *Store) GetGroupTeam(ctx context.Context, id int64) (*GroupTeamRelation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+groupTeamColumns+` FROM group_team_relations WHERE id = ?`, id)
	return scanGroupTeam(row)
}

func (s *Store) FindGroupTeam(ctx context.Context, groupID, teamID int64) (*GroupTeamRelation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+groupTeamColumns+` FROM group_team_relations
		 WHERE group_id = ? AND team_id = ?`, groupID, teamID)
	return scanGroupTeam(row)
}

func scanGroupTeam(row *sql.Row) (*GroupTeamRelation, error) {
	var rel GroupTeamRelation
	var position sql.NullInt64
	if err := row.Scan(&rel.ID, &rel.GroupID, &rel.TeamID, &rel.Score,
		&position, &rel.Validated, &rel.CreatedAt); err != nil {
		return nil, mapError("get group team", err)
	}
	rel.Position = fromNullInt64(position)
	return &rel, nil
}

func (s *Store) ListGroupTeams(ctx context.Context, groupID int64) ([]GroupTeamRelation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+groupTeamColumns+` FROM group_team_relations
		 WHERE group_id = ? ORDER BY score DESC, id`, groupID)
	if err != nil {
		return nil, mapError("list group teams", err)
	}
	defer rows.Close()

	var rels []GroupTeamRelation
	for rows.Next() {
		var rel GroupTeamRelation
		var position sql.NullInt64
		if err := rows.Scan(&rel.ID, &rel.GroupID, &rel.TeamID, &rel.Score,
			&position, &rel.Validated, &rel.CreatedAt); err != nil {
			return nil, mapError("list group teams", err)
		}
		rel.Position = fromNullInt64(position)
		rels = append(rels, rel)
	}
	return rels, mapError("list group teams", rows.Err())
}

// ListGroupIDs returns the ids of all groups that have at least one standing
// row; the position snapshot job iterates over these.
func (s *Store) ListGroupIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT group_id FROM group_team_relations ORDER BY group_id`)
	if err != nil {
		return nil, mapError("list group ids", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, mapError("list group ids", err)
		}
		ids = append(ids, id)
	}
	return ids, mapError("list group ids", rows.Err())
}

func (s *Store) SetGroupTeamPosition(ctx context.Context, id, position int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE group_team_relations SET position = ? WHERE id = ?`, position, id)
	if err != nil {
		return mapError("set group team position", err)
	}
	return requireRow("set group team position", res)
}

func (s *Store) SetGroupTeamValidated(ctx context.Context, id int64) error {
	return s.setValidated(ctx, "group_team_relations", id)
}
