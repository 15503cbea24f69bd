package store

import (
	"context"
	"database/sql"
	"fmt"
)

type CreateClubMemberParams struct {
	ClubID    int64
	MemberID  int64
	Primary   bool
	Validated bool
}

func (s *Store) CreateClubMember(ctx context.Context, params CreateClubMemberParams) (*ClubMemberRelation, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO club_member_relations (club_id, member_id, is_primary, validated)
		 VALUES (?, ?, ?, ?)`,
		params.ClubID, params.MemberID, params.Primary, params.Validated)
	if err != nil {
		return nil, mapError("create club member", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create club member", err)
	}
	return s.GetClubMember(ctx, id)
}

const clubMemberColumns = `id, club_id, member_id, is_primary, validated, created_at`

func (s *Store) GetClubMember(ctx context.Context, id int64) (*ClubMemberRelation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+clubMemberColumns+` FROM club_member_relations WHERE id = ?`, id)
	return scanClubMember(row)
}

// FindClubMember looks up the unique membership row for a (club, person) pair.
func (s *Store) FindClubMember(ctx context.Context, clubID, memberID int64) (*ClubMemberRelation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+clubMemberColumns+` FROM club_member_relations
		 WHERE club_id = ? AND member_id = ?`, clubID, memberID)
	return scanClubMember(row)
}

func scanClubMember(row *sql.Row) (*ClubMemberRelation, error) {
	var rel ClubMemberRelation
	if err := row.Scan(&rel.ID, &rel.ClubID, &rel.MemberID,
		&rel.Primary, &rel.Validated, &rel.CreatedAt); err != nil {
		return nil, mapError("get club member", err)
	}
	return &rel, nil
}

func (s *Store) ListClubMembershipsByPerson(ctx context.Context, memberID int64) ([]ClubMemberRelation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+clubMemberColumns+` FROM club_member_relations
		 WHERE member_id = ? ORDER BY id`, memberID)
	if err != nil {
		return nil, mapError("list club memberships", err)
	}
	defer rows.Close()

	var rels []ClubMemberRelation
	for rows.Next() {
		var rel ClubMemberRelation
		if err := rows.Scan(&rel.ID, &rel.ClubID, &rel.MemberID,
			&rel.Primary, &rel.Validated, &rel.CreatedAt); err != nil {
			return nil, mapError("list club memberships", err)
		}
		rels = append(rels, rel)
	}
	return rels, mapError("list club memberships", rows.Err())
}

func (s *Store) CountClubMembershipsByPerson(ctx context.Context, memberID int64) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM club_member_relations WHERE member_id = ?`, memberID)
}

func (s *Store) SetClubMemberValidated(ctx context.Context, id int64) error {
	return s.setValidated(ctx, "club_member_relations", id)
}

type CreateTeamPlayerParams struct {
	TeamID    int64
	PlayerID  int64
	Validated bool
}

func (s *Store) CreateTeamPlayer(ctx context.Context, params CreateTeamPlayerParams) (*TeamPlayerRelation, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO team_player_relations (team_id, player_id, validated) VALUES (?, ?, ?)`,
		params.TeamID, params.PlayerID, params.Validated)
	if err != nil {
		return nil, mapError("create team player", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create team player", err)
	}
	return s.GetTeamPlayer(ctx, id)
}

func (s *Store) GetTeamPlayer(ctx context.Context, id int64) (*TeamPlayerRelation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, team_id, player_id, validated, created_at
		 FROM team_player_relations WHERE id = ?`, id)
	return scanTeamPlayer(row)
}

func (s *Store) FindTeamPlayer(ctx context.Context, teamID, playerID int64) (*TeamPlayerRelation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, team_id, player_id, validated, created_at
		 FROM team_player_relations WHERE team_id = ? AND player_id = ?`, teamID, playerID)
	return scanTeamPlayer(row)
}

func scanTeamPlayer(row *sql.Row) (*TeamPlayerRelation, error) {
	var rel TeamPlayerRelation
	if err := row.Scan(&rel.ID, &rel.TeamID, &rel.PlayerID, &rel.Validated, &rel.CreatedAt); err != nil {
		return nil, mapError("get team player", err)
	}
	return &rel, nil
}

func (s *Store) CountTeamPlayersByTeam(ctx context.Context, teamID int64) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM team_player_relations WHERE team_id = ?`, teamID)
}

func (s *Store) SetTeamPlayerValidated(ctx context.Context, id int64) error {
	return s.setValidated(ctx, "team_player_relations", id)
}

type CreateTeamCoachParams struct {
	TeamID    int64
	CoachID   int64
	Validated bool
}

func (s *Store) CreateTeamCoach(ctx context.Context, params CreateTeamCoachParams) (*TeamCoachRelation, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO team_coach_relations (team_id, coach_id, validated) VALUES (?, ?, ?)`,
		params.TeamID, params.CoachID, params.Validated)
	if err != nil {
		return nil, mapError("create team coach", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create team coach", err)
	}
	return s.GetTeamCoach(ctx, id)
}

func (s *Store) GetTeamCoach(ctx context.Context, id int64) (*TeamCoachRelation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, team_id, coach_id, validated, created_at
		 FROM team_coach_relations WHERE id = ?`, id)
	var rel TeamCoachRelation
	if err := row.Scan(&rel.ID, &rel.TeamID, &rel.CoachID, &rel.Validated, &rel.CreatedAt); err != nil {
		return nil, mapError("get team coach", err)
	}
	return &rel, nil
}

func (s *Store) SetTeamCoachValidated(ctx context.Context, id int64) error {
	return s.setValidated(ctx, "team_coach_relations", id)
}

// Manager relations share one shape across the five organizational kinds, so
// the SQL is generated from the table layout instead of being written five
// times. Table and column names come from managerTables below, never from
// caller input.

type managerTable struct {
	table     string
	entityCol string
}

type managerKind int

const (
	clubManager managerKind = iota
	teamManager
	groupManager
	districtManager
	unionManager
)

var managerTables = map[managerKind]managerTable{
	clubManager:     {"club_manager_relations", "club_id"},
	teamManager:     {"team_manager_relations", "team_id"},
	groupManager:    {"group_manager_relations", "group_id"},
	districtManager: {"district_manager_relations", "district_id"},
	unionManager:    {"union_manager_relations", "union_id"},
}

type managerRow struct {
	ID            int64
	EntityID      int64
	ManagerID     int64
	AppointedByID *int64
	Validated     bool
	CreatedAt     sql.NullTime
}

type CreateManagerParams struct {
	EntityID      int64
	ManagerID     int64
	AppointedByID *int64
	Validated     bool
}

func (s *Store) createManager(ctx context.Context, kind managerKind, params CreateManagerParams) (*managerRow, error) {
	mt := managerTables[kind]
	op := "create " + mt.table
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, manager_id, appointed_by_id, validated) VALUES (?, ?, ?, ?)`,
			mt.table, mt.entityCol),
		params.EntityID, params.ManagerID, toNullInt64(params.AppointedByID), params.Validated)
	if err != nil {
		return nil, mapError(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError(op, err)
	}
	return s.getManager(ctx, kind, id)
}

func (s *Store) getManager(ctx context.Context, kind managerKind, id int64) (*managerRow, error) {
	mt := managerTables[kind]
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, %s, manager_id, appointed_by_id, validated, created_at
		 FROM %s WHERE id = ?`, mt.entityCol, mt.table), id)
	var m managerRow
	var appointedBy sql.NullInt64
	var createdAt sql.NullTime
	if err := row.Scan(&m.ID, &m.EntityID, &m.ManagerID, &appointedBy, &m.Validated, &createdAt); err != nil {
		return nil, mapError("get "+mt.table, err)
	}
	m.AppointedByID = fromNullInt64(appointedBy)
	m.CreatedAt = createdAt
	return &m, nil
}

func (s *Store) countManagers(ctx context.Context, kind managerKind, entityID int64) (int64, error) {
	mt := managerTables[kind]
	return s.count(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, mt.table, mt.entityCol), entityID)
}

func (s *Store) hasValidatedManager(ctx context.Context, kind managerKind, entityID, personID int64) (bool, error) {
	mt := managerTables[kind]
	count, err := s.count(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ? AND manager_id = ? AND validated = TRUE`,
			mt.table, mt.entityCol), entityID, personID)
	return count > 0, err
}

func clubManagerFromRow(m *managerRow) *ClubManagerRelation {
	return &ClubManagerRelation{ID: m.ID, ClubID: m.EntityID, ManagerID: m.ManagerID,
		AppointedByID: m.AppointedByID, Validated: m.Validated, CreatedAt: m.CreatedAt.Time}
}

func teamManagerFromRow(m *managerRow) *TeamManagerRelation {
	return &TeamManagerRelation{ID: m.ID, TeamID: m.EntityID, ManagerID: m.ManagerID,
		AppointedByID: m.AppointedByID, Validated: m.Validated, CreatedAt: m.CreatedAt.Time}
}

func (s *Store) CreateClubManager(ctx context.Context, params CreateManagerParams) (*ClubManagerRelation, error) {
	m, err := s.createManager(ctx, clubManager, params)
	if err != nil {
		return nil, err
	}
	return clubManagerFromRow(m), nil
}

func (s *Store) GetClubManager(ctx context.Context, id int64) (*ClubManagerRelation, error) {
	m, err := s.getManager(ctx, clubManager, id)
	if err != nil {
		return nil, err
	}
	return clubManagerFromRow(m), nil
}

func (s *Store) CountClubManagers(ctx context.Context, clubID int64) (int64, error) {
	return s.countManagers(ctx, clubManager, clubID)
}

func (s *Store) HasValidatedClubManager(ctx context.Context, clubID, personID int64) (bool, error) {
	return s.hasValidatedManager(ctx, clubManager, clubID, personID)
}

func (s *Store) SetClubManagerValidated(ctx context.Context, id int64) error {
	return s.setValidated(ctx, "club_manager_relations", id)
}

func (s *Store) CreateTeamManager(ctx context.Context, params CreateManagerParams) (*TeamManagerRelation, error) {
	m, err := s.createManager(ctx, teamManager, params)
	if err != nil {
		return nil, err
	}
	return teamManagerFromRow(m), nil
}

func (s *Store) GetTeamManager(ctx context.Context, id int64) (*TeamManagerRelation, error) {
	m, err := s.getManager(ctx, teamManager, id)
	if err != nil {
		return nil, err
	}
	return teamManagerFromRow(m), nil
}

func (s *Store) CountTeamManagers(ctx context.Context, teamID int64) (int64, error) {
	return s.countManagers(ctx, teamManager, teamID)
}

func (s *Store) HasValidatedTeamManager(ctx context.Context, teamID, personID int64) (bool, error) {
	return s.hasValidatedManager(ctx, teamManager, teamID, personID)
}

func (s *Store) SetTeamManagerValidated(ctx context.Context, id int64) error {
	return s.setValidated(ctx, "team_manager_relations", id)
}

func (s *Store) CreateGroupManager(ctx context.Context, params CreateManagerParams) (*GroupManagerRelation, error) {
	m, err := s.createManager(ctx, groupManager, params)
	if err != nil {
		return nil, err
	}
	return &GroupManagerRelation{ID: m.ID, GroupID: m.EntityID, ManagerID: m.ManagerID,
		AppointedByID: m.AppointedByID, Validated: m.Validated, CreatedAt: m.CreatedAt.Time}, nil
}

func (s *Store) GetGroupManager(ctx context.Context, id int64) (*GroupManagerRelation, error) {
	m, err := s.getManager(ctx, groupManager, id)
	if err != nil {
		return nil, err
	}
	return &GroupManagerRelation{ID: m.ID, GroupID: m.EntityID, ManagerID: m.ManagerID,
		AppointedByID: m.AppointedByID, Validated: m.Validated, CreatedAt: m.CreatedAt.Time}, nil
}

func (s *Store) HasValidatedGroupManager(ctx context.Context, groupID, personID int64) (bool, error) {
	return s.hasValidatedManager(ctx, groupManager, groupID, personID)
}

func (s *Store) SetGroupManagerValidated(ctx context.Context, id int64) error {
	return s.setValidated(ctx, "group_manager_relations", id)
}

func (s *Store) CreateDistrictManager(ctx context.Context, params CreateManagerParams) (*DistrictManagerRelation, error) {
	m, err := s.createManager(ctx, districtManager, params)
	if err != nil {
		return nil, err
	}
	return &DistrictManagerRelation{ID: m.ID, DistrictID: m.EntityID, ManagerID: m.ManagerID,
		AppointedByID: m.AppointedByID, Validated: m.Validated, CreatedAt: m.CreatedAt.Time}, nil
}

func (s *Store) GetDistrictManager(ctx context.Context, id int64) (*DistrictManagerRelation, error) {
	m, err := s.getManager(ctx, districtManager, id)
	if err != nil {
		return nil, err
	}
	return &DistrictManagerRelation{ID: m.ID, DistrictID: m.EntityID, ManagerID: m.ManagerID,
		AppointedByID: m.AppointedByID, Validated: m.Validated, CreatedAt: m.CreatedAt.Time}, nil
}

func (s *Store) HasValidatedDistrictManager(ctx context.Context, districtID, personID int64) (bool, error) {
	return s.hasValidatedManager(ctx, districtManager, districtID, personID)
}

func (s *Store) SetDistrictManagerValidated(ctx context.Context, id int64) error {
	return s.setValidated(ctx, "district_manager_relations", id)
}

func (s *Store) CreateUnionManager(ctx context.Context, params CreateManagerParams) (*UnionManagerRelation, error) {
	m, err := s.createManager(ctx, unionManager, params)
	if err != nil {
		return nil, err
	}
	return &UnionManagerRelation{ID: m.ID, UnionID: m.EntityID, ManagerID: m.ManagerID,
		AppointedByID: m.AppointedByID, Validated: m.Validated, CreatedAt: m.CreatedAt.Time}, nil
}

func (s *Store) GetUnionManager(ctx context.Context, id int64) (*UnionManagerRelation, error) {
	m, err := s.getManager(ctx, unionManager, id)
	if err != nil {
		return nil, err
	}
	return &UnionManagerRelation{ID: m.ID, UnionID: m.EntityID, ManagerID: m.ManagerID,
		AppointedByID: m.AppointedByID, Validated: m.Validated, CreatedAt: m.CreatedAt.Time}, nil
}

func (s *Store) HasValidatedUnionManager(ctx context.Context, unionID, personID int64) (bool, error) {
	return s.hasValidatedManager(ctx, unionManager, unionID, personID)
}

func (s *Store) SetUnionManagerValidated(ctx context.Context, id int64) error {
	return s.setValidated(ctx, "union_manager_relations", id)
}

// Peer checks for the approval rules: an already-validated member of the same
// club or team may confirm another membership of that entity.

func (s *Store) HasValidatedClubMember(ctx context.Context, clubID, personID int64) (bool, error) {
	count, err := s.count(ctx,
		`SELECT COUNT(*) FROM club_member_relations
		 WHERE club_id = ? AND member_id = ? AND validated = TRUE`, clubID, personID)
	return count > 0, err
}

func (s *Store) HasValidatedTeamPlayer(ctx context.Context, teamID, personID int64) (bool, error) {
	count, err := s.count(ctx,
		`SELECT COUNT(*) FROM team_player_relations
		 WHERE team_id = ? AND player_id = ? AND validated = TRUE`, teamID, personID)
	return count > 0, err
}

func (s *Store) HasValidatedTeamCoach(ctx context.Context, teamID, personID int64) (bool, error) {
	count, err := s.count(ctx,
		`SELECT COUNT(*) FROM team_coach_relations
		 WHERE team_id = ? AND coach_id = ? AND validated = TRUE`, teamID, personID)
	return count > 0, err
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, mapError("count", err)
	}
	return count, nil
}

// setValidated flips a relation to its terminal validated state. The table
// name is always a compile-time constant at call sites.
func (s *Store) setValidated(ctx context.Context, table string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET validated = TRUE WHERE id = ?`, table), id)
	if err != nil {
		return mapError("validate "+table, err)
	}
	return requireRow("validate "+table, res)
}
