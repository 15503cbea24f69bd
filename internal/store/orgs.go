package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateUnion inserts a new top-level union.
func (s *Store) CreateUnion(ctx context.Context, name string) (*Union, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO unions (name) VALUES (?)`, name)
	if err != nil {
		return nil, mapError("create union", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create union", err)
	}
	return s.GetUnion(ctx, id)
}

func (s *Store) GetUnion(ctx context.Context, id int64) (*Union, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM unions WHERE id = ?`, id)
	var u Union
	if err := row.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
		return nil, mapError("get union", err)
	}
	return &u, nil
}

func (s *Store) ListUnions(ctx context.Context) ([]Union, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM unions ORDER BY name`)
	if err != nil {
		return nil, mapError("list unions", err)
	}
	defer rows.Close()

	var unions []Union
	for rows.Next() {
		var u Union
		if err := rows.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
			return nil, mapError("list unions", err)
		}
		unions = append(unions, u)
	}
	return unions, mapError("list unions", rows.Err())
}

type CreateDistrictParams struct {
	Name    string
	UnionID int64
}

func (s *Store) CreateDistrict(ctx context.Context, params CreateDistrictParams) (*District, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO districts (name, union_id) VALUES (?, ?)`,
		params.Name, params.UnionID)
	if err != nil {
		return nil, mapError("create district", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create district", err)
	}
	return s.GetDistrict(ctx, id)
}

func (s *Store) GetDistrict(ctx context.Context, id int64) (*District, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, union_id, created_at FROM districts WHERE id = ?`, id)
	var d District
	if err := row.Scan(&d.ID, &d.Name, &d.UnionID, &d.CreatedAt); err != nil {
		return nil, mapError("get district", err)
	}
	return &d, nil
}

func (s *Store) ListDistrictsByUnion(ctx context.Context, unionID int64) ([]District, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, union_id, created_at FROM districts WHERE union_id = ? ORDER BY name`,
		unionID)
	if err != nil {
		return nil, mapError("list districts", err)
	}
	defer rows.Close()

	var districts []District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.ID, &d.Name, &d.UnionID, &d.CreatedAt); err != nil {
			return nil, mapError("list districts", err)
		}
		districts = append(districts, d)
	}
	return districts, mapError("list districts", rows.Err())
}

type CreateClubParams struct {
	Name        string
	DistrictID  int64
	CreatedByID *int64
}

func (s *Store) CreateClub(ctx context.Context, params CreateClubParams) (*Club, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO clubs (name, district_id, created_by_id) VALUES (?, ?, ?)`,
		params.Name, params.DistrictID, toNullInt64(params.CreatedByID))
	if err != nil {
		return nil, mapError("create club", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create club", err)
	}
	return s.GetClub(ctx, id)
}

func (s *Store) GetClub(ctx context.Context, id int64) (*Club, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, district_id, home_site_id, created_by_id, validated, created_at
		 FROM clubs WHERE id = ?`, id)
	return scanClub(row)
}

func scanClub(row *sql.Row) (*Club, error) {
	var c Club
	var homeSite, createdBy sql.NullInt64
	if err := row.Scan(&c.ID, &c.Name, &c.DistrictID, &homeSite, &createdBy, &c.Validated, &c.CreatedAt); err != nil {
		return nil, mapError("get club", err)
	}
	c.HomeSiteID = fromNullInt64(homeSite)
	c.CreatedByID = fromNullInt64(createdBy)
	return &c, nil
}

// SetClubHomeSiteIfUnset assigns the club's home site only when none is set
// yet, so the first scored home game wins and later games never reassign it.
func (s *Store) SetClubHomeSiteIfUnset(ctx context.Context, clubID, siteID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE clubs SET home_site_id = ? WHERE id = ? AND home_site_id IS NULL`,
		siteID, clubID)
	return mapError("set club home site", err)
}

func (s *Store) SetClubValidated(ctx context.Context, clubID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE clubs SET validated = TRUE WHERE id = ?`, clubID)
	if err != nil {
		return mapError("validate club", err)
	}
	return requireRow("validate club", res)
}

type CreateTeamParams struct {
	Name        string
	ClubID      int64
	CreatedByID *int64
}

func (s *Store) CreateTeam(ctx context.Context, params CreateTeamParams) (*Team, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (name, club_id, created_by_id) VALUES (?, ?, ?)`,
		params.Name, params.ClubID, toNullInt64(params.CreatedByID))
	if err != nil {
		return nil, mapError("create team", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create team", err)
	}
	return s.GetTeam(ctx, id)
}

func (s *Store) GetTeam(ctx context.Context, id int64) (*Team, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, club_id, created_by_id, validated, created_at
		 FROM teams WHERE id = ?`, id)
	var t Team
	var createdBy sql.NullInt64
	if err := row.Scan(&t.ID, &t.Name, &t.ClubID, &createdBy, &t.Validated, &t.CreatedAt); err != nil {
		return nil, mapError("get team", err)
	}
	t.CreatedByID = fromNullInt64(createdBy)
	return &t, nil
}

func (s *Store) ListTeamsByClub(ctx context.Context, clubID int64) ([]Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, club_id, created_by_id, validated, created_at
		 FROM teams WHERE club_id = ? ORDER BY name`, clubID)
	if err != nil {
		return nil, mapError("list teams", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		var createdBy sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &t.ClubID, &createdBy, &t.Validated, &t.CreatedAt); err != nil {
			return nil, mapError("list teams", err)
		}
		t.CreatedByID = fromNullInt64(createdBy)
		teams = append(teams, t)
	}
	return teams, mapError("list teams", rows.Err())
}

type CreateGroupParams struct {
	Name       string
	Kind       string
	Gender     string
	AgeGroup   string
	LevelID    *int64
	UnionID    *int64
	DistrictID *int64
}

func (s *Store) CreateGroup(ctx context.Context, params CreateGroupParams) (*Group, error) {
	if params.Kind == "" {
		params.Kind = GroupKindLeague
	}
	switch params.Kind {
	case GroupKindLeague, GroupKindCup, GroupKindTournament:
	default:
		return nil, fmt.Errorf("create group: kind %q: %w", params.Kind, ErrInvariant)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO groups (name, kind, gender, age_group, level_id, union_id, district_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		params.Name, params.Kind, params.Gender, params.AgeGroup,
		toNullInt64(params.LevelID), toNullInt64(params.UnionID), toNullInt64(params.DistrictID))
	if err != nil {
		return nil, mapError("create group", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create group", err)
	}
	return s.GetGroup(ctx, id)
}

func (s *Store) GetGroup(ctx context.Context, id int64) (*Group, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, kind, gender, age_group, level_id, union_id, district_id, validated, created_at
		 FROM groups WHERE id = ?`, id)
	var g Group
	var level, union, district sql.NullInt64
	if err := row.Scan(&g.ID, &g.Name, &g.Kind, &g.Gender, &g.AgeGroup,
		&level, &union, &district, &g.Validated, &g.CreatedAt); err != nil {
		return nil, mapError("get group", err)
	}
	g.LevelID = fromNullInt64(level)
	g.UnionID = fromNullInt64(union)
	g.DistrictID = fromNullInt64(district)
	return &g, nil
}

func (s *Store) CreateLeagueLevel(ctx context.Context, name string) (*LeagueLevel, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO league_levels (name) VALUES (?)`, name)
	if err != nil {
		return nil, mapError("create league level", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create league level", err)
	}
	return &LeagueLevel{ID: id, Name: name}, nil
}

func (s *Store) ListLeagueLevels(ctx context.Context) ([]LeagueLevel, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM league_levels ORDER BY id`)
	if err != nil {
		return nil, mapError("list league levels", err)
	}
	defer rows.Close()

	var levels []LeagueLevel
	for rows.Next() {
		var l LeagueLevel
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, mapError("list league levels", err)
		}
		levels = append(levels, l)
	}
	return levels, mapError("list league levels", rows.Err())
}

type CreateSiteParams struct {
	Name    string
	Address string
	City    string
	ZipCode string
	Number  int64
}

func (s *Store) CreateSite(ctx context.Context, params CreateSiteParams) (*Site, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sites (name, address, city, zip_code, number) VALUES (?, ?, ?, ?, ?)`,
		params.Name, params.Address, params.City, params.ZipCode, params.Number)
	if err != nil {
		return nil, mapError("create site", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create site", err)
	}
	return s.GetSite(ctx, id)
}

func (s *Store) GetSite(ctx context.Context, id int64) (*Site, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, address, city, zip_code, number, created_at FROM sites WHERE id = ?`, id)
	var site Site
	if err := row.Scan(&site.ID, &site.Name, &site.Address, &site.City,
		&site.ZipCode, &site.Number, &site.CreatedAt); err != nil {
		return nil, mapError("get site", err)
	}
	return &site, nil
}

// requireRow converts a zero-row UPDATE into ErrNotFound.
func requireRow(op string, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return mapError(op, err)
	}
	if affected == 0 {
		return mapError(op, sql.ErrNoRows)
	}
	return nil
}
