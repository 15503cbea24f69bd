package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/scoreit/handball/internal/contact"
)

type CreatePersonParams struct {
	UserID       *int64
	FirstName    string
	LastName     string
	Address      string
	City         string
	ZipCode      string
	Birthday     *time.Time
	PassNumber   *int64
	Gender       string
	MobileNumber string
	IsPlayer     bool
	IsCoach      bool
	IsReferee    bool
	IsExec       bool
}

func (s *Store) CreatePerson(ctx context.Context, params CreatePersonParams) (*Person, error) {
	mobile, err := contact.NormalizeMobile(params.MobileNumber, "")
	if err != nil {
		return nil, mapError("create person", err)
	}
	if params.Gender == "" {
		params.Gender = "male"
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO persons (user_id, first_name, last_name, address, city, zip_code,
		                      birthday, pass_number, gender, mobile_number,
		                      is_player, is_coach, is_referee, is_exec)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		toNullInt64(params.UserID), params.FirstName, params.LastName,
		params.Address, params.City, params.ZipCode,
		toNullTime(params.Birthday), toNullInt64(params.PassNumber),
		params.Gender, mobile,
		params.IsPlayer, params.IsCoach, params.IsReferee, params.IsExec)
	if err != nil {
		return nil, mapError("create person", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, mapError("create person", err)
	}
	return s.GetPerson(ctx, id)
}

const personColumns = `id, user_id, first_name, last_name, address, city, zip_code,
	birthday, pass_number, gender, mobile_number,
	is_player, is_coach, is_referee, is_exec, validated, created_at`

func (s *Store) GetPerson(ctx context.Context, id int64) (*Person, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = ?`, id)
	return scanPerson(row)
}

func scanPerson(row *sql.Row) (*Person, error) {
	var p Person
	var userID, passNumber sql.NullInt64
	var birthday sql.NullTime
	if err := row.Scan(&p.ID, &userID, &p.FirstName, &p.LastName,
		&p.Address, &p.City, &p.ZipCode, &birthday, &passNumber,
		&p.Gender, &p.MobileNumber,
		&p.IsPlayer, &p.IsCoach, &p.IsReferee, &p.IsExec,
		&p.Validated, &p.CreatedAt); err != nil {
		return nil, mapError("get person", err)
	}
	p.UserID = fromNullInt64(userID)
	p.PassNumber = fromNullInt64(passNumber)
	p.Birthday = fromNullTime(birthday)
	return &p, nil
}

// PassNumberTaken reports whether any person already holds the given pass
// number. Backs the uniqueness probe the signup flow calls before reserving
// a number.
func (s *Store) PassNumberTaken(ctx context.Context, passNumber int64) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM persons WHERE pass_number = ?`, passNumber).Scan(&count)
	if err != nil {
		return false, mapError("check pass number", err)
	}
	return count > 0, nil
}

func (s *Store) SetPersonValidated(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE persons SET validated = TRUE WHERE id = ?`, id)
	if err != nil {
		return mapError("validate person", err)
	}
	return requireRow("validate person", res)
}
