// Package engine is the relationship consistency core: every relation or game
// write enters through it, runs inside one transaction together with the
// cascade rules it triggers, and either all of it commits or none of it does.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/scoreit/handball/internal/db"
	"github.com/scoreit/handball/internal/store"
)

type Engine struct {
	db      *db.DB
	scoring ScoringRule
	rules   []rule
}

type Option func(*Engine)

// WithScoringRule overrides the default 1-0 standings scoring.
func WithScoringRule(rule ScoringRule) Option {
	return func(e *Engine) {
		if rule != nil {
			e.scoring = rule
		}
	}
}

func New(database *db.DB, opts ...Option) (*Engine, error) {
	if database == nil {
		return nil, errors.New("engine requires a database")
	}
	e := &Engine{db: database, scoring: WinnerTakesOne}
	for _, opt := range opts {
		opt(e)
	}
	e.rules = e.ruleSet()
	return e, nil
}

// CreateTeamPlayer records a person as a player of a team and runs the team
// role cascades (club membership backfill, first team manager).
func (e *Engine) CreateTeamPlayer(ctx context.Context, params store.CreateTeamPlayerParams) (*store.TeamPlayerRelation, error) {
	var rel *store.TeamPlayerRelation
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		var err error
		rel, err = e.createTeamPlayer(ctx, txdb.Store, params)
		return err
	})
	return rel, err
}

func (e *Engine) createTeamPlayer(ctx context.Context, s *store.Store, params store.CreateTeamPlayerParams) (*store.TeamPlayerRelation, error) {
	rel, err := s.CreateTeamPlayer(ctx, params)
	if err != nil {
		return nil, err
	}
	return rel, e.fire(ctx, s, event{kind: KindTeamPlayer, teamPlayer: rel})
}

// CreateTeamCoach records a person as a coach of a team; cascades mirror the
// player case.
func (e *Engine) CreateTeamCoach(ctx context.Context, params store.CreateTeamCoachParams) (*store.TeamCoachRelation, error) {
	var rel *store.TeamCoachRelation
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		var err error
		rel, err = txdb.Store.CreateTeamCoach(ctx, params)
		if err != nil {
			return err
		}
		return e.fire(ctx, txdb.Store, event{kind: KindTeamCoach, teamCoach: rel})
	})
	return rel, err
}

// CreateClubMember records a club membership. The primary flag is adjusted
// before the row is written: a person's first club membership is always
// primary, and later memberships never steal the flag.
func (e *Engine) CreateClubMember(ctx context.Context, params store.CreateClubMemberParams) (*store.ClubMemberRelation, error) {
	var rel *store.ClubMemberRelation
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		var err error
		rel, err = e.createClubMember(ctx, txdb.Store, params)
		return err
	})
	return rel, err
}

func (e *Engine) createClubMember(ctx context.Context, s *store.Store, params store.CreateClubMemberParams) (*store.ClubMemberRelation, error) {
	count, err := s.CountClubMembershipsByPerson(ctx, params.MemberID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		params.Primary = true
	} else {
		params.Primary = false
	}

	rel, err := s.CreateClubMember(ctx, params)
	if err != nil {
		return nil, err
	}
	return rel, e.fire(ctx, s, event{kind: KindClubMember, clubMember: rel})
}

// CreateGamePlayer records game participation. Participation is proof of team
// membership, so a missing TeamPlayerRelation is backfilled as validated.
func (e *Engine) CreateGamePlayer(ctx context.Context, params store.CreateGamePlayerParams) (*store.GamePlayerRelation, error) {
	var rel *store.GamePlayerRelation
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		var err error
		rel, err = txdb.Store.CreateGamePlayer(ctx, params)
		if err != nil {
			return err
		}
		return e.fire(ctx, txdb.Store, event{kind: KindGamePlayer, gamePlayer: rel})
	})
	return rel, err
}

// CreateGame commits a game record and runs the game cascades: home site
// default and group standings. A winner that is neither the home nor the away
// team violates a structural invariant and aborts the write.
func (e *Engine) CreateGame(ctx context.Context, params store.CreateGameParams) (*store.Game, error) {
	if params.WinnerTeamID != nil &&
		*params.WinnerTeamID != params.HomeTeamID && *params.WinnerTeamID != params.AwayTeamID {
		return nil, fmt.Errorf("winner team %d is neither home nor away: %w",
			*params.WinnerTeamID, store.ErrInvariant)
	}

	var game *store.Game
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		var err error
		game, err = txdb.Store.CreateGame(ctx, params)
		if err != nil {
			return err
		}
		return e.fire(ctx, txdb.Store, event{kind: KindGame, game: game})
	})
	return game, err
}

// Organizational creation conveniences: the acting person becomes the entity's
// first manager, for lack of other people who could later confirm anyone.

func (e *Engine) CreateUnion(ctx context.Context, name string, actorID int64) (*store.Union, error) {
	var union *store.Union
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		var err error
		union, err = txdb.Store.CreateUnion(ctx, name)
		if err != nil {
			return err
		}
		if actorID == 0 {
			return nil
		}
		_, err = txdb.Store.CreateUnionManager(ctx, store.CreateManagerParams{
			EntityID: union.ID, ManagerID: actorID, AppointedByID: &actorID, Validated: true,
		})
		return err
	})
	return union, err
}

func (e *Engine) CreateDistrict(ctx context.Context, params store.CreateDistrictParams, actorID int64) (*store.District, error) {
	var district *store.District
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		var err error
		district, err = txdb.Store.CreateDistrict(ctx, params)
		if err != nil {
			return err
		}
		if actorID == 0 {
			return nil
		}
		_, err = txdb.Store.CreateDistrictManager(ctx, store.CreateManagerParams{
			EntityID: district.ID, ManagerID: actorID, AppointedByID: &actorID, Validated: true,
		})
		return err
	})
	return district, err
}

func (e *Engine) CreateClub(ctx context.Context, params store.CreateClubParams, actorID int64) (*store.Club, error) {
	var club *store.Club
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		if actorID != 0 {
			params.CreatedByID = &actorID
		}
		var err error
		club, err = txdb.Store.CreateClub(ctx, params)
		if err != nil {
			return err
		}
		if actorID == 0 {
			return nil
		}
		_, err = txdb.Store.CreateClubManager(ctx, store.CreateManagerParams{
			EntityID: club.ID, ManagerID: actorID, AppointedByID: &actorID, Validated: true,
		})
		return err
	})
	return club, err
}

func (e *Engine) CreateTeam(ctx context.Context, params store.CreateTeamParams, actorID int64) (*store.Team, error) {
	var team *store.Team
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		if actorID != 0 {
			params.CreatedByID = &actorID
		}
		var err error
		team, err = txdb.Store.CreateTeam(ctx, params)
		if err != nil {
			return err
		}
		if actorID == 0 {
			return nil
		}
		_, err = txdb.Store.CreateTeamManager(ctx, store.CreateManagerParams{
			EntityID: team.ID, ManagerID: actorID, AppointedByID: &actorID, Validated: true,
		})
		return err
	})
	return team, err
}

func (e *Engine) CreateGroup(ctx context.Context, params store.CreateGroupParams, actorID int64) (*store.Group, error) {
	var group *store.Group
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		var err error
		group, err = txdb.Store.CreateGroup(ctx, params)
		if err != nil {
			return err
		}
		if actorID == 0 {
			return nil
		}
		_, err = txdb.Store.CreateGroupManager(ctx, store.CreateManagerParams{
			EntityID: group.ID, ManagerID: actorID, AppointedByID: &actorID, Validated: true,
		})
		return err
	})
	return group, err
}
