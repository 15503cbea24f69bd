// Package approval implements the one-way unvalidated -> validated transition
// on relations, gated by who the acting person is: a validated manager of the
// target entity or of an ancestor in the union -> district -> club -> team
// chain, or (for plain membership) an already-validated peer on the same
// entity. The ancestor check is a fixed four-level walk, not a graph search;
// the hierarchy is acyclic by construction.
package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/scoreit/handball/internal/db"
	"github.com/scoreit/handball/internal/store"
)

// RelationKind identifies which relation table a validation request targets.
type RelationKind string

const (
	ClubMember      RelationKind = "club_member"
	TeamPlayer      RelationKind = "team_player"
	TeamCoach       RelationKind = "team_coach"
	ClubManager     RelationKind = "club_manager"
	TeamManager     RelationKind = "team_manager"
	GroupManager    RelationKind = "group_manager"
	DistrictManager RelationKind = "district_manager"
	UnionManager    RelationKind = "union_manager"
	GroupTeam       RelationKind = "group_team"
)

// GameFlag identifies one of a game's three independent validation flags.
type GameFlag string

const (
	GameHome    GameFlag = "home"
	GameAway    GameFlag = "away"
	GameReferee GameFlag = "referee"
)

var (
	ErrNotAuthorized = errors.New("not authorized")
	ErrUnknownKind   = errors.New("unknown relation kind")
)

type Service struct {
	db *db.DB
}

func NewService(database *db.DB) (*Service, error) {
	if database == nil {
		return nil, errors.New("approval service requires a database")
	}
	return &Service{db: database}, nil
}

// Validate transitions the identified relation to validated on behalf of
// actorID. Validating an already-validated relation is a no-op. The check and
// the flip run in one transaction.
func (svc *Service) Validate(ctx context.Context, kind RelationKind, relationID, actorID int64) error {
	return svc.db.RunInTx(ctx, func(txdb *db.DB) error {
		return svc.validate(ctx, txdb.Store, kind, relationID, actorID)
	})
}

func (svc *Service) validate(ctx context.Context, s *store.Store, kind RelationKind, relationID, actorID int64) error {
	switch kind {
	case TeamPlayer:
		rel, err := s.GetTeamPlayer(ctx, relationID)
		if err != nil {
			return err
		}
		if rel.Validated {
			return nil
		}
		if err := svc.requireTeamAuthority(ctx, s, rel.TeamID, actorID, true); err != nil {
			return err
		}
		return s.SetTeamPlayerValidated(ctx, rel.ID)

	case TeamCoach:
		rel, err := s.GetTeamCoach(ctx, relationID)
		if err != nil {
			return err
		}
		if rel.Validated {
			return nil
		}
		if err := svc.requireTeamAuthority(ctx, s, rel.TeamID, actorID, true); err != nil {
			return err
		}
		return s.SetTeamCoachValidated(ctx, rel.ID)

	case ClubMember:
		rel, err := s.GetClubMember(ctx, relationID)
		if err != nil {
			return err
		}
		if rel.Validated {
			return nil
		}
		if err := svc.requireClubAuthority(ctx, s, rel.ClubID, actorID, true); err != nil {
			return err
		}
		return s.SetClubMemberValidated(ctx, rel.ID)

	case TeamManager:
		rel, err := s.GetTeamManager(ctx, relationID)
		if err != nil {
			return err
		}
		if rel.Validated {
			return nil
		}
		if err := svc.requireTeamAuthority(ctx, s, rel.TeamID, actorID, false); err != nil {
			return err
		}
		return s.SetTeamManagerValidated(ctx, rel.ID)

	case ClubManager:
		rel, err := s.GetClubManager(ctx, relationID)
		if err != nil {
			return err
		}
		if rel.Validated {
			return nil
		}
		if err := svc.requireClubAuthority(ctx, s, rel.ClubID, actorID, false); err != nil {
			return err
		}
		return s.SetClubManagerValidated(ctx, rel.ID)

	case GroupManager:
		rel, err := s.GetGroupManager(ctx, relationID)
		if err != nil {
			return err
		}
		if rel.Validated {
			return nil
		}
		if err := svc.requireGroupAuthority(ctx, s, rel.GroupID, actorID); err != nil {
			return err
		}
		return s.SetGroupManagerValidated(ctx, rel.ID)

	case DistrictManager:
		rel, err := s.GetDistrictManager(ctx, relationID)
		if err != nil {
			return err
		}
		if rel.Validated {
			return nil
		}
		if err := svc.requireDistrictAuthority(ctx, s, rel.DistrictID, actorID); err != nil {
			return err
		}
		return s.SetDistrictManagerValidated(ctx, rel.ID)

	case UnionManager:
		rel, err := s.GetUnionManager(ctx, relationID)
		if err != nil {
			return err
		}
		if rel.Validated {
			return nil
		}
		ok, err := s.HasValidatedUnionManager(ctx, rel.UnionID, actorID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAuthorized
		}
		return s.SetUnionManagerValidated(ctx, rel.ID)

	case GroupTeam:
		rel, err := s.GetGroupTeam(ctx, relationID)
		if err != nil {
			return err
		}
		if rel.Validated {
			return nil
		}
		if err := svc.requireGroupAuthority(ctx, s, rel.GroupID, actorID); err != nil {
			return err
		}
		return s.SetGroupTeamValidated(ctx, rel.ID)

	default:
		return fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
}

// ValidateGameFlag flips one of a game's validation flags. The home and away
// flags need authority over the respective team; the referee flag is reserved
// for the game's assigned referee.
func (svc *Service) ValidateGameFlag(ctx context.Context, gameID int64, flag GameFlag, actorID int64) error {
	return svc.db.RunInTx(ctx, func(txdb *db.DB) error {
		s := txdb.Store
		game, err := s.GetGame(ctx, gameID)
		if err != nil {
			return err
		}

		switch flag {
		case GameHome:
			if game.HomeValidated {
				return nil
			}
			if err := svc.requireTeamAuthority(ctx, s, game.HomeTeamID, actorID, true); err != nil {
				return err
			}
			return s.SetGameHomeValidated(ctx, game.ID)
		case GameAway:
			if game.AwayValidated {
				return nil
			}
			if err := svc.requireTeamAuthority(ctx, s, game.AwayTeamID, actorID, true); err != nil {
				return err
			}
			return s.SetGameAwayValidated(ctx, game.ID)
		case GameReferee:
			if game.RefereeValidated {
				return nil
			}
			if game.RefereeID == nil || *game.RefereeID != actorID {
				return ErrNotAuthorized
			}
			return s.SetGameRefereeValidated(ctx, game.ID)
		default:
			return fmt.Errorf("game flag %q: %w", flag, ErrUnknownKind)
		}
	})
}

// requireTeamAuthority walks team -> club -> district -> union. allowPeers
// additionally accepts a validated player or coach of the same team, which is
// how plain membership gets confirmed on teams without an active manager.
func (svc *Service) requireTeamAuthority(ctx context.Context, s *store.Store, teamID, actorID int64, allowPeers bool) error {
	ok, err := s.HasValidatedTeamManager(ctx, teamID, actorID)
	if err != nil || ok {
		return authResult(ok, err)
	}

	if allowPeers {
		ok, err = s.HasValidatedTeamPlayer(ctx, teamID, actorID)
		if err != nil || ok {
			return authResult(ok, err)
		}
		ok, err = s.HasValidatedTeamCoach(ctx, teamID, actorID)
		if err != nil || ok {
			return authResult(ok, err)
		}
	}

	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	return svc.requireClubAuthority(ctx, s, team.ClubID, actorID, false)
}

// requireClubAuthority walks club -> district -> union. allowPeers accepts a
// validated member of the same club.
func (svc *Service) requireClubAuthority(ctx context.Context, s *store.Store, clubID, actorID int64, allowPeers bool) error {
	ok, err := s.HasValidatedClubManager(ctx, clubID, actorID)
	if err != nil || ok {
		return authResult(ok, err)
	}

	if allowPeers {
		ok, err = s.HasValidatedClubMember(ctx, clubID, actorID)
		if err != nil || ok {
			return authResult(ok, err)
		}
	}

	club, err := s.GetClub(ctx, clubID)
	if err != nil {
		return err
	}
	return svc.requireDistrictAuthority(ctx, s, club.DistrictID, actorID)
}

func (svc *Service) requireDistrictAuthority(ctx context.Context, s *store.Store, districtID, actorID int64) error {
	ok, err := s.HasValidatedDistrictManager(ctx, districtID, actorID)
	if err != nil || ok {
		return authResult(ok, err)
	}

	district, err := s.GetDistrict(ctx, districtID)
	if err != nil {
		return err
	}
	ok, err = s.HasValidatedUnionManager(ctx, district.UnionID, actorID)
	return authResult(ok, err)
}

// requireGroupAuthority accepts a validated group manager, or a manager of the
// district or union the group is scoped to.
func (svc *Service) requireGroupAuthority(ctx context.Context, s *store.Store, groupID, actorID int64) error {
	ok, err := s.HasValidatedGroupManager(ctx, groupID, actorID)
	if err != nil || ok {
		return authResult(ok, err)
	}

	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.DistrictID != nil {
		if err := svc.requireDistrictAuthority(ctx, s, *group.DistrictID, actorID); err == nil {
			return nil
		} else if !errors.Is(err, ErrNotAuthorized) {
			return err
		}
	}
	if group.UnionID != nil {
		ok, err = s.HasValidatedUnionManager(ctx, *group.UnionID, actorID)
		if err != nil || ok {
			return authResult(ok, err)
		}
	}
	return ErrNotAuthorized
}

func authResult(ok bool, err error) error {
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return ErrNotAuthorized
}
