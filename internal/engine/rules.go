package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/scoreit/handball/internal/store"
)

// Kind names the write events the rule registry reacts to.
type Kind string

const (
	KindTeamPlayer Kind = "team_player"
	KindTeamCoach  Kind = "team_coach"
	KindClubMember Kind = "club_member"
	KindGamePlayer Kind = "game_player"
	KindGame       Kind = "game"
)

// event is a completed write inside the current transaction. Exactly one
// payload field matching the kind is set.
type event struct {
	kind       Kind
	teamPlayer *store.TeamPlayerRelation
	teamCoach  *store.TeamCoachRelation
	clubMember *store.ClubMemberRelation
	gamePlayer *store.GamePlayerRelation
	game       *store.Game
}

// rule is one named cascade step. Rules are applied in registration order;
// every rule only ever creates relations more general than its trigger
// (game -> team -> club), so the chain is finite by construction.
type rule struct {
	name  string
	kind  Kind
	apply func(ctx context.Context, s *store.Store, ev event) error
}

// ruleSet is the explicit, ordered cascade registry. Ordering here is the
// ordering of side effects; keep the membership backfills ahead of the
// first-manager rules so a brand-new team gains its member before its manager.
func (e *Engine) ruleSet() []rule {
	return []rule{
		{name: "player-club-membership-backfill", kind: KindTeamPlayer, apply: e.backfillClubMembershipFromPlayer},
		{name: "player-first-team-manager", kind: KindTeamPlayer, apply: e.firstTeamManagerFromPlayer},
		{name: "coach-club-membership-backfill", kind: KindTeamCoach, apply: e.backfillClubMembershipFromCoach},
		{name: "coach-first-team-manager", kind: KindTeamCoach, apply: e.firstTeamManagerFromCoach},
		{name: "first-club-manager", kind: KindClubMember, apply: e.firstClubManager},
		{name: "team-membership-from-game", kind: KindGamePlayer, apply: e.teamMembershipFromGame},
		{name: "home-site-default", kind: KindGame, apply: e.defaultHomeSite},
		{name: "group-standings", kind: KindGame, apply: e.updateGroupStandings},
	}
}

// fire applies every registered rule matching the event's kind, in order.
// A ErrConflict bubbling out of a rule means the rule's target relation
// already exists and is swallowed inside the rule itself; any error reaching
// this point aborts the surrounding transaction.
func (e *Engine) fire(ctx context.Context, s *store.Store, ev event) error {
	for _, r := range e.rules {
		if r.kind != ev.kind {
			continue
		}
		if err := r.apply(ctx, s, ev); err != nil {
			return fmt.Errorf("rule %s: %w", r.name, err)
		}
	}
	return nil
}

func (e *Engine) backfillClubMembershipFromPlayer(ctx context.Context, s *store.Store, ev event) error {
	return e.ensureClubMembership(ctx, s, ev.teamPlayer.TeamID, ev.teamPlayer.PlayerID, ev.teamPlayer.Validated)
}

func (e *Engine) backfillClubMembershipFromCoach(ctx context.Context, s *store.Store, ev event) error {
	return e.ensureClubMembership(ctx, s, ev.teamCoach.TeamID, ev.teamCoach.CoachID, ev.teamCoach.Validated)
}

// ensureClubMembership backfills the club membership implied by a team role.
// The membership inherits the validated state of the triggering relation and
// itself runs the club-member cascade.
func (e *Engine) ensureClubMembership(ctx context.Context, s *store.Store, teamID, personID int64, validated bool) error {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}

	_, err = s.FindClubMember(ctx, team.ClubID, personID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	log.Ctx(ctx).Debug().
		Str("component", "engine").
		Int64("club_id", team.ClubID).
		Int64("person_id", personID).
		Msg("Backfilling club membership from team role")

	_, err = e.createClubMember(ctx, s, store.CreateClubMemberParams{
		ClubID:    team.ClubID,
		MemberID:  personID,
		Validated: validated,
	})
	return ignoreConflict(err)
}

func (e *Engine) firstTeamManagerFromPlayer(ctx context.Context, s *store.Store, ev event) error {
	return e.ensureFirstTeamManager(ctx, s, ev.teamPlayer.TeamID, ev.teamPlayer.PlayerID)
}

func (e *Engine) firstTeamManagerFromCoach(ctx context.Context, s *store.Store, ev event) error {
	return e.ensureFirstTeamManager(ctx, s, ev.teamCoach.TeamID, ev.teamCoach.CoachID)
}

// ensureFirstTeamManager makes the first contributor to an unmanaged team its
// manager, so an otherwise empty team always has somebody able to validate it.
func (e *Engine) ensureFirstTeamManager(ctx context.Context, s *store.Store, teamID, personID int64) error {
	count, err := s.CountTeamManagers(ctx, teamID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Ctx(ctx).Debug().
		Str("component", "engine").
		Int64("team_id", teamID).
		Int64("person_id", personID).
		Msg("First contributor becomes team manager")

	_, err = s.CreateTeamManager(ctx, store.CreateManagerParams{
		EntityID:  teamID,
		ManagerID: personID,
		Validated: true,
	})
	return ignoreConflict(err)
}

// firstClubManager makes a club's first member its manager.
func (e *Engine) firstClubManager(ctx context.Context, s *store.Store, ev event) error {
	count, err := s.CountClubManagers(ctx, ev.clubMember.ClubID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Ctx(ctx).Debug().
		Str("component", "engine").
		Int64("club_id", ev.clubMember.ClubID).
		Int64("person_id", ev.clubMember.MemberID).
		Msg("First member becomes club manager")

	_, err = s.CreateClubManager(ctx, store.CreateManagerParams{
		EntityID:  ev.clubMember.ClubID,
		ManagerID: ev.clubMember.MemberID,
		Validated: true,
	})
	return ignoreConflict(err)
}

// teamMembershipFromGame treats explicit game participation as proof of team
// membership: the backfilled relation is validated immediately and runs the
// team-player cascade in turn.
func (e *Engine) teamMembershipFromGame(ctx context.Context, s *store.Store, ev event) error {
	_, err := s.FindTeamPlayer(ctx, ev.gamePlayer.TeamID, ev.gamePlayer.PlayerID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	log.Ctx(ctx).Debug().
		Str("component", "engine").
		Int64("team_id", ev.gamePlayer.TeamID).
		Int64("person_id", ev.gamePlayer.PlayerID).
		Msg("Backfilling team membership from game participation")

	_, err = e.createTeamPlayer(ctx, s, store.CreateTeamPlayerParams{
		TeamID:    ev.gamePlayer.TeamID,
		PlayerID:  ev.gamePlayer.PlayerID,
		Validated: true,
	})
	return ignoreConflict(err)
}

// defaultHomeSite sets the home club's venue from the game's site when the
// club has none yet.
func (e *Engine) defaultHomeSite(ctx context.Context, s *store.Store, ev event) error {
	if ev.game.SiteID == nil {
		return nil
	}
	homeTeam, err := s.GetTeam(ctx, ev.game.HomeTeamID)
	if err != nil {
		return err
	}
	return s.SetClubHomeSiteIfUnset(ctx, homeTeam.ClubID, *ev.game.SiteID)
}

// updateGroupStandings recomputes both teams' standings rows for the game's
// group. Scores are recomputed by summing the scoring rule over all of the
// group's games for each team, never incremented, so the update is safe to
// replay.
func (e *Engine) updateGroupStandings(ctx context.Context, s *store.Store, ev event) error {
	if ev.game.GroupID == nil {
		return nil
	}
	groupID := *ev.game.GroupID
	for _, teamID := range []int64{ev.game.HomeTeamID, ev.game.AwayTeamID} {
		if err := e.recomputeGroupTeamScore(ctx, s, groupID, teamID); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) recomputeGroupTeamScore(ctx context.Context, s *store.Store, groupID, teamID int64) error {
	games, err := s.ListGamesByGroupTeam(ctx, groupID, teamID)
	if err != nil {
		return err
	}

	var score int64
	for i := range games {
		score += e.scoring(&games[i], teamID)
	}

	_, err = s.UpsertGroupTeamScore(ctx, groupID, teamID, score)
	return err
}

// ignoreConflict drops uniqueness violations on cascade targets: the relation
// the rule wanted to create already exists, which satisfies the rule.
func ignoreConflict(err error) error {
	if errors.Is(err, store.ErrConflict) {
		return nil
	}
	return err
}
