package approval

// NOTE: Tests cannot use t.Parallel() due to shared database state per fixture.

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scoreit/handball/internal/db"
	"github.com/scoreit/handball/internal/store"
	"github.com/scoreit/handball/internal/testutil"
)

type fixture struct {
	db       *db.DB
	svc      *Service
	unionID  int64
	district int64
	clubID   int64
	teamID   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	svc, err := NewService(database)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}

	ctx := context.Background()
	union, err := database.Store.CreateUnion(ctx, "Handball Union")
	if err != nil {
		t.Fatalf("create union: %v", err)
	}
	district, err := database.Store.CreateDistrict(ctx, store.CreateDistrictParams{
		Name: "North", UnionID: union.ID,
	})
	if err != nil {
		t.Fatalf("create district: %v", err)
	}
	club, err := database.Store.CreateClub(ctx, store.CreateClubParams{
		Name: "HC Testers", DistrictID: district.ID,
	})
	if err != nil {
		t.Fatalf("create club: %v", err)
	}
	team, err := database.Store.CreateTeam(ctx, store.CreateTeamParams{
		Name: "HC Testers I", ClubID: club.ID,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}

	return &fixture{
		db:       database,
		svc:      svc,
		unionID:  union.ID,
		district: district.ID,
		clubID:   club.ID,
		teamID:   team.ID,
	}
}

func (f *fixture) person(t *testing.T, firstName string) int64 {
	t.Helper()
	person, err := f.db.Store.CreatePerson(context.Background(), store.CreatePersonParams{
		FirstName: firstName,
		LastName:  "Tester",
	})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	return person.ID
}

func (f *fixture) teamPlayer(t *testing.T, playerID int64, validated bool) *store.TeamPlayerRelation {
	t.Helper()
	rel, err := f.db.Store.CreateTeamPlayer(context.Background(), store.CreateTeamPlayerParams{
		TeamID: f.teamID, PlayerID: playerID, Validated: validated,
	})
	if err != nil {
		t.Fatalf("create team player: %v", err)
	}
	return rel
}

func (f *fixture) clubManager(t *testing.T, personID int64) {
	t.Helper()
	if _, err := f.db.Store.CreateClubManager(context.Background(), store.CreateManagerParams{
		EntityID: f.clubID, ManagerID: personID, Validated: true,
	}); err != nil {
		t.Fatalf("create club manager: %v", err)
	}
}

func TestClubManagerValidatesTeamPlayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	managerID := f.person(t, "Clara")
	playerID := f.person(t, "Anna")
	f.clubManager(t, managerID)
	rel := f.teamPlayer(t, playerID, false)

	if err := f.svc.Validate(ctx, TeamPlayer, rel.ID, managerID); err != nil {
		t.Fatalf("validate: %v", err)
	}

	got, err := f.db.Store.GetTeamPlayer(ctx, rel.ID)
	if err != nil {
		t.Fatalf("get team player: %v", err)
	}
	if !got.Validated {
		t.Error("relation must be validated")
	}
}

func TestStrangerCannotValidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	strangerID := f.person(t, "Sven")
	playerID := f.person(t, "Anna")
	rel := f.teamPlayer(t, playerID, false)

	err := f.svc.Validate(ctx, TeamPlayer, rel.ID, strangerID)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	got, err := f.db.Store.GetTeamPlayer(ctx, rel.ID)
	if err != nil {
		t.Fatalf("get team player: %v", err)
	}
	if got.Validated {
		t.Error("denied validation must not flip the flag")
	}
}

func TestValidatedPeerValidatesTeamPlayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	peerID := f.person(t, "Paula")
	playerID := f.person(t, "Anna")
	f.teamPlayer(t, peerID, true)
	rel := f.teamPlayer(t, playerID, false)

	if err := f.svc.Validate(ctx, TeamPlayer, rel.ID, peerID); err != nil {
		t.Fatalf("peer validate: %v", err)
	}
}

func TestPeerCannotValidateManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	peerID := f.person(t, "Paula")
	candidateID := f.person(t, "Clara")
	f.teamPlayer(t, peerID, true)

	rel, err := f.db.Store.CreateTeamManager(ctx, store.CreateManagerParams{
		EntityID: f.teamID, ManagerID: candidateID,
	})
	if err != nil {
		t.Fatalf("create team manager: %v", err)
	}

	err = f.svc.Validate(ctx, TeamManager, rel.ID, peerID)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for peer on a manager relation, got %v", err)
	}
}

func TestUnionManagerValidatesDownTheChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unionManagerID := f.person(t, "Ulla")
	playerID := f.person(t, "Anna")

	if _, err := f.db.Store.CreateUnionManager(ctx, store.CreateManagerParams{
		EntityID: f.unionID, ManagerID: unionManagerID, Validated: true,
	}); err != nil {
		t.Fatalf("create union manager: %v", err)
	}
	rel := f.teamPlayer(t, playerID, false)

	if err := f.svc.Validate(ctx, TeamPlayer, rel.ID, unionManagerID); err != nil {
		t.Fatalf("union manager must reach team relations: %v", err)
	}
}

func TestDistrictManagerValidatesClubManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	districtManagerID := f.person(t, "Dora")
	candidateID := f.person(t, "Clara")

	if _, err := f.db.Store.CreateDistrictManager(ctx, store.CreateManagerParams{
		EntityID: f.district, ManagerID: districtManagerID, Validated: true,
	}); err != nil {
		t.Fatalf("create district manager: %v", err)
	}
	rel, err := f.db.Store.CreateClubManager(ctx, store.CreateManagerParams{
		EntityID: f.clubID, ManagerID: candidateID,
	})
	if err != nil {
		t.Fatalf("create club manager: %v", err)
	}

	if err := f.svc.Validate(ctx, ClubManager, rel.ID, districtManagerID); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	strangerID := f.person(t, "Sven")
	playerID := f.person(t, "Anna")
	rel := f.teamPlayer(t, playerID, true)

	// Already validated: even an unauthorized actor gets a no-op, not an error.
	if err := f.svc.Validate(ctx, TeamPlayer, rel.ID, strangerID); err != nil {
		t.Fatalf("re-validate: %v", err)
	}
}

func TestValidateUnknownKind(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Validate(context.Background(), RelationKind("nonsense"), 1, 1)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestValidateMissingRelation(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Validate(context.Background(), TeamPlayer, 12345, 1)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func newGame(t *testing.T, f *fixture, refereeID *int64) *store.Game {
	t.Helper()
	away, err := f.db.Store.CreateTeam(context.Background(), store.CreateTeamParams{
		Name: "HC Testers II", ClubID: f.clubID,
	})
	if err != nil {
		t.Fatalf("create away team: %v", err)
	}
	game, err := f.db.Store.CreateGame(context.Background(), store.CreateGameParams{
		Start:      time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		HomeTeamID: f.teamID,
		AwayTeamID: away.ID,
		ScoreHome:  24,
		ScoreAway:  22,
		RefereeID:  refereeID,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return game
}

func TestGameHomeFlagNeedsTeamAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	managerID := f.person(t, "Clara")
	strangerID := f.person(t, "Sven")
	f.clubManager(t, managerID)
	game := newGame(t, f, nil)

	err := f.svc.ValidateGameFlag(ctx, game.ID, GameHome, strangerID)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for stranger, got %v", err)
	}

	if err := f.svc.ValidateGameFlag(ctx, game.ID, GameHome, managerID); err != nil {
		t.Fatalf("validate home flag: %v", err)
	}
	got, err := f.db.Store.GetGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !got.HomeValidated {
		t.Error("home flag must be set")
	}
	if got.AwayValidated || got.RefereeValidated {
		t.Error("the other flags must stay untouched")
	}
}

func TestGameRefereeFlagNeedsAssignedReferee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	refereeID := f.person(t, "Rita")
	managerID := f.person(t, "Clara")
	f.clubManager(t, managerID)
	game := newGame(t, f, &refereeID)

	// Team authority is not enough for the referee flag.
	err := f.svc.ValidateGameFlag(ctx, game.ID, GameReferee, managerID)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-referee, got %v", err)
	}

	if err := f.svc.ValidateGameFlag(ctx, game.ID, GameReferee, refereeID); err != nil {
		t.Fatalf("referee validate: %v", err)
	}
	got, err := f.db.Store.GetGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !got.RefereeValidated {
		t.Error("referee flag must be set")
	}
}

func TestGroupTeamValidationNeedsGroupScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unionManagerID := f.person(t, "Ulla")
	strangerID := f.person(t, "Sven")

	if _, err := f.db.Store.CreateUnionManager(ctx, store.CreateManagerParams{
		EntityID: f.unionID, ManagerID: unionManagerID, Validated: true,
	}); err != nil {
		t.Fatalf("create union manager: %v", err)
	}
	group, err := f.db.Store.CreateGroup(ctx, store.CreateGroupParams{
		Name: "Regional League", UnionID: &f.unionID,
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	rel, err := f.db.Store.CreateGroupTeam(ctx, group.ID, f.teamID)
	if err != nil {
		t.Fatalf("create group team: %v", err)
	}

	if err := f.svc.Validate(ctx, GroupTeam, rel.ID, strangerID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for stranger, got %v", err)
	}
	if err := f.svc.Validate(ctx, GroupTeam, rel.ID, unionManagerID); err != nil {
		t.Fatalf("union manager must validate group enrollment: %v", err)
	}
}
