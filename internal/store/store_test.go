package store_test

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

type orgTree struct {
	db       *db.DB
	unionID  int64
	district int64
	clubID   int64
	teamID   int64
}

func newOrgTree(t *testing.T) *orgTree {
	t.Helper()

	database := testutil.NewTestDB(t)
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

	return &orgTree{
		db:       database,
		unionID:  union.ID,
		district: district.ID,
		clubID:   club.ID,
		teamID:   team.ID,
	}
}

func TestHierarchyResolvesUpwards(t *testing.T) {
	tree := newOrgTree(t)
	ctx := context.Background()

	team, err := tree.db.Store.GetTeam(ctx, tree.teamID)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	club, err := tree.db.Store.GetClub(ctx, team.ClubID)
	if err != nil {
		t.Fatalf("get club: %v", err)
	}
	district, err := tree.db.Store.GetDistrict(ctx, club.DistrictID)
	if err != nil {
		t.Fatalf("get district: %v", err)
	}
	if district.UnionID != tree.unionID {
		t.Errorf("expected union %d, got %d", tree.unionID, district.UnionID)
	}
}

func TestDistrictRequiresUnion(t *testing.T) {
	tree := newOrgTree(t)
	_, err := tree.db.Store.CreateDistrict(context.Background(), store.CreateDistrictParams{
		Name: "Orphan", UnionID: 9999,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing union, got %v", err)
	}
}

func TestDuplicateRelationPairsConflict(t *testing.T) {
	tree := newOrgTree(t)
	ctx := context.Background()

	person, err := tree.db.Store.CreatePerson(ctx, store.CreatePersonParams{
		FirstName: "Anna", LastName: "Tester",
	})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}

	if _, err := tree.db.Store.CreateClubMember(ctx, store.CreateClubMemberParams{
		ClubID: tree.clubID, MemberID: person.ID,
	}); err != nil {
		t.Fatalf("create club member: %v", err)
	}
	if _, err := tree.db.Store.CreateClubMember(ctx, store.CreateClubMemberParams{
		ClubID: tree.clubID, MemberID: person.ID,
	}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate membership, got %v", err)
	}

	if _, err := tree.db.Store.CreateTeamManager(ctx, store.CreateManagerParams{
		EntityID: tree.teamID, ManagerID: person.ID,
	}); err != nil {
		t.Fatalf("create team manager: %v", err)
	}
	if _, err := tree.db.Store.CreateTeamManager(ctx, store.CreateManagerParams{
		EntityID: tree.teamID, ManagerID: person.ID,
	}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate manager, got %v", err)
	}
}

func TestPassNumberUniqueness(t *testing.T) {
	tree := newOrgTree(t)
	ctx := context.Background()
	passNumber := int64(4711)

	if _, err := tree.db.Store.CreatePerson(ctx, store.CreatePersonParams{
		FirstName: "Anna", LastName: "Tester", PassNumber: &passNumber,
	}); err != nil {
		t.Fatalf("create person: %v", err)
	}

	taken, err := tree.db.Store.PassNumberTaken(ctx, passNumber)
	if err != nil {
		t.Fatalf("pass number check: %v", err)
	}
	if !taken {
		t.Error("expected pass number to be reported taken")
	}

	if _, err := tree.db.Store.CreatePerson(ctx, store.CreatePersonParams{
		FirstName: "Bea", LastName: "Tester", PassNumber: &passNumber,
	}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate pass number, got %v", err)
	}

	// Persons without a pass number never collide.
	for _, name := range []string{"Carla", "Dora"} {
		if _, err := tree.db.Store.CreatePerson(ctx, store.CreatePersonParams{
			FirstName: name, LastName: "Tester",
		}); err != nil {
			t.Fatalf("create person %s: %v", name, err)
		}
	}
}

func TestCreatePersonNormalizesMobile(t *testing.T) {
	tree := newOrgTree(t)
	person, err := tree.db.Store.CreatePerson(context.Background(), store.CreatePersonParams{
		FirstName: "Anna", LastName: "Tester", MobileNumber: "0171 1234567",
	})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	if person.MobileNumber != "+491711234567" {
		t.Errorf("expected E.164 mobile, got %q", person.MobileNumber)
	}
}

func TestSetClubHomeSiteIfUnset(t *testing.T) {
	tree := newOrgTree(t)
	ctx := context.Background()

	site, err := tree.db.Store.CreateSite(ctx, store.CreateSiteParams{Name: "Main Hall", Number: 1})
	if err != nil {
		t.Fatalf("create site: %v", err)
	}
	other, err := tree.db.Store.CreateSite(ctx, store.CreateSiteParams{Name: "Annex", Number: 2})
	if err != nil {
		t.Fatalf("create site: %v", err)
	}

	if err := tree.db.Store.SetClubHomeSiteIfUnset(ctx, tree.clubID, site.ID); err != nil {
		t.Fatalf("set home site: %v", err)
	}
	if err := tree.db.Store.SetClubHomeSiteIfUnset(ctx, tree.clubID, other.ID); err != nil {
		t.Fatalf("second set must be a no-op, got %v", err)
	}

	club, err := tree.db.Store.GetClub(ctx, tree.clubID)
	if err != nil {
		t.Fatalf("get club: %v", err)
	}
	if club.HomeSiteID == nil || *club.HomeSiteID != site.ID {
		t.Errorf("expected home site %d, got %v", site.ID, club.HomeSiteID)
	}
}

func TestCreateGameDefaultsDuration(t *testing.T) {
	tree := newOrgTree(t)
	ctx := context.Background()

	away, err := tree.db.Store.CreateTeam(ctx, store.CreateTeamParams{
		Name: "HC Testers II", ClubID: tree.clubID,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	game, err := tree.db.Store.CreateGame(ctx, store.CreateGameParams{
		Start:      time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		HomeTeamID: tree.teamID,
		AwayTeamID: away.ID,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if game.DurationMinutes != 60 {
		t.Errorf("expected default duration 60, got %d", game.DurationMinutes)
	}
}

func TestGameNumberLookup(t *testing.T) {
	tree := newOrgTree(t)
	ctx := context.Background()

	away, err := tree.db.Store.CreateTeam(ctx, store.CreateTeamParams{
		Name: "HC Testers II", ClubID: tree.clubID,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	number := int64(117)
	created, err := tree.db.Store.CreateGame(ctx, store.CreateGameParams{
		Start:      time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		Number:     &number,
		HomeTeamID: tree.teamID,
		AwayTeamID: away.ID,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	got, err := tree.db.Store.GetGameByNumber(ctx, number)
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected game %d, got %d", created.ID, got.ID)
	}

	if _, err := tree.db.Store.CreateGame(ctx, store.CreateGameParams{
		Start:      time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC),
		Number:     &number,
		HomeTeamID: tree.teamID,
		AwayTeamID: away.ID,
	}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate game number, got %v", err)
	}
}

func TestGroupTeamEnrollmentKeepsScore(t *testing.T) {
	tree := newOrgTree(t)
	ctx := context.Background()

	group, err := tree.db.Store.CreateGroup(ctx, store.CreateGroupParams{Name: "Cup"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	rel, err := tree.db.Store.CreateGroupTeam(ctx, group.ID, tree.teamID)
	if err != nil {
		t.Fatalf("enroll team: %v", err)
	}
	if rel.Score != 0 {
		t.Errorf("fresh enrollment must start at 0, got %d", rel.Score)
	}

	if _, err := tree.db.Store.UpsertGroupTeamScore(ctx, group.ID, tree.teamID, 4); err != nil {
		t.Fatalf("set score: %v", err)
	}
	if _, err := tree.db.Store.CreateGroupTeam(ctx, group.ID, tree.teamID); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict on re-enrollment, got %v", err)
	}

	got, err := tree.db.Store.FindGroupTeam(ctx, group.ID, tree.teamID)
	if err != nil {
		t.Fatalf("find standing: %v", err)
	}
	if got.Score != 4 {
		t.Errorf("re-enrollment attempt must not reset the score, got %d", got.Score)
	}
}

func TestGetMissingEntity(t *testing.T) {
	tree := newOrgTree(t)
	if _, err := tree.db.Store.GetClub(context.Background(), 9999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateGroupRejectsUnknownKind(t *testing.T) {
	tree := newOrgTree(t)
	ctx := context.Background()

	if _, err := tree.db.Store.CreateGroup(ctx, store.CreateGroupParams{
		Name: "Friendly Round", Kind: "friendly",
	}); !errors.Is(err, store.ErrInvariant) {
		t.Fatalf("expected ErrInvariant for unknown group kind, got %v", err)
	}

	group, err := tree.db.Store.CreateGroup(ctx, store.CreateGroupParams{
		Name: "Autumn Cup", Kind: store.GroupKindCup,
	})
	if err != nil {
		t.Fatalf("create cup group: %v", err)
	}
	if group.Kind != store.GroupKindCup {
		t.Errorf("expected kind %q, got %q", store.GroupKindCup, group.Kind)
	}
}

func TestCreateEventRejectsUnknownType(t *testing.T) {
	tree := newOrgTree(t)
	ctx := context.Background()

	player, err := tree.db.Store.CreatePerson(ctx, store.CreatePersonParams{
		FirstName: "Anna", LastName: "Beispiel",
	})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	away, err := tree.db.Store.CreateTeam(ctx, store.CreateTeamParams{
		Name: "HC Testers II", ClubID: tree.clubID,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	game, err := tree.db.Store.CreateGame(ctx, store.CreateGameParams{
		Start:      time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		HomeTeamID: tree.teamID,
		AwayTeamID: away.ID,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	if _, err := tree.db.Store.CreateEvent(ctx, store.CreateEventParams{
		GameID: game.ID, PersonID: player.ID, TeamID: tree.teamID,
		EventType: "own_goal", Time: 12,
	}); !errors.Is(err, store.ErrInvariant) {
		t.Fatalf("expected ErrInvariant for unknown event type, got %v", err)
	}

	ev, err := tree.db.Store.CreateEvent(ctx, store.CreateEventParams{
		GameID: game.ID, PersonID: player.ID, TeamID: tree.teamID,
		EventType: store.EventTimePenalty, Time: 12,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if ev.EventType != store.EventTimePenalty {
		t.Errorf("expected type %q, got %q", store.EventTimePenalty, ev.EventType)
	}
}
