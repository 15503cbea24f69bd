package games

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scoreit/handball/internal/api"
	"github.com/scoreit/handball/internal/approval"
	"github.com/scoreit/handball/internal/db"
	"github.com/scoreit/handball/internal/engine"
	"github.com/scoreit/handball/internal/store"
	"github.com/scoreit/handball/internal/testutil"
)

type handlerFixture struct {
	db      *db.DB
	mux     http.Handler
	teamA   int64
	teamB   int64
	groupID int64
	manager int64
}

func setupGamesTest(t *testing.T) *handlerFixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	eng, err := engine.New(database)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	approvals, err := approval.NewService(database)
	if err != nil {
		t.Fatalf("create approval service: %v", err)
	}
	InitHandlers(database, eng, approvals)

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
	teamA, err := database.Store.CreateTeam(ctx, store.CreateTeamParams{
		Name: "Alpha", ClubID: club.ID,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	teamB, err := database.Store.CreateTeam(ctx, store.CreateTeamParams{
		Name: "Beta", ClubID: club.ID,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	group, err := database.Store.CreateGroup(ctx, store.CreateGroupParams{
		Name: "Regional League", UnionID: &union.ID,
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	manager, err := database.Store.CreatePerson(ctx, store.CreatePersonParams{
		FirstName: "Clara", LastName: "Tester",
	})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	if _, err := database.Store.CreateClubManager(ctx, store.CreateManagerParams{
		EntityID: club.ID, ManagerID: manager.ID, Validated: true,
	}); err != nil {
		t.Fatalf("create club manager: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/games", HandleGameCreate)
	mux.HandleFunc("GET /api/v1/games/{id}", HandleGameDetail)
	mux.HandleFunc("POST /api/v1/games/{id}/validate", HandleGameValidate)
	mux.HandleFunc("GET /api/v1/groups/{id}/standings", HandleGroupStandings)

	return &handlerFixture{
		db:      database,
		mux:     api.WithActingPerson(mux),
		teamA:   teamA.ID,
		teamB:   teamB.ID,
		groupID: group.ID,
		manager: manager.ID,
	}
}

func (f *handlerFixture) request(t *testing.T, method, path, body string, actorID int64) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if actorID > 0 {
		req.Header.Set("X-Acting-Person", fmt.Sprintf("%d", actorID))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleGameCreateAndStandings(t *testing.T) {
	f := setupGamesTest(t)

	body := fmt.Sprintf(`{
		"start": "2026-03-14T18:30:00Z",
		"score_home": 25, "score_away": 20,
		"home_team_id": %d, "away_team_id": %d,
		"winner_team_id": %d, "group_id": %d
	}`, f.teamA, f.teamB, f.teamA, f.groupID)

	rec := f.request(t, http.MethodPost, "/api/v1/games", body, f.manager)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.request(t, http.MethodGet, fmt.Sprintf("/api/v1/groups/%d/standings", f.groupID), "", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Standings []struct {
			TeamID int64 `json:"teamId"`
			Score  int64 `json:"score"`
			Rank   int   `json:"rank"`
		} `json:"standings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode standings: %v", err)
	}
	if len(payload.Standings) != 2 {
		t.Fatalf("expected 2 standing rows, got %d", len(payload.Standings))
	}
	if payload.Standings[0].TeamID != f.teamA || payload.Standings[0].Score != 1 {
		t.Errorf("expected the winner on top with 1 point, got %+v", payload.Standings[0])
	}
}

func TestHandleGameCreateRejectsForeignWinner(t *testing.T) {
	f := setupGamesTest(t)

	body := fmt.Sprintf(`{
		"home_team_id": %d, "away_team_id": %d, "winner_team_id": 9999
	}`, f.teamA, f.teamB)

	rec := f.request(t, http.MethodPost, "/api/v1/games", body, f.manager)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleGameValidateFlow(t *testing.T) {
	f := setupGamesTest(t)

	body := fmt.Sprintf(`{"home_team_id": %d, "away_team_id": %d}`, f.teamA, f.teamB)
	rec := f.request(t, http.MethodPost, "/api/v1/games", body, f.manager)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var game store.Game
	if err := json.Unmarshal(rec.Body.Bytes(), &game); err != nil {
		t.Fatalf("decode game: %v", err)
	}

	validatePath := fmt.Sprintf("/api/v1/games/%d/validate", game.ID)

	// Without an acting person the request is refused outright.
	rec = f.request(t, http.MethodPost, validatePath, `{"flag": "home"}`, 0)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without acting person, got %d", rec.Code)
	}

	rec = f.request(t, http.MethodPost, validatePath, `{"flag": "home"}`, f.manager)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The referee flag stays out of reach for mere team authority.
	rec = f.request(t, http.MethodPost, validatePath, `{"flag": "referee"}`, f.manager)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-referee, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.request(t, http.MethodGet, fmt.Sprintf("/api/v1/games/%d", game.ID), "", 0)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got store.Game
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode game: %v", err)
	}
	if !got.HomeValidated || got.AwayValidated || got.RefereeValidated {
		t.Errorf("expected only the home flag set, got %+v", got)
	}
}
