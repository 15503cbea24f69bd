// internal/api/org/handlers.go
package org

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scoreit/handball/internal/api"
	"github.com/scoreit/handball/internal/api/apiutil"
	appdb "github.com/scoreit/handball/internal/db"
	"github.com/scoreit/handball/internal/engine"
	"github.com/scoreit/handball/internal/store"
)

const orgQueryTimeout = 5 * time.Second

var (
	database *appdb.DB
	eng      *engine.Engine
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB, e *engine.Engine) {
	database = db
	eng = e
}

type unionRequest struct {
	Name string `json:"name"`
}

type districtRequest struct {
	Name    string `json:"name"`
	UnionID int64  `json:"union_id"`
}

type clubRequest struct {
	Name       string `json:"name"`
	DistrictID int64  `json:"district_id"`
}

type teamRequest struct {
	Name   string `json:"name"`
	ClubID int64  `json:"club_id"`
}

type groupRequest struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Gender     string `json:"gender"`
	AgeGroup   string `json:"age_group"`
	LevelID    *int64 `json:"level_id"`
	UnionID    *int64 `json:"union_id"`
	DistrictID *int64 `json:"district_id"`
}

type siteRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
	Number  int64  `json:"number"`
}

type personRequest struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	ZipCode      string  `json:"zip_code"`
	Birthday     *string `json:"birthday"`
	PassNumber   *int64  `json:"pass_number"`
	Gender       string  `json:"gender"`
	MobileNumber string  `json:"mobile_number"`
	IsPlayer     bool    `json:"is_player"`
	IsCoach      bool    `json:"is_coach"`
	IsReferee    bool    `json:"is_referee"`
	IsExec       bool    `json:"is_exec"`
}

type leagueLevelRequest struct {
	Name string `json:"name"`
}

// POST /api/v1/unions
func HandleUnionCreate(w http.ResponseWriter, r *http.Request) {
	var req unionRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	union, err := eng.CreateUnion(ctx, req.Name, api.ActingPersonFromContext(r.Context()))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, union)
}

// GET /api/v1/unions
func HandleUnionList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r)
	defer cancel()

	unions, err := database.Store.ListUnions(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"unions": unions})
}

// GET /api/v1/unions/{id}
func HandleUnionDetail(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	union, err := database.Store.GetUnion(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, union)
}

// GET /api/v1/unions/{id}/districts
func HandleUnionDistricts(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	districts, err := database.Store.ListDistrictsByUnion(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"districts": districts})
}

// POST /api/v1/districts
func HandleDistrictCreate(w http.ResponseWriter, r *http.Request) {
	var req districtRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.UnionID <= 0 {
		http.Error(w, "name and union_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	district, err := eng.CreateDistrict(ctx, store.CreateDistrictParams{
		Name:    req.Name,
		UnionID: req.UnionID,
	}, api.ActingPersonFromContext(r.Context()))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, district)
}

// GET /api/v1/districts/{id}
func HandleDistrictDetail(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	district, err := database.Store.GetDistrict(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, district)
}

// POST /api/v1/clubs
func HandleClubCreate(w http.ResponseWriter, r *http.Request) {
	var req clubRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.DistrictID <= 0 {
		http.Error(w, "name and district_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	actorID := api.ActingPersonFromContext(r.Context())
	params := store.CreateClubParams{Name: req.Name, DistrictID: req.DistrictID}
	if actorID > 0 {
		params.CreatedByID = &actorID
	}
	club, err := eng.CreateClub(ctx, params, actorID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, club)
}

// GET /api/v1/clubs/{id}
func HandleClubDetail(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	club, err := database.Store.GetClub(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, club)
}

// GET /api/v1/clubs/{id}/teams
func HandleClubTeams(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	teams, err := database.Store.ListTeamsByClub(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

// POST /api/v1/teams
func HandleTeamCreate(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.ClubID <= 0 {
		http.Error(w, "name and club_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	actorID := api.ActingPersonFromContext(r.Context())
	params := store.CreateTeamParams{Name: req.Name, ClubID: req.ClubID}
	if actorID > 0 {
		params.CreatedByID = &actorID
	}
	team, err := eng.CreateTeam(ctx, params, actorID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, team)
}

// GET /api/v1/teams/{id}
func HandleTeamDetail(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	team, err := database.Store.GetTeam(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, team)
}

// POST /api/v1/groups
func HandleGroupCreate(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	group, err := eng.CreateGroup(ctx, store.CreateGroupParams{
		Name:       req.Name,
		Kind:       req.Kind,
		Gender:     req.Gender,
		AgeGroup:   req.AgeGroup,
		LevelID:    req.LevelID,
		UnionID:    req.UnionID,
		DistrictID: req.DistrictID,
	}, api.ActingPersonFromContext(r.Context()))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, group)
}

// GET /api/v1/groups/{id}
func HandleGroupDetail(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	group, err := database.Store.GetGroup(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, group)
}

// POST /api/v1/sites
func HandleSiteCreate(w http.ResponseWriter, r *http.Request) {
	var req siteRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Number <= 0 {
		http.Error(w, "name and number are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	site, err := database.Store.CreateSite(ctx, store.CreateSiteParams{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		ZipCode: req.ZipCode,
		Number:  req.Number,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, site)
}

// GET /api/v1/sites/{id}
func HandleSiteDetail(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	site, err := database.Store.GetSite(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, site)
}

// POST /api/v1/league-levels
func HandleLeagueLevelCreate(w http.ResponseWriter, r *http.Request) {
	var req leagueLevelRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	level, err := database.Store.CreateLeagueLevel(ctx, req.Name)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, level)
}

// GET /api/v1/league-levels
func HandleLeagueLevelList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := queryContext(r)
	defer cancel()

	levels, err := database.Store.ListLeagueLevels(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"league_levels": levels})
}

// POST /api/v1/persons
func HandlePersonCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req personRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		http.Error(w, "first_name and last_name are required", http.StatusBadRequest)
		return
	}

	var birthday *time.Time
	if req.Birthday != nil {
		parsed, err := time.Parse("2006-01-02", *req.Birthday)
		if err != nil {
			http.Error(w, "birthday must be formatted YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		birthday = &parsed
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	person, err := database.Store.CreatePerson(ctx, store.CreatePersonParams{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Address:      req.Address,
		City:         req.City,
		ZipCode:      req.ZipCode,
		Birthday:     birthday,
		PassNumber:   req.PassNumber,
		Gender:       req.Gender,
		MobileNumber: req.MobileNumber,
		IsPlayer:     req.IsPlayer,
		IsCoach:      req.IsCoach,
		IsReferee:    req.IsReferee,
		IsExec:       req.IsExec,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("person_id", person.ID).Msg("Person created")
	apiutil.WriteJSON(w, http.StatusCreated, person)
}

// GET /api/v1/persons/{id}
func HandlePersonDetail(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	person, err := database.Store.GetPerson(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, person)
}

// GET /api/v1/persons/{id}/memberships
func HandlePersonMemberships(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	memberships, err := database.Store.ListClubMembershipsByPerson(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"memberships": memberships})
}

// GET /api/v1/persons/unique?pass_number=12345
//
// Registration forms probe this before submitting, so a taken number is
// reported as a plain field in a 200 response rather than an error status.
func HandlePassNumberUnique(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("pass_number")
	passNumber, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || passNumber <= 0 {
		http.Error(w, "pass_number must be a positive integer", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	taken, err := database.Store.PassNumberTaken(ctx, passNumber)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"pass_number": passNumber,
		"unique":      !taken,
	})
}

func queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), orgQueryTimeout)
}
