// internal/api/games/handlers.go
package games

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scoreit/handball/internal/api"
	"github.com/scoreit/handball/internal/api/apiutil"
	"github.com/scoreit/handball/internal/approval"
	appdb "github.com/scoreit/handball/internal/db"
	"github.com/scoreit/handball/internal/engine"
	"github.com/scoreit/handball/internal/standings"
	"github.com/scoreit/handball/internal/store"
)

const gameQueryTimeout = 5 * time.Second

var (
	database  *appdb.DB
	eng       *engine.Engine
	approvals *approval.Service
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB, e *engine.Engine, svc *approval.Service) {
	database = db
	eng = e
	approvals = svc
}

type gameRequest struct {
	Number          *int64 `json:"number"`
	Start           string `json:"start"`
	ScoreHome       int64  `json:"score_home"`
	ScoreAway       int64  `json:"score_away"`
	DurationMinutes int64  `json:"duration_minutes"`
	HomeTeamID      int64  `json:"home_team_id"`
	AwayTeamID      int64  `json:"away_team_id"`
	RefereeID       *int64 `json:"referee_id"`
	TimerID         *int64 `json:"timer_id"`
	SecretaryID     *int64 `json:"secretary_id"`
	SupervisorID    *int64 `json:"supervisor_id"`
	WinnerTeamID    *int64 `json:"winner_team_id"`
	GroupID         *int64 `json:"group_id"`
	SiteID          *int64 `json:"site_id"`
}

type gamePlayerRequest struct {
	PlayerID    int64  `json:"player_id"`
	TeamID      int64  `json:"team_id"`
	ShirtNumber *int64 `json:"shirt_number"`
}

type eventRequest struct {
	PersonID  int64  `json:"person_id"`
	TeamID    int64  `json:"team_id"`
	EventType string `json:"event_type"`
	Time      int64  `json:"time"`
}

type validateRequest struct {
	Flag string `json:"flag"`
}

// POST /api/v1/games
func HandleGameCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req gameRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.HomeTeamID <= 0 || req.AwayTeamID <= 0 {
		http.Error(w, "home_team_id and away_team_id are required", http.StatusBadRequest)
		return
	}
	if req.ScoreHome < 0 || req.ScoreAway < 0 {
		http.Error(w, "scores must not be negative", http.StatusBadRequest)
		return
	}

	start := time.Now()
	if strings.TrimSpace(req.Start) != "" {
		parsed, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			http.Error(w, "start must be an RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		start = parsed
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	game, err := eng.CreateGame(ctx, store.CreateGameParams{
		Number:          req.Number,
		Start:           start,
		ScoreHome:       req.ScoreHome,
		ScoreAway:       req.ScoreAway,
		DurationMinutes: req.DurationMinutes,
		HomeTeamID:      req.HomeTeamID,
		AwayTeamID:      req.AwayTeamID,
		RefereeID:       req.RefereeID,
		TimerID:         req.TimerID,
		SecretaryID:     req.SecretaryID,
		SupervisorID:    req.SupervisorID,
		WinnerTeamID:    req.WinnerTeamID,
		GroupID:         req.GroupID,
		SiteID:          req.SiteID,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().Int64("game_id", game.ID).Msg("Game recorded")
	apiutil.WriteJSON(w, http.StatusCreated, game)
}

// GET /api/v1/games/{id}
func HandleGameDetail(w http.ResponseWriter, r *http.Request) {
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	game, err := database.Store.GetGame(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, game)
}

// GET /api/v1/games?number=117
func HandleGameByNumber(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("number")
	number, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || number <= 0 {
		http.Error(w, "number must be a positive integer", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	game, err := database.Store.GetGameByNumber(ctx, number)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, game)
}

// POST /api/v1/games/{id}/players
func HandleGamePlayerCreate(w http.ResponseWriter, r *http.Request) {
	gameID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req gamePlayerRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PlayerID <= 0 || req.TeamID <= 0 {
		http.Error(w, "player_id and team_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	rel, err := eng.CreateGamePlayer(ctx, store.CreateGamePlayerParams{
		GameID:      gameID,
		PlayerID:    req.PlayerID,
		TeamID:      req.TeamID,
		ShirtNumber: req.ShirtNumber,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, rel)
}

// GET /api/v1/games/{id}/players
func HandleGamePlayerList(w http.ResponseWriter, r *http.Request) {
	gameID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	players, err := database.Store.ListGamePlayersByGame(ctx, gameID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"players": players})
}

// POST /api/v1/games/{id}/events
func HandleEventCreate(w http.ResponseWriter, r *http.Request) {
	gameID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req eventRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PersonID <= 0 || req.TeamID <= 0 || strings.TrimSpace(req.EventType) == "" {
		http.Error(w, "person_id, team_id and event_type are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	event, err := database.Store.CreateEvent(ctx, store.CreateEventParams{
		GameID:    gameID,
		PersonID:  req.PersonID,
		TeamID:    req.TeamID,
		EventType: req.EventType,
		Time:      req.Time,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, event)
}

// GET /api/v1/games/{id}/events
func HandleEventList(w http.ResponseWriter, r *http.Request) {
	gameID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	events, err := database.Store.ListEventsByGame(ctx, gameID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// POST /api/v1/games/{id}/validate
func HandleGameValidate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	gameID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req validateRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	flag := approval.GameFlag(req.Flag)
	switch flag {
	case approval.GameHome, approval.GameAway, approval.GameReferee:
	default:
		http.Error(w, "flag must be home, away or referee", http.StatusBadRequest)
		return
	}

	actorID := api.ActingPersonFromContext(r.Context())
	if actorID <= 0 {
		http.Error(w, "acting person is required", http.StatusUnauthorized)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := approvals.ValidateGameFlag(ctx, gameID, flag, actorID); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Int64("game_id", gameID).
		Str("flag", string(flag)).
		Int64("actor_id", actorID).
		Msg("Game flag validated")
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"validated": true})
}

// GET /api/v1/groups/{id}/games
func HandleGroupGames(w http.ResponseWriter, r *http.Request) {
	groupID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	list, err := database.Store.ListGamesByGroup(ctx, groupID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"games": list})
}

// GET /api/v1/groups/{id}/standings
//
// Ranks are derived at read time from the stored scores and the group's
// games; the persisted position column is only refreshed by the nightly
// snapshot job.
func HandleGroupStandings(w http.ResponseWriter, r *http.Request) {
	groupID, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if _, err := database.Store.GetGroup(ctx, groupID); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	table, err := standings.Calculate(ctx, database.Store, groupID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"standings": table})
}

func queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), gameQueryTimeout)
}
