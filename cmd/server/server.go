// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/scoreit/handball/internal/api"
	"github.com/scoreit/handball/internal/api/games"
	"github.com/scoreit/handball/internal/api/org"
	"github.com/scoreit/handball/internal/api/relations"
	"github.com/scoreit/handball/internal/config"
)

func newServer(cfg *config.Config) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithActingPerson,
	)

	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Organization routes
	mux.HandleFunc("POST /api/v1/unions", org.HandleUnionCreate)
	mux.HandleFunc("GET /api/v1/unions", org.HandleUnionList)
	mux.HandleFunc("GET /api/v1/unions/{id}", org.HandleUnionDetail)
	mux.HandleFunc("GET /api/v1/unions/{id}/districts", org.HandleUnionDistricts)
	mux.HandleFunc("POST /api/v1/districts", org.HandleDistrictCreate)
	mux.HandleFunc("GET /api/v1/districts/{id}", org.HandleDistrictDetail)
	mux.HandleFunc("POST /api/v1/clubs", org.HandleClubCreate)
	mux.HandleFunc("GET /api/v1/clubs/{id}", org.HandleClubDetail)
	mux.HandleFunc("GET /api/v1/clubs/{id}/teams", org.HandleClubTeams)
	mux.HandleFunc("POST /api/v1/teams", org.HandleTeamCreate)
	mux.HandleFunc("GET /api/v1/teams/{id}", org.HandleTeamDetail)
	mux.HandleFunc("POST /api/v1/groups", org.HandleGroupCreate)
	mux.HandleFunc("GET /api/v1/groups/{id}", org.HandleGroupDetail)
	mux.HandleFunc("POST /api/v1/sites", org.HandleSiteCreate)
	mux.HandleFunc("GET /api/v1/sites/{id}", org.HandleSiteDetail)
	mux.HandleFunc("POST /api/v1/league-levels", org.HandleLeagueLevelCreate)
	mux.HandleFunc("GET /api/v1/league-levels", org.HandleLeagueLevelList)

	// Person routes
	mux.HandleFunc("POST /api/v1/persons", org.HandlePersonCreate)
	mux.HandleFunc("GET /api/v1/persons/unique", org.HandlePassNumberUnique)
	mux.HandleFunc("GET /api/v1/persons/{id}", org.HandlePersonDetail)
	mux.HandleFunc("GET /api/v1/persons/{id}/memberships", org.HandlePersonMemberships)

	// Relation routes. Literal segments take precedence over the {kind}
	// wildcard, so the manager catch-all only sees manager kinds.
	mux.HandleFunc("POST /api/v1/relations/club_member", relations.HandleClubMemberCreate)
	mux.HandleFunc("POST /api/v1/relations/team_player", relations.HandleTeamPlayerCreate)
	mux.HandleFunc("POST /api/v1/relations/team_coach", relations.HandleTeamCoachCreate)
	mux.HandleFunc("POST /api/v1/relations/group_team", relations.HandleGroupTeamCreate)
	mux.HandleFunc("POST /api/v1/relations/{kind}", relations.HandleManagerCreate)
	mux.HandleFunc("GET /api/v1/relations/{kind}/{id}", relations.HandleRelationDetail)
	mux.HandleFunc("POST /api/v1/relations/{kind}/{id}/validate", relations.HandleRelationValidate)

	// Game routes
	mux.HandleFunc("POST /api/v1/games", games.HandleGameCreate)
	mux.HandleFunc("GET /api/v1/games", games.HandleGameByNumber)
	mux.HandleFunc("GET /api/v1/games/{id}", games.HandleGameDetail)
	mux.HandleFunc("POST /api/v1/games/{id}/players", games.HandleGamePlayerCreate)
	mux.HandleFunc("GET /api/v1/games/{id}/players", games.HandleGamePlayerList)
	mux.HandleFunc("POST /api/v1/games/{id}/events", games.HandleEventCreate)
	mux.HandleFunc("GET /api/v1/games/{id}/events", games.HandleEventList)
	mux.HandleFunc("POST /api/v1/games/{id}/validate", games.HandleGameValidate)

	// Standings routes
	mux.HandleFunc("GET /api/v1/groups/{id}/games", games.HandleGroupGames)
	mux.HandleFunc("GET /api/v1/groups/{id}/standings", games.HandleGroupStandings)
}
