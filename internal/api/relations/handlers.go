// internal/api/relations/handlers.go
package relations

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scoreit/handball/internal/api"
	"github.com/scoreit/handball/internal/api/apiutil"
	"github.com/scoreit/handball/internal/approval"
	appdb "github.com/scoreit/handball/internal/db"
	"github.com/scoreit/handball/internal/engine"
	"github.com/scoreit/handball/internal/store"
)

const relationQueryTimeout = 5 * time.Second

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

type clubMemberRequest struct {
	ClubID   int64 `json:"club_id"`
	MemberID int64 `json:"member_id"`
}

type teamPlayerRequest struct {
	TeamID   int64 `json:"team_id"`
	PlayerID int64 `json:"player_id"`
}

type teamCoachRequest struct {
	TeamID  int64 `json:"team_id"`
	CoachID int64 `json:"coach_id"`
}

type managerRequest struct {
	EntityID  int64 `json:"entity_id"`
	ManagerID int64 `json:"manager_id"`
}

type groupTeamRequest struct {
	GroupID int64 `json:"group_id"`
	TeamID  int64 `json:"team_id"`
}

// POST /api/v1/relations/club_member
func HandleClubMemberCreate(w http.ResponseWriter, r *http.Request) {
	var req clubMemberRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ClubID <= 0 || req.MemberID <= 0 {
		http.Error(w, "club_id and member_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	rel, err := eng.CreateClubMember(ctx, store.CreateClubMemberParams{
		ClubID:   req.ClubID,
		MemberID: req.MemberID,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, rel)
}

// POST /api/v1/relations/team_player
func HandleTeamPlayerCreate(w http.ResponseWriter, r *http.Request) {
	var req teamPlayerRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.TeamID <= 0 || req.PlayerID <= 0 {
		http.Error(w, "team_id and player_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	rel, err := eng.CreateTeamPlayer(ctx, store.CreateTeamPlayerParams{
		TeamID:   req.TeamID,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, rel)
}

// POST /api/v1/relations/team_coach
func HandleTeamCoachCreate(w http.ResponseWriter, r *http.Request) {
	var req teamCoachRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.TeamID <= 0 || req.CoachID <= 0 {
		http.Error(w, "team_id and coach_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	rel, err := eng.CreateTeamCoach(ctx, store.CreateTeamCoachParams{
		TeamID:  req.TeamID,
		CoachID: req.CoachID,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, rel)
}

// POST /api/v1/relations/{kind} for the five manager kinds. The appointing
// person is taken from the request context, never from the body.
func HandleManagerCreate(w http.ResponseWriter, r *http.Request) {
	kind := approval.RelationKind(r.PathValue("kind"))

	var req managerRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.EntityID <= 0 || req.ManagerID <= 0 {
		http.Error(w, "entity_id and manager_id are required", http.StatusBadRequest)
		return
	}

	params := store.CreateManagerParams{
		EntityID:  req.EntityID,
		ManagerID: req.ManagerID,
	}
	if actorID := api.ActingPersonFromContext(r.Context()); actorID > 0 {
		params.AppointedByID = &actorID
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	var (
		rel any
		err error
	)
	switch kind {
	case approval.ClubManager:
		rel, err = database.Store.CreateClubManager(ctx, params)
	case approval.TeamManager:
		rel, err = database.Store.CreateTeamManager(ctx, params)
	case approval.GroupManager:
		rel, err = database.Store.CreateGroupManager(ctx, params)
	case approval.DistrictManager:
		rel, err = database.Store.CreateDistrictManager(ctx, params)
	case approval.UnionManager:
		rel, err = database.Store.CreateUnionManager(ctx, params)
	default:
		http.Error(w, "unknown manager kind", http.StatusNotFound)
		return
	}
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, rel)
}

// POST /api/v1/relations/group_team
func HandleGroupTeamCreate(w http.ResponseWriter, r *http.Request) {
	var req groupTeamRequest
	if err := apiutil.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.GroupID <= 0 || req.TeamID <= 0 {
		http.Error(w, "group_id and team_id are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	rel, err := database.Store.CreateGroupTeam(ctx, req.GroupID, req.TeamID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusCreated, rel)
}

// GET /api/v1/relations/{kind}/{id}
func HandleRelationDetail(w http.ResponseWriter, r *http.Request) {
	kind := approval.RelationKind(r.PathValue("kind"))
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	var rel any
	switch kind {
	case approval.ClubMember:
		rel, err = database.Store.GetClubMember(ctx, id)
	case approval.TeamPlayer:
		rel, err = database.Store.GetTeamPlayer(ctx, id)
	case approval.TeamCoach:
		rel, err = database.Store.GetTeamCoach(ctx, id)
	case approval.ClubManager:
		rel, err = database.Store.GetClubManager(ctx, id)
	case approval.TeamManager:
		rel, err = database.Store.GetTeamManager(ctx, id)
	case approval.GroupManager:
		rel, err = database.Store.GetGroupManager(ctx, id)
	case approval.DistrictManager:
		rel, err = database.Store.GetDistrictManager(ctx, id)
	case approval.UnionManager:
		rel, err = database.Store.GetUnionManager(ctx, id)
	case approval.GroupTeam:
		rel, err = database.Store.GetGroupTeam(ctx, id)
	default:
		http.Error(w, "unknown relation kind", http.StatusNotFound)
		return
	}
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.WriteJSON(w, http.StatusOK, rel)
}

// POST /api/v1/relations/{kind}/{id}/validate
func HandleRelationValidate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	kind := approval.RelationKind(r.PathValue("kind"))
	id, err := apiutil.IDFromPath(r, "id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	actorID := api.ActingPersonFromContext(r.Context())
	if actorID <= 0 {
		http.Error(w, "acting person is required", http.StatusUnauthorized)
		return
	}

	ctx, cancel := queryContext(r)
	defer cancel()

	if err := approvals.Validate(ctx, kind, id, actorID); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	logger.Info().
		Str("kind", string(kind)).
		Int64("relation_id", id).
		Int64("actor_id", actorID).
		Msg("Relation validated")
	apiutil.WriteJSON(w, http.StatusOK, map[string]any{"validated": true})
}

func queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), relationQueryTimeout)
}
