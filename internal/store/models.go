package store

import "time"

// Group kinds.
const (
	GroupKindLeague     = "league"
	GroupKindCup        = "cup"
	GroupKindTournament = "tournament"
)

// Event types recorded during a game.
const (
	EventGoal             = "goal"
	EventWarning          = "warning"
	EventDisqualification = "disqualification"
	EventTimePenalty      = "time_penalty"
	EventTeamTimePenalty  = "team_time_penalty"
	EventPenaltyShotGoal  = "penalty_shot_goal"
	EventPenaltyShotMiss  = "penalty_shot_miss"
)

// Union is the top organizational unit.
type Union struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// District is a regional division belonging to exactly one union. A club's
// union is always resolved through its district; it is never stored twice.
type District struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UnionID   int64     `json:"union_id"`
	CreatedAt time.Time `json:"created_at"`
}

type LeagueLevel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Site is a venue, identified by a unique external number.
type Site struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	ZipCode   string    `json:"zip_code"`
	Number    int64     `json:"number"`
	CreatedAt time.Time `json:"created_at"`
}

type Person struct {
	ID           int64      `json:"id"`
	UserID       *int64     `json:"user_id,omitempty"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	ZipCode      string     `json:"zip_code"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	PassNumber   *int64     `json:"pass_number,omitempty"`
	Gender       string     `json:"gender"`
	MobileNumber string     `json:"mobile_number"`
	IsPlayer     bool       `json:"is_player"`
	IsCoach      bool       `json:"is_coach"`
	IsReferee    bool       `json:"is_referee"`
	IsExec       bool       `json:"is_exec"`
	Validated    bool       `json:"validated"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Club struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DistrictID  int64     `json:"district_id"`
	HomeSiteID  *int64    `json:"home_site_id,omitempty"`
	CreatedByID *int64    `json:"created_by_id,omitempty"`
	Validated   bool      `json:"validated"`
	CreatedAt   time.Time `json:"created_at"`
}

type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ClubID      int64     `json:"club_id"`
	CreatedByID *int64    `json:"created_by_id,omitempty"`
	Validated   bool      `json:"validated"`
	CreatedAt   time.Time `json:"created_at"`
}

// Group is a league, cup or tournament grouping of teams.
type Group struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Gender     string    `json:"gender"`
	AgeGroup   string    `json:"age_group"`
	LevelID    *int64    `json:"level_id,omitempty"`
	UnionID    *int64    `json:"union_id,omitempty"`
	DistrictID *int64    `json:"district_id,omitempty"`
	Validated  bool      `json:"validated"`
	CreatedAt  time.Time `json:"created_at"`
}

// ClubMemberRelation joins a person to a club. Exactly one membership per
// person carries Primary once the person belongs to at least one club.
type ClubMemberRelation struct {
	ID        int64     `json:"id"`
	ClubID    int64     `json:"club_id"`
	MemberID  int64     `json:"member_id"`
	Primary   bool      `json:"primary"`
	Validated bool      `json:"validated"`
	CreatedAt time.Time `json:"created_at"`
}

type TeamPlayerRelation struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	PlayerID  int64     `json:"player_id"`
	Validated bool      `json:"validated"`
	CreatedAt time.Time `json:"created_at"`
}

type TeamCoachRelation struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	CoachID   int64     `json:"coach_id"`
	Validated bool      `json:"validated"`
	CreatedAt time.Time `json:"created_at"`
}

type ClubManagerRelation struct {
	ID            int64     `json:"id"`
	ClubID        int64     `json:"club_id"`
	ManagerID     int64     `json:"manager_id"`
	AppointedByID *int64    `json:"appointed_by_id,omitempty"`
	Validated     bool      `json:"validated"`
	CreatedAt     time.Time `json:"created_at"`
}

type TeamManagerRelation struct {
	ID            int64     `json:"id"`
	TeamID        int64     `json:"team_id"`
	ManagerID     int64     `json:"manager_id"`
	AppointedByID *int64    `json:"appointed_by_id,omitempty"`
	Validated     bool      `json:"validated"`
	CreatedAt     time.Time `json:"created_at"`
}

type GroupManagerRelation struct {
	ID            int64     `json:"id"`
	GroupID       int64     `json:"group_id"`
	ManagerID     int64     `json:"manager_id"`
	AppointedByID *int64    `json:"appointed_by_id,omitempty"`
	Validated     bool      `json:"validated"`
	CreatedAt     time.Time `json:"created_at"`
}

type DistrictManagerRelation struct {
	ID            int64     `json:"id"`
	DistrictID    int64     `json:"district_id"`
	ManagerID     int64     `json:"manager_id"`
	AppointedByID *int64    `json:"appointed_by_id,omitempty"`
	Validated     bool      `json:"validated"`
	CreatedAt     time.Time `json:"created_at"`
}

type UnionManagerRelation struct {
	ID            int64     `json:"id"`
	UnionID       int64     `json:"union_id"`
	ManagerID     int64     `json:"manager_id"`
	AppointedByID *int64    `json:"appointed_by_id,omitempty"`
	Validated     bool      `json:"validated"`
	CreatedAt     time.Time `json:"created_at"`
}

// GroupTeamRelation carries a team's derived standing inside a group. Score is
// maintained by the engine; Position is populated by the nightly snapshot job
// and may lag the live ranking.
type GroupTeamRelation struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	TeamID    int64     `json:"team_id"`
	Score     int64     `json:"score"`
	Position  *int64    `json:"position,omitempty"`
	Validated bool      `json:"validated"`
	CreatedAt time.Time `json:"created_at"`
}

type Game struct {
	ID               int64     `json:"id"`
	Number           *int64    `json:"number,omitempty"`
	Start            time.Time `json:"start"`
	ScoreHome        int64     `json:"score_home"`
	ScoreAway        int64     `json:"score_away"`
	DurationMinutes  int64     `json:"duration_minutes"`
	HomeTeamID       int64     `json:"home_team_id"`
	AwayTeamID       int64     `json:"away_team_id"`
	RefereeID        *int64    `json:"referee_id,omitempty"`
	TimerID          *int64    `json:"timer_id,omitempty"`
	SecretaryID      *int64    `json:"secretary_id,omitempty"`
	SupervisorID     *int64    `json:"supervisor_id,omitempty"`
	WinnerTeamID     *int64    `json:"winner_team_id,omitempty"`
	GroupID          *int64    `json:"group_id,omitempty"`
	SiteID           *int64    `json:"site_id,omitempty"`
	HomeValidated    bool      `json:"home_validated"`
	AwayValidated    bool      `json:"away_validated"`
	RefereeValidated bool      `json:"referee_validated"`
	CreatedAt        time.Time `json:"created_at"`
}

// GamePlayerRelation joins a person to a game; the team disambiguates which
// side the person played for.
type GamePlayerRelation struct {
	ID          int64     `json:"id"`
	GameID      int64     `json:"game_id"`
	PlayerID    int64     `json:"player_id"`
	TeamID      int64     `json:"team_id"`
	ShirtNumber *int64    `json:"shirt_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Event struct {
	ID        int64     `json:"id"`
	GameID    int64     `json:"game_id"`
	PersonID  int64     `json:"person_id"`
	TeamID    int64     `json:"team_id"`
	EventType string    `json:"event_type"`
	Time      int64     `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}
