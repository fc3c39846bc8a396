package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiWeekly Frequency = "bi-weekly"
)

type ChoreType string

const (
	ChoreTypePredefined ChoreType = "predefined"
	ChoreTypeRandom     ChoreType = "random"
)

type Roommate struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	OIDCSubject        string    `json:"oidc_subject,omitempty"`
	Role               Role      `json:"role"`
	CurrentCyclePoints int       `json:"current_cycle_points"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Chore struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Frequency   Frequency `json:"frequency"`
	Type        ChoreType `json:"type"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Assignment is one chore handed to one roommate for the current cycle. The
// stored set is replaced wholesale on every scheduler run, never merged.
type Assignment struct {
	ID           string    `json:"id,omitempty"`
	ChoreID      int64     `json:"chore_id"`
	ChoreName    string    `json:"chore_name"`
	RoommateID   int64     `json:"roommate_id"`
	RoommateName string    `json:"roommate_name"`
	AssignedDate time.Time `json:"assigned_date"`
	DueDate      time.Time `json:"due_date"`
	Frequency    Frequency `json:"frequency"`
	Type         ChoreType `json:"type"`
	Points       int       `json:"points"`
}

// ScheduleState is the household-wide scheduler bookkeeping: when the last
// run happened, which roommate last held each predefined chore, and the
// shared rotation cursor used when a batch of predefined chores is handed
// out in one run.
type ScheduleState struct {
	LastRunDate              *time.Time      `json:"last_run_date,omitempty"`
	PredefinedChoreStates    map[int64]int64 `json:"predefined_chore_states"`
	GlobalPredefinedRotation int             `json:"global_predefined_rotation"`
}

type APIToken struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	TokenHash           string     `json:"-"`
	Scope               string     `json:"scope"`
	CreatedByRoommateID int64      `json:"created_by_roommate_id"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}
