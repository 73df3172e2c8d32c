package models

import "time"

// Age bracket keys for the standard goal table.
const (
	AgeGroupChild  = "6-12"
	AgeGroupTeen   = "13-18"
	AgeGroupAdult  = "19-50"
	AgeGroupSenior = "51-64"
	AgeGroupElder  = "65+"
)

// How the daily goal is derived for a user.
const (
	GoalSourceAge     = "age"
	GoalSourceWeather = "weather"
	GoalSourceManual  = "manual"
)

const (
	DefaultGoalML     = 2000
	DefaultQuickLogML = 250
)

// User is the canonical durable record. One JSON document per user under
// users/<uid> in the store tree; Days live under users/<uid>/days/<date>.
type User struct {
	UID          string    `json:"uid,omitempty"`
	Username     string    `json:"username" validate:"required,min=1"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	Profile      Profile   `json:"profile"`
	Settings     Settings  `json:"settings"`
	// Last date (ISO YYYY-MM-DD) the tracker touched; drives rollover.
	LastActiveDate string `json:"last_active_date,omitempty"`
}

// Profile updates go through a shallow merge, so no omitempty here: a
// dropped zero would resurrect the previous stored value (e.g. cleared
// coordinates after a city change).
type Profile struct {
	AgeGroup    string  `json:"age_group" validate:"omitempty,oneof=6-12 13-18 19-50 51-64 65+"`
	GoalML      int     `json:"user_goal_ml" validate:"gte=0,lte=10000"`
	GoalSource  string  `json:"goal_source" validate:"omitempty,oneof=age weather manual"`
	HealthNotes string  `json:"health_notes"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type Settings struct {
	Theme    string `json:"theme" validate:"omitempty,oneof=light aqua dark"`
	FontSize string `json:"font_size" validate:"omitempty,oneof=small medium large"`
	Mascot   string `json:"mascot,omitempty"`
}

// Day is one calendar day of intake for one user. Today's record is mutable,
// older dates are append-only history.
type Day struct {
	Date       string                 `json:"date"`
	IntakeML   int                    `json:"intake" validate:"gte=0"`
	Milestones []int                  `json:"milestones,omitempty"`
	Entries    map[string]IntakeEntry `json:"entries,omitempty"`
}

// IntakeEntry is a single logged addition, keyed by a store push key so
// iteration order follows logging order.
type IntakeEntry struct {
	AmountML int       `json:"amount_ml"`
	Note     string    `json:"note,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}

// DefaultProfile is the block stored for every new account.
func DefaultProfile() Profile {
	return Profile{
		AgeGroup:   AgeGroupAdult,
		GoalML:     0,
		GoalSource: GoalSourceAge,
	}
}

func DefaultSettings() Settings {
	return Settings{
		Theme:    "light",
		FontSize: "medium",
		Mascot:   "dolphin",
	}
}

// Normalize fills explicit defaults for fields missing from older or
// hand-edited records instead of relying on dynamic lookup with fallbacks.
func (p *Profile) Normalize() {
	if p.AgeGroup == "" {
		p.AgeGroup = AgeGroupAdult
	}
	if p.GoalSource == "" {
		if p.GoalML > 0 {
			p.GoalSource = GoalSourceManual
		} else {
			p.GoalSource = GoalSourceAge
		}
	}
	if p.GoalML < 0 {
		p.GoalML = 0
	}
}

func (s *Settings) Normalize() {
	if s.Theme == "" {
		s.Theme = "light"
	}
	if s.FontSize == "" {
		s.FontSize = "medium"
	}
}

func (d *Day) Normalize(date string) {
	if d.Date == "" {
		d.Date = date
	}
	if d.IntakeML < 0 {
		d.IntakeML = 0
	}
}
