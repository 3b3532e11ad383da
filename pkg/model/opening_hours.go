package model

import "time"

// Area keys are a closed enumeration: the restaurant floor ("innen") and
// the terrace ("aussen").
const (
	AreaIndoor  = "innen"
	AreaOutdoor = "aussen"
)

var AreaKeys = []string{AreaIndoor, AreaOutdoor}

// TimeInterval is one service shift, e.g. lunch 11:30-14:30.
// Times are 24-hour "HH:MM" strings in the document timezone.
type TimeInterval struct {
	Start string `json:"start" bson:"start"`
	End   string `json:"end" bson:"end"`
}

type DaySchedule struct {
	Closed    bool           `json:"closed" bson:"closed"`
	Intervals []TimeInterval `json:"intervals,omitempty" bson:"intervals,omitempty"`
}

type SlotConfig struct {
	StepMinutes    int `json:"step_minutes" bson:"step_minutes" validate:"omitempty,min=5,max=240"`
	MinLeadMinutes int `json:"min_lead_minutes" bson:"min_lead_minutes" validate:"omitempty,min=0,max=10080"`
	MaxAdvanceDays int `json:"max_advance_days" bson:"max_advance_days" validate:"omitempty,min=0,max=365"`
}

type AreaConfig struct {
	Capacity int  `json:"capacity" bson:"capacity" validate:"min=0,max=500"`
	Enabled  bool `json:"enabled" bson:"enabled"`
}

// OpeningHours is the admin-authored weekly schedule document. It is a
// singleton per restaurant and may arrive partial or malformed (legacy
// documents, manual edits); the schedule package normalizes it before use.
type OpeningHours struct {
	ID                  string                 `json:"id,omitempty" bson:"_id,omitempty"`
	Timezone            string                 `json:"timezone" bson:"timezone" validate:"omitempty,timezone"`
	ReservationsEnabled *bool                  `json:"reservations_enabled,omitempty" bson:"reservations_enabled,omitempty"`
	Week                map[string]DaySchedule `json:"week" bson:"week"`
	Exceptions          map[string]DaySchedule `json:"exceptions,omitempty" bson:"exceptions,omitempty"`
	Slot                *SlotConfig            `json:"slot,omitempty" bson:"slot,omitempty"`
	Areas               map[string]AreaConfig  `json:"areas,omitempty" bson:"areas,omitempty"`
	UpdatedAt           time.Time              `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}
