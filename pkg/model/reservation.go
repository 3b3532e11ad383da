package model

import "time"

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusDeclined  = "declined"
)

// ReservationRequest is the public reservation form payload.
type ReservationRequest struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	PartySize    int    `json:"party_size"`
	Area         string `json:"area"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Reservation is the persisted record. Status moves pending -> confirmed
// or pending -> declined by an admin decision and records are never
// deleted by this service.
type Reservation struct {
	ID           string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Date         string     `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Time         string     `json:"time" bson:"time" validate:"required,datetime=15:04"`
	PartySize    int        `json:"party_size" bson:"party_size" validate:"required,min=1,max=500"`
	Area         string     `json:"area" bson:"area" validate:"required,oneof=innen aussen"`
	ContactName  string     `json:"contact_name" bson:"contact_name" validate:"required,min=2,max=100"`
	ContactPhone string     `json:"contact_phone" bson:"contact_phone" validate:"required,max=30"`
	ContactEmail string     `json:"contact_email,omitempty" bson:"contact_email,omitempty" validate:"omitempty,email"`
	Notes        string     `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	Status       string     `json:"status" bson:"status" validate:"required,oneof=pending confirmed declined"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	DecidedAt    *time.Time `json:"decided_at,omitempty" bson:"decided_at,omitempty"`
}

// TimeSlot is one bookable start time with remaining per-area capacity.
// Remaining is aggregated from existing reservations, not stored.
type TimeSlot struct {
	Time      string `json:"time"`
	Remaining int    `json:"remaining"`
}
