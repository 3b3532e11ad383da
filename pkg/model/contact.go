package model

import "time"

// ContactMessage is a public contact/support form submission.
type ContactMessage struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email     string    `json:"email" bson:"email" validate:"required,email,max=254"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,max=30"`
	Subject   string    `json:"subject" bson:"subject" validate:"required,min=2,max=150"`
	Message   string    `json:"message" bson:"message" validate:"required,min=5,max=4000"`
	Read      bool      `json:"read" bson:"read"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
