package domain

import "time"

// Pet is a single tracked pet, scoped to the identity that created it.
// PetID and UserID are server-assigned; callers never supply them.
type Pet struct {
	PetID     string    `json:"petId"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	DOB       string    `json:"dob,omitempty"`
	Breed     string    `json:"breed,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	PhotoKey  string    `json:"photoKey,omitempty"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// CreatePetRequest carries the attributes collected by the add-pet form.
// Empty attributes are dropped before persisting.
type CreatePetRequest struct {
	Name     string `json:"name" validate:"required,max=128"`
	DOB      string `json:"dob,omitempty"`
	Breed    string `json:"breed,omitempty" validate:"omitempty,max=128"`
	Gender   string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	PhotoKey string `json:"photoKey,omitempty"`
}
