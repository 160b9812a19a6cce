package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultPlanetColor = "#b5b3b3"

// DefaultTheme returns a fresh copy of the five-colour default theme.
func DefaultTheme() []string {
	return []string{"#FF0000", "#FF0000", "#FF0000", "#FF0000", "#FF0000"}
}

type Planet struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" validate:"required,min=1,max=20"`
	Description string             `json:"description" bson:"description" validate:"required,min=1,max=50"`
	Color       string             `json:"color" bson:"color" validate:"required,hexcode"`
	Theme       []string           `json:"theme" bson:"theme" validate:"len=5,dive,hexcode"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (p *Planet) Validate() error {
	return validate.Struct(p)
}

// PlanetRole is a user's role within a single planet.
type PlanetRole string

const (
	PlanetOwner        PlanetRole = "owner"
	PlanetCollaborator PlanetRole = "collaborator"
)

// Collaborator links a user to a planet. Exactly one link per planet carries PlanetOwner.
type Collaborator struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	PlanetID  primitive.ObjectID `json:"planetId" bson:"planetId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Role      PlanetRole         `json:"role" bson:"role"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CreatePlanetRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description" binding:"required"`
	OwnerID     string   `json:"ownerId" binding:"required"`
	Color       string   `json:"color"`
	Theme       []string `json:"theme"`
}

type UpdatePlanetRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Color       *string  `json:"color"`
	Theme       []string `json:"theme"`
}

// PlanetDetail is a planet together with its members, owner first.
type PlanetDetail struct {
	Planet        *Planet      `json:"planet"`
	Collaborators []PublicUser `json:"collaborators"`
	// Role is the caller's role in the planet, empty for admins who are not members.
	Role PlanetRole `json:"role,omitempty"`
}

// UserPlanets groups a user's planets by their role in each.
type UserPlanets struct {
	Owned        []Planet `json:"ownedPlanets"`
	Collaborated []Planet `json:"collaboratedPlanets"`
}
