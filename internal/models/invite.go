package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite is a pending offer of planet membership. It is deleted on accept or decline.
type Invite struct {
	ID                primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	PlanetID          primitive.ObjectID `json:"planetId" bson:"planetId"`
	PlanetName        string             `json:"planetName" bson:"planetName"`
	InvitedUserID     primitive.ObjectID `json:"invitedUserId" bson:"invitedUserId"`
	InvitingUserEmail string             `json:"invitingUserEmail" bson:"invitingUserEmail"`
	Message           *string            `json:"message" bson:"message" validate:"omitempty,min=1,max=24"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (i *Invite) Validate() error {
	return validate.Struct(i)
}

type SendInviteRequest struct {
	UserEmail string  `json:"userEmail" binding:"required"`
	Message   *string `json:"message"`
}
