package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GlobalRole is a system-wide privilege, distinct from a planet role.
type GlobalRole string

const (
	RoleUser  GlobalRole = "user"
	RoleAdmin GlobalRole = "admin"
)

const DefaultProfilePicture = "default.jpg"

type User struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username" validate:"required,min=1,max=9"`
	Email        string             `json:"email" bson:"email" validate:"required,email"`
	FirstName    string             `json:"fName" bson:"fName" validate:"required,min=1,max=19"`
	LastName     string             `json:"lName" bson:"lName" validate:"required,min=1,max=19"`
	Password     string             `json:"-" bson:"password"` // Never send password to client
	PfpLink      string             `json:"pfpLink" bson:"pfpLink"`
	Role         GlobalRole         `json:"role" bson:"role" validate:"required,oneof=user admin"`
	RefreshToken string             `json:"-" bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) Validate() error {
	return validate.Struct(u)
}

// PublicUser is the profile shape shown to other planet members.
type PublicUser struct {
	ID        primitive.ObjectID `json:"_id"`
	Username  string             `json:"username"`
	Email     string             `json:"email"`
	FirstName string             `json:"fName"`
	LastName  string             `json:"lName"`
	PfpLink   string             `json:"pfpLink"`
	Role      PlanetRole         `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"` // email or username
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type UpdateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"fName"`
	LastName  *string `json:"lName"`
	Password  *string `json:"password"`
	PfpLink   *string `json:"pfpLink"`
}

type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Message      string `json:"message"`
}
