package services

import (
	"context"
	"strings"
	"time"

	"planets-be/internal/models"
	"planets-be/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const minPasswordLength = 6

// hashPassword rejects passwords bcrypt cannot hash before hashing them.
func hashPassword(password string) (string, error) {
	if len(password) > utils.MaxPasswordBytes {
		return "", models.NewInvalidInput("Password must be at most 72 bytes.")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", models.NewInternal(err)
	}
	return hash, nil
}

type UserService struct {
	users UserStore
	now   func() time.Time
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users, now: time.Now}
}

// Get returns a user's profile to that user or an admin.
func (s *UserService) Get(ctx context.Context, actor Actor, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "Cannot retrieve information of non-existent user.")
	}
	if !actor.CanActAs(userID) {
		return nil, models.NewForbidden("You do not have permission to access this user's data.")
	}
	return user, nil
}

// Update edits the caller's own profile. The global role is never editable here.
func (s *UserService) Update(ctx context.Context, actor Actor, userID primitive.ObjectID, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "Cannot edit non-existent user.")
	}
	if actor.UserID != userID {
		return nil, models.NewForbidden("You do not have permission to edit this user.")
	}

	if req.Username != nil {
		username := utils.SanitizeText(*req.Username)
		if username != user.Username {
			taken, err := s.users.ExistsByUsername(ctx, username)
			if err != nil {
				return nil, models.NewInternal(err)
			}
			if taken {
				return nil, models.NewConflict("Username " + username + " is taken.")
			}
		}
		user.Username = username
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			taken, err := s.users.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, models.NewInternal(err)
			}
			if taken {
				return nil, models.NewConflict("Email " + email + " is taken.")
			}
		}
		user.Email = email
	}
	if req.FirstName != nil {
		user.FirstName = utils.SanitizeText(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = utils.SanitizeText(*req.LastName)
	}
	if req.PfpLink != nil {
		user.PfpLink = strings.TrimSpace(*req.PfpLink)
	}
	if err := user.Validate(); err != nil {
		return nil, models.NewValidation(err)
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			return nil, models.NewInvalidInput("Password must be at least 6 characters.")
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, conflictOr(err, "Username or email is taken.")
	}
	return user, nil
}
