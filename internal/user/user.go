package user

import (
	"context"
	"errors"
	"time"

	userDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/user"
	"github.com/frahmantamala/worktrack/internal/org"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the caller with every organization they belong to.
type Profile struct {
	*User
	Memberships []org.Membership `json:"memberships"`
}

var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
