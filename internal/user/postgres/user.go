package postgres

import (
	"context"
	"fmt"

	userDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/user"
	"github.com/frahmantamala/worktrack/internal/core/storage"
	"github.com/frahmantamala/worktrack/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error; err != nil {
		if storage.IsNotFound(err) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user.FromDataModel(&row), nil
}
