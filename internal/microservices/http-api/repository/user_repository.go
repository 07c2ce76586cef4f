package repository

import (
	"context"
	"fmt"
	"strings"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		// never hand back a zero-value user on a miss
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []string, searchTerm string) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}

	query := r.db.WithContext(ctx).Where("id IN ?", ids)
	if term := strings.TrimSpace(searchTerm); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(username) LIKE ?", pattern, pattern)
	}
	if err := query.Order("name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

// Upsert creates the profile or overwrites its editable fields. The reading
// goal is left alone; it has its own update path.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "username", "email", "profile_pic", "country", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("upsert user: %w", translate(err))
	}
	return nil
}

func (r *userRepository) UpdateReadingGoal(ctx context.Context, id string, goal int) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("reading_goal", goal)
	if result.Error != nil {
		return fmt.Errorf("update reading goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
