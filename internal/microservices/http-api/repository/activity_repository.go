package repository

import (
	"context"
	"fmt"
	"time"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) FindByUserAndBook(ctx context.Context, userID, bookID string) (*models.ActivityRecord, error) {
	var record models.ActivityRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *activityRepository) Create(ctx context.Context, record *models.ActivityRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create activity: %w", translate(err))
	}
	return nil
}

func (r *activityRepository) Update(ctx context.Context, id string, patch models.ActivityPatch) (*models.ActivityRecord, error) {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.Rating != nil {
		updates["rating"] = *patch.Rating
	}

	result := r.db.WithContext(ctx).
		Model(&models.ActivityRecord{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("update activity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}

	var record models.ActivityRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *activityRepository) ListByUser(ctx context.Context, userID string, status *models.ReadingStatus) ([]models.ActivityRecord, error) {
	var records []models.ActivityRecord

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	if err := query.Order("updated_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return records, nil
}

func (r *activityRepository) ListRatingsForBook(ctx context.Context, bookID string) ([]int, error) {
	var ratings []int
	if err := r.db.WithContext(ctx).
		Model(&models.ActivityRecord{}).
		Where("book_id = ? AND rating > 0", bookID).
		Pluck("rating", &ratings).Error; err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

func (r *activityRepository) CountByStatus(ctx context.Context, userID string, status models.ReadingStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ActivityRecord{}).
		Where("user_id = ? AND status = ?", userID, string(status)).
		Count(&count).Error
	return count, err
}
