package repository

import (
	"context"
	"fmt"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type friendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) FindBetween(ctx context.Context, a, b string) (*models.FriendEdge, error) {
	var edge models.FriendEdge
	if err := r.db.WithContext(ctx).
		Where("pair_key = ?", models.PairKey(a, b)).
		First(&edge).Error; err != nil {
		return nil, translate(err)
	}
	return &edge, nil
}

func (r *friendRepository) FindByID(ctx context.Context, id string) (*models.FriendEdge, error) {
	var edge models.FriendEdge
	if err := r.db.WithContext(ctx).First(&edge, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &edge, nil
}

// Create inserts the edge. A second edge for the same pair fails with ErrDuplicate.
func (r *friendRepository) Create(ctx context.Context, edge *models.FriendEdge) error {
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		return fmt.Errorf("create friend request: %w", translate(err))
	}
	return nil
}

func (r *friendRepository) UpdateStatus(ctx context.Context, id string, status models.FriendStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.FriendEdge{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("update friend request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *friendRepository) ListAccepted(ctx context.Context, userID string) ([]models.FriendEdge, error) {
	var edges []models.FriendEdge
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", userID, userID, string(models.FriendAccepted)).
		Order("updated_at DESC").
		Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return edges, nil
}

func (r *friendRepository) ListPending(ctx context.Context, userID string, role models.RequestRole) ([]models.FriendEdge, error) {
	column := "receiver_id"
	if role == models.RoleSender {
		column = "sender_id"
	}

	var edges []models.FriendEdge
	if err := r.db.WithContext(ctx).
		Where(column+" = ? AND status = ?", userID, string(models.FriendPending)).
		Order("created_at DESC").
		Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}
	return edges, nil
}
