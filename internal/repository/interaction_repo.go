package repository

import (
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
)

type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Create 创建互动记录
func (r *InteractionRepository) Create(interaction *model.Interaction) error {
	return r.db.Create(interaction).Error
}

// Delete 删除互动记录
func (r *InteractionRepository) Delete(userID, postID int64, interactionType string) error {
	return r.db.Where("user_id = ? AND post_id = ? AND type = ?", userID, postID, interactionType).
		Delete(&model.Interaction{}).Error
}

// Exists 检查互动是否存在
func (r *InteractionRepository) Exists(userID, postID int64, interactionType string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Interaction{}).
		Where("user_id = ? AND post_id = ? AND type = ?", userID, postID, interactionType).
		Count(&count).Error
	return count > 0, err
}

// GetByUserAndPost 获取用户对某帖子的互动状态
func (r *InteractionRepository) GetByUserAndPost(userID, postID int64) ([]*model.Interaction, error) {
	var interactions []*model.Interaction
	err := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Find(&interactions).Error
	return interactions, err
}

// GetUserPostIDs 获取用户某类互动的帖子 ID 列表
func (r *InteractionRepository) GetUserPostIDs(userID int64, interactionType string, page, pageSize int) ([]int64, int64, error) {
	var total int64
	var ids []int64

	query := r.db.Model(&model.Interaction{}).Where("user_id = ? AND type = ?", userID, interactionType)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Pluck("post_id", &ids).Error
	return ids, total, err
}
