package repository

import (
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
)

type ViewRepository struct {
	db *gorm.DB
}

func NewViewRepository(db *gorm.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// Create 记录浏览事件。唯一索引保证同一用户对同一帖子只计一次。
func (r *ViewRepository) Create(tx *gorm.DB, event *model.ViewEvent) error {
	return tx.Create(event).Error
}

func (r *ViewRepository) Exists(postID, viewerID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.ViewEvent{}).
		Where("post_id = ? AND viewer_id = ?", postID, viewerID).
		Count(&count).Error
	return count > 0, err
}

func (r *ViewRepository) CountByPostID(postID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.ViewEvent{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
