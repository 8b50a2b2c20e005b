package repository

import (
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Preload("User").Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Comment{}, id).Error
	})
}

// ListByPostID 分页获取顶层评论及其回复
func (r *CommentRepository) ListByPostID(postID int64, page, pageSize int) ([]*model.Comment, int64, error) {
	var comments []*model.Comment
	var total int64

	query := r.db.Model(&model.Comment{}).Where("post_id = ? AND parent_id IS NULL", postID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Preload("User").Order("created_at DESC").
		Offset(offset).Limit(pageSize).Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	// 加载回复
	if len(comments) > 0 {
		ids := make([]int64, 0, len(comments))
		for _, c := range comments {
			ids = append(ids, c.ID)
		}
		var replies []*model.Comment
		if err := r.db.Preload("User").Where("parent_id IN ?", ids).
			Order("created_at ASC").Find(&replies).Error; err != nil {
			return nil, 0, err
		}
		byParent := make(map[int64][]*model.Comment)
		for _, reply := range replies {
			byParent[*reply.ParentID] = append(byParent[*reply.ParentID], reply)
		}
		for _, c := range comments {
			c.Replies = byParent[c.ID]
		}
	}

	return comments, total, nil
}

func (r *CommentRepository) CountReplies(parentID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("parent_id = ?", parentID).Count(&count).Error
	return count, err
}

func (r *CommentRepository) CountByPostID(postID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
