package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.db.Create(post).Error
}

func (r *PostRepository) GetByID(id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) GetByIDWithUser(id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.Preload("User").Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) Update(post *model.Post) error {
	return r.db.Save(post).Error
}

func (r *PostRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除帖子及其关联数据
func (r *PostRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Interaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.PostGiftStat{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Post{}, id).Error
	})
}

// List 获取信息流列表，置顶推广帖排在最前
func (r *PostRepository) List(page, pageSize int, sortBy string, userID int64) ([]*model.Post, int64, error) {
	var posts []*model.Post
	var total int64

	query := r.db.Model(&model.Post{}).Preload("User")
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 推广中的帖子优先，其余按排序规则
	promoted := "CASE WHEN promo_status = 'promoted' AND promoted_until > CURRENT_TIMESTAMP THEN 0 ELSE 1 END"
	switch sortBy {
	case "hot":
		query = query.Order(promoted).
			Order("(like_count * 3 + comment_count * 2 + view_count) DESC")
	default: // latest
		query = query.Order(promoted).Order("created_at DESC")
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// GetByIDs 按 ID 批量获取（保持传入顺序由调用方处理）
func (r *PostRepository) GetByIDs(ids []int64) ([]*model.Post, error) {
	var posts []*model.Post
	if len(ids) == 0 {
		return posts, nil
	}
	err := r.db.Preload("User").Where("id IN ?", ids).Find(&posts).Error
	return posts, err
}

func (r *PostRepository) IncrementViewCount(id int64) error {
	return r.db.Model(&model.Post{}).Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *PostRepository) IncrementLikeCount(id int64, delta int) error {
	return r.db.Model(&model.Post{}).Where("id = ?", id).
		Update("like_count", gorm.Expr("like_count + ?", delta)).Error
}

func (r *PostRepository) IncrementCommentCount(id int64, delta int) error {
	return r.db.Model(&model.Post{}).Where("id = ?", id).
		Update("comment_count", gorm.Expr("comment_count + ?", delta)).Error
}

func (r *PostRepository) IncrementShareCount(id int64) error {
	return r.db.Model(&model.Post{}).Where("id = ?", id).
		Update("share_count", gorm.Expr("share_count + 1")).Error
}

// ListExpiredPromotions 查询推广已到期但状态未清理的帖子
func (r *PostRepository) ListExpiredPromotions(now time.Time, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.Where("promo_status = ? AND promoted_until <= ?", model.PromoActive, now).
		Limit(limit).Find(&posts).Error
	return posts, err
}

// ClearExpiredPromotion 清理单个帖子的到期推广标记
func (r *PostRepository) ClearExpiredPromotion(id int64, now time.Time) error {
	return r.db.Model(&model.Post{}).
		Where("id = ? AND promo_status = ? AND promoted_until <= ?", id, model.PromoActive, now).
		Updates(map[string]interface{}{
			"promo_status":   model.PromoNone,
			"promoted_until": nil,
		}).Error
}

// UpsertGiftStat 累加帖子的礼物统计
func (r *PostRepository) UpsertGiftStat(tx *gorm.DB, postID int64, giftName, icon string) error {
	res := tx.Model(&model.PostGiftStat{}).
		Where("post_id = ? AND gift_name = ?", postID, giftName).
		Update("count", gorm.Expr("count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&model.PostGiftStat{
			PostID:   postID,
			GiftName: giftName,
			Icon:     icon,
			Count:    1,
		}).Error
	}
	return nil
}

func (r *PostRepository) GetGiftStats(postID int64) ([]*model.PostGiftStat, error) {
	var stats []*model.PostGiftStat
	err := r.db.Where("post_id = ?", postID).Order("count DESC").Find(&stats).Error
	return stats, err
}
