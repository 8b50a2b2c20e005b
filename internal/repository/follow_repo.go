package repository

import (
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create 建立关注关系并维护双方计数
func (r *FollowRepository) Create(followerID, followeeID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", followerID).
			Update("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", followeeID).
			Update("follower_count", gorm.Expr("follower_count + 1")).Error
	})
}

// Delete 解除关注关系并维护双方计数
func (r *FollowRepository) Delete(followerID, followeeID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&model.User{}).Where("id = ? AND following_count > 0", followerID).
			Update("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ? AND follower_count > 0", followeeID).
			Update("follower_count", gorm.Expr("follower_count - 1")).Error
	})
}

func (r *FollowRepository) Exists(followerID, followeeID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

// ListFollowing 获取用户关注的人
func (r *FollowRepository) ListFollowing(followerID int64, page, pageSize int) ([]int64, int64, error) {
	var total int64
	var ids []int64

	query := r.db.Model(&model.Follow{}).Where("follower_id = ?", followerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Pluck("followee_id", &ids).Error
	return ids, total, err
}

// ListFollowers 获取用户的粉丝
func (r *FollowRepository) ListFollowers(followeeID int64, page, pageSize int) ([]int64, int64, error) {
	var total int64
	var ids []int64

	query := r.db.Model(&model.Follow{}).Where("followee_id = ?", followeeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Pluck("follower_id", &ids).Error
	return ids, total, err
}
