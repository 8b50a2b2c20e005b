package repository

import (
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
)

// RequestRepository 管理充值、提现、推广三类审批单。
// 审批状态流转一律用条件更新（WHERE status = 'pending'），
// 命中行数为 0 说明已被处理过，调用方据此实现幂等。
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// ---- 充值 ----

func (r *RequestRepository) CreateTopUp(req *model.TopUpRequest) error {
	return r.db.Create(req).Error
}

func (r *RequestRepository) GetTopUpByID(id int64) (*model.TopUpRequest, error) {
	var req model.TopUpRequest
	err := r.db.Preload("User").Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// DecideTopUp 将待审批的充值单置为目标状态，返回是否命中
func (r *RequestRepository) DecideTopUp(tx *gorm.DB, id int64, status string) (bool, error) {
	res := tx.Model(&model.TopUpRequest{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *RequestRepository) ListTopUps(page, pageSize int, status string, userID int64) ([]*model.TopUpRequest, int64, error) {
	var reqs []*model.TopUpRequest
	var total int64

	query := r.db.Model(&model.TopUpRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("User").Order("created_at DESC").
		Offset(offset).Limit(pageSize).Find(&reqs).Error
	return reqs, total, err
}

// ---- 提现 ----

func (r *RequestRepository) CreateWithdraw(req *model.WithdrawRequest) error {
	return r.db.Create(req).Error
}

func (r *RequestRepository) GetWithdrawByID(id int64) (*model.WithdrawRequest, error) {
	var req model.WithdrawRequest
	err := r.db.Preload("User").Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepository) DecideWithdraw(tx *gorm.DB, id int64, status string) (bool, error) {
	res := tx.Model(&model.WithdrawRequest{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *RequestRepository) ListWithdraws(page, pageSize int, status string, userID int64) ([]*model.WithdrawRequest, int64, error) {
	var reqs []*model.WithdrawRequest
	var total int64

	query := r.db.Model(&model.WithdrawRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("User").Order("created_at DESC").
		Offset(offset).Limit(pageSize).Find(&reqs).Error
	return reqs, total, err
}

// ---- 推广 ----

func (r *RequestRepository) CreatePromotion(req *model.PromotionRequest) error {
	return r.db.Create(req).Error
}

func (r *RequestRepository) GetPromotionByID(id int64) (*model.PromotionRequest, error) {
	var req model.PromotionRequest
	err := r.db.Preload("Post").Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepository) DecidePromotion(tx *gorm.DB, id int64, status string) (bool, error) {
	res := tx.Model(&model.PromotionRequest{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Updates(map[string]interface{}{"status": status, "pending_post": nil})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *RequestRepository) ListPromotions(page, pageSize int, status string, userID int64) ([]*model.PromotionRequest, int64, error) {
	var reqs []*model.PromotionRequest
	var total int64

	query := r.db.Model(&model.PromotionRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Post").Order("created_at DESC").
		Offset(offset).Limit(pageSize).Find(&reqs).Error
	return reqs, total, err
}

// HasPendingPromotion 帖子是否已有待审批的推广单
func (r *RequestRepository) HasPendingPromotion(postID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.PromotionRequest{}).
		Where("post_id = ? AND status = ?", postID, model.RequestPending).
		Count(&count).Error
	return count > 0, err
}
