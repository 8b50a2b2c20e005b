package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/voke-app/voke_server/config"
	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/repository"
)

var (
	ErrPlanNotFound     = errors.New("推广套餐不存在")
	ErrPromotionPending = errors.New("该帖子已有待审批的推广申请")
	ErrAlreadyPromoted  = errors.New("该帖子正在推广中")
)

// PromotionService 处理 Spotlight 推广：下单即扣费，
// 批准时点亮推广位，驳回走补偿退款。到期只摘标记，不动账。
type PromotionService struct {
	postRepo    *repository.PostRepository
	requestRepo *repository.RequestRepository
	walletSvc   *WalletService
	cfg         *config.Config
}

func NewPromotionService(
	postRepo *repository.PostRepository,
	requestRepo *repository.RequestRepository,
	walletSvc *WalletService,
	cfg *config.Config,
) *PromotionService {
	return &PromotionService{
		postRepo:    postRepo,
		requestRepo: requestRepo,
		walletSvc:   walletSvc,
		cfg:         cfg,
	}
}

// ListPlans 推广套餐
func (s *PromotionService) ListPlans() []*dto.SpotlightPlanItem {
	items := make([]*dto.SpotlightPlanItem, len(s.cfg.Spotlight.Plans))
	for i, p := range s.cfg.Spotlight.Plans {
		items[i] = &dto.SpotlightPlanItem{
			DurationDays: p.DurationDays,
			Cost:         p.Cost,
		}
	}
	return items
}

func (s *PromotionService) findPlan(durationDays int) *config.SpotlightPlan {
	for i := range s.cfg.Spotlight.Plans {
		if s.cfg.Spotlight.Plans[i].DurationDays == durationDays {
			return &s.cfg.Spotlight.Plans[i]
		}
	}
	return nil
}

// Purchase 购买推广位。扣费与申请单创建在同一事务内，
// 余额不足时申请单不会产生。
func (s *PromotionService) Purchase(userID, postID int64, durationDays int) (*dto.PurchaseSpotlightResponse, error) {
	plan := s.findPlan(durationDays)
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotPostOwner
	}
	if post.IsSpotlighted(time.Now()) {
		return nil, ErrAlreadyPromoted
	}

	pending, err := s.requestRepo.HasPendingPromotion(postID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrPromotionPending
	}

	req := &model.PromotionRequest{
		UserID:       userID,
		PostID:       postID,
		DurationDays: plan.DurationDays,
		Cost:         plan.Cost,
		Status:       model.RequestPending,
		PendingPost:  &postID,
	}

	var balance float64
	err = s.walletSvc.withConflictRetry(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			// 并发下单撞 pending_post 唯一索引，按已有待审批单处理
			if isDuplicateKeyError(err) {
				return ErrPromotionPending
			}
			return err
		}
		txn, _, err := s.walletSvc.adjustInTx(tx, AdjustParams{
			UserID:         userID,
			Delta:          -plan.Cost,
			Type:           model.TxPromotion,
			IdempotencyKey: fmt.Sprintf("promo:%d", req.ID),
			PostID:         &postID,
			Metadata:       model.JSONMap{"duration_days": plan.DurationDays},
		})
		if err != nil {
			return err
		}
		balance = txn.BalanceAfter

		return tx.Model(&model.Post{}).Where("id = ?", postID).
			Update("promo_status", model.PromoPending).Error
	})
	if err != nil {
		return nil, err
	}

	return &dto.PurchaseSpotlightResponse{
		RequestID: req.ID,
		Balance:   balance,
	}, nil
}

// Decide 审批推广。批准时点亮推广位并设置到期时间；
// 驳回时原路退款，退款流水独立成行。
func (s *PromotionService) Decide(requestID int64, approve bool) error {
	req, err := s.requestRepo.GetPromotionByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return err
	}

	status := model.RequestRejected
	if approve {
		status = model.RequestApproved
	}

	return s.walletSvc.withConflictRetry(func(tx *gorm.DB) error {
		hit, err := s.requestRepo.DecidePromotion(tx, requestID, status)
		if err != nil {
			return err
		}
		if !hit {
			return ErrAlreadyApplied
		}

		if approve {
			until := time.Now().Add(time.Duration(req.DurationDays) * 24 * time.Hour)
			return tx.Model(&model.Post{}).Where("id = ?", req.PostID).
				Updates(map[string]interface{}{
					"promo_status":   model.PromoActive,
					"promoted_until": until,
				}).Error
		}

		// 驳回：退款 + 摘掉待审批标记
		_, _, err = s.walletSvc.adjustInTx(tx, AdjustParams{
			UserID:         req.UserID,
			Delta:          req.Cost,
			Type:           model.TxPromotionRefund,
			IdempotencyKey: fmt.Sprintf("promorefund:%d", requestID),
			PostID:         &req.PostID,
			Metadata:       model.JSONMap{"request_id": requestID},
		})
		if err != nil {
			return err
		}
		return tx.Model(&model.Post{}).Where("id = ? AND promo_status = ?", req.PostID, model.PromoPending).
			Update("promo_status", model.PromoRejected).Error
	})
}

// SweepExpired 清理到期推广标记。过期只影响展示，不产生任何资金变动。
func (s *PromotionService) SweepExpired(batchSize int) (int, error) {
	now := time.Now()
	posts, err := s.postRepo.ListExpiredPromotions(now, batchSize)
	if err != nil {
		return 0, err
	}

	cleared := 0
	for _, p := range posts {
		if err := s.postRepo.ClearExpiredPromotion(p.ID, now); err != nil {
			log.Printf("Failed to clear expired promotion for post %d: %v", p.ID, err)
			continue
		}
		cleared++
	}
	return cleared, nil
}
