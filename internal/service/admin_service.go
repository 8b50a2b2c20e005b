package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/config"
	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/repository"
)

var ErrReportNotFound = errors.New("举报不存在")

type AdminService struct {
	userRepo    *repository.UserRepository
	requestRepo *repository.RequestRepository
	reportRepo  *repository.ReportRepository
	settingRepo *repository.SettingRepository
	walletSvc   *WalletService
	cfg         *config.Config
}

func NewAdminService(
	userRepo *repository.UserRepository,
	requestRepo *repository.RequestRepository,
	reportRepo *repository.ReportRepository,
	settingRepo *repository.SettingRepository,
	walletSvc *WalletService,
	cfg *config.Config,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		reportRepo:  reportRepo,
		settingRepo: settingRepo,
		walletSvc:   walletSvc,
		cfg:         cfg,
	}
}

// ListUsers 后台用户列表
func (s *AdminService) ListUsers(page, pageSize int, keyword string) ([]*dto.AdminUserItem, int64, error) {
	users, total, err := s.userRepo.List(page, pageSize, keyword)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.AdminUserItem, len(users))
	for i, u := range users {
		items[i] = &dto.AdminUserItem{
			ID:        u.ID,
			Username:  u.Username,
			Name:      u.Name,
			Role:      u.Role,
			Status:    u.Status,
			Balance:   u.Balance,
			CreatedAt: u.CreatedAt.Format(time.RFC3339),
		}
	}
	return items, total, nil
}

// SetUserStatus 封禁/解封用户
func (s *AdminService) SetUserStatus(userID int64, status string) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.userRepo.UpdateFields(userID, map[string]interface{}{"status": status})
}

// AdjustBalance 管理员手工调账。未提供幂等键时由服务端生成，
// 保证重试安全的前提是调用方带键重试。
func (s *AdminService) AdjustBalance(req *dto.AdjustBalanceRequest) (*dto.AdjustBalanceResponse, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = "admin_adjust:" + uuid.NewString()
	}

	txn, _, err := s.walletSvc.Adjust(AdjustParams{
		UserID:         req.UserID,
		Delta:          req.Delta,
		Type:           model.TxAdjustment,
		IdempotencyKey: key,
		Metadata:       model.JSONMap{"reason": req.Reason},
	})
	if err != nil {
		return nil, err
	}

	return &dto.AdjustBalanceResponse{
		Balance:       txn.BalanceAfter,
		TransactionID: txn.ID,
	}, nil
}

// GetViewRate 当前浏览分成单价
func (s *AdminService) GetViewRate() (float64, error) {
	return s.settingRepo.GetFloat(model.SettingViewRate, s.cfg.Wallet.DefaultViewRate)
}

// UpdateViewRate 调整浏览分成单价，即时生效，不追溯已结算流水
func (s *AdminService) UpdateViewRate(rate float64) error {
	return s.settingRepo.SetFloat(model.SettingViewRate, rate)
}

// ListTopUps 充值审批列表
func (s *AdminService) ListTopUps(page, pageSize int, status string) ([]*dto.RequestItem, int64, error) {
	reqs, total, err := s.requestRepo.ListTopUps(page, pageSize, status, 0)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.RequestItem, len(reqs))
	for i, r := range reqs {
		item := &dto.RequestItem{
			ID:        r.ID,
			UserID:    r.UserID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
			Detail: map[string]interface{}{
				"points": r.Points,
				"price":  r.Price,
			},
		}
		if r.User != nil {
			item.UserName = r.User.Username
		}
		items[i] = item
	}
	return items, total, nil
}

// ListWithdraws 提现审批列表
func (s *AdminService) ListWithdraws(page, pageSize int, status string) ([]*dto.RequestItem, int64, error) {
	reqs, total, err := s.requestRepo.ListWithdraws(page, pageSize, status, 0)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.RequestItem, len(reqs))
	for i, r := range reqs {
		item := &dto.RequestItem{
			ID:        r.ID,
			UserID:    r.UserID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
			Detail: map[string]interface{}{
				"amount":    r.Amount,
				"method":    r.Method,
				"account":   r.Account,
				"bank_name": r.BankName,
			},
		}
		if r.User != nil {
			item.UserName = r.User.Username
		}
		items[i] = item
	}
	return items, total, nil
}

// ListPromotions 推广审批列表
func (s *AdminService) ListPromotions(page, pageSize int, status string) ([]*dto.RequestItem, int64, error) {
	reqs, total, err := s.requestRepo.ListPromotions(page, pageSize, status, 0)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.RequestItem, len(reqs))
	for i, r := range reqs {
		detail := map[string]interface{}{
			"post_id":       r.PostID,
			"duration_days": r.DurationDays,
			"cost":          r.Cost,
		}
		if r.Post != nil {
			detail["post_title"] = r.Post.Title
		}
		items[i] = &dto.RequestItem{
			ID:        r.ID,
			UserID:    r.UserID,
			Status:    r.Status,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
			Detail:    detail,
		}
	}
	return items, total, nil
}

// ListReports 举报列表
func (s *AdminService) ListReports(page, pageSize int, status string) ([]*dto.ReportItem, int64, error) {
	reports, total, err := s.reportRepo.List(page, pageSize, status)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ReportItem, len(reports))
	for i, r := range reports {
		item := &dto.ReportItem{
			ID:        r.ID,
			PostID:    r.PostID,
			Reason:    r.Reason,
			Status:    r.Status,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		}
		if r.Post != nil {
			item.PostTitle = r.Post.Title
		}
		items[i] = item
	}
	return items, total, nil
}

// ResolveReport 标记举报已处理
func (s *AdminService) ResolveReport(reportID int64) error {
	hit, err := s.reportRepo.Resolve(reportID)
	if err != nil {
		return err
	}
	if !hit {
		report, err := s.reportRepo.GetByID(reportID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}
		if report.Status != "pending" {
			return ErrAlreadyApplied
		}
	}
	return nil
}
