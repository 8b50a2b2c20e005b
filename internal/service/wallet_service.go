package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/config"
	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/pkg/pubsub"
	"github.com/voke-app/voke_server/internal/repository"
)

var (
	ErrInsufficientBalance    = errors.New("积分余额不足")
	ErrAlreadyApplied         = errors.New("该请求已处理过")
	ErrConcurrentConflict     = errors.New("操作冲突，请稍后重试")
	ErrIdempotencyKeyRequired = errors.New("缺少幂等键")
	ErrGiftNotFound           = errors.New("礼物不存在")
	ErrGiftToSelf             = errors.New("不能给自己的帖子送礼物")
	ErrRequestNotFound        = errors.New("申请不存在")
	ErrBelowMinWithdraw       = errors.New("未达到最低提现积分")
	ErrPackageNotFound        = errors.New("充值套餐不存在")
)

// errBalanceConflict 余额版本号未命中，事务回滚后重试
var errBalanceConflict = errors.New("balance version conflict")

// AdjustParams 一次入账的全部参数。IdempotencyKey 必填，
// 相同键的重复调用返回首次的流水而不再动账。
type AdjustParams struct {
	UserID         int64
	Delta          float64
	Type           string
	IdempotencyKey string
	PostID         *int64
	TransferID     string
	Metadata       model.JSONMap
}

type WalletService struct {
	db          *gorm.DB
	walletRepo  *repository.WalletRepository
	userRepo    *repository.UserRepository
	requestRepo *repository.RequestRepository
	settingRepo *repository.SettingRepository
	publisher   *pubsub.Publisher
	cfg         *config.Config
}

func NewWalletService(
	db *gorm.DB,
	walletRepo *repository.WalletRepository,
	userRepo *repository.UserRepository,
	requestRepo *repository.RequestRepository,
	settingRepo *repository.SettingRepository,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *WalletService {
	return &WalletService{
		db:          db,
		walletRepo:  walletRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		settingRepo: settingRepo,
		publisher:   publisher,
		cfg:         cfg,
	}
}

func (s *WalletService) maxRetries() int {
	if s.cfg.Wallet.MaxRetries > 0 {
		return s.cfg.Wallet.MaxRetries
	}
	return 5
}

// Adjust 原子入账：幂等检查、余额校验、余额更新、写流水在同一事务内完成。
// 余额不会变成负数；相同幂等键的重放返回首次的流水。
func (s *WalletService) Adjust(p AdjustParams) (*model.WalletTransaction, bool, error) {
	if p.IdempotencyKey == "" {
		return nil, false, ErrIdempotencyKeyRequired
	}

	var txn *model.WalletTransaction
	var replayed bool

	err := s.withConflictRetry(func(tx *gorm.DB) error {
		var err error
		txn, replayed, err = s.adjustInTx(tx, p)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if !replayed {
		s.publishBalanceChanged(p.UserID, p.Delta, txn)
	}
	return txn, replayed, nil
}

// adjustInTx 在给定事务内执行一次入账。外部事务回滚时入账随之回滚。
func (s *WalletService) adjustInTx(tx *gorm.DB, p AdjustParams) (*model.WalletTransaction, bool, error) {
	// 幂等重放：直接返回首次结果
	existing, err := s.walletRepo.GetByIdempotencyKey(tx, p.IdempotencyKey)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user, err := s.userRepo.GetByIDTx(tx, p.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, err
	}

	newBalance := user.Balance + p.Delta
	if newBalance < 0 {
		return nil, false, ErrInsufficientBalance
	}

	ok, err := s.userRepo.CompareAndSetBalance(tx, user.ID, user.Version, newBalance)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, errBalanceConflict
	}

	txn := &model.WalletTransaction{
		UserID:         p.UserID,
		Type:           p.Type,
		Amount:         p.Delta,
		BalanceAfter:   newBalance,
		Status:         model.TxStatusCompleted,
		IdempotencyKey: p.IdempotencyKey,
		TransferID:     p.TransferID,
		PostID:         p.PostID,
		Metadata:       p.Metadata,
	}
	if err := s.walletRepo.CreateTransaction(tx, txn); err != nil {
		// 并发写入同一幂等键：回滚后重试，由重放分支接住
		if isDuplicateKeyError(err) {
			return nil, false, errBalanceConflict
		}
		return nil, false, err
	}

	return txn, false, nil
}

// withConflictRetry 在余额版本冲突时回滚重试，带随机退避
func (s *WalletService) withConflictRetry(fn func(tx *gorm.DB) error) error {
	max := s.maxRetries()
	for attempt := 0; attempt < max; attempt++ {
		err := s.db.Transaction(fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errBalanceConflict) {
			return err
		}
		time.Sleep(time.Duration(attempt+1)*5*time.Millisecond + time.Duration(rand.Intn(5))*time.Millisecond)
	}
	return ErrConcurrentConflict
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// SendGift 送礼：送礼方扣费与作者入账在同一事务内完成，
// 两条流水共享 TransferID，帖子礼物统计同事务累加。
func (s *WalletService) SendGift(senderID, postID int64, giftName, idempotencyKey string) (*dto.SendGiftResponse, error) {
	if idempotencyKey == "" {
		return nil, ErrIdempotencyKeyRequired
	}

	gift := s.findGift(giftName)
	if gift == nil {
		return nil, ErrGiftNotFound
	}

	var post model.Post
	if err := s.db.Where("id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID == senderID {
		return nil, ErrGiftToSelf
	}

	transferID := uuid.NewString()
	debitKey := "gift:" + idempotencyKey
	creditKey := "gift:" + idempotencyKey + ":credit"
	meta := model.JSONMap{"gift_name": gift.Name, "post_id": postID}

	var senderTxn *model.WalletTransaction
	var replayed bool

	err := s.withConflictRetry(func(tx *gorm.DB) error {
		debit := AdjustParams{
			UserID:         senderID,
			Delta:          -gift.Price,
			Type:           model.TxGiftSent,
			IdempotencyKey: debitKey,
			PostID:         &postID,
			TransferID:     transferID,
			Metadata:       meta,
		}
		credit := AdjustParams{
			UserID:         post.UserID,
			Delta:          gift.Price,
			Type:           model.TxGiftReceived,
			IdempotencyKey: creditKey,
			PostID:         &postID,
			TransferID:     transferID,
			Metadata:       meta,
		}

		// 固定账户顺序，避免互相送礼时死锁
		first, second := debit, credit
		if credit.UserID < debit.UserID {
			first, second = credit, debit
		}

		txn1, rep1, err := s.adjustInTx(tx, first)
		if err != nil {
			return err
		}
		txn2, _, err := s.adjustInTx(tx, second)
		if err != nil {
			return err
		}

		if first.UserID == senderID {
			senderTxn = txn1
		} else {
			senderTxn = txn2
		}
		replayed = rep1
		if replayed {
			return nil
		}

		// 帖子礼物总额与分类统计
		if err := tx.Model(&model.Post{}).Where("id = ?", postID).
			Update("gift_total", gorm.Expr("gift_total + ?", gift.Price)).Error; err != nil {
			return err
		}

		res := tx.Model(&model.PostGiftStat{}).
			Where("post_id = ? AND gift_name = ?", postID, gift.Name).
			Update("count", gorm.Expr("count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Create(&model.PostGiftStat{
				PostID:   postID,
				GiftName: gift.Name,
				Icon:     gift.Icon,
				Count:    1,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !replayed {
		s.publishGiftReceived(post.UserID, senderID, postID, gift)
	}

	var giftTotal float64
	s.db.Model(&model.Post{}).Where("id = ?", postID).Pluck("gift_total", &giftTotal)

	return &dto.SendGiftResponse{
		Balance:   senderTxn.BalanceAfter,
		GiftTotal: giftTotal,
	}, nil
}

func (s *WalletService) findGift(name string) *config.GiftConfig {
	for i := range s.cfg.Gifts {
		if s.cfg.Gifts[i].Name == name {
			return &s.cfg.Gifts[i]
		}
	}
	return nil
}

// GetWallet 获取钱包信息
func (s *WalletService) GetWallet(userID int64) (*dto.WalletInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	rate, err := s.GetViewRate()
	if err != nil {
		return nil, err
	}

	return &dto.WalletInfo{
		Balance:  user.Balance,
		ViewRate: rate,
	}, nil
}

// GetViewRate 读取当前浏览分成单价
func (s *WalletService) GetViewRate() (float64, error) {
	return s.settingRepo.GetFloat(model.SettingViewRate, s.cfg.Wallet.DefaultViewRate)
}

// ListTransactions 分页获取流水
func (s *WalletService) ListTransactions(userID int64, page, pageSize int, txType string) ([]*dto.TransactionItem, int64, error) {
	txns, total, err := s.walletRepo.ListByUserID(userID, page, pageSize, txType)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.TransactionItem, len(txns))
	for i, txn := range txns {
		items[i] = &dto.TransactionItem{
			ID:           txn.ID,
			Type:         txn.Type,
			Amount:       txn.Amount,
			BalanceAfter: txn.BalanceAfter,
			Status:       txn.Status,
			PostID:       txn.PostID,
			Metadata:     txn.Metadata,
			CreatedAt:    txn.CreatedAt.Format(time.RFC3339),
		}
	}
	return items, total, nil
}

// ListGifts 礼物目录
func (s *WalletService) ListGifts() []*dto.GiftCatalogItem {
	items := make([]*dto.GiftCatalogItem, len(s.cfg.Gifts))
	for i, g := range s.cfg.Gifts {
		items[i] = &dto.GiftCatalogItem{
			Name:  g.Name,
			Icon:  g.Icon,
			Price: g.Price,
		}
	}
	return items
}

// ListTopUpPackages 充值套餐
func (s *WalletService) ListTopUpPackages() []*dto.TopUpPackageItem {
	items := make([]*dto.TopUpPackageItem, len(s.cfg.TopUp.Packages))
	for i, p := range s.cfg.TopUp.Packages {
		items[i] = &dto.TopUpPackageItem{
			ID:     p.ID,
			Name:   p.Name,
			Points: p.Points,
			Price:  p.Price,
			Bonus:  p.Bonus,
		}
	}
	return items
}

// CreateTopUp 提交充值申请，等待管理员审批
func (s *WalletService) CreateTopUp(userID int64, packageID string) (*model.TopUpRequest, error) {
	var pkg *config.TopUpPackage
	for i := range s.cfg.TopUp.Packages {
		if s.cfg.TopUp.Packages[i].ID == packageID {
			pkg = &s.cfg.TopUp.Packages[i]
			break
		}
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	req := &model.TopUpRequest{
		UserID: userID,
		Points: pkg.Points,
		Price:  pkg.Price,
		Status: model.RequestPending,
	}
	if err := s.requestRepo.CreateTopUp(req); err != nil {
		return nil, err
	}
	return req, nil
}

// QuoteWithdraw 计算提现到账金额
func (s *WalletService) QuoteWithdraw(amount float64) *dto.WithdrawQuote {
	return &dto.WithdrawQuote{
		Amount:    amount,
		Fee:       s.cfg.Wallet.WithdrawFee,
		NetAmount: amount*s.cfg.Wallet.ExchangeRate - s.cfg.Wallet.WithdrawFee,
	}
}

// CreateWithdraw 提交提现申请。此时只校验不扣款，批准时才动账。
func (s *WalletService) CreateWithdraw(userID int64, req *dto.CreateWithdrawRequest) (*model.WithdrawRequest, error) {
	if req.Amount < s.cfg.Wallet.MinWithdraw {
		return nil, ErrBelowMinWithdraw
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Balance < req.Amount {
		return nil, ErrInsufficientBalance
	}

	withdraw := &model.WithdrawRequest{
		UserID:   userID,
		Amount:   req.Amount,
		Method:   req.Method,
		Account:  req.Account,
		BankName: req.BankName,
		Status:   model.RequestPending,
	}
	if err := s.requestRepo.CreateWithdraw(withdraw); err != nil {
		return nil, err
	}
	return withdraw, nil
}

// DecideTopUp 审批充值。状态流转与入账在同一事务内，
// 重复审批命中不了 pending 状态，直接返回已处理。
func (s *WalletService) DecideTopUp(requestID int64, approve bool) error {
	req, err := s.requestRepo.GetTopUpByID(requestID)
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

	err = s.withConflictRetry(func(tx *gorm.DB) error {
		hit, err := s.requestRepo.DecideTopUp(tx, requestID, status)
		if err != nil {
			return err
		}
		if !hit {
			return ErrAlreadyApplied
		}
		if !approve {
			return nil
		}
		_, _, err = s.adjustInTx(tx, AdjustParams{
			UserID:         req.UserID,
			Delta:          req.Points,
			Type:           model.TxTopUp,
			IdempotencyKey: fmt.Sprintf("topup:%d", requestID),
			Metadata:       model.JSONMap{"request_id": requestID, "price": req.Price},
		})
		return err
	})
	if err != nil {
		return err
	}

	if approve {
		s.publishRequestDecided(req.UserID, "topup", status, req.Points)
	} else {
		s.publishRequestDecided(req.UserID, "topup", status, 0)
	}
	return nil
}

// DecideWithdraw 审批提现。批准时扣减积分；余额不足时整个事务回滚，
// 申请保持待审批，交由管理员重新处理或驳回。
func (s *WalletService) DecideWithdraw(requestID int64, approve bool) error {
	req, err := s.requestRepo.GetWithdrawByID(requestID)
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

	err = s.withConflictRetry(func(tx *gorm.DB) error {
		hit, err := s.requestRepo.DecideWithdraw(tx, requestID, status)
		if err != nil {
			return err
		}
		if !hit {
			return ErrAlreadyApplied
		}
		if !approve {
			return nil
		}
		_, _, err = s.adjustInTx(tx, AdjustParams{
			UserID:         req.UserID,
			Delta:          -req.Amount,
			Type:           model.TxWithdraw,
			IdempotencyKey: fmt.Sprintf("withdraw:%d", requestID),
			Metadata:       model.JSONMap{"request_id": requestID, "method": req.Method},
		})
		return err
	})
	if err != nil {
		return err
	}

	s.publishRequestDecided(req.UserID, "withdraw", status, req.Amount)
	return nil
}

// CreditView 浏览分成入账，worker 消费浏览事件时调用。
// 幂等键绑定 (post, viewer)，同一读者只结算一次。
func (s *WalletService) CreditView(authorID, postID, viewerID int64) (*model.WalletTransaction, bool, error) {
	rate, err := s.GetViewRate()
	if err != nil {
		return nil, false, err
	}
	if rate <= 0 {
		return nil, false, nil
	}

	return s.Adjust(AdjustParams{
		UserID:         authorID,
		Delta:          rate,
		Type:           model.TxView,
		IdempotencyKey: fmt.Sprintf("view:%d:%d", postID, viewerID),
		PostID:         &postID,
		Metadata:       model.JSONMap{"viewer_id": viewerID},
	})
}

func (s *WalletService) publishBalanceChanged(userID int64, amount float64, txn *model.WalletTransaction) {
	if s.publisher == nil {
		return
	}
	event := &pubsub.WalletEvent{
		Type:    pubsub.EventBalanceChanged,
		UserID:  userID,
		Amount:  amount,
		Balance: txn.BalanceAfter,
		TxType:  txn.Type,
	}
	if err := s.publisher.PublishWalletEvent(context.Background(), event); err != nil {
		log.Printf("Failed to publish wallet event: %v", err)
	}
}

func (s *WalletService) publishGiftReceived(authorID, senderID, postID int64, gift *config.GiftConfig) {
	if s.publisher == nil {
		return
	}
	ctx := context.Background()
	events := []*pubsub.WalletEvent{
		{
			Type:     pubsub.EventGiftReceived,
			UserID:   authorID,
			Amount:   gift.Price,
			PostID:   postID,
			GiftName: gift.Name,
			Message:  fmt.Sprintf("收到礼物 %s", gift.Name),
		},
		{
			Type:   pubsub.EventBalanceChanged,
			UserID: senderID,
			Amount: -gift.Price,
			TxType: model.TxGiftSent,
		},
	}
	for _, event := range events {
		if err := s.publisher.PublishWalletEvent(ctx, event); err != nil {
			log.Printf("Failed to publish wallet event: %v", err)
		}
	}
}

func (s *WalletService) publishRequestDecided(userID int64, kind, status string, amount float64) {
	if s.publisher == nil {
		return
	}
	event := &pubsub.WalletEvent{
		Type:    pubsub.EventRequestDecided,
		UserID:  userID,
		Amount:  amount,
		Message: fmt.Sprintf("%s申请已%s", kind, status),
	}
	if err := s.publisher.PublishWalletEvent(context.Background(), event); err != nil {
		log.Printf("Failed to publish wallet event: %v", err)
	}
}
