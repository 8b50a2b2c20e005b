package repository

import (
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) DB() *gorm.DB {
	return r.db
}

// CreateTransaction 在事务内写入流水。幂等键冲突由数据库唯一索引兜底。
func (r *WalletRepository) CreateTransaction(tx *gorm.DB, txn *model.WalletTransaction) error {
	return tx.Create(txn).Error
}

// GetByIdempotencyKey 按幂等键查询流水
func (r *WalletRepository) GetByIdempotencyKey(tx *gorm.DB, key string) (*model.WalletTransaction, error) {
	var txn model.WalletTransaction
	err := tx.Where("idempotency_key = ?", key).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *WalletRepository) GetTransactionByID(id int64) (*model.WalletTransaction, error) {
	var txn model.WalletTransaction
	err := r.db.Where("id = ?", id).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListByUserID 分页获取用户流水
func (r *WalletRepository) ListByUserID(userID int64, page, pageSize int, txType string) ([]*model.WalletTransaction, int64, error) {
	var txns []*model.WalletTransaction
	var total int64

	query := r.db.Model(&model.WalletTransaction{}).Where("user_id = ?", userID)
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC, id DESC").
		Offset(offset).Limit(pageSize).Find(&txns).Error; err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

// ListByTransferID 获取一笔转账的两条流水
func (r *WalletRepository) ListByTransferID(transferID string) ([]*model.WalletTransaction, error) {
	var txns []*model.WalletTransaction
	err := r.db.Where("transfer_id = ?", transferID).Order("id ASC").Find(&txns).Error
	return txns, err
}
