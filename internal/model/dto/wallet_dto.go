package dto

// WalletInfo 钱包概览
type WalletInfo struct {
	Balance  float64 `json:"balance"`
	ViewRate float64 `json:"view_rate"`
}

// TransactionItem 流水项
type TransactionItem struct {
	ID           int64                  `json:"id"`
	Type         string                 `json:"type"`
	Amount       float64                `json:"amount"`
	BalanceAfter float64                `json:"balance_after"`
	Status       string                 `json:"status"`
	PostID       *int64                 `json:"post_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    string                 `json:"created_at"`
}

// GiftCatalogItem 礼物目录项
type GiftCatalogItem struct {
	Name  string  `json:"name"`
	Icon  string  `json:"icon"`
	Price float64 `json:"price"`
}

// SendGiftRequest 送礼请求。幂等键上限 80：服务端会派生
// "gift:<key>:credit" 两条流水键，需留出前后缀空间。
type SendGiftRequest struct {
	GiftName       string `json:"gift_name" binding:"required"`
	IdempotencyKey string `json:"idempotency_key" binding:"required,max=80"`
}

// SendGiftResponse 送礼响应
type SendGiftResponse struct {
	Balance   float64 `json:"balance"`
	GiftTotal float64 `json:"gift_total"`
}

// TopUpPackageItem 充值套餐
type TopUpPackageItem struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Price  float64 `json:"price"`
	Bonus  string  `json:"bonus,omitempty"`
}

// CreateTopUpRequest 充值申请
type CreateTopUpRequest struct {
	PackageID string `json:"package_id" binding:"required"`
}

// CreateWithdrawRequest 提现申请
type CreateWithdrawRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Method   string  `json:"method" binding:"required,max=50"`
	Account  string  `json:"account" binding:"required,max=100"`
	BankName string  `json:"bank_name" binding:"max=100"`
}

// WithdrawQuote 提现金额预览（法币到账 = 积分*汇率 - 手续费）
type WithdrawQuote struct {
	Amount    float64 `json:"amount"`
	Fee       float64 `json:"fee"`
	NetAmount float64 `json:"net_amount"`
}

// RequestItem 审批申请项（充值/提现/推广通用字段）
type RequestItem struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	UserName  string      `json:"user_name,omitempty"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
	Detail    interface{} `json:"detail,omitempty"`
}

// SpotlightPlanItem 推广套餐
type SpotlightPlanItem struct {
	DurationDays int     `json:"duration_days"`
	Cost         float64 `json:"cost"`
}

// PurchaseSpotlightRequest 购买推广请求
type PurchaseSpotlightRequest struct {
	DurationDays int `json:"duration_days" binding:"required,gt=0"`
}

// PurchaseSpotlightResponse 购买推广响应
type PurchaseSpotlightResponse struct {
	RequestID int64   `json:"request_id"`
	Balance   float64 `json:"balance"`
}
