package dto

// AdjustBalanceRequest 管理员手工调账请求
type AdjustBalanceRequest struct {
	UserID         int64   `json:"user_id" binding:"required"`
	Delta          float64 `json:"delta" binding:"required"`
	Reason         string  `json:"reason" binding:"required,max=200"`
	IdempotencyKey string  `json:"idempotency_key" binding:"max=100"`
}

// AdjustBalanceResponse 调账响应
type AdjustBalanceResponse struct {
	Balance       float64 `json:"balance"`
	TransactionID int64   `json:"transaction_id"`
}

// UpdateViewRateRequest 更新浏览分成请求
type UpdateViewRateRequest struct {
	Rate float64 `json:"rate" binding:"required,gt=0"`
}

// ViewRateResponse 浏览分成
type ViewRateResponse struct {
	Rate float64 `json:"rate"`
}

// AdminUserItem 后台用户列表项
type AdminUserItem struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Status    string  `json:"status"`
	Balance   float64 `json:"balance"`
	CreatedAt string  `json:"created_at"`
}

// ReportItem 举报列表项
type ReportItem struct {
	ID           int64  `json:"id"`
	PostID       int64  `json:"post_id"`
	PostTitle    string `json:"post_title,omitempty"`
	ReporterName string `json:"reporter_name,omitempty"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}
