package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voke-app/voke_server/internal/api/middleware"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/pkg/response"
	"github.com/voke-app/voke_server/internal/service"
)

type WalletHandler struct {
	walletService *service.WalletService
}

func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GetWallet 钱包概览
// GET /api/v1/wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.walletService.GetWallet(userID)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, info)
}

// ListTransactions 流水列表
// GET /api/v1/wallet/transactions
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	page, pageSize := parsePagination(c)
	txType := c.Query("type")

	items, total, err := h.walletService.ListTransactions(userID, page, pageSize, txType)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// ListGifts 礼物目录
// GET /api/v1/gifts
func (h *WalletHandler) ListGifts(c *gin.Context) {
	response.Success(c, h.walletService.ListGifts())
}

// SendGift 送礼
// POST /api/v1/posts/:id/gift
func (h *WalletHandler) SendGift(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的帖子ID")
		return
	}

	var req dto.SendGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误")
		return
	}

	resp, err := h.walletService.SendGift(userID, postID, req.GiftName, req.IdempotencyKey)
	if err != nil {
		switch err {
		case service.ErrPostNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrGiftNotFound:
			response.ParamError(c, err.Error())
		case service.ErrGiftToSelf:
			response.ParamError(c, err.Error())
		case service.ErrInsufficientBalance:
			response.BalanceError(c, err.Error())
		case service.ErrConcurrentConflict:
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// ListTopUpPackages 充值套餐
// GET /api/v1/wallet/topup/packages
func (h *WalletHandler) ListTopUpPackages(c *gin.Context) {
	response.Success(c, h.walletService.ListTopUpPackages())
}

// CreateTopUp 提交充值申请
// POST /api/v1/wallet/topup
func (h *WalletHandler) CreateTopUp(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误")
		return
	}

	topup, err := h.walletService.CreateTopUp(userID, req.PackageID)
	if err != nil {
		switch err {
		case service.ErrPackageNotFound:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "充值申请已提交，等待审批", gin.H{"request_id": topup.ID})
}

// QuoteWithdraw 提现金额预览
// GET /api/v1/wallet/withdraw/quote
func (h *WalletHandler) QuoteWithdraw(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount <= 0 {
		response.ParamError(c, "无效的提现金额")
		return
	}

	response.Success(c, h.walletService.QuoteWithdraw(amount))
}

// CreateWithdraw 提交提现申请
// POST /api/v1/wallet/withdraw
func (h *WalletHandler) CreateWithdraw(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误")
		return
	}

	withdraw, err := h.walletService.CreateWithdraw(userID, &req)
	if err != nil {
		switch err {
		case service.ErrBelowMinWithdraw:
			response.ParamError(c, err.Error())
		case service.ErrInsufficientBalance:
			response.BalanceError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "提现申请已提交，等待审批", gin.H{"request_id": withdraw.ID})
}
