package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/pkg/response"
	"github.com/voke-app/voke_server/internal/service"
)

type AdminHandler struct {
	adminService     *service.AdminService
	walletService    *service.WalletService
	promotionService *service.PromotionService
}

func NewAdminHandler(
	adminService *service.AdminService,
	walletService *service.WalletService,
	promotionService *service.PromotionService,
) *AdminHandler {
	return &AdminHandler{
		adminService:     adminService,
		walletService:    walletService,
		promotionService: promotionService,
	}
}

// ListUsers 用户列表
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)
	keyword := c.Query("keyword")

	items, total, err := h.adminService.ListUsers(page, pageSize, keyword)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// SuspendUser 封禁用户
// POST /api/v1/admin/users/:id/suspend
func (h *AdminHandler) SuspendUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户ID")
		return
	}

	if err := h.adminService.SetUserStatus(userID, model.UserStatusSuspended); err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "用户已封禁", nil)
}

// ActivateUser 解封用户
// POST /api/v1/admin/users/:id/activate
func (h *AdminHandler) ActivateUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的用户ID")
		return
	}

	if err := h.adminService.SetUserStatus(userID, model.UserStatusActive); err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "用户已解封", nil)
}

// AdjustBalance 手工调账
// POST /api/v1/admin/wallet/adjust
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	var req dto.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误")
		return
	}

	resp, err := h.adminService.AdjustBalance(&req)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			response.NotFoundError(c, err.Error())
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

// GetViewRate 浏览分成单价
// GET /api/v1/admin/settings/view-rate
func (h *AdminHandler) GetViewRate(c *gin.Context) {
	rate, err := h.adminService.GetViewRate()
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, &dto.ViewRateResponse{Rate: rate})
}

// UpdateViewRate 调整浏览分成单价
// PUT /api/v1/admin/settings/view-rate
func (h *AdminHandler) UpdateViewRate(c *gin.Context) {
	var req dto.UpdateViewRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误")
		return
	}

	if err := h.adminService.UpdateViewRate(req.Rate); err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, &dto.ViewRateResponse{Rate: req.Rate})
}

// ListTopUps 充值审批列表
// GET /api/v1/admin/topups
func (h *AdminHandler) ListTopUps(c *gin.Context) {
	page, pageSize := parsePagination(c)
	status := c.Query("status")

	items, total, err := h.adminService.ListTopUps(page, pageSize, status)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// DecideTopUp 审批充值
// POST /api/v1/admin/topups/:id/approve | /reject
func (h *AdminHandler) DecideTopUp(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			response.ParamError(c, "无效的申请ID")
			return
		}

		if err := h.walletService.DecideTopUp(requestID, approve); err != nil {
			h.handleDecisionError(c, err)
			return
		}
		response.SuccessWithMessage(c, "处理完成", nil)
	}
}

// ListWithdraws 提现审批列表
// GET /api/v1/admin/withdraws
func (h *AdminHandler) ListWithdraws(c *gin.Context) {
	page, pageSize := parsePagination(c)
	status := c.Query("status")

	items, total, err := h.adminService.ListWithdraws(page, pageSize, status)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// DecideWithdraw 审批提现
// POST /api/v1/admin/withdraws/:id/approve | /reject
func (h *AdminHandler) DecideWithdraw(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			response.ParamError(c, "无效的申请ID")
			return
		}

		if err := h.walletService.DecideWithdraw(requestID, approve); err != nil {
			h.handleDecisionError(c, err)
			return
		}
		response.SuccessWithMessage(c, "处理完成", nil)
	}
}

// ListPromotions 推广审批列表
// GET /api/v1/admin/promotions
func (h *AdminHandler) ListPromotions(c *gin.Context) {
	page, pageSize := parsePagination(c)
	status := c.Query("status")

	items, total, err := h.adminService.ListPromotions(page, pageSize, status)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// DecidePromotion 审批推广
// POST /api/v1/admin/promotions/:id/approve | /reject
func (h *AdminHandler) DecidePromotion(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			response.ParamError(c, "无效的申请ID")
			return
		}

		if err := h.promotionService.Decide(requestID, approve); err != nil {
			h.handleDecisionError(c, err)
			return
		}
		response.SuccessWithMessage(c, "处理完成", nil)
	}
}

// ListReports 举报列表
// GET /api/v1/admin/reports
func (h *AdminHandler) ListReports(c *gin.Context) {
	page, pageSize := parsePagination(c)
	status := c.Query("status")

	items, total, err := h.adminService.ListReports(page, pageSize, status)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.SuccessPage(c, total, page, pageSize, items)
}

// ResolveReport 标记举报已处理
// POST /api/v1/admin/reports/:id/resolve
func (h *AdminHandler) ResolveReport(c *gin.Context) {
	reportID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的举报ID")
		return
	}

	if err := h.adminService.ResolveReport(reportID); err != nil {
		switch err {
		case service.ErrReportNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrAlreadyApplied:
			response.DuplicateError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	response.SuccessWithMessage(c, "举报已处理", nil)
}

func (h *AdminHandler) handleDecisionError(c *gin.Context, err error) {
	switch err {
	case service.ErrRequestNotFound:
		response.NotFoundError(c, err.Error())
	case service.ErrAlreadyApplied:
		response.DuplicateError(c, err.Error())
	case service.ErrInsufficientBalance:
		response.BalanceError(c, err.Error())
	case service.ErrConcurrentConflict:
		response.ConflictError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
