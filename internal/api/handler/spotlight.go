package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voke-app/voke_server/internal/api/middleware"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/pkg/response"
	"github.com/voke-app/voke_server/internal/service"
)

type SpotlightHandler struct {
	promotionService *service.PromotionService
}

func NewSpotlightHandler(promotionService *service.PromotionService) *SpotlightHandler {
	return &SpotlightHandler{
		promotionService: promotionService,
	}
}

// ListPlans 推广套餐
// GET /api/v1/spotlight/plans
func (h *SpotlightHandler) ListPlans(c *gin.Context) {
	response.Success(c, h.promotionService.ListPlans())
}

// Purchase 购买推广位
// POST /api/v1/posts/:id/spotlight
func (h *SpotlightHandler) Purchase(c *gin.Context) {
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

	var req dto.PurchaseSpotlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误")
		return
	}

	resp, err := h.promotionService.Purchase(userID, postID, req.DurationDays)
	if err != nil {
		switch err {
		case service.ErrPostNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrNotPostOwner:
			response.PermissionError(c, err.Error())
		case service.ErrPlanNotFound:
			response.ParamError(c, err.Error())
		case service.ErrPromotionPending, service.ErrAlreadyPromoted:
			response.DuplicateError(c, err.Error())
		case service.ErrInsufficientBalance:
			response.BalanceError(c, err.Error())
		case service.ErrConcurrentConflict:
			response.ConflictError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "推广申请已提交，费用已扣除", resp)
}
