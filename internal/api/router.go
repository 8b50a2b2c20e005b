package api

import (
	"github.com/gin-gonic/gin"

	"github.com/voke-app/voke_server/config"
	"github.com/voke-app/voke_server/internal/api/handler"
	"github.com/voke-app/voke_server/internal/api/middleware"
	"github.com/voke-app/voke_server/internal/repository"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	postHandler      *handler.PostHandler
	commentHandler   *handler.CommentHandler
	walletHandler    *handler.WalletHandler
	spotlightHandler *handler.SpotlightHandler
	adminHandler     *handler.AdminHandler
	websocketHandler *handler.WebSocketHandler
	userRepo         *repository.UserRepository
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	postHandler *handler.PostHandler,
	commentHandler *handler.CommentHandler,
	walletHandler *handler.WalletHandler,
	spotlightHandler *handler.SpotlightHandler,
	adminHandler *handler.AdminHandler,
	websocketHandler *handler.WebSocketHandler,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		postHandler:      postHandler,
		commentHandler:   commentHandler,
		walletHandler:    walletHandler,
		spotlightHandler: spotlightHandler,
		adminHandler:     adminHandler,
		websocketHandler: websocketHandler,
		userRepo:         userRepo,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-email", r.authHandler.VerifyEmail)
		}

		// 公开目录
		api.GET("/gifts", r.walletHandler.ListGifts)
		api.GET("/spotlight/plans", r.spotlightHandler.ListPlans)

		// 信息流与详情 - 公开读取（可选认证）
		postsPublic := api.Group("/posts")
		postsPublic.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			postsPublic.GET("", r.postHandler.List)
			postsPublic.GET("/:id", r.postHandler.Get)
			postsPublic.GET("/:id/comments", r.commentHandler.List)
		}

		// 用户主页 - 公开读取（可选认证）
		usersPublic := api.Group("/users")
		usersPublic.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			usersPublic.GET("/:id", r.userHandler.GetPublicProfile)
			usersPublic.GET("/:id/following", r.userHandler.ListFollowing)
			usersPublic.GET("/:id/followers", r.userHandler.ListFollowers)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 当前用户
			me := authenticated.Group("/users/me")
			{
				me.GET("", r.userHandler.GetProfile)
				me.PUT("", r.userHandler.UpdateProfile)
				me.POST("/avatar", r.userHandler.UploadAvatar)
			}

			// 关注
			authenticated.POST("/users/:id/follow", r.userHandler.Follow)
			authenticated.DELETE("/users/:id/follow", r.userHandler.Unfollow)

			// 帖子
			posts := authenticated.Group("/posts")
			{
				posts.POST("", r.postHandler.Create)
				posts.GET("/bookmarked", r.postHandler.ListBookmarked)
				posts.PUT("/:id", r.postHandler.Update)
				posts.DELETE("/:id", r.postHandler.Delete)
				posts.POST("/:id/like", r.postHandler.Like)
				posts.DELETE("/:id/like", r.postHandler.Unlike)
				posts.POST("/:id/bookmark", r.postHandler.Bookmark)
				posts.DELETE("/:id/bookmark", r.postHandler.Unbookmark)
				posts.POST("/:id/share", r.postHandler.Share)
				posts.POST("/:id/view", r.postHandler.View)
				posts.POST("/:id/report", r.postHandler.Report)
				posts.POST("/:id/comments", r.commentHandler.Create)
				posts.POST("/:id/gift", r.walletHandler.SendGift)
				posts.POST("/:id/spotlight", r.spotlightHandler.Purchase)
			}

			// 评论删除
			authenticated.DELETE("/comments/:id", r.commentHandler.Delete)

			// 钱包
			wallet := authenticated.Group("/wallet")
			{
				wallet.GET("", r.walletHandler.GetWallet)
				wallet.GET("/transactions", r.walletHandler.ListTransactions)
				wallet.GET("/topup/packages", r.walletHandler.ListTopUpPackages)
				wallet.POST("/topup", r.walletHandler.CreateTopUp)
				wallet.GET("/withdraw/quote", r.walletHandler.QuoteWithdraw)
				wallet.POST("/withdraw", r.walletHandler.CreateWithdraw)
			}
		}

		// 后台管理
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly(r.userRepo))
		{
			admin.GET("/users", r.adminHandler.ListUsers)
			admin.POST("/users/:id/suspend", r.adminHandler.SuspendUser)
			admin.POST("/users/:id/activate", r.adminHandler.ActivateUser)

			admin.POST("/wallet/adjust", r.adminHandler.AdjustBalance)
			admin.GET("/settings/view-rate", r.adminHandler.GetViewRate)
			admin.PUT("/settings/view-rate", r.adminHandler.UpdateViewRate)

			admin.GET("/topups", r.adminHandler.ListTopUps)
			admin.POST("/topups/:id/approve", r.adminHandler.DecideTopUp(true))
			admin.POST("/topups/:id/reject", r.adminHandler.DecideTopUp(false))

			admin.GET("/withdraws", r.adminHandler.ListWithdraws)
			admin.POST("/withdraws/:id/approve", r.adminHandler.DecideWithdraw(true))
			admin.POST("/withdraws/:id/reject", r.adminHandler.DecideWithdraw(false))

			admin.GET("/promotions", r.adminHandler.ListPromotions)
			admin.POST("/promotions/:id/approve", r.adminHandler.DecidePromotion(true))
			admin.POST("/promotions/:id/reject", r.adminHandler.DecidePromotion(false))

			admin.GET("/reports", r.adminHandler.ListReports)
			admin.POST("/reports/:id/resolve", r.adminHandler.ResolveReport)
		}
	}

	return engine
}
